package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/Skotchmaster/storefront/services/shop/internal/events"
	"github.com/Skotchmaster/storefront/services/shop/internal/models"
	"github.com/Skotchmaster/storefront/services/shop/internal/repo"
	"github.com/Skotchmaster/storefront/services/shop/internal/search"
	"github.com/Skotchmaster/storefront/services/shop/internal/service"
	"github.com/Skotchmaster/storefront/services/shop/internal/transport"
)

var testSecret = []byte("handler-secret")

type testEnv struct {
	T    *testing.T
	E    *echo.Echo
	Repo *repo.GormRepo
	Deps *Deps
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ctx := context.Background()
	gdb, err := db.Open(ctx, db.MemoryDSN(uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	r := &repo.GormRepo{DB: gdb}
	require.NoError(t, r.Migrate(ctx))

	rec := &events.Recorder{}
	d := &Deps{
		AuthHandler:     &AuthHTTP{Svc: &service.AuthService{Repo: r, Events: rec, JWTSecret: testSecret, TokenTTL: time.Hour}, ExposeCode: true},
		ProductHandler:  &ProductHTTP{Svc: &service.CatalogService{Repo: r, Events: rec, Index: search.SQLIndex{Repo: r}}},
		CartHandler:     &CartHTTP{Svc: &service.CartService{Repo: r, Events: rec}},
		WishlistHandler: &WishlistHTTP{Svc: &service.WishlistService{Repo: r}},
		CheckoutHandler: &CheckoutHTTP{Svc: &service.CheckoutService{Repo: r, PublicURL: "http://shop.test"}},
		OrderHandler:    &OrderHTTP{Svc: &service.OrderService{Repo: r, Events: rec}},
		JWTSecret:       testSecret,
		Logger:          logging.Discard(),
	}
	return &testEnv{T: t, E: New(d), Repo: r, Deps: d}
}

func (env *testEnv) doJSONRequest(method, path string, body any) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, env.E.NewContext(req, rec)
}

// serve runs the request through the full router.
func (env *testEnv) serve(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) product(name string) *models.Product {
	p := &models.Product{Name: name, Price: decimal.RequireFromString("12.50"), Stock: 5, Images: []string{}}
	require.NoError(env.T, env.Repo.CreateProduct(context.Background(), p))
	return p
}

func (env *testEnv) token(role string, verified bool) (string, uuid.UUID) {
	u := &models.User{Username: uuid.NewString()[:12], PasswordHash: "x", Role: role, Verified: verified}
	require.NoError(env.T, env.Repo.CreateUser(context.Background(), u))
	tok, err := tokens.IssueAccessToken(testSecret, u.ID.String(), u.Username, role, verified, time.Now().Add(time.Hour))
	require.NoError(env.T, err)
	return tok, u.ID
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAddToCart_Handler(t *testing.T) {
	env := newTestEnv(t)
	p := env.product("lamp")

	rec, c := env.doJSONRequest(http.MethodPost, "/cart/add", transport.AddToCartRequest{ProductID: p.ID, Quantity: 2})
	c.Set(middleware.CtxGuestID, "guest-1")
	require.NoError(t, env.Deps.CartHandler.AddToCart(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decode[transport.CartResponse](t, rec)
	assert.Equal(t, "guest-1", resp.GuestID)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, 2, resp.Products[0].Quantity)
	assert.Equal(t, "lamp", resp.Products[0].Product.Name)
}

func TestAddToCart_Handler_Unidentified(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodPost, "/cart/add", transport.AddToCartRequest{ProductID: uuid.New(), Quantity: 1})
	err := env.Deps.CartHandler.AddToCart(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestDecrease_Handler_RemovesLastUnit(t *testing.T) {
	env := newTestEnv(t)
	p := env.product("lamp")
	require.NoError(t, env.Repo.AddToCart(context.Background(), &models.CartItem{Owner: models.GuestOwner("g"), ProductID: p.ID, Quantity: 1}))

	rec, c := env.doJSONRequest(http.MethodPost, "/cart/product/"+p.ID.String()+"/decrease", nil)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())
	c.Set(middleware.CtxGuestID, "g")
	require.NoError(t, env.Deps.CartHandler.Decrease()(c))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[transport.CartResponse](t, rec)
	assert.Empty(t, resp.Products)
}

func TestRoutes_AuthStatusCodes(t *testing.T) {
	env := newTestEnv(t)
	customer, _ := env.token(models.RoleCustomer, true)
	admin, _ := env.token(models.RoleAdmin, true)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{name: "cart without identity", method: http.MethodGet, path: "/cart", want: http.StatusUnauthorized},
		{name: "cart with bad token", method: http.MethodGet, path: "/cart", token: "garbage", want: http.StatusForbidden},
		{name: "cart with token", method: http.MethodGet, path: "/cart", token: customer, want: http.StatusOK},
		{name: "orders without token", method: http.MethodGet, path: "/orders", want: http.StatusUnauthorized},
		{name: "create product as customer", method: http.MethodPost, path: "/products", token: customer, body: map[string]any{"name": "x", "price": "1"}, want: http.StatusForbidden},
		{name: "create product as admin", method: http.MethodPost, path: "/products", token: admin, body: map[string]any{"name": "x", "price": "1"}, want: http.StatusCreated},
		{name: "create product invalid", method: http.MethodPost, path: "/products", token: admin, body: map[string]any{"price": "1"}, want: http.StatusBadRequest},
		{name: "product list is public", method: http.MethodGet, path: "/products", want: http.StatusOK},
		{name: "unknown product", method: http.MethodGet, path: "/products/" + uuid.NewString(), want: http.StatusNotFound},
		{name: "malformed product id", method: http.MethodGet, path: "/products/nope", want: http.StatusBadRequest},
		{name: "health", method: http.MethodGet, path: "/health/live", want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.serve(tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestRoutes_RegisterLoginVerify(t *testing.T) {
	env := newTestEnv(t)
	creds := transport.Credentials{Username: "alice", Password: "password1"}

	rec := env.serve(http.MethodPost, "/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code)
	reg := decode[transport.RegisterResponse](t, rec)
	require.NotEmpty(t, reg.VerificationCode)

	rec = env.serve(http.MethodPost, "/auth/register", "", creds)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.serve(http.MethodPost, "/auth/login", "", transport.Credentials{Username: "alice", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.serve(http.MethodPost, "/auth/login", "", creds)
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[transport.LoginResponse](t, rec)
	assert.False(t, login.User.Verified)

	rec = env.serve(http.MethodPost, "/auth/verify-user", login.AccessToken, transport.VerifyRequest{Code: "bad"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.serve(http.MethodPost, "/auth/verify-user", login.AccessToken, transport.VerifyRequest{Code: reg.VerificationCode})
	require.Equal(t, http.StatusOK, rec.Code)
	verified := decode[transport.LoginResponse](t, rec)
	assert.True(t, verified.User.Verified)
	assert.NotEmpty(t, verified.AccessToken)
}

func TestRoutes_CheckoutToOrder(t *testing.T) {
	env := newTestEnv(t)
	unverified, _ := env.token(models.RoleCustomer, false)
	tok, _ := env.token(models.RoleCustomer, true)
	admin, _ := env.token(models.RoleAdmin, true)

	body := transport.CreateSessionRequest{Items: []transport.CheckoutItem{
		{Name: "lamp", Price: decimal.RequireFromString("12.50"), Quantity: 2},
	}}

	rec := env.serve(http.MethodPost, "/checkout/create-checkout-session", unverified, body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.serve(http.MethodPost, "/checkout/create-checkout-session", tok, transport.CreateSessionRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.serve(http.MethodPost, "/checkout/create-checkout-session", tok, body)
	require.Equal(t, http.StatusOK, rec.Code)
	sess := decode[transport.CreateSessionResponse](t, rec)
	assert.Equal(t, "http://shop.test/checkout/session/"+sess.ID.String()+"/pay", sess.URL)

	rec = env.serve(http.MethodPost, "/orders", tok, transport.CreateOrderRequest{SessionID: sess.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.serve(http.MethodPost, "/checkout/session/"+sess.ID.String()+"/pay", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.serve(http.MethodGet, "/checkout/session/"+sess.ID.String(), tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	details := decode[transport.SessionResponse](t, rec)
	assert.Equal(t, models.PaymentStatusPaid, details.PaymentStatus)
	assert.EqualValues(t, 2500, details.AmountTotal)

	rec = env.serve(http.MethodPost, "/orders", tok, transport.CreateOrderRequest{SessionID: sess.ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	order := decode[models.Order](t, rec)

	rec = env.serve(http.MethodPost, "/orders", tok, transport.CreateOrderRequest{SessionID: sess.ID})
	assert.Equal(t, http.StatusOK, rec.Code)

	statusPath := "/orders/" + order.ID.String() + "/status"
	rec = env.serve(http.MethodGet, statusPath, tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.OrderStatusProcessing, decode[transport.OrderStatusResponse](t, rec).Status)

	rec = env.serve(http.MethodPatch, statusPath, tok, transport.UpdateOrderStatusRequest{Status: models.OrderStatusShipped})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.serve(http.MethodPatch, statusPath, admin, transport.UpdateOrderStatusRequest{Status: models.OrderStatusDelivered})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.serve(http.MethodPatch, statusPath, admin, transport.UpdateOrderStatusRequest{Status: models.OrderStatusShipped})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.OrderStatusShipped, decode[transport.OrderStatusResponse](t, rec).Status)
}

func TestRoutes_MergeCart(t *testing.T) {
	env := newTestEnv(t)
	tok, uid := env.token(models.RoleCustomer, true)
	p := env.product("lamp")

	rec := env.serve(http.MethodPost, "/cart/add", "", transport.AddToCartRequest{ProductID: p.ID, Quantity: 2}, middleware.HeaderGuestID, "g-9")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.serve(http.MethodPost, "/cart/merge", "", nil, middleware.HeaderGuestID, "g-9")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.serve(http.MethodPost, "/cart/merge", tok, nil, middleware.HeaderGuestID, "g-9")
	require.Equal(t, http.StatusOK, rec.Code)
	merged := decode[transport.MergeCartResponse](t, rec)
	assert.Equal(t, 1, merged.Merged)
	require.Len(t, merged.Cart.Products, 1)
	assert.Equal(t, 2, merged.Cart.Products[0].Quantity)
	assert.Empty(t, merged.Cart.GuestID)

	items, err := env.Repo.GetCart(context.Background(), models.UserOwner(uid))
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestRateLimiter(t *testing.T) {
	e := echo.New()
	e.Use(rateLimiter(1, 2))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
