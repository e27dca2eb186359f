package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/services/shop/shoptest"
)

type staticCreds struct {
	token string
	guest string
}

func (s staticCreds) AccessToken() string { return s.token }
func (s staticCreds) GuestID() string     { return s.guest }

func TestDo_ErrorKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		kind   error
		msg    string
	}{
		{"bad request", http.StatusBadRequest, `{"message":"invalid quantity"}`, ErrValidation, "invalid quantity"},
		{"unprocessable", http.StatusUnprocessableEntity, `{"message":"account not verified"}`, ErrValidation, "account not verified"},
		{"unauthorized", http.StatusUnauthorized, `{"message":"missing token"}`, ErrUnauthorized, "missing token"},
		{"not found", http.StatusNotFound, `{"message":"product not found"}`, ErrNotFound, "product not found"},
		{"conflict", http.StatusConflict, `{"message":"username taken"}`, ErrConflict, "username taken"},
		{"server", http.StatusInternalServerError, `oops`, ErrServer, "oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := New(srv.URL).Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"}, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.msg, Message(err))

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
		})
	}
}

func TestDo_TransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := New(url, WithTimeout(time.Second)).Do(context.Background(), Request{Method: http.MethodGet, Path: "/products"}, nil)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestDo_BearerWithoutTokenNeverSends(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetCredentials(staticCreds{guest: "g-1"})

	err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/wishlist", Auth: Bearer}, nil)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Zero(t, hits.Load())
}

func TestDo_IdentityHeaders(t *testing.T) {
	t.Parallel()

	var gotAuth, gotGuest string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotGuest = r.Header.Get(HeaderGuestID)
		_, _ = w.Write([]byte(`{"products":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetCredentials(staticCreds{guest: "g-1"})
	_, err := c.Cart(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.Equal(t, "g-1", gotGuest)
}

func TestDo_ForbiddenFiresHook(t *testing.T) {
	t.Parallel()

	s := shoptest.New(t)
	c := New(s.URL)
	c.SetCredentials(staticCreds{token: "not-a-jwt"})

	var got []string
	c.OnForbidden(func(tok string) { got = append(got, tok) })

	_, err := c.Wishlist(context.Background())
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, []string{"not-a-jwt"}, got)
}

func TestDo_ExpiredTokenRejectedLocally(t *testing.T) {
	t.Parallel()

	s := shoptest.New(t)
	uid := s.SeedUser(t, "alice", "secret-pw", "customer", true)
	expired := s.ExpiredToken(t, uid)

	c := New(s.URL)
	c.SetCredentials(staticCreds{token: expired})
	var fired atomic.Int64
	c.OnForbidden(func(string) { fired.Add(1) })

	before := s.Requests()
	_, err := c.Cart(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, before, s.Requests())
	assert.EqualValues(t, 1, fired.Load())
}

func TestEndpoints_AgainstBackend(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := shoptest.New(t)
	tea := s.SeedProduct(t, "tea", "4.50", "drinks")
	s.SeedProduct(t, "mug", "9.99", "kitchen")

	c := New(s.URL)

	page, err := c.Products(ctx, ListOptions{Category: "drinks"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "tea", page.Data[0].Name)

	p, err := c.Product(ctx, tea.ID.String())
	require.NoError(t, err)
	assert.True(t, tea.Price.Equal(p.Price))

	_, err = c.Product(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrNotFound)

	reg, err := c.Register(ctx, "bob", "password1")
	require.NoError(t, err)
	assert.Equal(t, "bob", reg.User.Username)
	assert.NotEmpty(t, reg.VerificationCode)

	_, err = c.Register(ctx, "bob", "password1")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = c.Login(ctx, "bob", "wrong-password")
	assert.ErrorIs(t, err, ErrUnauthorized)

	sess, err := c.Login(ctx, "bob", "password1")
	require.NoError(t, err)
	assert.False(t, sess.User.Verified)

	c.SetCredentials(staticCreds{token: sess.AccessToken})
	cart, err := c.AddToCart(ctx, tea.ID.String(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Quantity(tea.ID.String()))

	verified, err := c.Verify(ctx, reg.VerificationCode)
	require.NoError(t, err)
	assert.True(t, verified.User.Verified)

	w, err := c.AddToWishlist(ctx, tea.ID.String())
	require.NoError(t, err)
	assert.Len(t, w.Products, 1)

	var apiErr *Error
	_, err = c.CreateProduct(ctx, NewProduct{Name: "x"})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.True(t, errors.Is(err, ErrForbidden))
}
