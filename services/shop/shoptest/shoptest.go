// Package shoptest runs the shop backend in-process over an in-memory
// database for tests of HTTP clients.
package shoptest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/Skotchmaster/storefront/services/shop/internal/app"
	"github.com/Skotchmaster/storefront/services/shop/internal/config"
	"github.com/Skotchmaster/storefront/services/shop/internal/events"
	"github.com/Skotchmaster/storefront/services/shop/internal/models"
)

const Secret = "shoptest-secret"

type Server struct {
	URL    string
	Events *events.Recorder
	app    *app.App
	srv    *httptest.Server
	hits   atomic.Int64
}

// New starts a backend in dev mode and closes it with the test.
func New(t testing.TB) *Server {
	t.Helper()

	ctx := context.Background()
	gdb, err := db.Open(ctx, db.MemoryDSN(uuid.NewString()))
	require.NoError(t, err)

	rec := &events.Recorder{}
	cfg := &config.Config{
		JWTSecret: []byte(Secret),
		TokenTTL:  time.Hour,
		PublicURL: "http://shop.test",
		Currency:  "usd",
		DevMode:   true,
	}
	a, err := app.New(ctx, cfg, logging.Discard(), app.WithDB(gdb), app.WithPublisher(rec))
	require.NoError(t, err)

	s := &Server{Events: rec, app: a}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		a.Echo.ServeHTTP(w, r)
	}))
	s.URL = s.srv.URL

	t.Cleanup(func() {
		s.srv.Close()
		_ = a.Close()
	})
	return s
}

// Requests is the number of HTTP requests the server has received.
func (s *Server) Requests() int64 {
	return s.hits.Load()
}

type Product struct {
	ID       uuid.UUID
	Name     string
	Price    decimal.Decimal
	Category string
	Image    string
}

func (s *Server) SeedProduct(t testing.TB, name, price, category string) Product {
	t.Helper()
	p := &models.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Category: category,
		Stock:    100,
		Images:   []string{"https://img.test/" + name + ".png"},
	}
	require.NoError(t, s.app.DB.Create(p).Error)
	return Product{ID: p.ID, Name: p.Name, Price: p.Price, Category: p.Category, Image: p.Images[0]}
}

// SeedUser creates a user and returns it with the password it was given.
func (s *Server) SeedUser(t testing.TB, username, password, role string, verified bool) uuid.UUID {
	t.Helper()
	h, err := hash.HashPassword(password)
	require.NoError(t, err)
	u := &models.User{Username: username, PasswordHash: h, Role: role, Verified: verified}
	require.NoError(t, s.app.DB.Create(u).Error)
	return u.ID
}

func (s *Server) AdminToken(t testing.TB) string {
	t.Helper()
	tok, err := tokens.IssueAccessToken([]byte(Secret), uuid.NewString(), "root", tokens.RoleAdmin, true, time.Now().Add(time.Hour))
	require.NoError(t, err)
	return tok
}

// ExpiredToken is signed correctly but already past its exp claim.
func (s *Server) ExpiredToken(t testing.TB, userID uuid.UUID) string {
	t.Helper()
	tok, err := tokens.IssueAccessToken([]byte(Secret), userID.String(), "x", tokens.RoleCustomer, true, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	return tok
}

// CartQuantities reads the stored cart of a guest or user directly.
func (s *Server) CartQuantities(t testing.TB, owner string) map[uuid.UUID]int {
	t.Helper()
	items, err := s.app.Repo.GetCart(context.Background(), owner)
	require.NoError(t, err)
	out := make(map[uuid.UUID]int, len(items))
	for _, it := range items {
		out[it.ProductID] = it.Quantity
	}
	return out
}

func GuestOwner(guestID string) string { return models.GuestOwner(guestID) }
func UserOwner(id uuid.UUID) string    { return models.UserOwner(id) }

func (s *Server) OrderCount(t testing.TB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.app.DB.Model(&models.Order{}).Count(&n).Error)
	return n
}

// Do sends a raw JSON request and returns the status code and decoded body.
func (s *Server) Do(t testing.TB, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}
