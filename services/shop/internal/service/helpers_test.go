package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/services/shop/internal/events"
	"github.com/Skotchmaster/storefront/services/shop/internal/models"
	"github.com/Skotchmaster/storefront/services/shop/internal/repo"
	"github.com/Skotchmaster/storefront/services/shop/internal/search"
	"github.com/Skotchmaster/storefront/services/shop/internal/transport"
)

type testEnv struct {
	Repo     *repo.GormRepo
	Events   *events.Recorder
	Auth     *AuthService
	Catalog  *CatalogService
	Cart     *CartService
	Wishlist *WishlistService
	Checkout *CheckoutService
	Orders   *OrderService
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
	return &testEnv{
		Repo:     r,
		Events:   rec,
		Auth:     &AuthService{Repo: r, Events: rec, JWTSecret: []byte("test-secret"), TokenTTL: time.Hour},
		Catalog:  &CatalogService{Repo: r, Events: rec, Index: search.SQLIndex{Repo: r}},
		Cart:     &CartService{Repo: r, Events: rec},
		Wishlist: &WishlistService{Repo: r},
		Checkout: &CheckoutService{Repo: r, PublicURL: "http://shop.test"},
		Orders:   &OrderService{Repo: r, Events: rec},
	}
}

func (env *testEnv) product(t *testing.T, name, price string) *models.Product {
	t.Helper()
	p, err := env.Catalog.CreateProduct(context.Background(), transport.CreateProductRequest{
		Name:     name,
		Category: "lighting",
		Price:    decimal.RequireFromString(price),
		Stock:    10,
		Images:   []string{"https://img.test/" + name + ".png"},
	})
	require.NoError(t, err)
	return p
}

func quantities(items []models.CartItem) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(items))
	for _, it := range items {
		out[it.ProductID] = it.Quantity
	}
	return out
}
