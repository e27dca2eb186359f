// Package cart keeps the client's copy of the cart in step with the
// server. Mutations never touch local state directly: a successful call
// invalidates the Cart tag and the cart is read back from the server.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/apiclient"
	"github.com/Skotchmaster/storefront/internal/model"
	"github.com/Skotchmaster/storefront/internal/querycache"
	"github.com/Skotchmaster/storefront/internal/store"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const cacheKey = "cart"

// ErrRefreshFailed marks a mutation the server applied whose cart could
// not be read back. The cached cart stays stale until the next Get.
var ErrRefreshFailed = errors.New("cart changed but could not be reloaded")

type API interface {
	Cart(ctx context.Context) (*model.Cart, error)
	AddToCart(ctx context.Context, productID string, quantity int) (*model.Cart, error)
	RemoveFromCart(ctx context.Context, productID string) (*model.Cart, error)
	IncreaseCartItem(ctx context.Context, productID string) (*model.Cart, error)
	DecreaseCartItem(ctx context.Context, productID string) (*model.Cart, error)
	ClearCart(ctx context.Context) (*model.Cart, error)
}

type Synchronizer struct {
	api     API
	cache   *querycache.Cache
	store   *store.Store
	taxRate decimal.Decimal
}

func New(api API, cache *querycache.Cache, st *store.Store, taxRate decimal.Decimal) *Synchronizer {
	return &Synchronizer{api: api, cache: cache, store: st, taxRate: taxRate}
}

// Get returns the server cart, fetching it when the cached copy is stale,
// and mirrors it into the store.
func (s *Synchronizer) Get(ctx context.Context) (model.Cart, error) {
	c, err := querycache.Query(ctx, s.cache, cacheKey, []querycache.Tag{querycache.Cart()},
		func(ctx context.Context) (model.Cart, error) {
			c, err := s.api.Cart(ctx)
			if err != nil {
				return model.Cart{}, err
			}
			return *c, nil
		})
	if err != nil {
		return model.Cart{}, err
	}
	s.store.Dispatch(ctx, store.CartLoaded{Cart: c})
	return c, nil
}

func (s *Synchronizer) Add(ctx context.Context, productID string, quantity int) (model.Cart, error) {
	if quantity < 1 {
		return model.Cart{}, fmt.Errorf("quantity %d: %w", quantity, apiclient.ErrValidation)
	}
	return s.mutate(ctx, querycache.AddToCart, productID, func(ctx context.Context) (*model.Cart, error) {
		return s.api.AddToCart(ctx, productID, quantity)
	})
}

func (s *Synchronizer) Remove(ctx context.Context, productID string) (model.Cart, error) {
	return s.mutate(ctx, querycache.RemoveFromCart, productID, func(ctx context.Context) (*model.Cart, error) {
		return s.api.RemoveFromCart(ctx, productID)
	})
}

func (s *Synchronizer) Increase(ctx context.Context, productID string) (model.Cart, error) {
	return s.mutate(ctx, querycache.IncreaseItem, productID, func(ctx context.Context) (*model.Cart, error) {
		return s.api.IncreaseCartItem(ctx, productID)
	})
}

// Decrease at quantity 1 removes the line.
func (s *Synchronizer) Decrease(ctx context.Context, productID string) (model.Cart, error) {
	return s.mutate(ctx, querycache.DecreaseItem, productID, func(ctx context.Context) (*model.Cart, error) {
		return s.api.DecreaseCartItem(ctx, productID)
	})
}

func (s *Synchronizer) Clear(ctx context.Context) (model.Cart, error) {
	return s.mutate(ctx, querycache.ClearCart, "", func(ctx context.Context) (*model.Cart, error) {
		return s.api.ClearCart(ctx)
	})
}

// Totals prices the cart held in the store for display.
func (s *Synchronizer) Totals() model.Totals {
	return s.store.State().CartView().Totals(s.taxRate)
}

func (s *Synchronizer) mutate(ctx context.Context, m querycache.Mutation, productID string, call func(context.Context) (*model.Cart, error)) (model.Cart, error) {
	l := logging.FromContext(ctx).With("svc", "cart."+string(m))

	if _, err := call(ctx); err != nil {
		l.Warn("cart_mutation_failed", "product_id", productID, "error", err)
		return model.Cart{}, err
	}
	s.cache.After(m, productID)
	c, err := s.Get(ctx)
	if err != nil {
		l.Warn("cart_refresh_failed", "product_id", productID, "error", err)
		return model.Cart{}, fmt.Errorf("%s applied: %w", m, errors.Join(ErrRefreshFailed, err))
	}
	return c, nil
}
