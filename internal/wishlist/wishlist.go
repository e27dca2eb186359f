// Package wishlist keeps the logged-in user's saved products.
package wishlist

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/apiclient"
	"github.com/Skotchmaster/storefront/internal/model"
	"github.com/Skotchmaster/storefront/internal/querycache"
)

const cacheKey = "wishlist"

type API interface {
	Wishlist(ctx context.Context) (*apiclient.Wishlist, error)
	AddToWishlist(ctx context.Context, productID string) (*apiclient.Wishlist, error)
	RemoveFromWishlist(ctx context.Context, productID string) (*apiclient.Wishlist, error)
	ClearWishlist(ctx context.Context) (*apiclient.Wishlist, error)
}

type Wishlist struct {
	api   API
	cache *querycache.Cache
}

func New(api API, cache *querycache.Cache) *Wishlist {
	return &Wishlist{api: api, cache: cache}
}

func (w *Wishlist) Get(ctx context.Context) ([]model.Product, error) {
	return querycache.Query(ctx, w.cache, cacheKey, []querycache.Tag{querycache.Wishlist()},
		func(ctx context.Context) ([]model.Product, error) {
			res, err := w.api.Wishlist(ctx)
			if err != nil {
				return nil, err
			}
			return res.Products, nil
		})
}

func (w *Wishlist) Add(ctx context.Context, productID string) ([]model.Product, error) {
	return w.mutate(ctx, querycache.AddToWishlist, productID, func(ctx context.Context) (*apiclient.Wishlist, error) {
		return w.api.AddToWishlist(ctx, productID)
	})
}

func (w *Wishlist) Remove(ctx context.Context, productID string) ([]model.Product, error) {
	return w.mutate(ctx, querycache.RemoveFromWishlist, productID, func(ctx context.Context) (*apiclient.Wishlist, error) {
		return w.api.RemoveFromWishlist(ctx, productID)
	})
}

func (w *Wishlist) Clear(ctx context.Context) ([]model.Product, error) {
	return w.mutate(ctx, querycache.ClearWishlist, "", w.api.ClearWishlist)
}

// Contains reports whether productID is in the cached wishlist.
func (w *Wishlist) Contains(productID string) bool {
	items, _ := querycache.Peek[[]model.Product](w.cache, cacheKey)
	for _, p := range items {
		if p.ID == productID {
			return true
		}
	}
	return false
}

func (w *Wishlist) mutate(ctx context.Context, m querycache.Mutation, id string, call func(context.Context) (*apiclient.Wishlist, error)) ([]model.Product, error) {
	if _, err := call(ctx); err != nil {
		return nil, err
	}
	w.cache.After(m, id)
	return w.Get(ctx)
}
