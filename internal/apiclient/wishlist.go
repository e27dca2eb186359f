package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Skotchmaster/storefront/internal/model"
)

type Wishlist struct {
	Products []model.Product `json:"products"`
}

func (c *Client) Wishlist(ctx context.Context) (*Wishlist, error) {
	return c.wishlistCall(ctx, http.MethodGet, "/wishlist", nil)
}

func (c *Client) AddToWishlist(ctx context.Context, productID string) (*Wishlist, error) {
	return c.wishlistCall(ctx, http.MethodPost, "/wishlist", map[string]string{"product_id": productID})
}

func (c *Client) RemoveFromWishlist(ctx context.Context, productID string) (*Wishlist, error) {
	return c.wishlistCall(ctx, http.MethodDelete, "/wishlist/"+url.PathEscape(productID), nil)
}

func (c *Client) ClearWishlist(ctx context.Context) (*Wishlist, error) {
	return c.wishlistCall(ctx, http.MethodDelete, "/wishlist", nil)
}

func (c *Client) wishlistCall(ctx context.Context, method, path string, body any) (*Wishlist, error) {
	var out Wishlist
	if err := c.Do(ctx, Request{Method: method, Path: path, Body: body, Auth: Bearer}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
