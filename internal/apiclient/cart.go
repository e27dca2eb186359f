package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Skotchmaster/storefront/internal/model"
)

type MergeResult struct {
	Merged int        `json:"merged"`
	Cart   model.Cart `json:"cart"`
}

func (c *Client) Cart(ctx context.Context) (*model.Cart, error) {
	return c.cartCall(ctx, http.MethodGet, "/cart", nil)
}

func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) (*model.Cart, error) {
	return c.cartCall(ctx, http.MethodPost, "/cart/add", map[string]any{
		"product_id": productID,
		"quantity":   quantity,
	})
}

func (c *Client) RemoveFromCart(ctx context.Context, productID string) (*model.Cart, error) {
	return c.cartCall(ctx, http.MethodDelete, "/cart/product/"+url.PathEscape(productID), nil)
}

func (c *Client) IncreaseCartItem(ctx context.Context, productID string) (*model.Cart, error) {
	return c.cartCall(ctx, http.MethodPost, "/cart/product/"+url.PathEscape(productID)+"/increase", nil)
}

func (c *Client) DecreaseCartItem(ctx context.Context, productID string) (*model.Cart, error) {
	return c.cartCall(ctx, http.MethodPost, "/cart/product/"+url.PathEscape(productID)+"/decrease", nil)
}

func (c *Client) ClearCart(ctx context.Context) (*model.Cart, error) {
	return c.cartCall(ctx, http.MethodPost, "/cart/clearCart", nil)
}

// MergeGuestCart moves the guest cart into the logged-in user's cart.
func (c *Client) MergeGuestCart(ctx context.Context, guestID string) (*MergeResult, error) {
	var out MergeResult
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/cart/merge",
		Auth:   Bearer,
		Header: http.Header{HeaderGuestID: []string{guestID}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) cartCall(ctx context.Context, method, path string, body any) (*model.Cart, error) {
	var out model.Cart
	if err := c.Do(ctx, Request{Method: method, Path: path, Body: body, Auth: Identity}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
