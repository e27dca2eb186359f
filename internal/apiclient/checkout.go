package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Skotchmaster/storefront/internal/model"
)

type sessionBody struct {
	Items      []model.LineItem `json:"items"`
	SuccessURL string           `json:"success_url,omitempty"`
	CancelURL  string           `json:"cancel_url,omitempty"`
}

func (c *Client) CreateCheckoutSession(ctx context.Context, items []model.LineItem, successURL, cancelURL string) (*model.CheckoutSession, error) {
	var out model.CheckoutSession
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/checkout/create-checkout-session",
		Body:   sessionBody{Items: items, SuccessURL: successURL, CancelURL: cancelURL},
		Auth:   Bearer,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CheckoutSession(ctx context.Context, id string) (*model.SessionDetails, error) {
	return c.sessionCall(ctx, http.MethodGet, "/checkout/session/"+url.PathEscape(id))
}

// PaySession settles a session on the built-in payment simulator.
func (c *Client) PaySession(ctx context.Context, id string) (*model.SessionDetails, error) {
	return c.sessionCall(ctx, http.MethodPost, "/checkout/session/"+url.PathEscape(id)+"/pay")
}

func (c *Client) sessionCall(ctx context.Context, method, path string) (*model.SessionDetails, error) {
	var out model.SessionDetails
	if err := c.Do(ctx, Request{Method: method, Path: path, Auth: Bearer}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
