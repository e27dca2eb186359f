package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Skotchmaster/storefront/internal/model"
)

// CreateOrder turns a paid session into an order. Repeating the call for
// the same session returns the existing order.
func (c *Client) CreateOrder(ctx context.Context, sessionID string) (*model.Order, error) {
	var out model.Order
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/orders",
		Body:   map[string]string{"session_id": sessionID},
		Auth:   Bearer,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Orders(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/orders", Auth: Bearer}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) OrderStatus(ctx context.Context, orderID string) (*model.OrderTracking, error) {
	var out model.OrderTracking
	err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/orders/" + url.PathEscape(orderID) + "/status", Auth: Bearer}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.OrderTracking, error) {
	var out model.OrderTracking
	err := c.Do(ctx, Request{
		Method: http.MethodPatch,
		Path:   "/orders/" + url.PathEscape(orderID) + "/status",
		Body:   map[string]string{"status": string(status)},
		Auth:   Bearer,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
