// Package orders tracks the orders created by checkout.
package orders

import (
	"context"
	"errors"
	"strings"

	"github.com/Skotchmaster/storefront/internal/apiclient"
	"github.com/Skotchmaster/storefront/internal/model"
	"github.com/Skotchmaster/storefront/internal/querycache"
)

var ErrAdminRequired = errors.New("admin role required")

type API interface {
	Orders(ctx context.Context) ([]model.Order, error)
	OrderStatus(ctx context.Context, orderID string) (*model.OrderTracking, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.OrderTracking, error)
}

type Tracker struct {
	api   API
	cache *querycache.Cache
	user  func() *model.User
}

func New(api API, cache *querycache.Cache, user func() *model.User) *Tracker {
	return &Tracker{api: api, cache: cache, user: user}
}

// Status returns the tracking view of an order. Unknown ids and orders of
// other users match apiclient.ErrNotFound.
func (t *Tracker) Status(ctx context.Context, orderID string) (model.OrderTracking, error) {
	orderID = strings.TrimSpace(orderID)
	return querycache.Query(ctx, t.cache, "order/"+orderID, []querycache.Tag{querycache.Order(orderID)},
		func(ctx context.Context) (model.OrderTracking, error) {
			tr, err := t.api.OrderStatus(ctx, orderID)
			if err != nil {
				return model.OrderTracking{}, err
			}
			return *tr, nil
		})
}

func (t *Tracker) List(ctx context.Context) ([]model.Order, error) {
	return querycache.Query(ctx, t.cache, "orders", []querycache.Tag{querycache.OrderList()},
		t.api.Orders)
}

// Advance moves an order to status. Only admins may call it.
func (t *Tracker) Advance(ctx context.Context, orderID string, status model.OrderStatus) (model.OrderTracking, error) {
	if !t.user().IsAdmin() {
		return model.OrderTracking{}, ErrAdminRequired
	}
	tr, err := t.api.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return model.OrderTracking{}, err
	}
	t.cache.After(querycache.UpdateOrderStatus, orderID)
	return *tr, nil
}

// Next is the status that follows s, or "" once delivered.
func Next(s model.OrderStatus) model.OrderStatus {
	switch s {
	case model.OrderProcessing:
		return model.OrderShipped
	case model.OrderShipped:
		return model.OrderOutForDelivery
	case model.OrderOutForDelivery:
		return model.OrderDelivered
	default:
		return ""
	}
}

var _ API = (*apiclient.Client)(nil)
