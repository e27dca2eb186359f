// Package checkout hands the cart to the payment-session collaborator and
// turns a paid session into an order.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/storefront/internal/apiclient"
	"github.com/Skotchmaster/storefront/internal/model"
	"github.com/Skotchmaster/storefront/internal/querycache"
	"github.com/Skotchmaster/storefront/internal/store"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

var (
	ErrEmptyCart   = errors.New("cart is empty")
	ErrNotVerified = errors.New("account not verified")
	ErrNotPaid     = errors.New("payment not confirmed")
)

type API interface {
	CreateCheckoutSession(ctx context.Context, items []model.LineItem, successURL, cancelURL string) (*model.CheckoutSession, error)
	CheckoutSession(ctx context.Context, id string) (*model.SessionDetails, error)
	CreateOrder(ctx context.Context, sessionID string) (*model.Order, error)
}

// Cart is the part of the cart synchronizer checkout depends on.
type Cart interface {
	Get(ctx context.Context) (model.Cart, error)
	Clear(ctx context.Context) (model.Cart, error)
}

// Navigator sends the user to the payment page.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

type NavigatorFunc func(ctx context.Context, url string) error

func (f NavigatorFunc) Navigate(ctx context.Context, url string) error { return f(ctx, url) }

type Initiator struct {
	api   API
	store *store.Store
	cart  Cart
	cache *querycache.Cache
	nav   Navigator

	SuccessURL string
	CancelURL  string
}

func New(api API, st *store.Store, cart Cart, cache *querycache.Cache, nav Navigator) *Initiator {
	return &Initiator{api: api, store: st, cart: cart, cache: cache, nav: nav}
}

// LineItems snapshots the cart into what the payment collaborator charges.
func LineItems(c model.Cart) []model.LineItem {
	items := make([]model.LineItem, 0, len(c.Products))
	for _, l := range c.Products {
		items = append(items, model.LineItem{
			Name:      l.Product.Name,
			UnitPrice: l.Product.Price,
			Quantity:  l.Quantity,
			Image:     l.Product.Image(),
		})
	}
	return items
}

// Start opens a payment session for the current cart and navigates to it.
// The cart is not changed.
func (i *Initiator) Start(ctx context.Context) (*model.CheckoutSession, error) {
	l := logging.FromContext(ctx).With("svc", "checkout.start")

	auth := i.store.State().Auth
	if !auth.LoggedIn() {
		return nil, fmt.Errorf("checkout: %w", apiclient.ErrNotAuthenticated)
	}
	if !auth.Verified() {
		return nil, ErrNotVerified
	}

	c, err := i.cart.Get(ctx)
	if err != nil {
		return nil, err
	}
	if c.Empty() {
		return nil, ErrEmptyCart
	}

	sess, err := i.api.CreateCheckoutSession(ctx, LineItems(c), i.SuccessURL, i.CancelURL)
	if err != nil {
		l.Warn("create_session_failed", "error", err)
		return nil, err
	}
	l.Info("session_created", "session_id", sess.ID, "lines", len(c.Products))

	if i.nav != nil {
		if err := i.nav.Navigate(ctx, sess.URL); err != nil {
			return sess, fmt.Errorf("navigate to payment: %w", err)
		}
	}
	return sess, nil
}

// Complete creates the order for a paid session and clears the cart. If
// the order exists but clearing fails, both are returned.
func (i *Initiator) Complete(ctx context.Context, sessionID string) (*model.Order, error) {
	l := logging.FromContext(ctx).With("svc", "checkout.complete", "session_id", sessionID)

	details, err := i.api.CheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !details.Paid() {
		return nil, ErrNotPaid
	}
	if len(details.LineItems) == 0 {
		return nil, ErrEmptyCart
	}

	order, err := i.api.CreateOrder(ctx, sessionID)
	if err != nil {
		l.Warn("create_order_failed", "error", err)
		return nil, err
	}
	i.cache.After(querycache.CreateOrder, order.ID)

	if _, err := i.cart.Clear(ctx); err != nil {
		l.Warn("clear_cart_failed", "order_id", order.ID, "error", err)
		return order, fmt.Errorf("order %s created, clearing cart: %w", order.ID, err)
	}
	l.Info("order_created", "order_id", order.ID)
	return order, nil
}

// Cancel abandons a session. The cart is kept so the user can retry.
func (i *Initiator) Cancel(ctx context.Context, sessionID string) (*model.SessionDetails, error) {
	details, err := i.api.CheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("checkout_cancelled", "session_id", sessionID, "paid", details.Paid())
	return details, nil
}
