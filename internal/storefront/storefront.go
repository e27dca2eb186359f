// Package storefront wires the client components around one store, one
// query cache and one API client.
package storefront

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Skotchmaster/storefront/internal/apiclient"
	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/checkout"
	"github.com/Skotchmaster/storefront/internal/model"
	"github.com/Skotchmaster/storefront/internal/orders"
	"github.com/Skotchmaster/storefront/internal/persist"
	"github.com/Skotchmaster/storefront/internal/querycache"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/store"
	"github.com/Skotchmaster/storefront/internal/wishlist"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type Storefront struct {
	API   *apiclient.Client
	Store *store.Store
	Cache *querycache.Cache

	Session  *session.Handler
	Catalog  *catalog.Catalog
	Cart     *cart.Synchronizer
	Checkout *checkout.Initiator
	Orders   *orders.Tracker
	Wishlist *wishlist.Wishlist

	persister *persist.GormStore
}

type Option func(*options)

type options struct {
	nav       checkout.Navigator
	apiOpts   []apiclient.Option
	noPersist bool
}

func WithNavigator(n checkout.Navigator) Option {
	return func(o *options) { o.nav = n }
}

func WithAPIOptions(opts ...apiclient.Option) Option {
	return func(o *options) { o.apiOpts = append(o.apiOpts, opts...) }
}

// InMemory keeps the state for the life of the process only.
func InMemory() Option {
	return func(o *options) { o.noPersist = true }
}

func New(ctx context.Context, cfg *Config, opts ...Option) (*Storefront, error) {
	var o options
	for _, fn := range opts {
		fn(&o)
	}

	sf := &Storefront{Cache: querycache.New()}

	var p store.Persister
	if !o.noPersist && cfg.StatePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.StatePath), 0o700); err != nil {
			return nil, fmt.Errorf("state dir: %w", err)
		}
		g, err := persist.Open(ctx, cfg.StatePath)
		if err != nil {
			return nil, fmt.Errorf("open state: %w", err)
		}
		sf.persister = g
		p = g
	}
	sf.Store = store.Open(ctx, p)

	apiOpts := append([]apiclient.Option{apiclient.WithTimeout(cfg.HTTPTimeout)}, o.apiOpts...)
	sf.API = apiclient.New(cfg.APIURL, apiOpts...)
	sf.API.SetCredentials(sf.Store)

	currentUser := func() *model.User { return sf.Store.State().Auth.User }

	sf.Session = session.New(sf.API, sf.Store, sf.Cache, cfg.MergePolicy)
	sf.Catalog = catalog.New(sf.API, sf.Cache, currentUser)
	sf.Cart = cart.New(sf.API, sf.Cache, sf.Store, cfg.TaxRate)
	sf.Checkout = checkout.New(sf.API, sf.Store, sf.Cart, sf.Cache, o.nav)
	sf.Checkout.SuccessURL = cfg.SuccessURL
	sf.Checkout.CancelURL = cfg.CancelURL
	sf.Orders = orders.New(sf.API, sf.Cache, currentUser)
	sf.Wishlist = wishlist.New(sf.API, sf.Cache)

	l := logging.FromContext(ctx)
	sf.API.OnForbidden(func(token string) {
		sf.Session.ForceLogout(logging.IntoContext(context.Background(), l), token)
	})
	sf.Session.Bootstrap(ctx)
	return sf, nil
}

func (sf *Storefront) Close() error {
	if sf.persister == nil {
		return nil
	}
	return sf.persister.Close()
}
