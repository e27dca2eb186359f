package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/services/shop/internal/config"
	"github.com/Skotchmaster/storefront/services/shop/internal/events"
	"github.com/Skotchmaster/storefront/services/shop/internal/httpserver"
	"github.com/Skotchmaster/storefront/services/shop/internal/repo"
	"github.com/Skotchmaster/storefront/services/shop/internal/search"
	"github.com/Skotchmaster/storefront/services/shop/internal/service"
)

// App is the fully wired shop backend.
type App struct {
	Echo   *echo.Echo
	DB     *gorm.DB
	Repo   *repo.GormRepo
	Events events.Publisher
	Index  search.Index
}

type Option func(*App)

func WithPublisher(p events.Publisher) Option {
	return func(a *App) { a.Events = p }
}

func WithIndex(i search.Index) Option {
	return func(a *App) { a.Index = i }
}

func WithDB(gdb *gorm.DB) Option {
	return func(a *App) { a.DB = gdb }
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	a := &App{}
	for _, o := range opts {
		o(a)
	}

	if a.DB == nil {
		gdb, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db init: %w", err)
		}
		a.DB = gdb
	}
	a.Repo = &repo.GormRepo{DB: a.DB}
	if err := a.Repo.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if a.Events == nil {
		if len(cfg.KafkaBrokers) > 0 {
			a.Events = events.NewKafkaPublisher(cfg.KafkaBrokers)
		} else {
			logger.Info("kafka_disabled", "reason", "KAFKA_BROKERS not set")
			a.Events = events.NopPublisher{}
		}
	}

	if a.Index == nil {
		a.Index = search.SQLIndex{Repo: a.Repo}
		if cfg.Elastic.URL != "" {
			es, err := search.NewElastic(ctx, cfg.Elastic)
			if err != nil {
				logger.Warn("elasticsearch_unavailable", "error", err)
			} else {
				a.Index = es
			}
		}
	}

	a.Echo = httpserver.New(&httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{
			Svc:        &service.AuthService{Repo: a.Repo, Events: a.Events, JWTSecret: cfg.JWTSecret, TokenTTL: cfg.TokenTTL},
			ExposeCode: cfg.DevMode,
		},
		ProductHandler:  &httpserver.ProductHTTP{Svc: &service.CatalogService{Repo: a.Repo, Events: a.Events, Index: a.Index}},
		CartHandler:     &httpserver.CartHTTP{Svc: &service.CartService{Repo: a.Repo, Events: a.Events}},
		WishlistHandler: &httpserver.WishlistHTTP{Svc: &service.WishlistService{Repo: a.Repo}},
		CheckoutHandler: &httpserver.CheckoutHTTP{Svc: &service.CheckoutService{Repo: a.Repo, PublicURL: cfg.PublicURL, Currency: cfg.Currency}},
		OrderHandler:    &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: a.Repo, Events: a.Events}},
		JWTSecret:       cfg.JWTSecret,
		Logger:          logger,
		RateLimit:       cfg.RateLimit,
		RateBurst:       cfg.RateBurst,
	})

	return a, nil
}

func (a *App) Close() error {
	return errors.Join(a.Events.Close(), db.Close(a.DB))
}
