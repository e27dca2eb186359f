package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
)

type Deps struct {
	AuthHandler     *AuthHTTP
	ProductHandler  *ProductHTTP
	CartHandler     *CartHTTP
	WishlistHandler *WishlistHTTP
	CheckoutHandler *CheckoutHTTP
	OrderHandler    *OrderHTTP
	JWTSecret       []byte
	Logger          *slog.Logger

	// RateLimit is requests per second per client IP; zero disables it.
	RateLimit float64
	RateBurst int
}

func New(d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newValidator()

	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Use(echomw.Recover())
	e.Use(loggingmw.RequestLogger(d.Logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, middleware.HeaderGuestID},
	}))
	if d.RateLimit > 0 {
		e.Use(rateLimiter(d.RateLimit, d.RateBurst))
	}

	Register(e, d)
	return e
}

func rateLimiter(rps float64, burst int) echo.MiddlewareFunc {
	if burst < 1 {
		burst = int(rps) * 2
	}
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(rps),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		},
	})
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authMW := middleware.NewBearerAuth(d.JWTSecret)

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/verify-user", d.AuthHandler.Verify, authMW.RequireAuth)

	products := e.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/search", d.ProductHandler.Search)
	products.GET("/:id", d.ProductHandler.GetProduct)

	products.POST("", d.ProductHandler.CreateProduct, authMW.RequireAdmin)
	products.PATCH("/:id", d.ProductHandler.PatchProduct, authMW.RequireAdmin)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct, authMW.RequireAdmin)
	products.DELETE("/:id/images", d.ProductHandler.DeleteImage, authMW.RequireAdmin)

	cart := e.Group("/cart", authMW.Identify)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("/add", d.CartHandler.AddToCart)
	cart.DELETE("/product/:id", d.CartHandler.Remove())
	cart.POST("/product/:id/increase", d.CartHandler.Increase())
	cart.POST("/product/:id/decrease", d.CartHandler.Decrease())
	cart.POST("/clearCart", d.CartHandler.ClearCart)
	cart.POST("/merge", d.CartHandler.MergeCart, authMW.RequireAuth)

	wishlist := e.Group("/wishlist", authMW.RequireAuth)
	wishlist.GET("", d.WishlistHandler.Get)
	wishlist.POST("", d.WishlistHandler.Add)
	wishlist.DELETE("/:id", d.WishlistHandler.Remove)
	wishlist.DELETE("", d.WishlistHandler.Clear)

	checkout := e.Group("/checkout", authMW.RequireAuth)
	checkout.POST("/create-checkout-session", d.CheckoutHandler.CreateSession)
	checkout.GET("/session/:id", d.CheckoutHandler.GetSession)
	checkout.POST("/session/:id/pay", d.CheckoutHandler.Pay)

	orders := e.Group("/orders", authMW.RequireAuth)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.GET("/:id/status", d.OrderHandler.GetStatus)
	orders.PATCH("/:id/status", d.OrderHandler.UpdateStatus, authMW.RequireAdmin)
}
