package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/services/shop/internal/models"
	"github.com/Skotchmaster/storefront/services/shop/internal/service"
	"github.com/Skotchmaster/storefront/services/shop/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func cartResponse(c echo.Context, items []models.CartItem) transport.CartResponse {
	resp := transport.CartResponse{Products: make([]transport.CartLine, 0, len(items))}
	if _, err := userID(c); err != nil {
		resp.GuestID, _ = c.Get(middleware.CtxGuestID).(string)
	}
	for _, it := range items {
		resp.Products = append(resp.Products, transport.CartLine{Product: it.Product, Quantity: it.Quantity})
	}
	return resp
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	owner, err := cartOwner(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	items, err := h.Svc.GetCart(ctx, owner)
	if err != nil {
		l.Error("get_cart_error", "status", 500, "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cartResponse(c, items))
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	owner, err := cartOwner(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.AddToCartRequest
	if err := bindValid(c, &req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "error", err)
		return err
	}

	items, err := h.Svc.AddToCart(ctx, owner, req.ProductID, req.Quantity)
	if err != nil {
		l.Warn("add_to_cart_error", "status", statusFor(err), "error", err)
		return httpError(err)
	}

	l.Info("item_added_to_cart", "product_id", req.ProductID, "quantity", req.Quantity)
	return c.JSON(http.StatusCreated, cartResponse(c, items))
}

func (h *CartHTTP) lineHandler(name string, op func(c echo.Context, owner string, productID uuid.UUID) ([]models.CartItem, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("handler", "cart."+name)

		owner, err := cartOwner(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		productID, err := paramUUID(c, "id")
		if err != nil {
			return err
		}

		items, err := op(c, owner, productID)
		if err != nil {
			l.Warn(name+"_error", "status", statusFor(err), "error", err)
			return httpError(err)
		}
		return c.JSON(http.StatusOK, cartResponse(c, items))
	}
}

func (h *CartHTTP) Remove() echo.HandlerFunc {
	return h.lineHandler("remove", func(c echo.Context, owner string, id uuid.UUID) ([]models.CartItem, error) {
		return h.Svc.Remove(c.Request().Context(), owner, id)
	})
}

func (h *CartHTTP) Increase() echo.HandlerFunc {
	return h.lineHandler("increase", func(c echo.Context, owner string, id uuid.UUID) ([]models.CartItem, error) {
		return h.Svc.Increase(c.Request().Context(), owner, id)
	})
}

func (h *CartHTTP) Decrease() echo.HandlerFunc {
	return h.lineHandler("decrease", func(c echo.Context, owner string, id uuid.UUID) ([]models.CartItem, error) {
		return h.Svc.Decrease(c.Request().Context(), owner, id)
	})
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	owner, err := cartOwner(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if err := h.Svc.Clear(ctx, owner); err != nil {
		l.Error("clear_cart_error", "status", 500, "error", err)
		return httpError(err)
	}

	l.Info("cart_cleared")
	return c.JSON(http.StatusOK, cartResponse(c, nil))
}

// MergeCart requires a bearer token plus the X-Guest-ID of the cart to fold in.
func (h *CartHTTP) MergeCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.merge")

	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	guestID, _ := c.Get(middleware.CtxGuestID).(string)
	if guestID == "" {
		guestID = c.Request().Header.Get(middleware.HeaderGuestID)
	}

	moved, items, err := h.Svc.Merge(ctx, guestID, uid)
	if err != nil {
		l.Warn("merge_cart_error", "status", statusFor(err), "error", err)
		return httpError(err)
	}

	l.Info("cart_merged", "lines", moved)
	return c.JSON(http.StatusOK, transport.MergeCartResponse{Merged: moved, Cart: cartResponse(c, items)})
}
