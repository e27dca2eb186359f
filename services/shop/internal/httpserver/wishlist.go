package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/services/shop/internal/service"
	"github.com/Skotchmaster/storefront/services/shop/internal/transport"
)

type WishlistHTTP struct {
	Svc *service.WishlistService
}

func (h *WishlistHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	items, err := h.Svc.Get(ctx, uid)
	if err != nil {
		logging.FromContext(ctx).Error("get_wishlist_error", "status", 500, "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.WishlistResponse{Products: items})
}

func (h *WishlistHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.WishlistRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	items, err := h.Svc.Add(ctx, uid, req.ProductID)
	if err != nil {
		logging.FromContext(ctx).Warn("add_wishlist_error", "status", statusFor(err), "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, transport.WishlistResponse{Products: items})
}

func (h *WishlistHTTP) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	productID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	items, err := h.Svc.Remove(ctx, uid, productID)
	if err != nil {
		logging.FromContext(ctx).Warn("remove_wishlist_error", "status", statusFor(err), "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.WishlistResponse{Products: items})
}

func (h *WishlistHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if err := h.Svc.Clear(ctx, uid); err != nil {
		logging.FromContext(ctx).Error("clear_wishlist_error", "status", 500, "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.WishlistResponse{Products: nil})
}
