package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/services/shop/internal/models"
	"github.com/Skotchmaster/storefront/services/shop/internal/service"
	"github.com/Skotchmaster/storefront/services/shop/internal/transport"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func statusResponse(o *models.Order) transport.OrderStatusResponse {
	return transport.OrderStatusResponse{
		OrderID:   o.ID,
		Status:    o.Status,
		UpdatedAt: o.UpdatedAt,
		History:   o.History,
	}
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.create")

	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.CreateOrderRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	order, created, err := h.Svc.CreateFromSession(ctx, uid, req.SessionID)
	if err != nil {
		l.Warn("create_order_error", "status", statusFor(err), "error", err)
		return httpError(err)
	}

	if created {
		return c.JSON(http.StatusCreated, order)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	orders, err := h.Svc.ListOrders(ctx, uid)
	if err != nil {
		logging.FromContext(ctx).Error("list_orders_error", "status", 500, "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) GetStatus(c echo.Context) error {
	ctx := c.Request().Context()
	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.Svc.GetOrder(ctx, id, uid, isAdmin(c))
	if err != nil {
		logging.FromContext(ctx).Warn("get_order_status_error", "status", statusFor(err), "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, statusResponse(order))
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.update_status")

	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req transport.UpdateOrderStatusRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	order, err := h.Svc.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		l.Warn("update_order_status_error", "status", statusFor(err), "error", err)
		return httpError(err)
	}

	l.Info("order_status_updated", "order_id", id, "order_status", order.Status)
	return c.JSON(http.StatusOK, statusResponse(order))
}
