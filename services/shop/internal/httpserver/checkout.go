package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/services/shop/internal/models"
	"github.com/Skotchmaster/storefront/services/shop/internal/service"
	"github.com/Skotchmaster/storefront/services/shop/internal/transport"
)

type CheckoutHTTP struct {
	Svc *service.CheckoutService
}

func (h *CheckoutHTTP) sessionResponse(s *models.CheckoutSession) transport.SessionResponse {
	return transport.SessionResponse{
		ID:            s.ID,
		Status:        s.Status,
		PaymentStatus: s.PaymentStatus,
		Currency:      s.Currency,
		AmountTotal:   s.AmountTotal,
		LineItems:     s.LineItems,
		URL:           h.Svc.PaymentURL(s),
	}
}

func (h *CheckoutHTTP) CreateSession(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.create_session")

	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.CreateSessionRequest
	if err := bindValid(c, &req); err != nil {
		l.Warn("create_session_error", "status", 400, "error", err)
		return err
	}

	sess, err := h.Svc.CreateSession(ctx, uid, isVerified(c), req)
	if err != nil {
		l.Warn("create_session_error", "status", statusFor(err), "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.CreateSessionResponse{ID: sess.ID, URL: h.Svc.PaymentURL(sess)})
}

func (h *CheckoutHTTP) GetSession(c echo.Context) error {
	ctx := c.Request().Context()
	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	sess, err := h.Svc.GetSession(ctx, id, uid)
	if err != nil {
		logging.FromContext(ctx).Warn("get_session_error", "status", statusFor(err), "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, h.sessionResponse(sess))
}

func (h *CheckoutHTTP) Pay(c echo.Context) error {
	ctx := c.Request().Context()
	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	sess, err := h.Svc.Pay(ctx, id, uid)
	if err != nil {
		logging.FromContext(ctx).Warn("pay_session_error", "status", statusFor(err), "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, h.sessionResponse(sess))
}
