package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/services/shop/internal/models"
	"github.com/Skotchmaster/storefront/services/shop/internal/service"
)

var errNoIdentity = errors.New("no identity")

// statusFor maps service sentinels to HTTP codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotVerified):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func httpError(err error) *echo.HTTPError {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		return echo.NewHTTPError(code, "internal error").SetInternal(err)
	}
	return echo.NewHTTPError(code, err.Error())
}

func userID(c echo.Context) (uuid.UUID, error) {
	s, ok := c.Get(middleware.CtxUserID).(string)
	if !ok || s == "" {
		return uuid.Nil, errNoIdentity
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errNoIdentity
	}
	return id, nil
}

func isAdmin(c echo.Context) bool {
	role, _ := c.Get(middleware.CtxRole).(string)
	return role == models.RoleAdmin
}

func isVerified(c echo.Context) bool {
	v, _ := c.Get(middleware.CtxVerified).(bool)
	return v
}

// cartOwner prefers the authenticated user over the guest id.
func cartOwner(c echo.Context) (string, error) {
	if id, err := userID(c); err == nil {
		return models.UserOwner(id), nil
	}
	if g, ok := c.Get(middleware.CtxGuestID).(string); ok && g != "" {
		return models.GuestOwner(g), nil
	}
	return "", errNoIdentity
}

func paramUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
