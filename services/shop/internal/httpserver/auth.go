package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/services/shop/internal/models"
	"github.com/Skotchmaster/storefront/services/shop/internal/service"
	"github.com/Skotchmaster/storefront/services/shop/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
	// ExposeCode returns the verification code in the register response.
	ExposeCode bool
}

func userDTO(u *models.User) transport.UserDTO {
	return transport.UserDTO{ID: u.ID, Username: u.Username, Role: u.Role, Verified: u.Verified}
}

func loginResponse(res *service.LoginResult) transport.LoginResponse {
	return transport.LoginResponse{
		AccessToken: res.AccessToken,
		ExpiresAt:   res.ExpiresAt,
		User:        userDTO(res.User),
	}
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.Credentials
	if err := bindValid(c, &req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return err
	}

	user, code, err := h.Svc.Register(ctx, req.Username, req.Password)
	if err != nil {
		l.Warn("register_error", "status", statusFor(err), "error", err)
		return httpError(err)
	}

	resp := transport.RegisterResponse{User: userDTO(user)}
	if h.ExposeCode {
		resp.VerificationCode = code
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.Credentials
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		l.Warn("login_failed", "status", statusFor(err), "error", err)
		return httpError(err)
	}

	l.Info("login_successful", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, loginResponse(res))
}

func (h *AuthHTTP) Verify(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.verify")

	id, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.VerifyRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	res, err := h.Svc.Verify(ctx, id, req.Code)
	if err != nil {
		l.Warn("verify_failed", "status", statusFor(err), "error", err)
		return httpError(err)
	}

	l.Info("user_verified", "user_id", id)
	return c.JSON(http.StatusOK, loginResponse(res))
}
