package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	HeaderGuestID = "X-Guest-ID"

	CtxUserID   = "user_id"
	CtxUsername = "username"
	CtxRole     = "role"
	CtxVerified = "verified"
	CtxGuestID  = "guest_id"
)

// BearerAuth validates HS256 access tokens from the Authorization header.
// A missing token is 401, a token that fails validation is 403.
type BearerAuth struct {
	JWTSecret []byte
}

func NewBearerAuth(secret []byte) *BearerAuth {
	return &BearerAuth{JWTSecret: secret}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

func (m *BearerAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *BearerAuth) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(claims *tokens.AccessClaims) error {
		if !claims.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

// Identify accepts either a bearer token or a guest id header. A request
// carrying a bad token is still rejected with 403.
func (m *BearerAuth) Identify(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, ok := bearerToken(c)
		if !ok {
			guestID := strings.TrimSpace(c.Request().Header.Get(HeaderGuestID))
			if guestID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "bearer token or guest id required")
			}
			c.Set(CtxGuestID, guestID)
			return next(c)
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil {
			return echo.NewHTTPError(http.StatusForbidden, "invalid or expired token")
		}
		setUserContext(c, claims)
		if guestID := strings.TrimSpace(c.Request().Header.Get(HeaderGuestID)); guestID != "" {
			c.Set(CtxGuestID, guestID)
		}
		return next(c)
	}
}

func (m *BearerAuth) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, ok := bearerToken(c)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil {
			return echo.NewHTTPError(http.StatusForbidden, "invalid or expired token")
		}

		if validator != nil {
			if validationErr := validator(claims); validationErr != nil {
				return validationErr
			}
		}

		setUserContext(c, claims)
		return next(c)
	}
}

func bearerToken(c echo.Context) (string, bool) {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if h == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(CtxUserID, claims.Subject)
	c.Set(CtxUsername, claims.Username)
	c.Set(CtxRole, claims.Role)
	c.Set(CtxVerified, claims.Verified)
}
