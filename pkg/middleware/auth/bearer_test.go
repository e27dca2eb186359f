package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/tokens"
)

var secret = []byte("test-secret")

func issue(t *testing.T, role string, exp time.Time) string {
	t.Helper()
	tok, err := tokens.IssueAccessToken(secret, "user-1", "alice", role, true, exp)
	require.NoError(t, err)
	return tok
}

func run(t *testing.T, mw echo.MiddlewareFunc, headers map[string]string) (int, echo.Context) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c)
	if err != nil {
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		return he.Code, c
	}
	return rec.Code, c
}

func TestBearerAuth_RequireAuth(t *testing.T) {
	t.Parallel()

	m := NewBearerAuth(secret)
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "invalid", header: "Bearer garbage", want: http.StatusForbidden},
		{name: "expired", header: "Bearer " + issue(t, tokens.RoleCustomer, time.Now().Add(-time.Minute)), want: http.StatusForbidden},
		{name: "valid", header: "Bearer " + issue(t, tokens.RoleCustomer, time.Now().Add(time.Minute)), want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			headers := map[string]string{}
			if tt.header != "" {
				headers[echo.HeaderAuthorization] = tt.header
			}
			code, _ := run(t, m.RequireAuth, headers)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestBearerAuth_RequireAdmin(t *testing.T) {
	t.Parallel()

	m := NewBearerAuth(secret)
	code, _ := run(t, m.RequireAdmin, map[string]string{
		echo.HeaderAuthorization: "Bearer " + issue(t, tokens.RoleCustomer, time.Now().Add(time.Minute)),
	})
	assert.Equal(t, http.StatusForbidden, code)

	code, c := run(t, m.RequireAdmin, map[string]string{
		echo.HeaderAuthorization: "Bearer " + issue(t, tokens.RoleAdmin, time.Now().Add(time.Minute)),
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "user-1", c.Get(CtxUserID))
	assert.Equal(t, tokens.RoleAdmin, c.Get(CtxRole))
}

func TestBearerAuth_Identify(t *testing.T) {
	t.Parallel()

	m := NewBearerAuth(secret)

	code, _ := run(t, m.Identify, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, c := run(t, m.Identify, map[string]string{HeaderGuestID: "guest-1"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "guest-1", c.Get(CtxGuestID))
	assert.Nil(t, c.Get(CtxUserID))

	code, _ = run(t, m.Identify, map[string]string{
		echo.HeaderAuthorization: "Bearer garbage",
		HeaderGuestID:            "guest-1",
	})
	assert.Equal(t, http.StatusForbidden, code)

	code, c = run(t, m.Identify, map[string]string{
		echo.HeaderAuthorization: "Bearer " + issue(t, tokens.RoleCustomer, time.Now().Add(time.Minute)),
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "user-1", c.Get(CtxUserID))
	assert.Equal(t, true, c.Get(CtxVerified))
}
