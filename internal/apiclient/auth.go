package apiclient

import (
	"context"
	"net/http"
	"time"

	"github.com/Skotchmaster/storefront/internal/model"
)

type Session struct {
	AccessToken string     `json:"access_token"`
	ExpiresAt   time.Time  `json:"expires_at"`
	User        model.User `json:"user"`
}

type Registration struct {
	User model.User `json:"user"`
	// VerificationCode is only returned by servers running in dev mode.
	VerificationCode string `json:"verification_code,omitempty"`
}

type credentialsBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	var out Session
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   credentialsBody{Username: username, Password: password},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, username, password string) (*Registration, error) {
	var out Registration
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Body:   credentialsBody{Username: username, Password: password},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Verify confirms the account and returns a fresh session whose token
// carries the verified claim.
func (c *Client) Verify(ctx context.Context, code string) (*Session, error) {
	var out Session
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/verify-user",
		Body:   map[string]string{"code": code},
		Auth:   Bearer,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
