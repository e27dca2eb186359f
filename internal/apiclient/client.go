package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const HeaderGuestID = "X-Guest-ID"

// Auth says which identity a request carries.
type Auth int

const (
	// Public requests carry no identity.
	Public Auth = iota
	// Bearer requests require a live token and are refused locally without one.
	Bearer
	// Identity requests carry the token when logged in and the guest id otherwise.
	Identity
)

// Credentials is read on every request so the client always sends the
// identity currently held by the store.
type Credentials interface {
	AccessToken() string
	GuestID() string
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time

	mu          sync.RWMutex
	creds       Credentials
	onForbidden func(token string)
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		now: time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) SetCredentials(creds Credentials) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creds = creds
}

// OnForbidden registers the hook fired with the offending token when the
// server answers 403 or a held token is found expired.
func (c *Client) OnForbidden(fn func(token string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onForbidden = fn
}

func (c *Client) identity() (string, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.creds == nil {
		return "", ""
	}
	return c.creds.AccessToken(), c.creds.GuestID()
}

func (c *Client) forbidden(token string) {
	c.mu.RLock()
	fn := c.onForbidden
	c.mu.RUnlock()
	if fn != nil && token != "" {
		fn(token)
	}
}

type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Auth   Auth
	// Header adds extra request headers.
	Header http.Header
}

func (c *Client) Do(ctx context.Context, r Request, out any) error {
	l := logging.FromContext(ctx).With("client", "api", "method", r.Method, "path", r.Path)
	fail := func(kind error, msg string, cause error) *Error {
		return &Error{Kind: kind, Method: r.Method, Path: r.Path, Message: msg, Err: cause}
	}

	token, guestID := c.identity()
	if token != "" && tokens.Expired(token, c.now()) {
		if r.Auth != Public {
			l.Info("session_expired")
			c.forbidden(token)
			return fail(ErrNotAuthenticated, "session expired", nil)
		}
	}

	var sentToken string
	switch r.Auth {
	case Bearer:
		if token == "" {
			return fail(ErrNotAuthenticated, "login required", nil)
		}
		sentToken = token
	case Identity:
		if token == "" && guestID == "" {
			return fail(ErrNotAuthenticated, "no guest id or token", nil)
		}
		sentToken = token
	}

	var body io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return fail(ErrValidation, "encode body", err)
		}
		body = bytes.NewReader(data)
	}

	target := c.baseURL + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return fail(ErrTransport, "create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if sentToken != "" {
		req.Header.Set("Authorization", "Bearer "+sentToken)
	}
	if r.Auth == Identity && guestID != "" {
		req.Header.Set(HeaderGuestID, guestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		l.Warn("request_failed", "error", err)
		return fail(ErrTransport, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			return fail(ErrTransport, "decode response", err)
		}
		return nil
	}

	e := &Error{
		Kind:    kindFor(resp.StatusCode),
		Status:  resp.StatusCode,
		Method:  r.Method,
		Path:    r.Path,
		Message: readMessage(resp.Body),
	}
	l.Debug("request_rejected", "status", resp.StatusCode, "message", e.Message)

	if resp.StatusCode == http.StatusForbidden && sentToken != "" {
		c.forbidden(sentToken)
	}
	return e
}

func readMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(data) == 0 {
		return ""
	}
	var body struct {
		Message any `json:"message"`
	}
	if json.Unmarshal(data, &body) == nil && body.Message != nil {
		return fmt.Sprint(body.Message)
	}
	return strings.TrimSpace(string(data))
}
