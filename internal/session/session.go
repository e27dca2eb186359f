// Package session moves the client between anonymous and authenticated
// states and reconciles the guest cart on login.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/apiclient"
	"github.com/Skotchmaster/storefront/internal/model"
	"github.com/Skotchmaster/storefront/internal/querycache"
	"github.com/Skotchmaster/storefront/internal/store"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// MergePolicy decides what happens to the guest cart on login.
type MergePolicy string

const (
	// MergeGuestCart moves guest lines into the user cart, summing the
	// quantities of products present in both.
	MergeGuestCart MergePolicy = "merge"
	// DiscardGuestCart leaves the guest cart behind.
	DiscardGuestCart MergePolicy = "discard"
)

var ErrUnknownPolicy = errors.New("unknown merge policy")

func ParseMergePolicy(s string) (MergePolicy, error) {
	switch MergePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", MergeGuestCart:
		return MergeGuestCart, nil
	case DiscardGuestCart:
		return DiscardGuestCart, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnknownPolicy)
	}
}

type API interface {
	Login(ctx context.Context, username, password string) (*apiclient.Session, error)
	Register(ctx context.Context, username, password string) (*apiclient.Registration, error)
	Verify(ctx context.Context, code string) (*apiclient.Session, error)
	MergeGuestCart(ctx context.Context, guestID string) (*apiclient.MergeResult, error)
}

type Handler struct {
	api    API
	store  *store.Store
	cache  *querycache.Cache
	policy MergePolicy
	// NewGuestID issues guest ids; tests replace it.
	NewGuestID func() string
}

func New(api API, st *store.Store, cache *querycache.Cache, policy MergePolicy) *Handler {
	return &Handler{api: api, store: st, cache: cache, policy: policy, NewGuestID: uuid.NewString}
}

// Bootstrap gives an anonymous client a guest id if it has none yet.
func (h *Handler) Bootstrap(ctx context.Context) {
	st := h.store.State()
	if st.Auth.LoggedIn() || st.Cart.GuestID != "" {
		return
	}
	h.store.Dispatch(ctx, store.GuestIDSet{GuestID: h.NewGuestID()})
}

type LoginResult struct {
	User model.User
	// Merged is the number of guest lines moved into the user cart.
	Merged int
	// MergeErr is set when the login succeeded but the merge did not.
	MergeErr error
}

func (h *Handler) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "session.login")

	guestID := h.store.State().Cart.GuestID
	sess, err := h.api.Login(ctx, username, password)
	if err != nil {
		l.Info("login_failed", "username", username, "error", err)
		return nil, err
	}

	h.store.Dispatch(ctx, store.CredentialsSet{User: sess.User, Token: sess.AccessToken})
	res := &LoginResult{User: sess.User}

	if h.policy != DiscardGuestCart && guestID != "" {
		merged, err := h.api.MergeGuestCart(ctx, guestID)
		if err != nil {
			l.Warn("guest_cart_merge_failed", "guest_id", guestID, "error", err)
			res.MergeErr = err
		} else {
			res.Merged = merged.Merged
		}
	}

	h.cache.Invalidate(querycache.Cart(), querycache.Wishlist(), querycache.Tag{Type: querycache.TypeOrder})
	l.Info("logged_in", "user_id", sess.User.ID, "policy", string(h.policy), "merged", res.Merged)
	return res, nil
}

// Register creates an account. It does not log in.
func (h *Handler) Register(ctx context.Context, username, password string) (*apiclient.Registration, error) {
	return h.api.Register(ctx, username, password)
}

// Verify confirms the current user's account with the code sent at
// registration.
func (h *Handler) Verify(ctx context.Context, code string) (model.User, error) {
	if !h.store.State().Auth.LoggedIn() {
		return model.User{}, fmt.Errorf("verify: %w", apiclient.ErrNotAuthenticated)
	}
	sess, err := h.api.Verify(ctx, code)
	if err != nil {
		return model.User{}, err
	}
	st := h.store.Dispatch(ctx, store.UserVerified{User: sess.User, Token: sess.AccessToken})
	if st.Auth.User == nil {
		return model.User{}, fmt.Errorf("verify: %w", apiclient.ErrNotAuthenticated)
	}
	return *st.Auth.User, nil
}

// Logout drops the token and the local cart and starts a new guest
// identity. The server keeps the user's cart.
func (h *Handler) Logout(ctx context.Context) {
	h.store.Dispatch(ctx, store.LoggedOut{NextGuestID: h.NewGuestID()})
	h.afterLogout()
	logging.FromContext(ctx).Info("logged_out")
}

// ForceLogout logs out after the server rejected token. Only the first
// call for a given token has an effect; it reports whether this call did.
func (h *Handler) ForceLogout(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	_, ok := h.store.DispatchIf(ctx,
		func(s store.State) bool { return s.Auth.Token == token },
		store.LoggedOut{NextGuestID: h.NewGuestID(), Forced: true},
	)
	if !ok {
		return false
	}
	h.afterLogout()
	logging.FromContext(ctx).Warn("forced_logout", "reason", "token rejected")
	return true
}

func (h *Handler) afterLogout() {
	h.cache.Invalidate(querycache.Cart(), querycache.Wishlist(), querycache.Tag{Type: querycache.TypeOrder})
}

func (h *Handler) Current() (model.User, bool) {
	st := h.store.State()
	if !st.Auth.LoggedIn() || st.Auth.User == nil {
		return model.User{Role: model.RoleGuest}, false
	}
	return *st.Auth.User, true
}
