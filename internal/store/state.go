// Package store holds the client session state and the pure reducer that
// advances it.
package store

import (
	"github.com/Skotchmaster/storefront/internal/model"
)

type AuthState struct {
	User  *model.User `json:"user,omitempty"`
	Token string      `json:"token,omitempty"`
}

func (a AuthState) LoggedIn() bool {
	return a.Token != ""
}

func (a AuthState) Verified() bool {
	return a.User != nil && a.User.Verified
}

type CartState struct {
	GuestID string           `json:"guest_id,omitempty"`
	Lines   []model.CartLine `json:"lines"`
}

type State struct {
	Auth AuthState `json:"auth"`
	Cart CartState `json:"cart"`
}

// Action is one of the action types below.
type Action interface {
	action()
}

// CredentialsSet records a successful login. The guest id is dropped.
type CredentialsSet struct {
	User  model.User
	Token string
}

// LoggedOut clears the session and starts a new guest identity. Forced
// is set when the server rejected the token.
type LoggedOut struct {
	NextGuestID string
	Forced      bool
}

type GuestIDSet struct {
	GuestID string
}

// CartLoaded replaces the local cart with the server's view.
type CartLoaded struct {
	Cart model.Cart
}

type CartCleared struct{}

// UserVerified swaps in the token reissued after verification.
type UserVerified struct {
	User  model.User
	Token string
}

func (CredentialsSet) action() {}
func (LoggedOut) action()      {}
func (GuestIDSet) action()     {}
func (CartLoaded) action()     {}
func (CartCleared) action()    {}
func (UserVerified) action()   {}

// Reduce returns the state after a. It never mutates s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case CredentialsSet:
		u := a.User
		s.Auth = AuthState{User: &u, Token: a.Token}
		s.Cart = CartState{}
	case LoggedOut:
		s.Auth = AuthState{}
		s.Cart = CartState{GuestID: a.NextGuestID}
	case GuestIDSet:
		if !s.Auth.LoggedIn() {
			s.Cart.GuestID = a.GuestID
		}
	case CartLoaded:
		lines := make([]model.CartLine, 0, len(a.Cart.Products))
		for _, l := range a.Cart.Products {
			if l.Quantity >= 1 {
				lines = append(lines, l)
			}
		}
		s.Cart.Lines = lines
	case CartCleared:
		s.Cart.Lines = nil
	case UserVerified:
		if !s.Auth.LoggedIn() {
			return s
		}
		u := a.User
		u.Verified = true
		s.Auth = AuthState{User: &u, Token: a.Token}
	}
	return s
}

// CartView rebuilds the model cart held in s.
func (s State) CartView() model.Cart {
	return model.Cart{GuestID: s.Cart.GuestID, Products: s.Cart.Lines}
}
