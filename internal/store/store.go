package store

import (
	"context"
	"sync"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

// Persister saves state across process restarts.
type Persister interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, s State) error
	Purge(ctx context.Context) error
}

type Store struct {
	mu      sync.Mutex
	state   State
	persist Persister
	subs    map[int]func(State)
	nextSub int
}

func New(initial State, p Persister) *Store {
	return &Store{state: initial, persist: p, subs: map[int]func(State){}}
}

// Open restores the persisted state, falling back to an empty one.
func Open(ctx context.Context, p Persister) *Store {
	var initial State
	if p != nil {
		s, err := p.Load(ctx)
		if err != nil {
			logging.FromContext(ctx).Warn("state_restore_failed", "error", err)
		} else if s != nil {
			initial = *s
		}
	}
	return New(initial, p)
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) Dispatch(ctx context.Context, a Action) State {
	st, _ := s.DispatchIf(ctx, nil, a)
	return st
}

// DispatchIf applies a only when cond holds for the current state. The
// check and the update happen under one lock.
func (s *Store) DispatchIf(ctx context.Context, cond func(State) bool, a Action) (State, bool) {
	s.mu.Lock()
	if cond != nil && !cond(s.state) {
		st := s.state
		s.mu.Unlock()
		return st, false
	}
	s.state = Reduce(s.state, a)
	st := s.state
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	s.save(ctx, st, a)
	for _, fn := range fns {
		fn(st)
	}
	return st, true
}

func (s *Store) save(ctx context.Context, st State, a Action) {
	if s.persist == nil {
		return
	}
	l := logging.FromContext(ctx)
	if _, ok := a.(LoggedOut); ok {
		if err := s.persist.Purge(ctx); err != nil {
			l.Warn("state_purge_failed", "error", err)
		}
	}
	if err := s.persist.Save(ctx, st); err != nil {
		l.Warn("state_save_failed", "error", err)
	}
}

func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// AccessToken and GuestID let the store act as the API client's credentials.
func (s *Store) AccessToken() string {
	return s.State().Auth.Token
}

func (s *Store) GuestID() string {
	return s.State().Cart.GuestID
}
