package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
)

// SessionReader is the part of the session controllers depend on.
type SessionReader interface {
	Current() *domain.SessionUser
}

// SessionContext is the process-wide view of who is signed in. It is written
// only by the provider's change notifications and read by everything else.
type SessionContext struct {
	provider domain.SessionProvider

	mu          sync.RWMutex
	user        *domain.SessionUser
	loaded      bool
	ready       chan struct{}
	readyOnce   sync.Once
	startOnce   sync.Once
	nextID      int
	listeners   map[int]func(*domain.SessionUser)
	unsubscribe func()
}

func NewSessionContext(p domain.SessionProvider) *SessionContext {
	return &SessionContext{
		provider:  p,
		ready:     make(chan struct{}),
		listeners: map[int]func(*domain.SessionUser){},
	}
}

// Start subscribes to the provider and waits for its first notification.
func (s *SessionContext) Start(ctx context.Context) error {
	s.startOnce.Do(func() {
		// the provider may notify before returning, so no lock is held here
		unsub := s.provider.OnSessionChange(s.apply)
		s.mu.Lock()
		s.unsubscribe = unsub
		s.mu.Unlock()
	})

	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SessionContext) apply(u *domain.SessionUser) {
	var cp *domain.SessionUser
	if u != nil {
		v := *u
		cp = &v
	}

	s.mu.Lock()
	s.user = cp
	s.loaded = true
	fns := make([]func(*domain.SessionUser), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })

	if cp != nil {
		log.Info().Str("uid", cp.ID).Msg("session started")
	} else {
		log.Info().Msg("no active session")
	}
	for _, fn := range fns {
		fn(cp)
	}
}

// Current returns a copy of the signed-in user, or nil.
func (s *SessionContext) Current() *domain.SessionUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	v := *s.user
	return &v
}

// Loading reports whether the provider has not answered yet.
func (s *SessionContext) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.loaded
}

// Subscribe registers fn for every later change.
func (s *SessionContext) Subscribe(fn func(*domain.SessionUser)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Close detaches from the provider. The context keeps its last state.
func (s *SessionContext) Close() {
	s.mu.Lock()
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}
