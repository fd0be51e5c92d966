package app_test

import (
	"context"
	"sync"
	"time"

	"hotel_booking/internal/domain"
	"hotel_booking/internal/storage/memory"
)

// ---- fakes ----

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// staticSession is a SessionReader with a settable user.
type staticSession struct {
	mu   sync.Mutex
	user *domain.SessionUser
}

func (s *staticSession) Current() *domain.SessionUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *staticSession) set(u *domain.SessionUser) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

var guest = &domain.SessionUser{ID: "u1", DisplayName: "Ann", Email: "ann@example.com"}

// fakeProvider records calls and notifies listeners synchronously.
type fakeProvider struct {
	mu      sync.Mutex
	user    *domain.SessionUser
	known   bool
	fns     map[int]func(*domain.SessionUser)
	next    int
	calls   []string
	failErr error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{fns: map[int]func(*domain.SessionUser){}}
}

func (p *fakeProvider) record(call string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
	return p.failErr
}

func (p *fakeProvider) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

// emit announces u to every listener, as the hosted service would.
func (p *fakeProvider) emit(u *domain.SessionUser) {
	p.mu.Lock()
	p.user, p.known = u, true
	fns := make([]func(*domain.SessionUser), 0, len(p.fns))
	for _, fn := range p.fns {
		fns = append(fns, fn)
	}
	p.mu.Unlock()
	for _, fn := range fns {
		fn(u)
	}
}

func (p *fakeProvider) SignIn(_ context.Context, email, _ string) (domain.SessionUser, error) {
	if err := p.record("signIn:" + email); err != nil {
		return domain.SessionUser{}, err
	}
	u := domain.SessionUser{ID: "u1", DisplayName: "Ann", Email: email}
	p.emit(&u)
	return u, nil
}

func (p *fakeProvider) SignUp(_ context.Context, email, _ string, name string) (domain.SessionUser, error) {
	if err := p.record("signUp:" + email + ":" + name); err != nil {
		return domain.SessionUser{}, err
	}
	u := domain.SessionUser{ID: "u2", DisplayName: name, Email: email}
	p.emit(&u)
	return u, nil
}

func (p *fakeProvider) SignOut(context.Context) error {
	if err := p.record("signOut"); err != nil {
		return err
	}
	p.emit(nil)
	return nil
}

func (p *fakeProvider) SendPasswordReset(_ context.Context, email string) error {
	return p.record("reset:" + email)
}

func (p *fakeProvider) UpdateDisplayName(_ context.Context, name string) error {
	return p.record("name:" + name)
}

func (p *fakeProvider) OnSessionChange(fn func(*domain.SessionUser)) func() {
	p.mu.Lock()
	id := p.next
	p.next++
	p.fns[id] = fn
	known, u := p.known, p.user
	p.mu.Unlock()
	if known {
		fn(u)
	}
	return func() {
		p.mu.Lock()
		delete(p.fns, id)
		p.mu.Unlock()
	}
}

func (p *fakeProvider) listeners() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.fns)
}

// hookStore wraps the in-memory store so tests can intercept writes.
type hookStore struct {
	*memory.Store
	beforeInsert func(collection string) error
	afterInsert  func(collection string) error
}

func (h *hookStore) Insert(ctx context.Context, collection string, doc domain.Document) (string, error) {
	if h.beforeInsert != nil {
		if err := h.beforeInsert(collection); err != nil {
			return "", err
		}
	}
	id, err := h.Store.Insert(ctx, collection, doc)
	if err == nil && h.afterInsert != nil {
		if err := h.afterInsert(collection); err != nil {
			return "", err
		}
	}
	return id, err
}

type mapFlags struct {
	mu     sync.Mutex
	m      map[string]string
	getErr error
}

func (f *mapFlags) Get(_ context.Context, k string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.m[k]
	return v, ok, nil
}

func (f *mapFlags) Set(_ context.Context, k, v string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.m == nil {
		f.m = map[string]string{}
	}
	f.m[k] = v
	return nil
}
