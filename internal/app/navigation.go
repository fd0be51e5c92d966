package app

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
)

type ScreenGroup string

const (
	GroupOnboarding ScreenGroup = "onboarding"
	GroupAuth       ScreenGroup = "auth"
	GroupMain       ScreenGroup = "main"
)

var groupScreens = map[ScreenGroup][]string{
	GroupOnboarding: {"Onboarding1", "Onboarding2", "Onboarding3"},
	GroupAuth:       {"SignIn", "SignUp", "ForgotPassword"},
	GroupMain:       {"Explore", "HotelDetails", "Booking", "Profile"},
}

// Decision is the set of reachable screens. Ready=false means render nothing yet.
type Decision struct {
	Ready   bool          `json:"ready"`
	Groups  []ScreenGroup `json:"groups,omitempty"`
	Screens []string      `json:"screens,omitempty"`
}

// Decide picks the reachable screen groups. firstLaunch is nil until resolved.
func Decide(firstLaunch *bool, session *domain.SessionUser, loading bool) Decision {
	if loading || firstLaunch == nil {
		return Decision{}
	}
	switch {
	case session != nil:
		return decision(GroupMain)
	case *firstLaunch:
		return decision(GroupOnboarding, GroupAuth)
	default:
		return decision(GroupAuth)
	}
}

func decision(groups ...ScreenGroup) Decision {
	d := Decision{Ready: true, Groups: groups}
	for _, g := range groups {
		d.Screens = append(d.Screens, groupScreens[g]...)
	}
	return d
}

// LaunchFlagKey marks that onboarding has been offered on this device.
const LaunchFlagKey = "alreadyLaunched"

// ResolveFirstLaunch reports whether this is the first launch and records
// that it has happened.
func ResolveFirstLaunch(ctx context.Context, flags domain.FlagStorage) (bool, error) {
	_, ok, err := flags.Get(ctx, LaunchFlagKey)
	if err != nil {
		return false, errors.Wrap(err, "read launch flag")
	}
	if ok {
		return false, nil
	}
	if err := flags.Set(ctx, LaunchFlagKey, "true"); err != nil {
		return false, errors.Wrap(err, "write launch flag")
	}
	return true, nil
}

// Navigator recomputes the gate decision on every session change.
type Navigator struct {
	session *SessionContext
	flags   domain.FlagStorage

	mu          sync.RWMutex
	firstLaunch *bool
	observers   []func(Decision)
	unsubscribe func()
}

func NewNavigator(session *SessionContext, flags domain.FlagStorage) *Navigator {
	return &Navigator{session: session, flags: flags}
}

// Start resolves the launch flag and begins following the session.
// A flag storage failure is treated as "not first launch" so the user is never stuck.
func (n *Navigator) Start(ctx context.Context) {
	first, err := ResolveFirstLaunch(ctx, n.flags)
	if err != nil {
		log.Warn().Err(err).Msg("launch flag unavailable, skipping onboarding")
		first = false
	}
	n.mu.Lock()
	n.firstLaunch = &first
	n.mu.Unlock()

	unsub := n.session.Subscribe(func(*domain.SessionUser) { n.recompute() })
	n.mu.Lock()
	n.unsubscribe = unsub
	n.mu.Unlock()
	n.recompute()
}

func (n *Navigator) recompute() {
	user := n.session.Current()
	loading := n.session.Loading()

	n.mu.Lock()
	d := Decide(n.firstLaunch, user, loading)
	obs := append([]func(Decision){}, n.observers...)
	n.mu.Unlock()

	log.Debug().Bool("ready", d.Ready).Interface("groups", d.Groups).Msg("navigation gate")
	for _, fn := range obs {
		fn(d)
	}
}

// Current is recomputed from live session state on every call.
func (n *Navigator) Current() Decision {
	n.mu.RLock()
	first := n.firstLaunch
	n.mu.RUnlock()
	return Decide(first, n.session.Current(), n.session.Loading())
}

// Observe registers fn for every recomputed decision.
func (n *Navigator) Observe(fn func(Decision)) {
	n.mu.Lock()
	n.observers = append(n.observers, fn)
	n.mu.Unlock()
}

func (n *Navigator) Stop() {
	n.mu.Lock()
	unsub := n.unsubscribe
	n.unsubscribe = nil
	n.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}
