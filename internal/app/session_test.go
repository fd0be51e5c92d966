package app_test

import (
	"context"
	"testing"
	"time"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

func TestSessionContext_WaitsForFirstNotification(t *testing.T) {
	prov := newFakeProvider()
	sess := app.NewSessionContext(prov)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := sess.Start(ctx); err == nil {
		t.Fatalf("expected Start to wait for the provider")
	}
	if !sess.Loading() {
		t.Fatalf("expected loading before the first notification")
	}

	prov.emit(guest)
	if err := sess.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sess.Loading() {
		t.Fatalf("expected loaded")
	}
	if u := sess.Current(); u == nil || u.ID != "u1" {
		t.Fatalf("unexpected current user: %+v", u)
	}
	if prov.listeners() != 1 {
		t.Fatalf("Start must subscribe exactly once, got %d", prov.listeners())
	}
}

func TestSessionContext_FansOutAndCopies(t *testing.T) {
	prov := newFakeProvider()
	prov.emit(nil)
	sess := app.NewSessionContext(prov)
	if err := sess.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	var got []*domain.SessionUser
	unsub := sess.Subscribe(func(u *domain.SessionUser) { got = append(got, u) })

	prov.emit(guest)
	if u := sess.Current(); u != nil {
		u.DisplayName = "mutated"
	}
	if sess.Current().DisplayName != "Ann" {
		t.Fatalf("Current must return a copy")
	}

	unsub()
	prov.emit(nil)
	if len(got) != 1 || got[0] == nil || got[0].ID != "u1" {
		t.Fatalf("unexpected notifications: %+v", got)
	}
	if sess.Current() != nil {
		t.Fatalf("expected signed out")
	}

	sess.Close()
	if prov.listeners() != 0 {
		t.Fatalf("Close must unsubscribe from the provider")
	}
}

func TestScreens_DroppedOnSignOut(t *testing.T) {
	s := app.NewScreens(&staticSession{user: guest}, nil, fixedClock{t: now})
	f := s.BookingForm(sunrise)
	if s.BookingForm(sunrise) != f {
		t.Fatalf("expected the same open form")
	}
	b := s.ReviewBoard("1")

	s.OnSessionChange(guest)
	if s.BookingForm(sunrise) != f || s.ReviewBoard("1") != b {
		t.Fatalf("sign-in must not reset screens")
	}

	s.OnSessionChange(nil)
	if s.BookingForm(sunrise) == f || s.ReviewBoard("1") == b {
		t.Fatalf("sign-out must drop screen state")
	}

	g := s.BookingForm(sunrise)
	s.CloseBookingForm(sunrise.ID)
	if s.BookingForm(sunrise) == g {
		t.Fatalf("closed form must not be reused")
	}
}
