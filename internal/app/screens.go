package app

import (
	"sync"

	"hotel_booking/internal/domain"
)

// Screens keeps the per-hotel screen state (booking form, review board)
// alive between UI calls. Everything is dropped when the session ends.
type Screens struct {
	session SessionReader
	store   domain.DocumentStore
	clock   domain.Clock

	mu     sync.Mutex
	forms  map[string]*BookingForm
	boards map[string]*ReviewBoard
}

func NewScreens(session SessionReader, store domain.DocumentStore, clock domain.Clock) *Screens {
	return &Screens{
		session: session,
		store:   store,
		clock:   clock,
		forms:   map[string]*BookingForm{},
		boards:  map[string]*ReviewBoard{},
	}
}

// BookingForm returns the open form for h, creating a fresh one if needed.
func (s *Screens) BookingForm(h domain.Hotel) *BookingForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.forms[h.ID]; ok {
		return f
	}
	f := NewBookingForm(h, s.session, s.store, s.clock)
	s.forms[h.ID] = f
	return f
}

// CloseBookingForm is called once the guest leaves a submitted booking.
func (s *Screens) CloseBookingForm(hotelID string) {
	s.mu.Lock()
	delete(s.forms, hotelID)
	s.mu.Unlock()
}

func (s *Screens) ReviewBoard(hotelID string) *ReviewBoard {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.boards[hotelID]; ok {
		return b
	}
	b := NewReviewBoard(hotelID, s.session, s.store, s.clock)
	s.boards[hotelID] = b
	return b
}

// OnSessionChange tears screen state down on sign-out.
func (s *Screens) OnSessionChange(u *domain.SessionUser) {
	if u != nil {
		return
	}
	s.mu.Lock()
	s.forms = map[string]*BookingForm{}
	s.boards = map[string]*ReviewBoard{}
	s.mu.Unlock()
}
