package app

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
)

type FormState string

const (
	StateEditing    FormState = "editing"
	StateConfirming FormState = "confirming"
	StateSubmitting FormState = "submitting"
	StateSubmitted  FormState = "submitted"
	StateFailed     FormState = "failed"
)

// Summary is what the guest sees before proceeding.
type Summary struct {
	HotelID   string    `json:"hotelId"`
	HotelName string    `json:"hotelName"`
	CheckIn   time.Time `json:"checkIn"`
	CheckOut  time.Time `json:"checkOut"`
	Rooms     int       `json:"rooms"`
	Quote
}

type BookingFormView struct {
	State     FormState    `json:"state"`
	Hotel     domain.Hotel `json:"hotel"`
	CheckIn   time.Time    `json:"checkIn"`
	CheckOut  time.Time    `json:"checkOut"`
	Rooms     string       `json:"rooms"`
	Preview   Quote        `json:"preview"`
	Summary   *Summary     `json:"summary,omitempty"`
	Error     string       `json:"error,omitempty"`
	BookingID string       `json:"bookingId,omitempty"`
}

// BookingForm owns the booking screen state for one hotel.
type BookingForm struct {
	hotel   domain.Hotel
	session SessionReader
	store   domain.DocumentStore
	clock   domain.Clock
	newKey  func() string

	mu        sync.Mutex
	state     FormState
	checkIn   time.Time
	checkOut  time.Time
	rooms     string
	summary   *Summary
	idemKey   string
	lastErr   error
	bookingID string
}

func NewBookingForm(h domain.Hotel, session SessionReader, store domain.DocumentStore, clock domain.Clock) *BookingForm {
	now := clock.Now().UTC()
	tomorrow := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(day)
	return &BookingForm{
		hotel:    h,
		session:  session,
		store:    store,
		clock:    clock,
		newKey:   uuid.NewString,
		state:    StateEditing,
		checkIn:  tomorrow,
		checkOut: tomorrow.Add(day),
		rooms:    "1",
	}
}

// edit is called with the lock held before any field change.
func (f *BookingForm) edit() error {
	if f.state == StateSubmitting {
		return domain.ErrSubmissionInFlight
	}
	f.state = StateEditing
	f.summary = nil
	f.lastErr = nil
	return nil
}

// SetCheckIn moves check-out to the next day when it would no longer be after check-in.
func (f *BookingForm) SetCheckIn(t time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.edit(); err != nil {
		return err
	}
	f.checkIn = t
	if !f.checkOut.After(t) {
		f.checkOut = t.Add(day)
	}
	return nil
}

func (f *BookingForm) SetCheckOut(t time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.edit(); err != nil {
		return err
	}
	f.checkOut = t
	return nil
}

func (f *BookingForm) SetRooms(input string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.edit(); err != nil {
		return err
	}
	f.rooms = input
	return nil
}

// Review runs the validation gate and moves to Confirming.
func (f *BookingForm) Review() (Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting {
		return Summary{}, domain.ErrSubmissionInFlight
	}

	req, err := validateBooking(f.session.Current(), f.hotel, f.checkIn, f.checkOut, f.rooms)
	if err != nil {
		f.state = StateEditing
		f.summary = nil
		f.lastErr = err
		return Summary{}, err
	}

	// a key identifies one reviewed booking; retries after a failure reuse it
	if f.state == StateEditing || f.state == StateSubmitted || f.idemKey == "" {
		f.idemKey = f.newKey()
	}
	s := summarize(req)
	f.summary = &s
	f.state = StateConfirming
	f.lastErr = nil
	return s, nil
}

// Back returns to Editing without touching the inputs.
func (f *BookingForm) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.edit()
}

// Confirm writes the booking. Only one write is in flight per form.
func (f *BookingForm) Confirm(ctx context.Context) (domain.BookingRecord, error) {
	f.mu.Lock()
	switch f.state {
	case StateSubmitting:
		f.mu.Unlock()
		return domain.BookingRecord{}, domain.ErrSubmissionInFlight
	case StateConfirming, StateFailed:
	default:
		f.mu.Unlock()
		return domain.BookingRecord{}, domain.ErrNotReviewed
	}

	user := f.session.Current()
	req, err := validateBooking(user, f.hotel, f.checkIn, f.checkOut, f.rooms)
	if err != nil {
		f.state = StateEditing
		f.summary = nil
		f.lastErr = err
		f.mu.Unlock()
		return domain.BookingRecord{}, err
	}
	rec := newBookingRecord(req, *user, f.clock.Now(), f.idemKey)
	f.state = StateSubmitting
	f.mu.Unlock()

	id, err := f.store.Insert(ctx, domain.BookingsCollection, rec.ToDocument())
	if errors.Is(err, domain.ErrDuplicate) {
		// an earlier attempt with this key already landed
		id, err = f.lookupByKey(ctx, rec.IdempotencyKey)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = StateFailed
		f.lastErr = errors.Mark(errors.Wrap(err, "save booking"), domain.ErrSubmissionFailed)
		log.Warn().Err(err).Str("hotel", rec.HotelID).Str("key", rec.IdempotencyKey).Msg("booking write failed")
		return domain.BookingRecord{}, f.lastErr
	}
	rec.ID = id
	f.state = StateSubmitted
	f.bookingID = id
	f.idemKey = ""
	f.lastErr = nil
	log.Info().Str("booking", id).Str("hotel", rec.HotelID).Int("nights", rec.Nights).Float64("total", rec.TotalCost).Msg("booking confirmed")
	return rec, nil
}

func (f *BookingForm) lookupByKey(ctx context.Context, key string) (string, error) {
	docs, err := f.store.QueryByField(ctx, domain.BookingsCollection, "idempotencyKey", key, "")
	if err != nil {
		return "", err
	}
	for _, d := range docs {
		if id, ok := d[domain.IDField].(string); ok && id != "" {
			return id, nil
		}
	}
	return "", errors.Wrapf(domain.ErrNotFound, "booking with key %s", key)
}

// Preview is the live summary shown while editing; it never fails.
func (f *BookingForm) Preview() Quote {
	f.mu.Lock()
	defer f.mu.Unlock()
	return DisplayQuote(f.checkIn, f.checkOut, f.hotel.PricePerNight, f.rooms)
}

func (f *BookingForm) View() BookingFormView {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := BookingFormView{
		State:     f.state,
		Hotel:     f.hotel,
		CheckIn:   f.checkIn,
		CheckOut:  f.checkOut,
		Rooms:     f.rooms,
		Preview:   DisplayQuote(f.checkIn, f.checkOut, f.hotel.PricePerNight, f.rooms),
		BookingID: f.bookingID,
	}
	if f.summary != nil {
		s := *f.summary
		v.Summary = &s
	}
	if f.lastErr != nil {
		v.Error = f.lastErr.Error()
	}
	return v
}

func (f *BookingForm) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// validateBooking is the gate in front of Confirming; the first failing check wins.
func validateBooking(user *domain.SessionUser, h domain.Hotel, checkIn, checkOut time.Time, roomsInput string) (domain.BookingRequest, error) {
	if user == nil {
		return domain.BookingRequest{}, domain.ErrAuthRequired
	}
	if !checkOut.After(checkIn) {
		return domain.BookingRequest{}, domain.ErrInvalidDateRange
	}
	rooms, err := parseRooms(roomsInput)
	if err != nil {
		return domain.BookingRequest{}, err
	}
	return domain.BookingRequest{Hotel: h, CheckIn: checkIn, CheckOut: checkOut, Rooms: rooms}, nil
}

func parseRooms(input string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 {
		return 0, errors.Wrapf(domain.ErrInvalidRoomCount, "rooms %q", input)
	}
	if n > domain.MaxRooms {
		return 0, errors.Wrapf(domain.ErrRoomLimitExceeded, "%d rooms, at most %d", n, domain.MaxRooms)
	}
	return n, nil
}

func summarize(req domain.BookingRequest) Summary {
	return Summary{
		HotelID:   req.Hotel.ID,
		HotelName: req.Hotel.Name,
		CheckIn:   req.CheckIn,
		CheckOut:  req.CheckOut,
		Rooms:     req.Rooms,
		Quote:     CalculateBooking(req.CheckIn, req.CheckOut, req.Hotel.PricePerNight, req.Rooms),
	}
}

func newBookingRecord(req domain.BookingRequest, guest domain.SessionUser, now time.Time, key string) domain.BookingRecord {
	q := CalculateBooking(req.CheckIn, req.CheckOut, req.Hotel.PricePerNight, req.Rooms)
	return domain.BookingRecord{
		UserID:         guest.ID,
		HotelID:        req.Hotel.ID,
		HotelName:      req.Hotel.Name,
		HotelLocation:  req.Hotel.Location,
		PricePerNight:  req.Hotel.PricePerNight,
		HotelImage:     req.Hotel.Image,
		CheckIn:        req.CheckIn,
		CheckOut:       req.CheckOut,
		Rooms:          req.Rooms,
		Nights:         q.Nights,
		TotalCost:      q.TotalCost,
		CreatedAt:      now,
		Status:         domain.BookingStatusActive,
		GuestName:      guest.DisplayName,
		GuestEmail:     guest.Email,
		IdempotencyKey: key,
	}
}
