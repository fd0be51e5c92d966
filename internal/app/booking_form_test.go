package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/storage/memory"
)

var sunrise = domain.Hotel{ID: "1", Name: "Sunrise Hotel", Location: "Cape Town", PricePerNight: 120, Rating: 4.5, Image: "explore/image-1.png"}

// 2024-01-01 15:00 UTC; tomorrow is 2024-01-02.
var now = time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)

func newForm(t *testing.T, user *domain.SessionUser) (*app.BookingForm, *memory.Store, *staticSession) {
	t.Helper()
	store := memory.New()
	sess := &staticSession{user: user}
	return app.NewBookingForm(sunrise, sess, store, fixedClock{t: now}), store, sess
}

func TestBookingForm_Defaults(t *testing.T) {
	f, _, _ := newForm(t, guest)
	v := f.View()
	if !v.CheckIn.Equal(date(2024, 1, 2)) || !v.CheckOut.Equal(date(2024, 1, 3)) || v.Rooms != "1" {
		t.Fatalf("unexpected defaults: in=%v out=%v rooms=%q", v.CheckIn, v.CheckOut, v.Rooms)
	}
	if v.State != app.StateEditing || v.Preview.Nights != 1 || v.Preview.TotalCost != 120 {
		t.Fatalf("unexpected view: %+v", v)
	}
}

func TestBookingForm_CheckInAutoAdvancesCheckOut(t *testing.T) {
	f, _, _ := newForm(t, guest)

	// on or after check-out moves check-out to the next day
	for _, in := range []time.Time{date(2024, 1, 3), date(2024, 1, 10)} {
		if err := f.SetCheckIn(in); err != nil {
			t.Fatalf("SetCheckIn: %v", err)
		}
		if v := f.View(); !v.CheckOut.Equal(in.Add(24 * time.Hour)) {
			t.Fatalf("check-in %v: check-out %v", in, v.CheckOut)
		}
	}

	// before check-out leaves it alone
	if err := f.SetCheckIn(date(2024, 1, 5)); err != nil {
		t.Fatalf("SetCheckIn: %v", err)
	}
	if v := f.View(); !v.CheckOut.Equal(date(2024, 1, 11)) {
		t.Fatalf("check-out moved unexpectedly: %v", v.CheckOut)
	}
}

func TestBookingForm_ValidationOrder(t *testing.T) {
	cases := []struct {
		name    string
		user    *domain.SessionUser
		in, out time.Time
		rooms   string
		want    error
	}{
		{"no session wins over everything", nil, date(2024, 1, 5), date(2024, 1, 5), "0", domain.ErrAuthRequired},
		{"equal dates", guest, date(2024, 1, 5), date(2024, 1, 5), "0", domain.ErrInvalidDateRange},
		{"check-out before check-in", guest, date(2024, 1, 5), date(2024, 1, 4), "2", domain.ErrInvalidDateRange},
		{"zero rooms", guest, date(2024, 1, 5), date(2024, 1, 6), "0", domain.ErrInvalidRoomCount},
		{"negative rooms", guest, date(2024, 1, 5), date(2024, 1, 6), "-1", domain.ErrInvalidRoomCount},
		{"fractional rooms", guest, date(2024, 1, 5), date(2024, 1, 6), "1.5", domain.ErrInvalidRoomCount},
		{"text rooms", guest, date(2024, 1, 5), date(2024, 1, 6), "two", domain.ErrInvalidRoomCount},
		{"eleven rooms", guest, date(2024, 1, 5), date(2024, 1, 6), "11", domain.ErrRoomLimitExceeded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, store, _ := newForm(t, tc.user)
			_ = f.SetCheckIn(tc.in)
			_ = f.SetCheckOut(tc.out)
			_ = f.SetRooms(tc.rooms)

			_, err := f.Review()
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
			if f.State() != app.StateEditing {
				t.Fatalf("expected Editing, got %s", f.State())
			}
			if _, err := f.Confirm(context.Background()); !errors.Is(err, domain.ErrNotReviewed) {
				t.Fatalf("confirm after failed review: %v", err)
			}
			if store.Count(domain.BookingsCollection) != 0 {
				t.Fatalf("no write expected")
			}
		})
	}
}

func TestBookingForm_ReviewAndConfirm(t *testing.T) {
	f, store, _ := newForm(t, guest)
	_ = f.SetCheckIn(date(2024, 1, 1))
	_ = f.SetCheckOut(date(2024, 1, 4))
	_ = f.SetRooms("2")

	s, err := f.Review()
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	want := app.Summary{
		HotelID: "1", HotelName: "Sunrise Hotel",
		CheckIn: date(2024, 1, 1), CheckOut: date(2024, 1, 4), Rooms: 2,
		Quote: app.Quote{Nights: 3, TotalCost: 720},
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}

	rec, err := f.Confirm(context.Background())
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if f.State() != app.StateSubmitted || rec.ID == "" {
		t.Fatalf("expected Submitted with id, got %s %q", f.State(), rec.ID)
	}

	docs, _ := store.QueryByField(context.Background(), domain.BookingsCollection, "userId", "u1", "")
	if len(docs) != 1 {
		t.Fatalf("expected one booking, got %d", len(docs))
	}
	got, err := domain.BookingFromDocument(docs[0])
	if err != nil {
		t.Fatalf("parse stored booking: %v", err)
	}
	if got.Status != domain.BookingStatusActive || got.TotalCost != 720 || got.HotelName != "Sunrise Hotel" ||
		got.HotelLocation != "Cape Town" || got.GuestName != "Ann" || got.GuestEmail != "ann@example.com" ||
		!got.CreatedAt.Equal(now) || got.IdempotencyKey == "" {
		t.Fatalf("unexpected stored booking: %+v", got)
	}

	// confirming twice is refused rather than writing again
	if _, err := f.Confirm(context.Background()); !errors.Is(err, domain.ErrNotReviewed) {
		t.Fatalf("second confirm: %v", err)
	}
}

func TestBookingForm_BackKeepsInputs(t *testing.T) {
	f, _, _ := newForm(t, guest)
	_ = f.SetRooms("3")
	if _, err := f.Review(); err != nil {
		t.Fatalf("Review: %v", err)
	}
	if err := f.Back(); err != nil {
		t.Fatalf("Back: %v", err)
	}
	v := f.View()
	if v.State != app.StateEditing || v.Rooms != "3" || v.Summary != nil {
		t.Fatalf("unexpected view after back: %+v", v)
	}
}

func TestBookingForm_SessionLostBeforeConfirm(t *testing.T) {
	f, store, sess := newForm(t, guest)
	if _, err := f.Review(); err != nil {
		t.Fatalf("Review: %v", err)
	}
	sess.set(nil)
	if _, err := f.Confirm(context.Background()); !errors.Is(err, domain.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	if store.Count(domain.BookingsCollection) != 0 || f.State() != app.StateEditing {
		t.Fatalf("no write expected, state=%s", f.State())
	}
}

func TestBookingForm_FailurePreservesStateAndRetries(t *testing.T) {
	store := &hookStore{Store: memory.New()}
	fail := true
	store.beforeInsert = func(string) error {
		if fail {
			return domain.NewStoreError("insert", domain.BookingsCollection, errors.New("unavailable"))
		}
		return nil
	}
	f := app.NewBookingForm(sunrise, &staticSession{user: guest}, store, fixedClock{t: now})
	_ = f.SetRooms("4")
	if _, err := f.Review(); err != nil {
		t.Fatalf("Review: %v", err)
	}

	_, err := f.Confirm(context.Background())
	if !errors.Is(err, domain.ErrSubmissionFailed) {
		t.Fatalf("expected ErrSubmissionFailed, got %v", err)
	}
	var se *domain.StoreError
	if !errors.As(err, &se) {
		t.Fatalf("store error must stay reachable: %v", err)
	}
	v := f.View()
	if v.State != app.StateFailed || v.Rooms != "4" || v.Summary == nil || v.Error == "" {
		t.Fatalf("unexpected view after failure: %+v", v)
	}

	fail = false
	rec, err := f.Confirm(context.Background())
	if err != nil || rec.Rooms != 4 {
		t.Fatalf("retry: %+v %v", rec, err)
	}
	if store.Count(domain.BookingsCollection) != 1 {
		t.Fatalf("expected exactly one booking")
	}
}

func TestBookingForm_LostAckRetryDoesNotDuplicate(t *testing.T) {
	store := &hookStore{Store: memory.New()}
	lost := true
	// the first write lands but its acknowledgement is lost
	store.afterInsert = func(string) error {
		if lost {
			lost = false
			return domain.NewStoreError("insert", domain.BookingsCollection, context.DeadlineExceeded)
		}
		return nil
	}
	f := app.NewBookingForm(sunrise, &staticSession{user: guest}, store, fixedClock{t: now})
	if _, err := f.Review(); err != nil {
		t.Fatalf("Review: %v", err)
	}
	if _, err := f.Confirm(context.Background()); err == nil {
		t.Fatalf("expected failure on lost ack")
	}

	rec, err := f.Confirm(context.Background())
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	docs, _ := store.QueryByField(context.Background(), domain.BookingsCollection, "userId", "u1", "")
	if len(docs) != 1 || docs[0][domain.IDField] != rec.ID {
		t.Fatalf("expected the original booking to be reused, docs=%v rec=%s", docs, rec.ID)
	}
}

func TestBookingForm_NewReviewGetsNewKey(t *testing.T) {
	f, store, _ := newForm(t, guest)
	for i := 0; i < 2; i++ {
		if _, err := f.Review(); err != nil {
			t.Fatalf("Review: %v", err)
		}
		if _, err := f.Confirm(context.Background()); err != nil {
			t.Fatalf("Confirm %d: %v", i, err)
		}
	}
	if store.Count(domain.BookingsCollection) != 2 {
		t.Fatalf("two reviewed bookings are two bookings")
	}
}

func TestBookingForm_InFlightBlocksEditsAndConfirm(t *testing.T) {
	store := &hookStore{Store: memory.New()}
	entered := make(chan struct{})
	release := make(chan struct{})
	store.beforeInsert = func(string) error {
		close(entered)
		<-release
		return nil
	}
	f := app.NewBookingForm(sunrise, &staticSession{user: guest}, store, fixedClock{t: now})
	if _, err := f.Review(); err != nil {
		t.Fatalf("Review: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := f.Confirm(context.Background()); err != nil {
			t.Errorf("Confirm: %v", err)
		}
	}()
	<-entered

	if f.State() != app.StateSubmitting {
		t.Fatalf("expected Submitting, got %s", f.State())
	}
	if _, err := f.Confirm(context.Background()); !errors.Is(err, domain.ErrSubmissionInFlight) {
		t.Fatalf("second confirm: %v", err)
	}
	if err := f.SetRooms("2"); !errors.Is(err, domain.ErrSubmissionInFlight) {
		t.Fatalf("edit while submitting: %v", err)
	}
	if err := f.Back(); !errors.Is(err, domain.ErrSubmissionInFlight) {
		t.Fatalf("back while submitting: %v", err)
	}

	close(release)
	wg.Wait()
	if f.State() != app.StateSubmitted || store.Count(domain.BookingsCollection) != 1 {
		t.Fatalf("expected one submitted booking, state=%s", f.State())
	}
}
