package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
)

func TestBookingFromDocument_AcceptsStoreShapes(t *testing.T) {
	in := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	base := Document{
		IDField:   "b1",
		"userId":  "u1",
		"hotelId": "1", "hotelName": "Sunrise Hotel",
		"checkIn":   in,
		"checkOut":  "2024-01-04T00:00:00.000000000Z",
		"rooms":     json.Number("2"),
		"nights":    int64(3),
		"totalCost": 720.0,
		"createdAt": in,
	}
	b, err := BookingFromDocument(base)
	if err != nil {
		t.Fatalf("BookingFromDocument: %v", err)
	}
	want := BookingRecord{
		ID: "b1", UserID: "u1", HotelID: "1", HotelName: "Sunrise Hotel",
		CheckIn: in, CheckOut: in.Add(72 * time.Hour), Rooms: 2, Nights: 3, TotalCost: 720,
		CreatedAt: in, Status: BookingStatusActive,
	}
	if diff := cmp.Diff(want, b); diff != "" {
		t.Fatalf("booking mismatch (-want +got):\n%s", diff)
	}
}

func TestBookingFromDocument_RejectsMalformed(t *testing.T) {
	in := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	valid := func() Document {
		return BookingRecord{
			UserID: "u1", HotelID: "1", HotelName: "x", CheckIn: in, CheckOut: in.Add(24 * time.Hour),
			Rooms: 1, TotalCost: 10, CreatedAt: in,
		}.ToDocument()
	}
	cases := map[string]func(Document){
		"missing user":       func(d Document) { delete(d, "userId") },
		"rooms as text":      func(d Document) { d["rooms"] = "2" },
		"fractional rooms":   func(d Document) { d["rooms"] = 1.5 },
		"zero rooms":         func(d Document) { d["rooms"] = 0 },
		"bad timestamp":      func(d Document) { d["checkIn"] = "yesterday" },
		"inverted stay":      func(d Document) { d["checkOut"] = in.Add(-time.Hour) },
		"missing total cost": func(d Document) { delete(d, "totalCost") },
	}
	for name, mutate := range cases {
		d := valid()
		mutate(d)
		if _, err := BookingFromDocument(d); !errors.Is(err, ErrMalformedDocument) {
			t.Fatalf("%s: expected ErrMalformedDocument, got %v", name, err)
		}
	}
}

func TestReviewFromDocument(t *testing.T) {
	at := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	d := ReviewRecord{HotelID: "1", UserID: "u1", Name: "Ann", Rating: 4, Comment: "Nice", CreatedAt: at}.ToDocument()
	d[IDField] = "r1"
	rv, err := ReviewFromDocument(d)
	if err != nil || rv.ID != "r1" || rv.Rating != 4 || !rv.CreatedAt.Equal(at) {
		t.Fatalf("unexpected review: %+v %v", rv, err)
	}

	d["rating"] = "four"
	if _, err := ReviewFromDocument(d); !errors.Is(err, ErrMalformedDocument) {
		t.Fatalf("expected malformed rating, got %v", err)
	}
}

func TestHotelValidate(t *testing.T) {
	ok := Hotel{ID: "1", Name: "Sunrise Hotel", PricePerNight: 120, Rating: 4.5}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid hotel: %v", err)
	}
	for _, h := range []Hotel{
		{Name: "x", PricePerNight: 1},
		{ID: "1", PricePerNight: 1},
		{ID: "1", Name: "x", PricePerNight: 0},
		{ID: "1", Name: "x", PricePerNight: 1, Rating: 5.1},
		{ID: "1", Name: "x", PricePerNight: 1, Rating: -1},
	} {
		if err := h.Validate(); err == nil {
			t.Fatalf("expected invalid: %+v", h)
		}
	}

	got, err := HotelFromDocument(ok.ToDocument())
	if err != nil {
		t.Fatalf("HotelFromDocument: %v", err)
	}
	if diff := cmp.Diff(ok, got); diff != "" {
		t.Fatalf("hotel mismatch (-want +got):\n%s", diff)
	}
}
