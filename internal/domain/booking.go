package domain

import (
	"time"

	"github.com/cockroachdb/errors"
)

const (
	MaxRooms            = 10
	BookingsCollection  = "bookings"
	ReviewsCollection   = "reviews"
	HotelsCollection    = "hotels"
	UsersCollection     = "users"
	BookingStatusActive = BookingStatus("confirmed")
)

type BookingStatus string

// BookingRequest is the transient form input; it is never persisted as such.
type BookingRequest struct {
	Hotel    Hotel
	CheckIn  time.Time
	CheckOut time.Time
	Rooms    int
}

type BookingRecord struct {
	ID             string        `json:"id"`
	UserID         string        `json:"userId"`
	HotelID        string        `json:"hotelId"`
	HotelName      string        `json:"hotelName"`
	HotelLocation  string        `json:"hotelLocation"`
	PricePerNight  float64       `json:"pricePerNight"`
	HotelImage     string        `json:"hotelImage,omitempty"`
	CheckIn        time.Time     `json:"checkIn"`
	CheckOut       time.Time     `json:"checkOut"`
	Rooms          int           `json:"rooms"`
	Nights         int           `json:"nights"`
	TotalCost      float64       `json:"totalCost"`
	CreatedAt      time.Time     `json:"createdAt"`
	Status         BookingStatus `json:"status"`
	GuestName      string        `json:"guestName"`
	GuestEmail     string        `json:"guestEmail"`
	IdempotencyKey string        `json:"idempotencyKey,omitempty"`
}

func (b BookingRecord) ToDocument() Document {
	d := Document{
		"userId":        b.UserID,
		"hotelId":       b.HotelID,
		"hotelName":     b.HotelName,
		"hotelLocation": b.HotelLocation,
		"pricePerNight": b.PricePerNight,
		"hotelImage":    b.HotelImage,
		"checkIn":       b.CheckIn.UTC(),
		"checkOut":      b.CheckOut.UTC(),
		"rooms":         b.Rooms,
		"nights":        b.Nights,
		"totalCost":     b.TotalCost,
		"createdAt":     b.CreatedAt.UTC(),
		"status":        string(b.Status),
		"guestName":     b.GuestName,
		"guestEmail":    b.GuestEmail,
	}
	if b.IdempotencyKey != "" {
		d["idempotencyKey"] = b.IdempotencyKey
	}
	return d
}

func BookingFromDocument(d Document) (BookingRecord, error) {
	r := reader{doc: d}
	b := BookingRecord{
		ID:             r.optStr(IDField),
		UserID:         r.str("userId"),
		HotelID:        r.str("hotelId"),
		HotelName:      r.str("hotelName"),
		HotelLocation:  r.optStr("hotelLocation"),
		PricePerNight:  r.optNum("pricePerNight"),
		HotelImage:     r.optStr("hotelImage"),
		CheckIn:        r.stamp("checkIn"),
		CheckOut:       r.stamp("checkOut"),
		Rooms:          r.count("rooms"),
		Nights:         r.optCount("nights"),
		TotalCost:      r.num("totalCost"),
		CreatedAt:      r.stamp("createdAt"),
		Status:         BookingStatus(r.optStr("status")),
		GuestName:      r.optStr("guestName"),
		GuestEmail:     r.optStr("guestEmail"),
		IdempotencyKey: r.optStr("idempotencyKey"),
	}
	if r.err != nil {
		return BookingRecord{}, r.err
	}
	if !b.CheckOut.After(b.CheckIn) {
		return BookingRecord{}, errors.Wrapf(ErrMalformedDocument, "booking %s: check-out not after check-in", b.ID)
	}
	if b.Rooms < 1 {
		return BookingRecord{}, errors.Wrapf(ErrMalformedDocument, "booking %s: rooms must be positive", b.ID)
	}
	// records written before status existed are confirmed bookings
	if b.Status == "" {
		b.Status = BookingStatusActive
	}
	return b, nil
}
