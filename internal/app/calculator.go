package app

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

type Quote struct {
	Nights    int     `json:"nights"`
	TotalCost float64 `json:"totalCost"`
}

// CalculateBooking prices a stay: nights is the day difference rounded up.
func CalculateBooking(checkIn, checkOut time.Time, nightlyRate float64, rooms int) Quote {
	nights := int(math.Ceil(float64(checkOut.Sub(checkIn)) / float64(day)))
	return Quote{Nights: nights, TotalCost: float64(nights) * nightlyRate * float64(rooms)}
}

// DisplayQuote is for live summaries only: room input that does not parse counts as one room.
func DisplayQuote(checkIn, checkOut time.Time, nightlyRate float64, roomsInput string) Quote {
	rooms, err := strconv.Atoi(strings.TrimSpace(roomsInput))
	if err != nil {
		rooms = 1
	}
	return CalculateBooking(checkIn, checkOut, nightlyRate, rooms)
}
