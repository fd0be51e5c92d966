package shared

import (
	"context"

	"hotel_booking/internal/domain"
)

// DefaultHotels is the built-in catalog shown when the store has none published.
var DefaultHotels = []domain.Hotel{
	{ID: "1", Name: "Sunrise Hotel", Location: "Cape Town", PricePerNight: 120, Rating: 4.5, Image: "explore/image-1.png"},
	{ID: "2", Name: "Ocean View Inn", Location: "Durban", PricePerNight: 150, Rating: 4.7, Image: "explore/image-4.png"},
	{ID: "3", Name: "Mountain Lodge", Location: "Johannesburg", PricePerNight: 100, Rating: 4.2, Image: "explore/image-13.png"},
}

// StaticCatalog serves a fixed hotel list as a catalog source.
type StaticCatalog []domain.Hotel

func (s StaticCatalog) ListHotels(context.Context) ([]domain.Hotel, error) {
	return append([]domain.Hotel(nil), s...), nil
}
