package app

import (
	"context"

	"github.com/cockroachdb/errors"

	"hotel_booking/internal/domain"
)

// SeedService publishes catalog hotels into the document store.
type SeedService struct {
	store domain.DocumentStore
	cache domain.Cache
}

func NewSeedService(store domain.DocumentStore, c domain.Cache) *SeedService {
	return &SeedService{store: store, cache: c}
}

// SeedHotel inserts h unless a hotel with the same id is already published.
// It reports whether a document was written.
func (s *SeedService) SeedHotel(ctx context.Context, h domain.Hotel) (bool, error) {
	if err := h.Validate(); err != nil {
		return false, err
	}

	existing, err := s.store.QueryByField(ctx, domain.HotelsCollection, "id", h.ID, "")
	if err != nil {
		return false, errors.Wrapf(err, "look up hotel %s", h.ID)
	}
	if len(existing) > 0 {
		return false, nil
	}
	if _, err := s.store.Insert(ctx, domain.HotelsCollection, h.ToDocument()); err != nil {
		return false, errors.Wrapf(err, "insert hotel %s", h.ID)
	}

	// drop cached reads so the new hotel shows up
	if s.cache != nil {
		_ = s.cache.Del(ctx, hotelsListKey)
		_ = s.cache.Del(ctx, hotelKey(h.ID))
	}
	return true, nil
}
