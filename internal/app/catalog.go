package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
)

const hotelsListKey = "hotels:list"

func hotelKey(id string) string { return fmt.Sprintf("hotel:%s", id) }

// CatalogService serves hotel listing and details, store first, then the
// built-in catalog. Reads are cached.
type CatalogService struct {
	store    domain.DocumentStore
	cache    domain.Cache
	cacheTTL time.Duration
	fallback []domain.Hotel
}

func NewCatalogService(store domain.DocumentStore, c domain.Cache, ttl time.Duration, fallback []domain.Hotel) *CatalogService {
	return &CatalogService{store: store, cache: c, cacheTTL: ttl, fallback: fallback}
}

func (s *CatalogService) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	var hs []domain.Hotel
	if ok, _ := s.cache.Get(ctx, hotelsListKey, &hs); ok {
		return hs, nil
	}

	docs, err := s.store.QueryByField(ctx, domain.HotelsCollection, "listed", true, "name")
	if err != nil {
		if len(s.fallback) == 0 {
			return nil, errors.Wrap(err, "list hotels")
		}
		// an unreachable store still shows the built-in catalog, uncached
		log.Warn().Err(err).Msg("hotel store unavailable, serving built-in catalog")
		return append([]domain.Hotel(nil), s.fallback...), nil
	}
	hs = parseHotels(docs)
	if len(hs) == 0 {
		hs = append([]domain.Hotel(nil), s.fallback...)
	}
	_ = s.cache.Set(ctx, hotelsListKey, hs, int(s.cacheTTL.Seconds()))
	return hs, nil
}

func (s *CatalogService) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	key := hotelKey(id)
	var h domain.Hotel
	if ok, _ := s.cache.Get(ctx, key, &h); ok {
		return h, nil
	}

	docs, err := s.store.QueryByField(ctx, domain.HotelsCollection, "id", id, "")
	if err != nil {
		log.Warn().Err(err).Str("hotel", id).Msg("hotel store unavailable")
	}
	found := false
	if hs := parseHotels(docs); len(hs) > 0 {
		h, found = hs[0], true
	} else {
		for _, fh := range s.fallback {
			if fh.ID == id {
				h, found = fh, true
				break
			}
		}
	}
	switch {
	case !found && err != nil:
		return domain.Hotel{}, errors.Wrapf(err, "get hotel %s", id)
	case !found:
		return domain.Hotel{}, errors.Wrapf(domain.ErrNotFound, "hotel %s", id)
	case err == nil:
		_ = s.cache.Set(ctx, key, h, int(s.cacheTTL.Seconds()))
	}
	return h, nil
}

func parseHotels(docs []domain.Document) []domain.Hotel {
	out := make([]domain.Hotel, 0, len(docs))
	for _, d := range docs {
		h, err := domain.HotelFromDocument(d)
		if err != nil {
			log.Warn().Err(err).Interface("id", d["id"]).Msg("skipping malformed hotel")
			continue
		}
		out = append(out, h)
	}
	// stores without ordering support return insertion order
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
