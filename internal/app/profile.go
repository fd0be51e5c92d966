package app

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
)

type Profile struct {
	User     domain.SessionUser     `json:"user"`
	Bookings []domain.BookingRecord `json:"bookings"`
}

// ProfileService reads booking history with the re-fetch-required policy:
// every call goes to the store.
type ProfileService struct {
	session  SessionReader
	provider domain.SessionProvider
	store    domain.DocumentStore
}

func NewProfileService(session SessionReader, p domain.SessionProvider, store domain.DocumentStore) *ProfileService {
	return &ProfileService{session: session, provider: p, store: store}
}

func (s *ProfileService) Profile(ctx context.Context) (Profile, error) {
	user := s.session.Current()
	if user == nil {
		return Profile{}, domain.ErrAuthRequired
	}
	bookings, err := s.Bookings(ctx, user.ID)
	if err != nil {
		return Profile{}, err
	}
	return Profile{User: *user, Bookings: bookings}, nil
}

func (s *ProfileService) Bookings(ctx context.Context, uid string) ([]domain.BookingRecord, error) {
	docs, err := s.store.QueryByField(ctx, domain.BookingsCollection, "userId", uid, "-createdAt")
	if err != nil {
		return nil, errors.Wrap(err, "load bookings")
	}
	out := make([]domain.BookingRecord, 0, len(docs))
	for _, d := range docs {
		b, err := domain.BookingFromDocument(d)
		if err != nil {
			log.Warn().Err(err).Interface("id", d[domain.IDField]).Msg("skipping malformed booking")
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *ProfileService) UpdateDisplayName(ctx context.Context, name string) error {
	if s.session.Current() == nil {
		return domain.ErrAuthRequired
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.InvalidInput("Name cannot be empty")
	}
	return s.provider.UpdateDisplayName(ctx, name)
}
