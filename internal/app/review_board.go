package app

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
)

const anonymousReviewer = "You"

// ReviewBoard is the review list and the add-review input of one hotel screen.
// The list follows the optimistic-append policy: own submissions are prepended
// without a re-fetch.
type ReviewBoard struct {
	hotelID string
	session SessionReader
	store   domain.DocumentStore
	clock   domain.Clock

	mu      sync.Mutex
	reviews []domain.ReviewRecord
	rating  string
	comment string
}

func NewReviewBoard(hotelID string, session SessionReader, store domain.DocumentStore, clock domain.Clock) *ReviewBoard {
	return &ReviewBoard{hotelID: hotelID, session: session, store: store, clock: clock}
}

// Load replaces the list with the newest-first reviews from the store.
// Documents that do not parse are skipped.
func (b *ReviewBoard) Load(ctx context.Context) ([]domain.ReviewRecord, error) {
	docs, err := b.store.QueryByField(ctx, domain.ReviewsCollection, "hotelId", b.hotelID, "-createdAt")
	if err != nil {
		return nil, errors.Wrapf(err, "load reviews for hotel %s", b.hotelID)
	}
	out := make([]domain.ReviewRecord, 0, len(docs))
	for _, d := range docs {
		rv, err := domain.ReviewFromDocument(d)
		if err != nil {
			log.Warn().Err(err).Str("hotel", b.hotelID).Interface("id", d[domain.IDField]).Msg("skipping malformed review")
			continue
		}
		out = append(out, rv)
	}

	b.mu.Lock()
	b.reviews = out
	b.mu.Unlock()
	return b.Reviews(), nil
}

func (b *ReviewBoard) SetRating(s string) {
	b.mu.Lock()
	b.rating = s
	b.mu.Unlock()
}

func (b *ReviewBoard) SetComment(s string) {
	b.mu.Lock()
	b.comment = s
	b.mu.Unlock()
}

// Submit writes the review and prepends it locally. Inputs survive a failed write.
func (b *ReviewBoard) Submit(ctx context.Context) (domain.ReviewRecord, error) {
	user := b.session.Current()
	if user == nil {
		return domain.ReviewRecord{}, domain.ErrAuthRequired
	}

	b.mu.Lock()
	rating, comment := b.rating, strings.TrimSpace(b.comment)
	b.mu.Unlock()

	score, err := strconv.ParseFloat(strings.TrimSpace(rating), 64)
	if comment == "" || err != nil || math.IsNaN(score) || math.IsInf(score, 0) {
		return domain.ReviewRecord{}, domain.ErrInvalidReviewInput
	}

	name := user.DisplayName
	if name == "" {
		name = anonymousReviewer
	}
	rv := domain.ReviewRecord{
		HotelID:   b.hotelID,
		UserID:    user.ID,
		Name:      name,
		Rating:    score,
		Comment:   comment,
		CreatedAt: b.clock.Now().UTC(),
	}
	id, err := b.store.Insert(ctx, domain.ReviewsCollection, rv.ToDocument())
	if err != nil {
		log.Warn().Err(err).Str("hotel", b.hotelID).Msg("review write failed")
		return domain.ReviewRecord{}, errors.Mark(errors.Wrap(err, "save review"), domain.ErrSubmissionFailed)
	}
	rv.ID = id

	b.mu.Lock()
	if domain.ListPolicies[domain.ReviewsCollection] == domain.OptimisticAppend {
		b.reviews = append([]domain.ReviewRecord{rv}, b.reviews...)
	}
	b.rating, b.comment = "", ""
	b.mu.Unlock()
	return rv, nil
}

func (b *ReviewBoard) Reviews() []domain.ReviewRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.ReviewRecord, len(b.reviews))
	copy(out, b.reviews)
	return out
}

// Input returns the pending rating and comment text.
func (b *ReviewBoard) Input() (rating, comment string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rating, b.comment
}
