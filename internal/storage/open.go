// Package storage picks the Document Store implementation from configuration.
package storage

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
	"hotel_booking/internal/shared"
	"hotel_booking/internal/storage/memory"
	mongostore "hotel_booking/internal/storage/mongo"
	mysqlrepo "hotel_booking/internal/storage/mysql"
)

// Open connects the configured store and prepares its indexes or schema.
// The returned func releases the connection.
func Open(ctx context.Context, cfg shared.Config) (domain.DocumentStore, func(), error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	switch cfg.StoreDriver {
	case "mongo":
		s, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = s.Close(context.Background())
			return nil, nil, err
		}
		log.Info().Str("db", cfg.MongoDB).Msg("mongo store ready")
		return s, func() { _ = s.Close(context.Background()) }, nil

	case "mysql":
		r, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := r.EnsureSchema(ctx); err != nil {
			_ = r.Close()
			return nil, nil, err
		}
		log.Info().Msg("mysql store ready")
		return r, func() { _ = r.Close() }, nil

	case "memory":
		log.Warn().Msg("using in-memory store; data is lost on exit")
		return memory.New(), func() {}, nil
	}
	return nil, nil, errors.Newf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}
