package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_booking/internal/adapters/catalog"
	"hotel_booking/internal/adapters/observability"
	redisad "hotel_booking/internal/adapters/redis"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/shared"
	"hotel_booking/internal/storage"
)

func main() {
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("driver", cfg.StoreDriver).
		Str("catalog", cfg.CatalogURL).
		Int("workers", cfg.SeedWorkers).
		Msg("seeder starting")

	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("document store unavailable")
	}
	defer closeStore()

	// cache invalidation is best effort; a cold cache only costs a read
	var cache domain.Cache
	rdb := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, cached catalog reads will expire on their own")
	} else {
		cache = redisad.NewCache(rdb)
	}

	var src domain.CatalogSource = shared.StaticCatalog(shared.DefaultHotels)
	if cfg.CatalogURL != "" {
		client, err := catalog.New(cfg.CatalogURL, 5)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize catalog client")
		}
		src = client
	}
	hotels, err := src.ListHotels(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("catalog fetch failed")
	}

	seed := app.NewSeedService(store, cache)
	sem := semaphore.NewWeighted(int64(max(cfg.SeedWorkers, 1)))
	var wg sync.WaitGroup
	var inserted, skipped, failed atomic.Int64

	for _, h := range hotels {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("seeding interrupted")
			break
		}

		wg.Add(1)
		go func(h domain.Hotel) {
			defer wg.Done()
			defer sem.Release(1)

			ok, err := seed.SeedHotel(ctx, h)
			switch {
			case err != nil:
				failed.Add(1)
				log.Warn().Str("id", h.ID).Err(err).Msg("seed failed")
			case ok:
				inserted.Add(1)
				log.Info().Str("id", h.ID).Str("name", h.Name).Msg("hotel published")
			default:
				skipped.Add(1)
				log.Debug().Str("id", h.ID).Msg("already published")
			}
		}(h)
	}

	wg.Wait()
	log.Info().
		Int64("inserted", inserted.Load()).
		Int64("skipped", skipped.Load()).
		Int64("failed", failed.Load()).
		Msg("seeding completed")
	if failed.Load() > 0 {
		closeStore()
		os.Exit(1)
	}
}
