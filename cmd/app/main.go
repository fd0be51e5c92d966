package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "hotel_booking/internal/adapters/http_server"
	"hotel_booking/internal/adapters/identity"
	"hotel_booking/internal/adapters/observability"
	redisad "hotel_booking/internal/adapters/redis"
	"hotel_booking/internal/app"
	"hotel_booking/internal/shared"
	"hotel_booking/internal/storage"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(ctx, cfg.MetricsAddr, reg)

	// document store
	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("document store unavailable")
	}
	defer closeStore()

	// device-local state: cache, first-launch flag, session tokens
	rdb := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
	}
	cache := redisad.NewCache(rdb)
	flags := redisad.NewFlags(rdb, cfg.DeviceID)

	provider := identity.New(identity.Config{
		IdentityBase: cfg.IdentityBase,
		TokenBase:    cfg.TokenBase,
		APIKey:       cfg.IdentityKey,
		RPS:          cfg.IdentityRPS,
	}, redisad.NewTokens(rdb, cfg.DeviceID))

	// session context and everything that follows it
	session := app.NewSessionContext(provider)
	defer session.Close()
	clock := shared.SystemClock{}
	screens := app.NewScreens(session, store, clock)
	session.Subscribe(screens.OnSessionChange)

	nav := app.NewNavigator(session, flags)
	nav.Start(ctx)
	defer nav.Stop()

	// the gate stays not-ready until the provider answers
	go provider.Restore(ctx)
	go func() {
		if err := session.Start(ctx); err != nil {
			log.Warn().Err(err).Msg("session provider did not answer")
		}
	}()

	// http
	srv := server.New(cfg.CORSOrigins)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Nav:     nav,
		Auth:    app.NewAuthService(provider, store),
		Profile: app.NewProfileService(session, provider, store),
		Catalog: app.NewCatalogService(store, cache, cfg.CacheTTL, shared.DefaultHotels),
		Screens: screens,
	})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("app listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
}
