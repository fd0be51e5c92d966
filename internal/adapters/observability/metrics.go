package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const namespace = "hotel_booking"

func counter(name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help}, labels)
}

func seconds(name, help string, labels ...string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: name, Help: help, Buckets: prometheus.DefBuckets,
	}, labels)
}

var (
	httpRequests = counter("http_requests_total", "Requests served to the UI shell.", "route", "method", "status")
	httpLatency  = seconds("http_request_duration_seconds", "UI request duration.", "route", "method")

	externalRequests = counter("external_requests_total", "Calls to the identity service and catalog feed.", "service", "endpoint", "status")
	externalLatency  = seconds("external_request_duration_seconds", "Outbound call duration.", "service", "endpoint")

	cacheEvents = counter("cache_events_total", "Hotel cache traffic.", "cache", "event") // hit|miss|set|del|error
	storeOps    = counter("store_operations_total", "Document store operations.", "driver", "collection", "op", "result")
	submissions = counter("submissions_total", "Booking and review submissions.", "kind", "outcome")
	authCalls   = counter("auth_calls_total", "Identity operations by outcome.", "op", "outcome") // ok|rejected|unreachable

	signedIn = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Name: "session_signed_in", Help: "1 while a user session is active on this device.",
	})
)

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		httpRequests, httpLatency,
		externalRequests, externalLatency,
		cacheEvents, storeOps, submissions, authCalls, signedIn,
	)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Serve exposes /metrics on its own listener until ctx is done.
// An empty addr disables it.
func Serve(ctx context.Context, addr string, reg *prometheus.Registry) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		log.Info().Str("addr", addr).Msg("metrics listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

// ObserveExternal records one outbound call. status 0 means no response.
func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	externalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	externalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) {
	cacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveStore(driver, collection, op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	storeOps.WithLabelValues(driver, collection, op, result).Inc()
}

// ObserveSubmission counts a booking or review attempt; outcome is
// "submitted" or the error kind.
func ObserveSubmission(kind, outcome string) {
	submissions.WithLabelValues(kind, outcome).Inc()
}

func ObserveAuth(op, outcome string) {
	authCalls.WithLabelValues(op, outcome).Inc()
}

func SetSignedIn(active bool) {
	if active {
		signedIn.Set(1)
		return
	}
	signedIn.Set(0)
}
