package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"hotel_booking/internal/adapters/observability"
)

// probes are scraped constantly and are not worth a log line.
var probes = map[string]bool{"/healthz": true, "/metrics": true}

func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return http.TimeoutHandler(next, d, "timeout") }
}

type recorder struct {
	http.ResponseWriter
	status int
}

func (w *recorder) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *recorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *recorder) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// routeOf prefers the chi pattern so per-hotel paths share one series.
func routeOf(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// Observe records request metrics and writes one access log line per
// request. RealIP and RequestID must run before it.
func Observe(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &recorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			route, status, took := routeOf(r), rec.Status(), time.Since(start)
			observability.ObserveHTTP(route, r.Method, status, took)
			if probes[r.URL.Path] && status < 500 {
				return
			}

			ev := l.Info()
			switch {
			case status >= 500:
				ev = l.Error()
			case status >= 400:
				ev = l.Warn()
			}
			ev.Str("route", route).
				Str("method", r.Method).
				Int("status", status).
				Dur("duration", took).
				Str("request_id", chimw.GetReqID(r.Context())).
				Str("remote", r.RemoteAddr).
				Msg("http_request")
		})
	}
}
