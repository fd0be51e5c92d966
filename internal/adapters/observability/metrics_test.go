package observability_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hotel_booking/internal/adapters/observability"
)

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	return string(body)
}

func TestMetricsExposeAppFamilies(t *testing.T) {
	reg := observability.InitRegistry()

	observability.ObserveHTTP("/v1/hotels", http.MethodGet, 200, 12*time.Millisecond)
	observability.ObserveStore("mongo", "bookings", "insert", errors.New("down"))
	observability.ObserveSubmission("booking", "submitted")
	observability.ObserveAuth("signIn", "rejected")
	observability.SetSignedIn(true)

	out := scrape(t, observability.MetricsHandler(reg))
	for _, want := range []string{
		`hotel_booking_http_requests_total{method="GET",route="/v1/hotels",status="200"}`,
		`hotel_booking_store_operations_total{collection="bookings",driver="mongo",op="insert",result="error"}`,
		`hotel_booking_submissions_total{kind="booking",outcome="submitted"}`,
		`hotel_booking_auth_calls_total{op="signIn",outcome="rejected"}`,
		"hotel_booking_session_signed_in 1",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in output:\n%s", want, out)
		}
	}

	observability.SetSignedIn(false)
	if out := scrape(t, observability.MetricsHandler(reg)); !strings.Contains(out, "hotel_booking_session_signed_in 0") {
		t.Fatalf("gauge not reset:\n%s", out)
	}
}
