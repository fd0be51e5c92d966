package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"hotel_booking/internal/adapters/catalog"
	"hotel_booking/internal/domain"
)

func TestClient_ListHotels_MapsAliasesAndSkipsInvalid(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hotels":[
			{"hotel_id": 9, "hotel_name": "Harbour House", "address": {"city": "Cape Town"},
			 "price_per_night": "135,50", "stars": 4, "photos": [{"url": "https://img/1.jpg"}]},
			{"id": "10", "name": "No Price"},
			"garbage"
		]}`))
	}))
	defer ts.Close()

	cl, err := catalog.New(ts.URL, 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got, err := cl.ListHotels(ctx)
	if err != nil {
		t.Fatalf("ListHotels: %v", err)
	}
	want := []domain.Hotel{{
		ID: "9", Name: "Harbour House", Location: "Cape Town",
		PricePerNight: 135.5, Rating: 4, Image: "https://img/1.jpg",
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("hotels mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_ListHotels_404(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cl, _ := catalog.New(ts.URL, 100)
	if _, err := cl.ListHotels(context.Background()); err == nil {
		t.Fatalf("expected error for 404")
	}
}

func TestNew_RequiresURL(t *testing.T) {
	if _, err := catalog.New("", 5); err == nil {
		t.Fatalf("expected error for empty URL")
	}
}
