package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"hotel_booking/internal/domain"
)

func TestQueryByField_RejectsUnsafeFieldNames(t *testing.T) {
	r := New(nil) // validation happens before any round trip
	for _, tc := range []struct{ field, order string }{
		{"x') OR 1=1 --", ""},
		{"hotelId", "-created at"},
		{"", ""},
	} {
		_, err := r.QueryByField(context.Background(), domain.ReviewsCollection, tc.field, "v", tc.order)
		var se *domain.StoreError
		if !errors.As(err, &se) || se.Op != "query" {
			t.Fatalf("field=%q order=%q: expected query StoreError, got %v", tc.field, tc.order, err)
		}
	}
}

func TestEncodeBody_TimesSortAsText(t *testing.T) {
	early := time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 2*3600))
	late := early.Add(1500 * time.Millisecond)

	a, err := encodeBody(domain.Document{"createdAt": early, domain.IDField: "ignored"})
	if err != nil {
		t.Fatalf("encodeBody: %v", err)
	}
	b, _ := encodeBody(domain.Document{"createdAt": late})
	if a != `{"createdAt":"2025-01-02T01:04:05.000000000Z"}` {
		t.Fatalf("unexpected body %s", a)
	}
	if !(a < b) {
		t.Fatalf("expected %s < %s", a, b)
	}
}
