// Package memory is an in-process Document Store for local development and tests.
// It honours the same contract as the hosted stores, including duplicate
// idempotency keys.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
)

const uniqueField = "idempotencyKey"

type Store struct {
	mu   sync.RWMutex
	data map[string][]domain.Document

	// FailInsert, when set, is returned by Insert for the named collection.
	FailInsert map[string]error
}

func New() *Store {
	return &Store{data: map[string][]domain.Document{}, FailInsert: map[string]error{}}
}

func (s *Store) Insert(ctx context.Context, collection string, doc domain.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", domain.NewStoreError("insert", collection, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.FailInsert[collection]; err != nil {
		observability.ObserveStore("memory", collection, "insert", err)
		return "", domain.NewStoreError("insert", collection, err)
	}
	if key, ok := doc[uniqueField].(string); ok && key != "" {
		for _, d := range s.data[collection] {
			if d[uniqueField] == key {
				err := errors.Wrapf(domain.ErrDuplicate, "%s %q", uniqueField, key)
				observability.ObserveStore("memory", collection, "insert", err)
				return "", domain.NewStoreError("insert", collection, err)
			}
		}
	}

	id := uuid.NewString()
	cp := make(domain.Document, len(doc)+1)
	for k, v := range doc {
		cp[k] = v
	}
	cp[domain.IDField] = id
	s.data[collection] = append(s.data[collection], cp)
	observability.ObserveStore("memory", collection, "insert", nil)
	return id, nil
}

func (s *Store) QueryByField(ctx context.Context, collection, field string, value any, orderBy string) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStoreError("query", collection, err)
	}
	s.mu.RLock()
	var out []domain.Document
	for _, d := range s.data[collection] {
		if equal(d[field], value) {
			cp := make(domain.Document, len(d))
			for k, v := range d {
				cp[k] = v
			}
			out = append(out, cp)
		}
	}
	s.mu.RUnlock()

	if orderBy != "" {
		desc := strings.HasPrefix(orderBy, "-")
		f := strings.TrimPrefix(orderBy, "-")
		sort.SliceStable(out, func(i, j int) bool {
			if desc {
				return less(out[j][f], out[i][f])
			}
			return less(out[i][f], out[j][f])
		})
	}
	observability.ObserveStore("memory", collection, "query", nil)
	return out, nil
}

// Put stores doc as is, for seeding documents no app code would write.
func (s *Store) Put(collection string, doc domain.Document) {
	s.mu.Lock()
	s.data[collection] = append(s.data[collection], doc)
	s.mu.Unlock()
}

// Count reports how many documents a collection holds.
func (s *Store) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data[collection])
}

func equal(a, b any) bool {
	if fa, ok := number(a); ok {
		fb, ok := number(b)
		return ok && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func less(a, b any) bool {
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			return fa < fb
		}
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Before(tb)
		}
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
