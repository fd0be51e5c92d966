package domain

import (
	"context"
	"time"
)

// SessionProvider is the hosted identity service.
type SessionProvider interface {
	SignIn(ctx context.Context, email, password string) (SessionUser, error)
	SignUp(ctx context.Context, email, password, displayName string) (SessionUser, error)
	SignOut(ctx context.Context) error
	SendPasswordReset(ctx context.Context, email string) error
	UpdateDisplayName(ctx context.Context, name string) error
	// OnSessionChange delivers the current user (nil when signed out) once
	// the provider knows it, then again on every change.
	OnSessionChange(fn func(*SessionUser)) (unsubscribe func())
}

// DocumentStore is the hosted schemaless record store.
// orderBy is a field name, prefixed with "-" for descending; "" keeps store order.
type DocumentStore interface {
	Insert(ctx context.Context, collection string, doc Document) (string, error)
	QueryByField(ctx context.Context, collection, field string, value any, orderBy string) ([]Document, error)
}

// FlagStorage is local persistent key/value storage on the device.
type FlagStorage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// CatalogSource lists hotels published by a catalog service.
type CatalogSource interface {
	ListHotels(ctx context.Context) ([]Hotel, error)
}

type Clock interface {
	Now() time.Time
}

// FetchPolicy says how a screen list observes its own writes.
type FetchPolicy string

const (
	// OptimisticAppend: the written record is placed in the local list right away.
	OptimisticAppend FetchPolicy = "optimistic-append"
	// RefetchRequired: a fresh read is needed to see the write.
	RefetchRequired FetchPolicy = "re-fetch-required"
)

// ListPolicies is the per-list policy table.
var ListPolicies = map[string]FetchPolicy{
	ReviewsCollection:  OptimisticAppend,
	BookingsCollection: RefetchRequired,
}
