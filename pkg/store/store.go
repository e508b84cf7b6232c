// Package store provides the document store used for menu entities and the
// menu version counter, with Redis and in-memory backends.
package store

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ErrNotFound indicates the requested key does not exist.
	ErrNotFound = errors.New("document not found")
)

// storeErrors tracks store operation errors by operation.
var storeErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "menu_store_errors_total",
		Help: "Total number of document store operation errors",
	},
	[]string{"operation"}, // "get", "put", "delete", "list", "incr"
)

// Store is a key-value document store holding JSON documents plus
// integer counters. Counters and documents live in separate key spaces
// as far as callers are concerned; implementations may share one.
type Store interface {
	// Get returns the document at key. Returns ErrNotFound on miss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores the document at key, overwriting any previous value.
	Put(ctx context.Context, key string, doc []byte) error

	// Delete removes the document at key. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, key string) error

	// List returns all documents whose key starts with prefix.
	// Order is unspecified.
	List(ctx context.Context, prefix string) ([][]byte, error)

	// Increment atomically increments the counter at key by 1 and
	// returns the new value. A missing counter is treated as 0 before
	// the increment. The increment is serialized by the backend, never
	// application-level read-then-write.
	Increment(ctx context.Context, key string) (int64, error)

	// Counter returns the current counter value at key, 0 if missing.
	Counter(ctx context.Context, key string) (int64, error)
}
