package storage

import (
	"context"
	"errors"
)

// Record kinds used by the intelligence core
const (
	KindSnapshot = "snapshot"
	KindRegime   = "regime"
	KindAlert    = "alert"
	KindAudit    = "audit"
)

// ErrNotFound is returned when no record exists for a (kind, key) pair
var ErrNotFound = errors.New("record not found")

// RecordStore is the single downstream persistence contract of the core:
// persist and retrieve a named JSON record by (kind, key). Implementations
// must be safe for concurrent use.
type RecordStore interface {
	// Put stores value under (kind, key), replacing any existing record
	Put(ctx context.Context, kind, key string, value []byte) error
	// Get returns the record stored under (kind, key) or ErrNotFound
	Get(ctx context.Context, kind, key string) ([]byte, error)
	// List returns all records of a kind, keyed by record key
	List(ctx context.Context, kind string) (map[string][]byte, error)
	// Delete removes the record under (kind, key); deleting a missing
	// record is not an error
	Delete(ctx context.Context, kind, key string) error
}
