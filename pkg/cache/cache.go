package cache

import (
	"context"
	"time"
)

// MetricsCache is the key/value contract the aggregation engine publishes
// into and the query service reads from. Counts are int64 everywhere;
// implementations must not surface missing keys as errors.
type MetricsCache interface {
	// SetCount stores a scalar count with a TTL
	SetCount(ctx context.Context, key string, value int64, ttl time.Duration) error

	// GetCount reads a scalar count; ok is false when the key is absent
	GetCount(ctx context.Context, key string) (value int64, ok bool, err error)

	// ReplaceHash atomically replaces the mapping at key (clear-then-write)
	// with a TTL. An empty mapping deletes the key and writes nothing.
	ReplaceHash(ctx context.Context, key string, fields map[string]int64, ttl time.Duration) error

	// GetHash reads the full mapping at key; absent keys yield an empty map
	GetHash(ctx context.Context, key string) (map[string]int64, error)

	// ReplaceSet replaces the set at key (clear-then-write) with a TTL
	ReplaceSet(ctx context.Context, key string, members []string, ttl time.Duration) error

	// SetMembers reads the set at key; absent keys yield an empty slice
	SetMembers(ctx context.Context, key string) ([]string, error)

	// ScanKeys returns all keys matching the glob pattern
	ScanKeys(ctx context.Context, pattern string) ([]string, error)

	// Ping checks cache connectivity
	Ping(ctx context.Context) error

	Close() error
}
