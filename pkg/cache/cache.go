// Package cache memoizes derived Gantt data.
//
// Building rows is a pure function of the tasks, the row hierarchy and the
// sizing options, so its output can be stored under a content hash and
// reused until the inputs change. This package provides the storage side:
//
//   - [Cache] is a byte store with per-entry TTL
//   - [NullCache] disables caching
//   - [FileCache] keeps entries on disk for the CLI
//   - [RedisCache] shares entries between API instances
//
// Keys are produced by a [Keyer] so callers never assemble key strings by
// hand, and [ScopedKeyer] namespaces them per tenant or per report.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values for cached entries.
const (
	// TTLRows bounds how long a built row model stays valid. Keys are
	// content hashes, so expiry only reclaims space.
	TTLRows = 24 * time.Hour

	// TTLReport bounds cached report builds.
	TTLReport = 6 * time.Hour
)

// Cache stores opaque byte values.
//
// Get returns (nil, false, nil) on a miss. A ttl of zero stores the entry
// without expiry. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
