// Package cache provides byte-level caching for upstream API responses,
// aggregated collections, and rendered artifacts.
//
// Backends:
//   - [FileCache]: JSON envelopes on disk, the CLI default
//   - [RedisCache]: shared cache for the HTTP API
//   - [MongoCache]: document store with a TTL index
//   - [NullCache]: caching disabled
//
// Keys are produced by a [Keyer] so every backend sees the same layout.
// Wrap a backend with [Instrument] to report hits and misses to the
// observability hooks.
package cache

import (
	"context"
	"time"
)

// Cache is the storage contract shared by all backends.
// Get reports a miss as (nil, false, nil); an error means the backend
// itself failed.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default TTLs per entry kind.
const (
	TTLHTTP       = 10 * time.Minute
	TTLCollection = time.Hour
	TTLArtifact   = 24 * time.Hour
)
