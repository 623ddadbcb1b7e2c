// Package cache stores search responses between runs.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// when several hosts share a cache, and [NullCache] to disable caching.
package cache

import (
	"context"
	"time"
)

// TTLSearch is how long a photo search response stays cached.
const TTLSearch = 24 * time.Hour

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil); an error means the backend
// itself failed. A ttl of zero stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
