// Package cache stores serialized layout results.
//
// Three backends implement [Cache]: [NullCache] (caching disabled),
// [FileCache] for the CLI and [RedisCache] for the HTTP server. Keys come
// from a [Keyer], so callers never build key strings by hand.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry owned by this cache and returns the count.
	Clear(ctx context.Context) (int, error)

	// Close releases resources held by the cache.
	Close() error
}
