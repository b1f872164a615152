// Package cache stores rendered artifacts so repeated renders of an
// unchanged dataset skip the sinks.
//
// Three backends implement [Cache]:
//   - [FileCache]: entries under a directory, one JSON file per key (CLI)
//   - [RedisCache]: a shared Redis instance (preview server deployments)
//   - [NullCache]: never stores anything (--no-cache, tests)
//
// Keys are built by a [Keyer] from a content hash of the chart or counter and
// the render options, so a key changes whenever anything affecting the output
// changes.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long rendered artifacts are kept.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}
