// Package cache stores beautified layouts and overlap reports keyed by the
// content of the input model.
//
// Three backends implement [Cache]:
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for API servers running side by side
//
// Keys are built by a [Keyer] so that every backend agrees on them. A key
// combines a hash of the canonical model JSON with every geometry setting
// that influences the result, so changing a tolerance never serves a stale
// layout.
//
//	c, err := cache.NewFileCache(dir)
//	if err != nil {
//	    return err
//	}
//	key := cache.NewDefaultKeyer().LayoutKey(cache.Hash(modelJSON), opts)
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"time"
)

// Entry lifetimes.
const (
	// TTLLayout is how long a beautified model stays cached.
	TTLLayout = 7 * 24 * time.Hour

	// TTLCheck is how long an overlap report stays cached.
	TTLCheck = 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and true, or false on a miss. Expired
	// entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases connections or handles.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}
