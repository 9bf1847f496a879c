package cache

import (
	"context"
	"time"
)

// Cache is the read-through layer in front of the store.
// A miss is reported as an empty value with a nil error.
type Cache interface {
	// Set stores a key-value pair with expiration
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Get retrieves a value by key
	Get(ctx context.Context, key string) (string, error)

	// Delete removes a key from cache
	Delete(ctx context.Context, key string) error

	// Close closes the cache connection
	Close() error
}

// CodeKey is the cache key holding the original URL for a short code.
func CodeKey(code string) string {
	return "code:" + code
}
