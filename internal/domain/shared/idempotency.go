package shared

import (
	"context"
	"time"
)

// IdempotencyStore caches the outcome of a logical operation under a
// caller-supplied key so that repeated submissions have a single effect.
type IdempotencyStore interface {
	// Get returns the cached payload for the key, or found=false if the key
	// is unknown or its retention window has elapsed.
	Get(ctx context.Context, key string) (payload []byte, found bool, err error)

	// Put stores a payload under the key with a TTL. An existing entry is
	// never overwritten; the first recorded outcome wins.
	Put(ctx context.Context, key string, payload []byte, ttl time.Duration) error

	// Evict removes entries whose retention window has elapsed.
	Evict(ctx context.Context) error

	// Close closes the store and releases resources
	Close() error
}
