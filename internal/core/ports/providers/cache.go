package providers

import (
	"context"
	"time"
)

// Cache is a key/value store with per-entry expiry. Values are JSON encoded,
// dest passed to Get must be a pointer.
type Cache interface {
	// Get decodes the entry into dest. The bool is false on a miss or expired entry.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
