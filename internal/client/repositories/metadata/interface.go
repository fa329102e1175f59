package metadata

import (
	"context"
	"time"
)

// Repository is a durable key/value store with optional per-key expiry.
// Reading a missing or expired key yields (nil, nil).
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set upserts key. A zero expiresAt keeps the value until it is deleted.
	Set(ctx context.Context, key string, value []byte, expiresAt time.Time) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
