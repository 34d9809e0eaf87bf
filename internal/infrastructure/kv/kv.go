package kv

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("key not found")

// Store is a byte-valued key-value store with per-key expiry. A zero TTL
// keeps the key until it is deleted.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
