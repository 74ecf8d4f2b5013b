// Package store persists the canvas state through a small key-value contract.
// Backends: in-memory, embedded libSQL and Redis.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by KV.Get when the key holds no value.
var ErrNotFound = errors.New("key not found")

// KV is the persistence contract the canvas depends on.
// All implementations must be safe for concurrent use.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context, key string) error
	Close() error
}
