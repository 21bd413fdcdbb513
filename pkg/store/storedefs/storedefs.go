// Package storedefs contains definitions of the key-value store used by
// storage effects.
//
// It is a separate package so that packages that only depend on the store API
// do not need to depend on the concrete implementations.
package storedefs

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store is closed")

// Store is a simple string key-value store.
type Store interface {
	// GetItem returns the value stored under key and whether there is one.
	// A missing key is not an error.
	GetItem(ctx context.Context, key string) (string, bool, error)
	// SetItem stores value under key.
	SetItem(ctx context.Context, key, value string) error
	// DelItem removes key. Removing a missing key is not an error.
	DelItem(ctx context.Context, key string) error
	// Close releases the resources held by the store.
	Close() error
}
