package store

import "errors"

// Predefined errors for store operations.
var (
	ErrKeyNotFound = errors.New("store: key not found")
)

// KV defines the local durable key-value slots the dashboard persists into
// (the cart and the theme preference). Keeping it an interface means cart and
// preference logic never touch ambient globals directly, and tests can swap
// in an in-memory implementation.
type KV interface {
	// Get returns the value for key; found is false when the key is absent.
	Get(key string) (value []byte, found bool, err error)
	Put(key string, value []byte) error
	Delete(key string) error
	Close() error
}
