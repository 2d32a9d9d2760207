// Package cache is the local key/value area that holds every week's state
// between sessions.
package cache

import "errors"

// ErrNotFound is returned by Get for keys that hold no value.
var ErrNotFound = errors.New("cache key not found")

// Provider is a key/value store. A Put replaces the whole value of one key.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
	// Keys returns every stored key starting with prefix, sorted.
	Keys(prefix string) ([]string, error)

	// GetConfigPath returns a non-sensitive description of where data lives.
	GetConfigPath() string
}
