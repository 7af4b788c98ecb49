// Package storage provides the narrow persistence contract session data is
// written against, with file-system and in-memory implementations.
package storage

import (
	"errors"
	"strings"
)

// ErrInvalidKey is returned for keys that cannot be stored safely.
var ErrInvalidKey = errors.New("invalid storage key")

// Storage is the minimal key/value contract the session layer depends on.
// Implementations must make each call atomic: a reader never observes a
// partially-written record.
type Storage interface {
	// Get returns the record for key. The second result is false when the
	// key is absent.
	Get(key string) ([]byte, bool, error)
	// Set writes the record for key, replacing any existing value.
	Set(key string, data []byte) error
	// Remove deletes the record for key. Removing an absent key is not an
	// error.
	Remove(key string) error
	// ListKeys returns all stored keys in unspecified order.
	ListKeys() ([]string, error)
	Close() error
}

// ValidateKey rejects keys that would escape a directory-backed store.
func ValidateKey(key string) error {
	if key == "" || key == "." || key == ".." {
		return ErrInvalidKey
	}
	if strings.ContainsAny(key, "/\\\x00") {
		return ErrInvalidKey
	}
	return nil
}
