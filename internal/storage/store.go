// Package storage is the persistent key-value layer. Every collection the
// app keeps (workouts, goals, meals, ...) is stored as one JSON document under
// a namespaced key.
package storage

import (
	"context"
	"encoding/json"
)

// DefaultNamespace prefixes every key unless configured otherwise.
const DefaultNamespace = "fitlog"

// DefaultMaxValueBytes caps the size of a single serialized value.
const DefaultMaxValueBytes = 5 * 1024 * 1024

type Store interface {
	// Get decodes the value stored under key into dest.
	// It returns ErrNotFound when nothing is stored under key.
	Get(ctx context.Context, key Key, dest any) error
	// Set encodes value as JSON and stores it under key, replacing
	// any previous value.
	Set(ctx context.Context, key Key, value any) error
	Remove(ctx context.Context, key Key) error
	// Clear removes every key of the store namespace, and nothing else.
	Clear(ctx context.Context) error
}

func encode(key Key, value any, maxBytes int) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, newError(ErrorTypeUnknown, key, err)
	}
	if maxBytes > 0 && len(data) > maxBytes {
		return nil, newError(ErrorTypeQuotaExceeded, key, errValueTooLarge)
	}
	return data, nil
}

func decode(key Key, data []byte, dest any) error {
	if err := json.Unmarshal(data, dest); err != nil {
		return newError(ErrorTypeParse, key, err)
	}
	return nil
}
