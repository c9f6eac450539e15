// Package storage defines the key-value persistence used for the workspace
// envelope and its side keys.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when nothing is stored under the key.
var ErrNotFound = errors.New("storage: key not found")

// Provider is the interface for workspace persistence.
type Provider interface {
	// Load returns the bytes stored under key, or ErrNotFound.
	Load(key string) ([]byte, error)
	// Save atomically replaces the value stored under key.
	Save(key string, data []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}

// Syncer pushes a saved value to a remote backend.
type Syncer interface {
	Sync(ctx context.Context, key string, data []byte) error
}

// NoopSyncer is the remote-sync seam: it performs no I/O and always reports
// success.
type NoopSyncer struct{}

// Sync implements Syncer.
func (NoopSyncer) Sync(context.Context, string, []byte) error { return nil }
