// Package metadata is a small key/value store in the client's local SQLite
// database. The session manager keeps its persisted state here.
package metadata

import (
	"context"
)

type Repository interface {
	// Get returns common.ErrNotFound when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set inserts or overwrites key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete is a no-op for a missing key.
	Delete(ctx context.Context, key string) error
}
