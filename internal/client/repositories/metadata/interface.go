// Package metadata is a small key/value table in the client's local
// database. The CLI keeps its session (user name and token pair) here.
package metadata

import (
	"context"
)

// Repository stores opaque values under string keys. Values are copied in
// and out; callers own the slices they pass and receive.
type Repository interface {
	// Get returns common.ErrorNotFound for absent keys.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetMany upserts all pairs in one transaction.
	SetMany(ctx context.Context, values map[string][]byte) error
	// Delete removes keys; absent keys are ignored.
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
}
