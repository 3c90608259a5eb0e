// Package kv defines the string-keyed persistence substrate the cache
// layer is built on. Implementations are deliberately dumb: values are
// opaque serialized strings, read and written whole. Merge logic lives
// above this layer, in the reconciler.
package kv

import "context"

// Store is an asynchronous string-keyed store with whole-value semantics.
// Get reports absence via the boolean, not an error; errors are reserved
// for genuine storage failures.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error

	// Bulk variants used by settings-style callers sharing the substrate.
	GetMulti(ctx context.Context, keys []string) (map[string]string, error)
	RemoveMulti(ctx context.Context, keys []string) error
}
