// Package wordsync keeps a local, offline-tolerant copy of versioned
// word-set content (stage themes and time-boxed challenges) consistent
// with a remote source of truth. Local edits that cannot reach the
// remote service are queued and replayed on the next reconciliation
// pass, so the library degrades to "saved offline, will sync later"
// instead of surfacing transport failures to gameplay or editing UIs.
package wordsync

import (
	"context"
)

// Remote is the boundary to the hosted content collection. Implementations
// can use any query interface; remote/rest provides one over a REST-style
// row API. Every call is expected to honor the context deadline.
type Remote interface {
	// QueryAll fetches the entire remote item collection, all kinds.
	// Ordering is cosmetic; the reconciler merges by explicit version
	// comparison, not arrival order.
	QueryAll(ctx context.Context) ([]ContentItem, error)

	// Upsert inserts or replaces the item keyed by (name, kind).
	Upsert(ctx context.Context, item ContentItem) error

	// Delete removes the item keyed by (name, kind).
	Delete(ctx context.Context, name string, kind Kind) error
}
