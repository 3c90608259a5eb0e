package wordsync

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	syncErrors "github.com/tapwords/wordsync/errors"
)

// TestRemote is an in-memory Remote for tests and examples. Failure
// toggles simulate an unreachable service so the offline paths can be
// exercised without a network.
type TestRemote struct {
	mu    sync.Mutex
	items map[testItemKey]ContentItem

	FailQuery  bool
	FailUpsert bool
	FailDelete bool

	QueryCalls  int
	UpsertCalls int
	DeleteCalls int
}

type testItemKey struct {
	name string
	kind Kind
}

var _ Remote = (*TestRemote)(nil)

func NewTestRemote() *TestRemote {
	return &TestRemote{items: make(map[testItemKey]ContentItem)}
}

// Seed loads items directly into the fake collection, bypassing Upsert
// bookkeeping.
func (r *TestRemote) Seed(items ...ContentItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range items {
		r.items[testItemKey{item.Name, item.Kind}] = item
	}
}

// Items returns a snapshot of the fake collection.
func (r *TestRemote) Items() []ContentItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ContentItem, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	return out
}

func (r *TestRemote) QueryAll(_ context.Context) ([]ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.QueryCalls++

	if r.FailQuery {
		return nil, syncErrors.NewNetworkError(syncErrors.OpQuery, "test-remote",
			errors.New("remote unavailable"))
	}

	out := make([]ContentItem, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	// Newest first, the way the real query interface orders. Cosmetic.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *TestRemote) Upsert(_ context.Context, item ContentItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.UpsertCalls++

	if r.FailUpsert {
		return syncErrors.NewNetworkError(syncErrors.OpUpsert, "test-remote",
			errors.New("remote unavailable"))
	}

	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = time.Now()
	}
	r.items[testItemKey{item.Name, item.Kind}] = item
	return nil
}

func (r *TestRemote) Delete(_ context.Context, name string, kind Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.DeleteCalls++

	if r.FailDelete {
		return syncErrors.NewNetworkError(syncErrors.OpDelete, "test-remote",
			errors.New("remote unavailable"))
	}

	delete(r.items, testItemKey{name, kind})
	return nil
}
