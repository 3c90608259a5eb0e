package sqlitekv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kv.db")
	store, err := NewWithDataSource(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "wordsync:cache", `{"themes":["animals"]}`))
	value, ok, err := store.Get(ctx, "wordsync:cache")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"themes":["animals"]}`, value)
}

func TestSetIsUpsert(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Set(ctx, "k", "first"))
	require.NoError(t, store.Set(ctx, "k", "second"))

	value, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", value)
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Set(ctx, "a", "1"))
	require.NoError(t, store.Set(ctx, "b", "2"))

	require.NoError(t, store.Remove(ctx, "a"))
	require.NoError(t, store.Remove(ctx, "a")) // removing twice is fine

	require.NoError(t, store.Clear(ctx))
	_, ok, err := store.Get(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBulkVariants(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Set(ctx, "a", "1"))
	require.NoError(t, store.Set(ctx, "b", "2"))
	require.NoError(t, store.Set(ctx, "c", "3"))

	got, err := store.GetMulti(ctx, []string{"a", "c", "nope"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "c": "3"}, got)

	empty, err := store.GetMulti(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, store.RemoveMulti(ctx, []string{"a", "b"}))
	got, err = store.GetMulti(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"c": "3"}, got)
}

func TestClosedStoreRejectsOperations(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Close())
	require.NoError(t, store.Close()) // idempotent

	_, _, err := store.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrStoreClosed)
	assert.ErrorIs(t, store.Set(ctx, "a", "1"), ErrStoreClosed)
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = New(&Config{})
	assert.Error(t, err)
}
