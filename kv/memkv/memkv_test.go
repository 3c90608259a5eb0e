package memkv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGetRemove(t *testing.T) {
	ctx := context.Background()
	store := New()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "a", "1"))
	value, ok, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", value)

	require.NoError(t, store.Remove(ctx, "a"))
	_, ok, err = store.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBulkOperations(t *testing.T) {
	ctx := context.Background()
	store := New()

	require.NoError(t, store.Set(ctx, "a", "1"))
	require.NoError(t, store.Set(ctx, "b", "2"))
	require.NoError(t, store.Set(ctx, "c", "3"))

	got, err := store.GetMulti(ctx, []string{"a", "c", "nope"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "c": "3"}, got)

	require.NoError(t, store.RemoveMulti(ctx, []string{"a", "b"}))
	assert.Equal(t, map[string]string{"c": "3"}, store.Snapshot())

	require.NoError(t, store.Clear(ctx))
	assert.Empty(t, store.Snapshot())
}
