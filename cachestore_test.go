package wordsync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapwords/wordsync/kv/memkv"
)

func TestInitializeCreatesEmptyCache(t *testing.T) {
	ctx := context.Background()
	store := memkv.New()
	cs := NewCacheStore(store)

	require.NoError(t, cs.Initialize(ctx))

	cache := cs.Read(ctx)
	assert.True(t, cache.IsEmpty())
	assert.Equal(t, SchemaVersion, cache.SchemaVersion)
	assert.NotNil(t, cache.Bank)
	assert.NotNil(t, cache.Versions)
	assert.NotNil(t, cache.Challenges)

	_, ok := store.Snapshot()[cacheKey]
	assert.True(t, ok, "empty cache record should be persisted")
}

func TestInitializeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memkv.New()
	cs := NewCacheStore(store)

	require.NoError(t, cs.Initialize(ctx))
	first := store.Snapshot()[cacheKey]

	require.NoError(t, cs.Initialize(ctx))
	assert.Equal(t, first, store.Snapshot()[cacheKey])
}

func TestInitializeDoesNotResetPopulatedCache(t *testing.T) {
	ctx := context.Background()
	store := memkv.New()
	cs := NewCacheStore(store)

	require.NoError(t, cs.Initialize(ctx))

	cache := cs.Read(ctx)
	cache.Themes = []string{"animals"}
	cache.Bank["animals"] = []string{"tiger"}
	cache.Versions["animals"] = 4
	require.NoError(t, cs.Write(ctx, cache))
	populated := store.Snapshot()[cacheKey]

	require.NoError(t, cs.Initialize(ctx))
	assert.Equal(t, populated, store.Snapshot()[cacheKey])
}

func TestInitializeMigratesPreChallengeRecord(t *testing.T) {
	ctx := context.Background()
	store := memkv.New()

	// A v1-era blob: no schema_version, no challenges field.
	legacy := `{"themes":["animals","food"],"bank":{"animals":["tiger"],"food":["bread"]},"versions":{"animals":2,"food":1}}`
	require.NoError(t, store.Set(ctx, cacheKey, legacy))

	cs := NewCacheStore(store)
	require.NoError(t, cs.Initialize(ctx))

	cache := cs.Read(ctx)
	assert.Equal(t, SchemaVersion, cache.SchemaVersion)
	assert.Equal(t, []string{"animals", "food"}, cache.Themes)
	assert.Equal(t, []string{"tiger"}, cache.Bank["animals"])
	assert.Equal(t, 2, cache.Versions["animals"])
	assert.Empty(t, cache.Challenges)
	assert.NotNil(t, cache.Challenges)
}

func TestInitializeResetsUndecodableRecord(t *testing.T) {
	ctx := context.Background()
	store := memkv.New()
	require.NoError(t, store.Set(ctx, cacheKey, "{definitely not json"))

	cs := NewCacheStore(store)
	require.NoError(t, cs.Initialize(ctx))

	cache := cs.Read(ctx)
	assert.True(t, cache.IsEmpty())
	assert.Equal(t, SchemaVersion, cache.SchemaVersion)
}

func TestReadDefaultsOnCorruptRecord(t *testing.T) {
	ctx := context.Background()
	store := memkv.New()
	require.NoError(t, store.Set(ctx, cacheKey, "not json at all"))

	cache := NewCacheStore(store).Read(ctx)
	assert.True(t, cache.IsEmpty())
	assert.NotNil(t, cache.Bank)
}

func TestReadDefaultsOnAbsentRecord(t *testing.T) {
	cache := NewCacheStore(memkv.New()).Read(context.Background())
	assert.True(t, cache.IsEmpty())
	assert.Empty(t, cache.Challenges)
}

func TestWriteReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	cs := NewCacheStore(memkv.New())

	in := LocalCache{
		Themes:   []string{"space"},
		Bank:     map[string][]string{"space": {"planet", "comet"}},
		Versions: map[string]int{"space": 7},
		Challenges: []ContentItem{{
			Name:       "august",
			Kind:       KindChallenge,
			Words:      []string{"meteor"},
			Version:    2,
			ActiveFrom: "2026-08-01",
			ActiveTo:   "2026-08-31",
		}},
	}
	require.NoError(t, cs.Write(ctx, in))

	out := cs.Read(ctx)
	assert.Equal(t, SchemaVersion, out.SchemaVersion)
	assert.Equal(t, in.Themes, out.Themes)
	assert.Equal(t, in.Bank, out.Bank)
	assert.Equal(t, in.Versions, out.Versions)
	require.Len(t, out.Challenges, 1)
	assert.Equal(t, "august", out.Challenges[0].Name)
}

func TestIsEmpty(t *testing.T) {
	ctx := context.Background()
	cs := NewCacheStore(memkv.New())

	assert.True(t, cs.IsEmpty(ctx))

	cache := emptyCache()
	cache.Themes = []string{"animals"}
	cache.Bank["animals"] = []string{"tiger"}
	cache.Versions["animals"] = 1
	require.NoError(t, cs.Write(ctx, cache))

	assert.False(t, cs.IsEmpty(ctx))
}

func TestLastSyncMarker(t *testing.T) {
	ctx := context.Background()
	cs := NewCacheStore(memkv.New())

	_, ok := cs.LastSyncAt(ctx)
	assert.False(t, ok, "marker should be absent before any sync")

	stamp := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)
	require.NoError(t, cs.stampLastSync(ctx, stamp))

	got, ok := cs.LastSyncAt(ctx)
	require.True(t, ok)
	assert.True(t, got.Equal(stamp))
}

func TestLastSyncMarkerCorrupt(t *testing.T) {
	ctx := context.Background()
	store := memkv.New()
	require.NoError(t, store.Set(ctx, lastSyncKey, "yesterday-ish"))

	_, ok := NewCacheStore(store).LastSyncAt(ctx)
	assert.False(t, ok)
}
