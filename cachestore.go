package wordsync

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	syncErrors "github.com/tapwords/wordsync/errors"
	"github.com/tapwords/wordsync/kv"
	"github.com/tapwords/wordsync/logging"
)

// Substrate keys. Each value is one serialized blob read and written whole.
const (
	cacheKey    = "wordsync:cache"
	lastSyncKey = "wordsync:last_sync"
	queueKey    = "wordsync:pending"
)

// CacheStore owns the on-device snapshot of all content plus the last-sync
// marker. It is pure data access over the kv substrate: no merge logic,
// no remote calls.
type CacheStore struct {
	kv     kv.Store
	logger *logging.Logger
}

func NewCacheStore(store kv.Store) *CacheStore {
	return &CacheStore{
		kv:     store,
		logger: logging.WithComponent(logging.Component("cache-store")),
	}
}

// Initialize ensures a cache record exists and is at the current schema
// version. Missing record: writes an empty one. Record at an older schema:
// migrates it in place without discarding existing stage data. Safe to
// call on every app start.
func (s *CacheStore) Initialize(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, cacheKey)
	if err != nil {
		return syncErrors.WrapStorage(err, syncErrors.OpInit, "cache-store")
	}

	if !ok {
		return s.Write(ctx, emptyCache())
	}

	var cache LocalCache
	if err := json.Unmarshal([]byte(raw), &cache); err != nil {
		// A record that cannot be decoded at all is treated as absent.
		s.logger.LogError(ctx, syncErrors.NewCorruptRecordError(syncErrors.OpInit, "cache-store", err),
			"cache record unreadable, resetting to empty")
		return s.Write(ctx, emptyCache())
	}

	migrated := false
	for cache.SchemaVersion < SchemaVersion {
		switch cache.SchemaVersion {
		case 0, schemaV1:
			migrateV1toV2(&cache)
		default:
			// Unknown future version below current: stamp and move on.
			cache.SchemaVersion = SchemaVersion
		}
		migrated = true
	}

	if !migrated {
		return nil
	}

	s.logger.Info("cache schema migrated",
		slog.Int("schema_version", cache.SchemaVersion),
		slog.Int("themes", len(cache.Themes)),
	)
	return s.Write(ctx, cache)
}

// migrateV1toV2 backfills the embedded challenges list. Pre-challenge blobs
// carried only the flat stage word bank; everything present is kept.
func migrateV1toV2(cache *LocalCache) {
	cache.normalize()
	cache.SchemaVersion = schemaV2
}

// Read returns the current cache, defaulting every missing or unparsable
// field to its empty value. It never fails from the caller's point of
// view: a corrupt or absent record reads as "cache empty".
func (s *CacheStore) Read(ctx context.Context) LocalCache {
	raw, ok, err := s.kv.Get(ctx, cacheKey)
	if err != nil {
		s.logger.LogError(ctx, syncErrors.WrapStorage(err, syncErrors.OpRead, "cache-store"),
			"cache read failed, returning empty cache")
		return emptyCache()
	}
	if !ok {
		return emptyCache()
	}

	var cache LocalCache
	if err := json.Unmarshal([]byte(raw), &cache); err != nil {
		s.logger.LogError(ctx, syncErrors.NewCorruptRecordError(syncErrors.OpRead, "cache-store", err),
			"cache record corrupt, returning empty cache")
		return emptyCache()
	}

	cache.normalize()
	return cache
}

// Write persists the full cache as a single serialized blob. Complete
// overwrite: partial-field merge semantics live in the reconciler, not here.
func (s *CacheStore) Write(ctx context.Context, cache LocalCache) error {
	cache.normalize()
	if cache.SchemaVersion == 0 {
		cache.SchemaVersion = SchemaVersion
	}

	data, err := json.Marshal(cache)
	if err != nil {
		return syncErrors.NewWithComponent(syncErrors.OpWrite, "cache-store", err)
	}
	return syncErrors.WrapStorage(s.kv.Set(ctx, cacheKey, string(data)), syncErrors.OpWrite, "cache-store")
}

// IsEmpty reports whether no stage content is cached.
func (s *CacheStore) IsEmpty(ctx context.Context) bool {
	return s.Read(ctx).IsEmpty()
}

// LastSyncAt returns the last-sync marker, if one has ever been stamped.
func (s *CacheStore) LastSyncAt(ctx context.Context) (time.Time, bool) {
	raw, ok, err := s.kv.Get(ctx, lastSyncKey)
	if err != nil || !ok {
		if err != nil {
			s.logger.LogError(ctx, syncErrors.WrapStorage(err, syncErrors.OpRead, "cache-store"),
				"last-sync marker read failed")
		}
		return time.Time{}, false
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		s.logger.LogError(ctx, syncErrors.NewCorruptRecordError(syncErrors.OpRead, "cache-store", err),
			"last-sync marker corrupt")
		return time.Time{}, false
	}
	return t, true
}

// stampLastSync overwrites the marker. The reconciler calls this after
// every pull phase that completed without a fetch error, whether or not
// any field changed.
func (s *CacheStore) stampLastSync(ctx context.Context, t time.Time) error {
	return syncErrors.WrapStorage(
		s.kv.Set(ctx, lastSyncKey, t.Format(time.RFC3339Nano)),
		syncErrors.OpWrite, "cache-store")
}
