package wordsync

import (
	"context"
	"log/slog"
	"time"

	"github.com/tapwords/wordsync/kv"
	"github.com/tapwords/wordsync/logging"
)

// Options configures a Service. The zero value is usable.
type Options struct {
	// Clock overrides time.Now, for tests.
	Clock func() time.Time

	// OnSync, when set, is invoked after every completed reconciliation
	// pass with its diagnostic result.
	OnSync func(*SyncResult)
}

// Service is the public surface consumed by gameplay and admin-editing
// code. It is the only happy-path writer of the cache and queue; the
// reconciler alone clears queue entries or overwrites versions and
// challenges en masse. Construct one per app and pass it by reference —
// there is no hidden global instance.
type Service struct {
	cache      *CacheStore
	queue      *Queue
	remote     Remote
	reconciler *Reconciler
	logger     *logging.Logger
	clock      func() time.Time
}

// New wires a Service over the given persistence substrate and remote.
func New(store kv.Store, remote Remote, opts *Options) *Service {
	cache := NewCacheStore(store)
	queue := NewQueue(store)
	reconciler := NewReconciler(cache, queue, remote)

	s := &Service{
		cache:      cache,
		queue:      queue,
		remote:     remote,
		reconciler: reconciler,
		logger:     logging.WithComponent(logging.Component("service")),
		clock:      time.Now,
	}
	if opts != nil {
		if opts.Clock != nil {
			s.clock = opts.Clock
			reconciler.clock = opts.Clock
		}
		reconciler.onSync = opts.OnSync
	}
	return s
}

// InitializeCache ensures the cache record exists and is migrated to the
// current schema. Idempotent; call on every app start.
func (s *Service) InitializeCache(ctx context.Context) error {
	return s.cache.Initialize(ctx)
}

// Cache returns the current local cache snapshot.
func (s *Service) Cache(ctx context.Context) LocalCache {
	return s.cache.Read(ctx)
}

// IsCacheEmpty reports whether no stage content is cached. Callers use it
// to trigger first-run sync and fallback-bank substitution.
func (s *Service) IsCacheEmpty(ctx context.Context) bool {
	return s.cache.IsEmpty(ctx)
}

// Challenges returns the cached challenge list.
func (s *Service) Challenges(ctx context.Context) []ContentItem {
	return s.cache.Read(ctx).Challenges
}

// LastSyncAt returns the time of the last pull that completed without a
// fetch error, distinguishing "synced, nothing new" from "never attempted".
func (s *Service) LastSyncAt(ctx context.Context) (time.Time, bool) {
	return s.cache.LastSyncAt(ctx)
}

// PendingCount returns the number of local mutations awaiting replay.
func (s *Service) PendingCount(ctx context.Context) int {
	return s.queue.Len(ctx)
}

// Sync runs one reconciliation pass. Cold start, pull-to-refresh and the
// admin surface all funnel through this single entry point; stages and
// challenges share one remote collection, distinguished only by kind.
func (s *Service) Sync(ctx context.Context) *SyncResult {
	return s.reconciler.Sync(ctx)
}

// SaveTheme commits a stage or challenge word set. The version is the
// locally known version plus one, starting from 1. When the remote is
// unreachable the save is queued and OutcomeQueuedOffline is returned —
// a recoverable notice for the UI, not an error.
//
// Word-list shape (count, charset, uniqueness) is the editing surface's
// responsibility; call ValidateWords before this. The facade accepts
// whatever words it is given.
func (s *Service) SaveTheme(ctx context.Context, name string, words []string, kind Kind, activeFrom, activeTo string) Outcome {
	cache := s.cache.Read(ctx)
	item := ContentItem{
		Name:       name,
		Kind:       kind,
		Words:      words,
		ActiveFrom: activeFrom,
		ActiveTo:   activeTo,
		Version:    currentVersion(cache, name, kind) + 1,
	}

	if err := s.remote.Upsert(ctx, item); err != nil {
		s.logger.LogError(ctx, err, "remote upsert failed, queueing save",
			slog.String("name", name),
			slog.String("kind", string(kind)),
		)
		action := PendingAction{
			Intent:     IntentSave,
			Name:       name,
			Kind:       kind,
			Words:      words,
			ActiveFrom: activeFrom,
			ActiveTo:   activeTo,
			QueuedAt:   s.clock(),
		}
		if qerr := s.queue.Enqueue(ctx, action); qerr != nil {
			s.logger.LogError(ctx, qerr, "queueing save failed, mutation lost")
			return OutcomeFailed
		}
		return OutcomeQueuedOffline
	}

	applySave(&cache, item)
	if err := s.cache.Write(ctx, cache); err != nil {
		// The remote commit stands; the next pull repopulates the cache.
		s.logger.LogError(ctx, err, "cache write after save failed")
	}
	return OutcomeCommitted
}

// DeleteTheme removes a stage or challenge by (name, kind). When the
// remote is unreachable the delete is queued for the next sync pass.
func (s *Service) DeleteTheme(ctx context.Context, name string, kind Kind) Outcome {
	if err := s.remote.Delete(ctx, name, kind); err != nil {
		s.logger.LogError(ctx, err, "remote delete failed, queueing delete",
			slog.String("name", name),
			slog.String("kind", string(kind)),
		)
		action := PendingAction{
			Intent:   IntentDelete,
			Name:     name,
			Kind:     kind,
			QueuedAt: s.clock(),
		}
		if qerr := s.queue.Enqueue(ctx, action); qerr != nil {
			s.logger.LogError(ctx, qerr, "queueing delete failed, mutation lost")
			return OutcomeFailed
		}
		return OutcomeQueuedOffline
	}

	cache := s.cache.Read(ctx)
	applyDelete(&cache, name, kind)
	if err := s.cache.Write(ctx, cache); err != nil {
		s.logger.LogError(ctx, err, "cache write after delete failed")
	}
	return OutcomeCommitted
}

// PlayBank returns the word bank for gameplay reads: the cached bank, or
// the bundled fallback bank when the cache is empty. The fallback is never
// written into the cache, so a later successful sync supersedes it without
// any cleanup.
func (s *Service) PlayBank(ctx context.Context) map[string][]string {
	cache := s.cache.Read(ctx)
	if !cache.IsEmpty() {
		out := make(map[string][]string, len(cache.Bank))
		for theme, words := range cache.Bank {
			out[theme] = append([]string(nil), words...)
		}
		return out
	}
	return FallbackBank()
}
