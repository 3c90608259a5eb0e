package wordsync

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"

	syncErrors "github.com/tapwords/wordsync/errors"
	"github.com/tapwords/wordsync/logging"
)

// Reconciler runs the flush-then-pull synchronization pass that brings the
// local cache into agreement with the remote service. Failures never
// propagate to the caller as errors: every remote hiccup degrades to
// "keep prior state", and the pass reports what happened through the
// state it leaves behind plus a diagnostic SyncResult.
type Reconciler struct {
	cache  *CacheStore
	queue  *Queue
	remote Remote
	logger *logging.Logger
	clock  func() time.Time

	// Concurrent Sync calls (cold-start effect racing a pull-to-refresh)
	// are coalesced into one pass. Correctness does not depend on this —
	// merges are idempotent and monotonic — it only avoids duplicate
	// remote traffic.
	group singleflight.Group

	onSync func(*SyncResult)
}

func NewReconciler(cache *CacheStore, queue *Queue, remote Remote) *Reconciler {
	return &Reconciler{
		cache:  cache,
		queue:  queue,
		remote: remote,
		logger: logging.WithComponent(logging.Component("reconciler")),
		clock:  time.Now,
	}
}

// Sync performs one reconciliation pass: flush the pending queue, pull the
// remote collection, merge, persist. Always returns a result, never an
// error.
func (r *Reconciler) Sync(ctx context.Context) *SyncResult {
	v, _, _ := r.group.Do("sync", func() (interface{}, error) {
		return r.sync(ctx), nil
	})
	result := v.(*SyncResult)
	if r.onSync != nil {
		r.onSync(result)
	}
	return result
}

func (r *Reconciler) sync(ctx context.Context) *SyncResult {
	result := &SyncResult{StartTime: r.clock()}
	defer func() {
		result.Duration = time.Since(result.StartTime)
		r.logger.Info("sync pass finished",
			slog.Int("flushed", result.Flushed),
			slog.Int("still_queued", result.StillQueued),
			slog.Bool("pull_completed", result.PullCompleted),
			slog.Int("stages_merged", result.StagesMerged),
			slog.Int("stages_purged", result.StagesPurged),
			slog.Duration("duration", result.Duration),
		)
	}()

	r.flush(ctx, result)
	r.pull(ctx, result)
	return result
}

// flush replays the pending queue against the remote. Actions whose replay
// fails stay queued for the next pass.
func (r *Reconciler) flush(ctx context.Context, result *SyncResult) {
	flushed, remaining, err := r.queue.Drain(ctx, r.replay)
	result.Flushed = flushed
	result.StillQueued = remaining
	if err != nil {
		result.Errors = append(result.Errors, err)
	}
}

// replay re-attempts one queued mutation. Saves recompute the version from
// the cache at replay time, so a replay never reuses a number a successful
// concurrent save already consumed.
func (r *Reconciler) replay(ctx context.Context, action PendingAction) error {
	switch action.Intent {
	case IntentSave:
		cache := r.cache.Read(ctx)
		item := ContentItem{
			Name:       action.Name,
			Kind:       action.Kind,
			Words:      action.Words,
			ActiveFrom: action.ActiveFrom,
			ActiveTo:   action.ActiveTo,
			Version:    currentVersion(cache, action.Name, action.Kind) + 1,
		}
		if err := r.remote.Upsert(ctx, item); err != nil {
			return syncErrors.WrapOpComponent(err, syncErrors.OpUpsert, "reconciler")
		}
		applySave(&cache, item)
		if err := r.cache.Write(ctx, cache); err != nil {
			// Remote accepted the write; the next pull restores the cache.
			r.logger.LogError(ctx, err, "cache write after replayed save failed")
		}
		return nil

	case IntentDelete:
		if err := r.remote.Delete(ctx, action.Name, action.Kind); err != nil {
			return syncErrors.WrapOpComponent(err, syncErrors.OpDelete, "reconciler")
		}
		cache := r.cache.Read(ctx)
		applyDelete(&cache, action.Name, action.Kind)
		if err := r.cache.Write(ctx, cache); err != nil {
			r.logger.LogError(ctx, err, "cache write after replayed delete failed")
		}
		return nil

	default:
		// A poison entry can never succeed; dropping it beats wedging the
		// queue forever.
		r.logger.Warn("dropping pending action with unknown intent",
			slog.String("intent", string(action.Intent)),
			slog.String("name", action.Name),
		)
		return nil
	}
}

// pull fetches the whole remote collection and merges it into the local
// cache. On fetch failure the cache and last-sync marker are left
// untouched: a transient network failure never destroys local state.
func (r *Reconciler) pull(ctx context.Context, result *SyncResult) {
	items, err := r.remote.QueryAll(ctx)
	if err != nil {
		wrapped := syncErrors.NewNetworkError(syncErrors.OpPull, "reconciler", err)
		result.Errors = append(result.Errors, wrapped)
		r.logger.LogError(ctx, wrapped, "pull aborted, keeping local state")
		return
	}
	result.PullCompleted = true

	// An empty result means no content has been authored yet, not that
	// everything was deleted. The cache is left alone; callers fall back
	// to the bundled dataset through IsEmpty.
	if len(items) > 0 {
		local := r.cache.Read(ctx)
		merged, changed := mergeRemote(local, items, result)
		if changed {
			if err := r.cache.Write(ctx, merged); err != nil {
				result.Errors = append(result.Errors, err)
				r.logger.LogError(ctx, err, "merged cache write failed")
			}
		}
	}

	if err := r.cache.stampLastSync(ctx, r.clock()); err != nil {
		result.Errors = append(result.Errors, err)
		r.logger.LogError(ctx, err, "last-sync marker write failed")
	}
}

// mergeRemote merges a non-empty remote item list into a snapshot of the
// local cache. Stage items merge incrementally by version comparison and
// disappear only by absence from the remote list; the challenges list is
// replaced wholesale.
func mergeRemote(local LocalCache, items []ContentItem, result *SyncResult) (LocalCache, bool) {
	next := local.Clone()
	changed := false

	remoteStages := map[string]struct{}{}
	remoteChallenges := make([]ContentItem, 0)

	for _, item := range items {
		switch item.Kind {
		case KindStage:
			remoteStages[item.Name] = struct{}{}
			if item.Version > next.Versions[item.Name] {
				next.Bank[item.Name] = append([]string(nil), item.Words...)
				next.Versions[item.Name] = item.Version
				if !lo.Contains(next.Themes, item.Name) {
					next.Themes = append(next.Themes, item.Name)
				}
				changed = true
				result.StagesMerged++
			}
		case KindChallenge:
			item.Words = append([]string(nil), item.Words...)
			remoteChallenges = append(remoteChallenges, item)
		}
	}

	// Deletion on the server is the only way stage content disappears
	// locally: purge any theme absent from the remote stage list.
	kept := lo.Filter(next.Themes, func(theme string, _ int) bool {
		_, ok := remoteStages[theme]
		return ok
	})
	if len(kept) != len(next.Themes) {
		for _, theme := range next.Themes {
			if _, ok := remoteStages[theme]; !ok {
				delete(next.Bank, theme)
				delete(next.Versions, theme)
				result.StagesPurged++
			}
		}
		next.Themes = kept
		changed = true
	}

	result.ChallengesPulled = len(remoteChallenges)
	if !challengesEqual(next.Challenges, remoteChallenges) {
		next.Challenges = remoteChallenges
		changed = true
	}

	return next, changed
}

func challengesEqual(a, b []ContentItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !itemEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func itemEqual(a, b ContentItem) bool {
	if a.Name != b.Name || a.Kind != b.Kind || a.Version != b.Version ||
		a.ActiveFrom != b.ActiveFrom || a.ActiveTo != b.ActiveTo ||
		!a.UpdatedAt.Equal(b.UpdatedAt) || len(a.Words) != len(b.Words) {
		return false
	}
	for i := range a.Words {
		if a.Words[i] != b.Words[i] {
			return false
		}
	}
	return true
}

// currentVersion returns the locally known version for (name, kind),
// defaulting to 0 when absent.
func currentVersion(cache LocalCache, name string, kind Kind) int {
	switch kind {
	case KindStage:
		return cache.Versions[name]
	case KindChallenge:
		for _, ch := range cache.Challenges {
			if ch.Name == name {
				return ch.Version
			}
		}
	}
	return 0
}

// applySave applies a successfully committed save to the cache snapshot.
func applySave(cache *LocalCache, item ContentItem) {
	switch item.Kind {
	case KindStage:
		cache.Bank[item.Name] = append([]string(nil), item.Words...)
		cache.Versions[item.Name] = item.Version
		if !lo.Contains(cache.Themes, item.Name) {
			cache.Themes = append(cache.Themes, item.Name)
		}
	case KindChallenge:
		item.Words = append([]string(nil), item.Words...)
		for i, ch := range cache.Challenges {
			if ch.Name == item.Name {
				cache.Challenges[i] = item
				return
			}
		}
		cache.Challenges = append(cache.Challenges, item)
	}
}

// applyDelete applies a successfully committed delete to the cache snapshot.
func applyDelete(cache *LocalCache, name string, kind Kind) {
	switch kind {
	case KindStage:
		cache.Themes = lo.Filter(cache.Themes, func(theme string, _ int) bool {
			return theme != name
		})
		delete(cache.Bank, name)
		delete(cache.Versions, name)
	case KindChallenge:
		cache.Challenges = lo.Filter(cache.Challenges, func(ch ContentItem, _ int) bool {
			return ch.Name != name
		})
	}
}
