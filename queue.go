package wordsync

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	syncErrors "github.com/tapwords/wordsync/errors"
	"github.com/tapwords/wordsync/kv"
	"github.com/tapwords/wordsync/logging"
)

// Queue is the ordered, append-only log of local mutations that could not
// be committed remotely. It is persisted whole under one key so it
// survives process restarts. Volume is expected to stay tiny (admin edits
// only), so there is no eviction policy.
type Queue struct {
	kv     kv.Store
	logger *logging.Logger
}

func NewQueue(store kv.Store) *Queue {
	return &Queue{
		kv:     store,
		logger: logging.WithComponent(logging.Component("queue")),
	}
}

func (q *Queue) load(ctx context.Context) []PendingAction {
	raw, ok, err := q.kv.Get(ctx, queueKey)
	if err != nil {
		q.logger.LogError(ctx, syncErrors.WrapStorage(err, syncErrors.OpRead, "queue"),
			"pending queue read failed, treating as empty")
		return nil
	}
	if !ok {
		return nil
	}

	var actions []PendingAction
	if err := json.Unmarshal([]byte(raw), &actions); err != nil {
		q.logger.LogError(ctx, syncErrors.NewCorruptRecordError(syncErrors.OpRead, "queue", err),
			"pending queue corrupt, treating as empty")
		return nil
	}
	return actions
}

func (q *Queue) save(ctx context.Context, actions []PendingAction) error {
	if actions == nil {
		actions = []PendingAction{}
	}
	data, err := json.Marshal(actions)
	if err != nil {
		return syncErrors.NewWithComponent(syncErrors.OpWrite, "queue", err)
	}
	return syncErrors.WrapStorage(q.kv.Set(ctx, queueKey, string(data)), syncErrors.OpWrite, "queue")
}

// Enqueue appends an action to the persisted queue. ID and QueuedAt are
// filled in when absent.
func (q *Queue) Enqueue(ctx context.Context, action PendingAction) error {
	if action.ID == "" {
		action.ID = uuid.NewString()
	}
	if action.QueuedAt.IsZero() {
		action.QueuedAt = time.Now()
	}

	actions := append(q.load(ctx), action)
	if err := q.save(ctx, actions); err != nil {
		return syncErrors.WrapStorage(err, syncErrors.OpEnqueue, "queue")
	}

	q.logger.Info("action queued for later sync",
		slog.String("intent", string(action.Intent)),
		slog.String("name", action.Name),
		slog.String("kind", string(action.Kind)),
		slog.Int("queue_len", len(actions)),
	)
	return nil
}

// Pending returns a copy of the queued actions, in order. Diagnostic only.
func (q *Queue) Pending(ctx context.Context) []PendingAction {
	actions := q.load(ctx)
	out := make([]PendingAction, len(actions))
	copy(out, actions)
	return out
}

// Len returns the number of queued actions.
func (q *Queue) Len(ctx context.Context) int {
	return len(q.load(ctx))
}

// Drain invokes replay for every queued action in original insertion
// order, then removes exactly the actions whose replay succeeded and
// persists the remainder in their original relative order. Each action is
// attempted once per Drain call; a failed action does not block the
// attempts of actions queued after it. This is at-least-once delivery:
// replay must be idempotent against the remote.
func (q *Queue) Drain(ctx context.Context, replay func(context.Context, PendingAction) error) (flushed, remaining int, err error) {
	actions := q.load(ctx)
	if len(actions) == 0 {
		return 0, 0, nil
	}

	keep := make([]PendingAction, 0, len(actions))
	for _, action := range actions {
		if replayErr := replay(ctx, action); replayErr != nil {
			q.logger.LogError(ctx, replayErr, "replay failed, action stays queued",
				slog.String("intent", string(action.Intent)),
				slog.String("name", action.Name),
			)
			keep = append(keep, action)
			continue
		}
		flushed++
	}

	if flushed > 0 {
		if saveErr := q.save(ctx, keep); saveErr != nil {
			// The replayed commits stand; worst case they are replayed
			// again next pass, which the upsert/delete contract tolerates.
			return flushed, len(keep), syncErrors.WrapStorage(saveErr, syncErrors.OpDrain, "queue")
		}
	}
	return flushed, len(keep), nil
}
