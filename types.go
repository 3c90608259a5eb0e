package wordsync

import (
	"time"
)

// Kind distinguishes the two content collections sharing one remote table.
type Kind string

const (
	// KindStage is a themed word set used in the main progression mode.
	KindStage Kind = "Stage"

	// KindChallenge is a time-boxed word set used in the side game mode.
	KindChallenge Kind = "Challenge"
)

// ContentItem is one unit of content as stored remotely and cached locally.
type ContentItem struct {
	Name    string   `json:"name"`
	Kind    Kind     `json:"kind"`
	Words   []string `json:"words"`
	Version int      `json:"version"`

	// ActiveFrom and ActiveTo are inclusive ISO dates (2006-01-02) and are
	// meaningful only for KindChallenge.
	ActiveFrom string `json:"active_from,omitempty"`
	ActiveTo   string `json:"active_to,omitempty"`

	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// ActiveOn reports whether a challenge item's activity window covers the
// given day. Items with an unparsable or missing window are never active.
func (c ContentItem) ActiveOn(day time.Time) bool {
	from, err := time.Parse("2006-01-02", c.ActiveFrom)
	if err != nil {
		return false
	}
	to, err := time.Parse("2006-01-02", c.ActiveTo)
	if err != nil {
		return false
	}
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(from) && !d.After(to)
}

// Cache schema versions. v1 predates the embedded challenges list; v2 adds
// it. Initialize migrates older blobs in place, one migration per bump.
const (
	schemaV1 = 1
	schemaV2 = 2

	// SchemaVersion is the version written by the current code.
	SchemaVersion = schemaV2
)

// LocalCache is the single on-device materialized view of all content.
// Themes, Bank and Versions always carry identical key sets after any
// completed mutation; Challenges is replaced wholesale on every pull.
type LocalCache struct {
	SchemaVersion int                 `json:"schema_version"`
	Themes        []string            `json:"themes"`
	Bank          map[string][]string `json:"bank"`
	Versions      map[string]int      `json:"versions"`
	Challenges    []ContentItem       `json:"challenges"`
}

// IsEmpty reports whether no stage content is cached. Callers use this to
// decide when to substitute the bundled fallback bank on read paths.
func (c LocalCache) IsEmpty() bool {
	return len(c.Themes) == 0
}

// Clone returns a deep copy so merge passes never alias the caller's maps.
func (c LocalCache) Clone() LocalCache {
	out := LocalCache{
		SchemaVersion: c.SchemaVersion,
		Themes:        make([]string, len(c.Themes)),
		Bank:          make(map[string][]string, len(c.Bank)),
		Versions:      make(map[string]int, len(c.Versions)),
		Challenges:    make([]ContentItem, len(c.Challenges)),
	}
	copy(out.Themes, c.Themes)
	for name, words := range c.Bank {
		out.Bank[name] = append([]string(nil), words...)
	}
	for name, v := range c.Versions {
		out.Versions[name] = v
	}
	for i, ch := range c.Challenges {
		ch.Words = append([]string(nil), ch.Words...)
		out.Challenges[i] = ch
	}
	return out
}

// normalize defaults nil collections so a partially decoded or legacy blob
// behaves like an empty one instead of panicking on map writes.
func (c *LocalCache) normalize() {
	if c.Themes == nil {
		c.Themes = []string{}
	}
	if c.Bank == nil {
		c.Bank = map[string][]string{}
	}
	if c.Versions == nil {
		c.Versions = map[string]int{}
	}
	if c.Challenges == nil {
		c.Challenges = []ContentItem{}
	}
}

func emptyCache() LocalCache {
	c := LocalCache{SchemaVersion: SchemaVersion}
	c.normalize()
	return c
}

// Intent is the kind of queued local mutation.
type Intent string

const (
	IntentSave   Intent = "save"
	IntentDelete Intent = "delete"
)

// PendingAction is one local mutation awaiting a successful remote commit.
// It is created when a save/delete fails against the remote service and
// destroyed the moment its replay succeeds.
type PendingAction struct {
	ID     string `json:"id"`
	Intent Intent `json:"intent"`
	Name   string `json:"name"`
	Kind   Kind   `json:"kind"`

	// Save-only payload.
	Words      []string `json:"words,omitempty"`
	ActiveFrom string   `json:"active_from,omitempty"`
	ActiveTo   string   `json:"active_to,omitempty"`

	// QueuedAt is diagnostic only; replay order is queue order, and
	// conflict resolution is by version, never by timestamp.
	QueuedAt time.Time `json:"queued_at"`
}

// Outcome reports how a facade write landed. Transport failures are a
// recoverable outcome, not an error: the mutation is queued and the caller
// can show a "saved offline" notice.
type Outcome int

const (
	// OutcomeCommitted means the remote accepted the write and the local
	// cache was updated.
	OutcomeCommitted Outcome = iota

	// OutcomeQueuedOffline means the remote was unreachable and the write
	// now sits in the pending queue for the next reconciliation pass.
	OutcomeQueuedOffline

	// OutcomeFailed means neither the remote nor the queue accepted the
	// write; the mutation is lost unless the caller retries.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCommitted:
		return "committed"
	case OutcomeQueuedOffline:
		return "queued_offline"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SyncResult describes a completed reconciliation pass. It is diagnostic
// only: the engine reports success and failure through the state it leaves
// behind (cache, queue, last-sync marker), never through a return value a
// caller must interpret.
type SyncResult struct {
	StartTime time.Time
	Duration  time.Duration

	// Flush phase.
	Flushed     int
	StillQueued int

	// Pull phase.
	PullCompleted    bool
	StagesMerged     int
	StagesPurged     int
	ChallengesPulled int

	// Non-fatal errors encountered along the way.
	Errors []error
}
