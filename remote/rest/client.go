// Package rest implements the wordsync.Remote boundary over a hosted
// row-oriented REST interface (PostgREST-style filters and upserts).
// Failures are classified into retryable network errors and permanent
// request errors so the reconciler's queue-or-abort paths stay honest.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/tapwords/wordsync"
	syncErrors "github.com/tapwords/wordsync/errors"
	"github.com/tapwords/wordsync/logging"
)

const component = "rest-remote"

// Config holds connection settings for the remote content service.
type Config struct {
	// BaseURL is the root of the row API, e.g. "https://x.example.co/rest/v1".
	BaseURL string `env:"WORDSYNC_REMOTE_URL"`

	// APIKey is sent as both the apikey header and a bearer token.
	APIKey string `env:"WORDSYNC_REMOTE_KEY"`

	// Table is the word-set collection name.
	Table string `env:"WORDSYNC_REMOTE_TABLE" envDefault:"word_sets"`

	// EventsTable is the events/feedback collection name.
	EventsTable string `env:"WORDSYNC_REMOTE_EVENTS_TABLE" envDefault:"events"`

	// Timeout bounds each individual request. A hung remote call must
	// fail deterministically so it funnels into the queue-or-abort paths.
	Timeout time.Duration `env:"WORDSYNC_REMOTE_TIMEOUT" envDefault:"10s"`

	// Retry behavior for retryable failures.
	MaxAttempts    int           `env:"WORDSYNC_REMOTE_MAX_ATTEMPTS" envDefault:"3"`
	InitialBackoff time.Duration `env:"WORDSYNC_REMOTE_INITIAL_BACKOFF" envDefault:"200ms"`
	MaxBackoff     time.Duration `env:"WORDSYNC_REMOTE_MAX_BACKOFF" envDefault:"5s"`

	// Client-side rate limit, to keep refresh storms polite.
	RequestsPerSecond float64 `env:"WORDSYNC_REMOTE_RPS" envDefault:"5"`
	Burst             int     `env:"WORDSYNC_REMOTE_BURST" envDefault:"5"`
}

func (c *Config) setDefaults() {
	if c.Table == "" {
		c.Table = "word_sets"
	}
	if c.EventsTable == "" {
		c.EventsTable = "events"
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.InitialBackoff == 0 {
		c.InitialBackoff = 200 * time.Millisecond
	}
	if c.MaxBackoff == 0 {
		c.MaxBackoff = 5 * time.Second
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = 5
	}
	if c.Burst == 0 {
		c.Burst = 5
	}
}

// Client talks to the remote content collection. Safe for concurrent use.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  *logging.Logger
	backoff exponentialBackoff
}

var _ wordsync.Remote = (*Client)(nil)

// New validates the config and returns a ready client.
func New(cfg Config) (*Client, error) {
	cfg.setDefaults()
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid BaseURL: %w", err)
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:  logging.WithComponent(logging.Component(component)),
		backoff: exponentialBackoff{
			initialDelay: cfg.InitialBackoff,
			maxDelay:     cfg.MaxBackoff,
			multiplier:   2.0,
		},
	}, nil
}

// QueryAll fetches the entire word-set collection, newest first. The
// ordering is cosmetic; the reconciler merges by version.
func (c *Client) QueryAll(ctx context.Context) ([]wordsync.ContentItem, error) {
	endpoint := fmt.Sprintf("%s/%s?select=*&order=updated_at.desc", c.cfg.BaseURL, c.cfg.Table)

	var items []wordsync.ContentItem
	err := c.withRetry(ctx, syncErrors.OpQuery, func() error {
		body, err := c.do(ctx, http.MethodGet, endpoint, nil, nil)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, &items); err != nil {
			return syncErrors.NewWithComponent(syncErrors.OpQuery, component,
				fmt.Errorf("decoding response: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Upsert inserts or replaces the row keyed by (name, kind).
func (c *Client) Upsert(ctx context.Context, item wordsync.ContentItem) error {
	endpoint := fmt.Sprintf("%s/%s?on_conflict=name,kind", c.cfg.BaseURL, c.cfg.Table)

	payload, err := json.Marshal([]wordsync.ContentItem{item})
	if err != nil {
		return syncErrors.NewWithComponent(syncErrors.OpUpsert, component, err)
	}

	headers := map[string]string{"Prefer": "resolution=merge-duplicates"}
	return c.withRetry(ctx, syncErrors.OpUpsert, func() error {
		_, err := c.do(ctx, http.MethodPost, endpoint, payload, headers)
		return err
	})
}

// Delete removes the row keyed by (name, kind). Deleting an absent row is
// not an error, which keeps queued deletes idempotent under replay.
func (c *Client) Delete(ctx context.Context, name string, kind wordsync.Kind) error {
	endpoint := fmt.Sprintf("%s/%s?name=eq.%s&kind=eq.%s",
		c.cfg.BaseURL, c.cfg.Table, url.QueryEscape(name), url.QueryEscape(string(kind)))

	return c.withRetry(ctx, syncErrors.OpDelete, func() error {
		_, err := c.do(ctx, http.MethodDelete, endpoint, nil, nil)
		return err
	})
}

// InsertEvent records one analytics/feedback row, fire-and-forget: the
// outcome is logged and discarded, never retried and never queued.
func (c *Client) InsertEvent(ctx context.Context, name string, payload map[string]any) {
	endpoint := fmt.Sprintf("%s/%s", c.cfg.BaseURL, c.cfg.EventsTable)

	row := map[string]any{"name": name, "payload": payload}
	body, err := json.Marshal([]map[string]any{row})
	if err != nil {
		c.logger.LogError(ctx, err, "event payload not serializable, dropped")
		return
	}

	if _, err := c.do(ctx, http.MethodPost, endpoint, body, nil); err != nil {
		c.logger.LogError(ctx, err, "event insert failed, dropped",
			slog.String("event", name))
	}
}

// do executes one rate-limited, timeout-bounded request and classifies
// failures: transport errors and 5xx responses are retryable network
// errors, other non-2xx responses are permanent.
func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, headers map[string]string) ([]byte, error) {
	op := syncErrors.Operation(method)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, syncErrors.NewWithComponent(op, component, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, endpoint, reader)
	if err != nil {
		return nil, syncErrors.NewWithComponent(op, component, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("apikey", c.cfg.APIKey)
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, syncErrors.NewNetworkError(op, component, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, syncErrors.NewNetworkError(op, component, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return data, nil
	case resp.StatusCode >= 500:
		return nil, syncErrors.NewNetworkError(op, component,
			fmt.Errorf("server error %d: %s", resp.StatusCode, truncate(data)))
	default:
		return nil, syncErrors.NewWithComponent(op, component,
			fmt.Errorf("request rejected with %d: %s", resp.StatusCode, truncate(data)))
	}
}

func (c *Client) withRetry(ctx context.Context, op syncErrors.Operation, operation func() error) error {
	err := operation()
	if err == nil {
		return nil
	}
	if !syncErrors.IsRetryable(err) {
		return err
	}

	for attempt := 1; attempt < c.cfg.MaxAttempts; attempt++ {
		delay := c.backoff.nextDelay(attempt - 1)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return syncErrors.NewNetworkError(op, component, ctx.Err())
		case <-timer.C:
		}

		if err = operation(); err == nil {
			return nil
		}
		if !syncErrors.IsRetryable(err) {
			return err
		}
	}
	return err
}

type exponentialBackoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
}

func (eb exponentialBackoff) nextDelay(attempt int) time.Duration {
	delay := float64(eb.initialDelay)
	for i := 0; i < attempt; i++ {
		delay *= eb.multiplier
	}
	result := time.Duration(delay)
	if result > eb.maxDelay {
		result = eb.maxDelay
	}
	return result
}

func truncate(data []byte) string {
	const limit = 256
	if len(data) > limit {
		return string(data[:limit]) + "..."
	}
	return string(data)
}
