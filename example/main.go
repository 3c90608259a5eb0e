// Command example demonstrates wiring the sync layer end to end: a SQLite
// persistence substrate, a REST remote, one reconciliation pass, and the
// gameplay read path with its bundled fallback.
//
// Configuration comes from the environment (see .env.example). At minimum
// set WORDSYNC_REMOTE_URL; without it the demo still runs, serving the
// bundled fallback bank.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	wordsync "github.com/tapwords/wordsync"
	"github.com/tapwords/wordsync/kv/sqlitekv"
	"github.com/tapwords/wordsync/logging"
	"github.com/tapwords/wordsync/remote/rest"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logCfg, err := logging.ConfigFromEnv()
	if err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	logging.Init(logCfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlitekv.NewWithDataSource("file:wordsync.db")
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	remoteCfg, err := rest.ConfigFromEnv()
	if err != nil {
		return fmt.Errorf("remote config: %w", err)
	}
	if remoteCfg.BaseURL == "" {
		// An unreachable remote still makes a working demo: the pull fails,
		// edits queue, and gameplay serves the bundled fallback bank.
		remoteCfg.BaseURL = "http://localhost:9/rest/v1"
	}
	remote, err := rest.New(remoteCfg)
	if err != nil {
		return fmt.Errorf("remote client: %w", err)
	}

	svc := wordsync.New(store, remote, &wordsync.Options{
		OnSync: func(r *wordsync.SyncResult) {
			logging.Info("sync pass finished",
				slog.Duration("duration", r.Duration),
				slog.Int("flushed", r.Flushed),
				slog.Int("still_queued", r.StillQueued),
				slog.Int("stages_merged", r.StagesMerged),
			)
		},
	})

	if err := svc.InitializeCache(ctx); err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}

	// Cold-start pull. A failed pull is fine: gameplay falls back to the
	// bundled bank and the next pass catches up.
	result := svc.Sync(ctx)
	for _, e := range result.Errors {
		logging.Warn("sync issue", slog.String("error", e.Error()))
	}

	bank := svc.PlayBank(ctx)
	fmt.Printf("playable themes (%d):\n", len(bank))
	for theme, words := range bank {
		fmt.Printf("  %-10s %s...\n", theme, words[0])
	}

	if at, ok := svc.LastSyncAt(ctx); ok {
		fmt.Println("last synced:", at.Format(time.RFC3339))
	} else {
		fmt.Println("never synced; serving bundled content")
	}

	today := time.Now()
	for _, ch := range svc.Challenges(ctx) {
		if ch.ActiveOn(today) {
			fmt.Println("active challenge:", ch.Name)
		}
	}

	if n := svc.PendingCount(ctx); n > 0 {
		fmt.Printf("%d edit(s) waiting for connectivity\n", n)
	}
	return nil
}
