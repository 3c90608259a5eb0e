// Package sqlitekv provides a SQLite implementation of the wordsync
// kv.Store, for host apps that already carry a SQLite database and want
// the cache, queue and marker blobs in it rather than in loose files.
package sqlitekv

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	stdSync "sync"
	"time"

	syncErrors "github.com/tapwords/wordsync/errors"
	"github.com/tapwords/wordsync/kv"
	"github.com/tapwords/wordsync/logging"

	// Go SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

// ErrStoreClosed is returned by all operations after Close.
var ErrStoreClosed = fmt.Errorf("store is closed")

// Config holds configuration options for the SQLite store.
type Config struct {
	// DataSourceName is the connection string for the SQLite database.
	// Example: "file:wordsync.db?_journal_mode=WAL"
	DataSourceName string

	// EnableWAL enables Write-Ahead Logging mode for better concurrency.
	// When true, automatically appends "?_journal_mode=WAL" to DataSourceName.
	EnableWAL bool

	// TableName is the name of the key/value table. Defaults to "wordsync_kv".
	TableName string

	// Connection pool settings.
	// Defaults: MaxOpen=10, MaxIdle=2, Lifetime=1h, IdleTime=5m
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func (c *Config) setDefaults() {
	if c.TableName == "" {
		c.TableName = "wordsync_kv"
	}
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 10
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 2
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = time.Hour
	}
	if c.ConnMaxIdleTime == 0 {
		c.ConnMaxIdleTime = 5 * time.Minute
	}
	if c.EnableWAL {
		if !strings.Contains(c.DataSourceName, "?_journal_mode=") {
			c.DataSourceName += "?_journal_mode=WAL"
		}
	}
}

// DefaultConfig returns a Config with WAL enabled and pool defaults applied.
func DefaultConfig(dataSourceName string) *Config {
	config := &Config{
		DataSourceName: dataSourceName,
		EnableWAL:      true,
	}
	config.setDefaults()
	return config
}

// Store implements kv.Store on a single SQLite table.
type Store struct {
	db        *sql.DB
	mu        stdSync.RWMutex
	closed    bool
	tableName string
	logger    *logging.Logger
}

var _ kv.Store = (*Store)(nil)

// New opens the database, configures the pool and ensures the schema.
func New(config *Config) (*Store, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	config.setDefaults()

	if config.DataSourceName == "" {
		return nil, fmt.Errorf("DataSourceName is required")
	}

	logger := logging.WithComponent(logging.Component("kv/sqlitekv"))

	db, err := sql.Open("sqlite3", config.DataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to sqlite database: %w", err)
	}

	store := &Store{
		db:        db,
		tableName: config.TableName,
		logger:    logger,
	}

	if err := store.setupSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database schema: %w", err)
	}

	logger.Info("sqlite kv store initialized",
		slog.String("table_name", config.TableName),
		slog.Bool("wal_enabled", config.EnableWAL),
	)
	return store, nil
}

// NewWithDataSource is a convenience constructor using DefaultConfig.
func NewWithDataSource(dataSourceName string) (*Store, error) {
	return New(DefaultConfig(dataSourceName))
}

func (s *Store) setupSchema() error {
	query := fmt.Sprintf(`
    CREATE TABLE IF NOT EXISTS %s (
        key        TEXT PRIMARY KEY,
        value      TEXT NOT NULL,
        updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );
    `, s.tableName)
	_, err := s.db.Exec(query)
	return err
}

func (s *Store) guard() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := s.guard(); err != nil {
		return "", false, err
	}

	var value string
	query := fmt.Sprintf(`SELECT value FROM %s WHERE key = ?`, s.tableName)
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, syncErrors.NewStorageError(syncErrors.OpRead, "kv/sqlitekv", err)
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.guard(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		s.tableName)
	_, err := s.db.ExecContext(ctx, query, key, value)
	return syncErrors.WrapStorage(err, syncErrors.OpWrite, "kv/sqlitekv")
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.guard(); err != nil {
		return err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE key = ?`, s.tableName)
	_, err := s.db.ExecContext(ctx, query, key)
	return syncErrors.WrapStorage(err, syncErrors.OpDelete, "kv/sqlitekv")
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.guard(); err != nil {
		return err
	}

	query := fmt.Sprintf(`DELETE FROM %s`, s.tableName)
	_, err := s.db.ExecContext(ctx, query)
	return syncErrors.WrapStorage(err, syncErrors.OpDelete, "kv/sqlitekv")
}

func (s *Store) GetMulti(ctx context.Context, keys []string) (map[string]string, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return map[string]string{}, nil
	}

	placeholders := strings.Repeat("?,", len(keys))
	placeholders = placeholders[:len(placeholders)-1]
	query := fmt.Sprintf(`SELECT key, value FROM %s WHERE key IN (%s)`, s.tableName, placeholders)

	args := make([]any, len(keys))
	for i, key := range keys {
		args[i] = key
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, syncErrors.NewStorageError(syncErrors.OpRead, "kv/sqlitekv", err)
	}
	defer rows.Close()

	out := make(map[string]string, len(keys))
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, syncErrors.NewStorageError(syncErrors.OpRead, "kv/sqlitekv", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, syncErrors.NewStorageError(syncErrors.OpRead, "kv/sqlitekv", err)
	}
	return out, nil
}

func (s *Store) RemoveMulti(ctx context.Context, keys []string) error {
	if err := s.guard(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return syncErrors.NewStorageError(syncErrors.OpDelete, "kv/sqlitekv", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	query := fmt.Sprintf(`DELETE FROM %s WHERE key = ?`, s.tableName)
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return syncErrors.NewStorageError(syncErrors.OpDelete, "kv/sqlitekv", err)
	}
	defer stmt.Close()

	for _, key := range keys {
		if _, err = stmt.ExecContext(ctx, key); err != nil {
			return syncErrors.NewStorageError(syncErrors.OpDelete, "kv/sqlitekv", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return syncErrors.NewStorageError(syncErrors.OpDelete, "kv/sqlitekv", err)
	}
	return nil
}

// Stats returns database statistics for monitoring.
func (s *Store) Stats() sql.DBStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return sql.DBStats{}
	}
	return s.db.Stats()
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
