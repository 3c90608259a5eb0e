// Package filekv provides a kv.Store backed by one file per key in a
// directory. Writes go through a temp file and an atomic rename, so a
// crash mid-write leaves the previous value intact rather than a
// truncated record.
package filekv

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/tapwords/wordsync/kv"
	syncErrors "github.com/tapwords/wordsync/errors"
)

const suffix = ".kv"

// Store persists each key as dir/<escaped-key>.kv.
type Store struct {
	dir string
}

var _ kv.Store = (*Store)(nil)

// New creates the directory if needed and returns a store rooted at it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, syncErrors.NewStorageError(syncErrors.OpInit, "kv/filekv", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+suffix)
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, syncErrors.NewStorageError(syncErrors.OpRead, "kv/filekv", err)
	}
	return string(data), true, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	tmp, err := os.CreateTemp(s.dir, "write-*")
	if err != nil {
		return syncErrors.NewStorageError(syncErrors.OpWrite, "kv/filekv", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return syncErrors.NewStorageError(syncErrors.OpWrite, "kv/filekv", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return syncErrors.NewStorageError(syncErrors.OpWrite, "kv/filekv", err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return syncErrors.NewStorageError(syncErrors.OpWrite, "kv/filekv", err)
	}
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return syncErrors.NewStorageError(syncErrors.OpDelete, "kv/filekv", err)
	}
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return syncErrors.NewStorageError(syncErrors.OpDelete, "kv/filekv", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return syncErrors.NewStorageError(syncErrors.OpDelete, "kv/filekv", err)
		}
	}
	return nil
}

func (s *Store) GetMulti(ctx context.Context, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		value, ok, err := s.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			out[key] = value
		}
	}
	return out, nil
}

func (s *Store) RemoveMulti(ctx context.Context, keys []string) error {
	for _, key := range keys {
		if err := s.Remove(ctx, key); err != nil {
			return err
		}
	}
	return nil
}
