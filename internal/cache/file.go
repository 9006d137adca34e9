package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps the cached catalog in a single file on disk.
type FileStore struct {
	path string
}

// NewFileStore returns a file-backed store writing to path. The parent
// directory is created on the first write, not here, so constructing a store
// against a read-only location only fails if a write is attempted.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("cache: file store path is empty")
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache: read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil, ErrMiss
	}
	return data, nil
}

// Write is atomic: the blob lands in a temp file first and is renamed over
// the cache path, so a crash mid-write never leaves a truncated catalog.
func (s *FileStore) Write(_ context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cache: create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("cache: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("cache: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cache: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cache: replace %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) Name() string { return "file" }

func (s *FileStore) Close() error { return nil }
