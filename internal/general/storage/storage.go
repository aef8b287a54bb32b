// Package storage provides KeyValueStore implementations that need no database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"trip-tracker/internal/ports"
)

var ErrEmptyKey = errors.New("storage key is required")

// Memory is a process-local KeyValueStore.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var (
	_ ports.KeyValueStore = (*Memory)(nil)
	_ ports.KeyValueStore = (*File)(nil)
)

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (store *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	store.mu.RLock()
	defer store.mu.RUnlock()
	v, ok := store.data[key]
	return slices.Clone(v), ok, nil
}

func (store *Memory) Put(_ context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	store.mu.Lock()
	store.data[key] = slices.Clone(value)
	store.mu.Unlock()
	return nil
}

// File keeps one file per key under dir. Writes go through a temp file and
// a rename so a crash never leaves a half-written value.
type File struct {
	dir string
	mu  sync.Mutex
}

// NewFile creates dir if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &File{dir: dir}, nil
}

func (store *File) path(key string) string {
	// a key never escapes dir
	return filepath.Join(store.dir, url.PathEscape(key)+".json")
}

func (store *File) Get(_ context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	data, err := os.ReadFile(store.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %q: %w", key, err)
	}
	return data, true, nil
}

func (store *File) Put(_ context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	store.mu.Lock()
	defer store.mu.Unlock()

	tmp, err := os.CreateTemp(store.dir, ".put-*")
	if err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("write %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), store.path(key)); err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	return nil
}
