package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"chefmate/internal/recipe"
	"chefmate/internal/shopping"
)

const (
	recipesFile = "recipes.json"
	itemsFile   = "shopping_items.json"
)

// Store keeps recipes and shopping items as JSON blobs under a base directory.
// It implements recipe.Store and shopping.Store with ids and timestamps
// assigned locally. Every write replaces the whole blob atomically.
type Store struct {
	basePath string
	now      func() time.Time
	newID    func() string

	mu sync.Mutex
}

// NewStore creates a new Store and ensures the base directory exists.
func NewStore(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &Store{
		basePath: basePath,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    newID,
	}, nil
}

var (
	_ recipe.Store   = (*Store)(nil)
	_ shopping.Store = (*Store)(nil)
)

func (s *Store) path(name string) string {
	return filepath.Join(s.basePath, name)
}

// load reads a blob. A missing file is an empty collection.
func load[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var rows []T
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

// save writes a blob through a temp file and rename.
func save[T any](path string, rows []T) error {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// mutate loads a blob, lets fn change it and saves the result when fn
// reports a change.
func mutate[T any](s *Store, name string, fn func([]T) ([]T, bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := load[T](s.path(name))
	if err != nil {
		return err
	}
	next, changed, err := fn(rows)
	if err != nil || !changed {
		return err
	}
	return save(s.path(name), next)
}

func read[T any](s *Store, name string) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return load[T](s.path(name))
}

func removeIDs[T any](rows []T, id func(T) string, ids []string) ([]T, bool) {
	n := len(rows)
	rows = slices.DeleteFunc(rows, func(r T) bool { return slices.Contains(ids, id(r)) })
	return rows, len(rows) != n
}
