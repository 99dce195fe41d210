package file

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// store keeps one JSON document per record under dir. Keys may contain a
// subdirectory component (tenant scoping). A single RWMutex serializes
// writers; the file backend targets development and tests, not contention.
type store[T any] struct {
	mu  sync.RWMutex
	dir string
}

func newStore[T any](root, collection string) *store[T] {
	return &store[T]{dir: path.Join(root, collection)}
}

func (s *store[T]) get(key string) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.readFile(key)
}

func (s *store[T]) put(key string, record *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeFile(key, record)
}

func (s *store[T]) remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.removeFile(key)
}

// listDir returns every record directly under dir/sub.
func (s *store[T]) listDir(sub string) ([]*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listFiles(sub)
}

// walk returns every record in the collection across all subdirectories.
func (s *store[T]) walk() ([]*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.walkFiles()
}

// mutate runs fn under the write lock so check-then-write sequences are
// atomic with respect to other store operations. fn must use the unlocked
// file helpers, not the locking methods.
func (s *store[T]) mutate(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fn()
}

func (s *store[T]) path(key string) string {
	return filepath.Clean(path.Join(s.dir, key+".json"))
}

func (s *store[T]) readFile(key string) (*T, error) {
	body, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read record %s: %w", key, err)
	}

	var record T

	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record %s: %w", key, err)
	}

	return &record, nil
}

func (s *store[T]) writeFile(key string, record *T) error {
	filePath := s.path(key)

	if err := os.MkdirAll(filepath.Dir(filePath), 0750); err != nil {
		return fmt.Errorf("failed to create collection directory: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record %s: %w", key, err)
	}

	return os.WriteFile(filePath, data, 0600)
}

func (s *store[T]) removeFile(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete record %s: %w", key, err)
	}

	return nil
}

// listFiles reads every record directly under dir/sub. A missing directory
// is an empty collection, not an error.
func (s *store[T]) listFiles(sub string) ([]*T, error) {
	entries, err := os.ReadDir(path.Join(s.dir, sub))
	if err != nil {
		if os.IsNotExist(err) {
			return make([]*T, 0), nil
		}

		return nil, fmt.Errorf("failed to list records in %s: %w", sub, err)
	}

	records := make([]*T, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		record, err := s.readFile(path.Join(sub, strings.TrimSuffix(entry.Name(), ".json")))
		if err != nil {
			return nil, err
		}

		if record != nil {
			records = append(records, record)
		}
	}

	return records, nil
}

func (s *store[T]) walkFiles() ([]*T, error) {
	records := make([]*T, 0)

	err := filepath.WalkDir(s.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}

			return err
		}

		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}

		body, err := os.ReadFile(filepath.Clean(p))
		if err != nil {
			return fmt.Errorf("failed to read record %s: %w", p, err)
		}

		var record T

		if err := json.Unmarshal(body, &record); err != nil {
			return fmt.Errorf("failed to unmarshal record %s: %w", p, err)
		}

		records = append(records, &record)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}
