package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"
)

// JSONStore keeps history as a JSON array in a single file. Every change
// rewrites the whole file atomically.
type JSONStore struct {
	mu   sync.Mutex
	path string
}

// NewJSONStore creates a store for the file at path. The file is created
// on the first write.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Load reads the file. A missing file is an empty history.
func (s *JSONStore) Load() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *JSONStore) load() ([]Entry, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("history: %s: %w", s.path, err)
	}
	return entries, nil
}

func (s *JSONStore) Append(e Entry, max int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.load()
	if err != nil {
		// Don't let a corrupt file block new history.
		entries = nil
	}
	entries = append(entries, e)
	if max > 0 && len(entries) > max {
		entries = entries[len(entries)-max:]
	}
	return s.save(entries)
}

func (s *JSONStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save([]Entry{})
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) save(entries []Entry) error {
	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return atomic.WriteFile(s.path, bytes.NewReader(b))
}
