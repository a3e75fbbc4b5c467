package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Storage persists account assignments.
type Storage interface {
	// Load returns the persisted assignments, or nil when nothing has been saved yet.
	Load(ctx context.Context) (Assignments, error)
	// Save replaces the persisted assignments.
	Save(ctx context.Context, a Assignments) error
}

// fileEntry is the on-disk record for one account.
type fileEntry struct {
	Persona string `json:"persona"`
}

// FileStorage keeps assignments in a hand-editable JSON file:
//
//	{"A": {"persona": "forex_gold_trader"}, ...}
type FileStorage struct {
	path string
}

// NewFileStorage creates a file-backed store at path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path returns the backing file path.
func (s *FileStorage) Path() string {
	return s.path
}

// Load reads the assignment file. A missing file is not an error.
func (s *FileStorage) Load(ctx context.Context) (Assignments, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read accounts file: %w", err)
	}

	var entries map[string]fileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse accounts file: %w", err)
	}

	out := make(Assignments, len(entries))
	for id, e := range entries {
		out[id] = e.Persona
	}
	return out, nil
}

// Save writes to a temp file in the same directory and renames it into place,
// so readers see either the old or the new mapping.
func (s *FileStorage) Save(ctx context.Context, a Assignments) error {
	entries := make(map[string]fileEntry, len(a))
	for id, p := range a {
		entries[id] = fileEntry{Persona: p}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode accounts: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create accounts directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace accounts file: %w", err)
	}
	return nil
}

// MemoryStorage keeps assignments in process memory only.
type MemoryStorage struct {
	mu sync.RWMutex
	a  Assignments
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Load returns a copy of the stored assignments.
func (s *MemoryStorage) Load(ctx context.Context) (Assignments, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.a == nil {
		return nil, nil
	}
	return s.a.Clone(), nil
}

// Save replaces the stored assignments.
func (s *MemoryStorage) Save(ctx context.Context, a Assignments) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a = a.Clone()
	return nil
}
