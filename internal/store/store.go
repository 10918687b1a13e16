package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"etf-trader/internal/types"
)

// Store guards the document behind a single-writer model. View runs
// under a shared lock so a whole ranking or decision computation sees
// one consistent snapshot; Update clones the document, applies the
// mutation and atomically replaces the file (temp write + rename)
// before swapping the in-memory copy. A failed mutation leaves both
// memory and disk untouched.
type Store struct {
	path  string
	mu    sync.RWMutex
	doc   *Document
	fresh bool
}

// Open loads the document at path, starting from defaults when the file
// does not exist yet.
func Open(path string) (*Store, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Store{path: path, doc: NewDocument(), fresh: true}, nil
	}
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("corrupt store file %s: %w", path, err)
	}
	doc.normalize()
	return &Store{path: path, doc: &doc}, nil
}

func (s *Store) Path() string { return s.path }

// SeedSettings applies settings to a store that has never been
// persisted. Existing stores keep their persisted values.
func (s *Store) SeedSettings(settings types.Settings) error {
	s.mu.RLock()
	fresh := s.fresh
	s.mu.RUnlock()
	if !fresh {
		return nil
	}
	return s.Update(func(doc *Document) error {
		doc.Settings = settings
		return nil
	})
}

// View runs fn with read access to the live document. fn must not
// retain or mutate the document.
func (s *Store) View(fn func(doc *Document) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.doc)
}

// Update runs fn against a clone, persists it atomically and swaps it
// in. All mutating operations in the system go through here.
func (s *Store) Update(fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.Clone()
	if err := fn(next); err != nil {
		return err
	}
	next.LastUpdated = time.Now()

	if err := s.save(next); err != nil {
		return fmt.Errorf("persisting store update: %w", err)
	}
	s.doc = next
	s.fresh = false
	return nil
}

func (s *Store) save(doc *Document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".etf-data-*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
