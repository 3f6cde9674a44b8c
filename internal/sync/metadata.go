package sync

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rulekit/rulekit/internal/logging"
)

// Metadata records the last known sync state of one relative path. Entries
// are created on first successful sync and updated after every apply; stale
// entries are harmless and never deleted automatically.
type Metadata struct {
	Path         string    `json:"path"`
	Hash         string    `json:"hash"`
	LastSyncedAt time.Time `json:"last_synced_at"`
	Direction    Direction `json:"direction,omitempty"`
}

// Store is the persisted metadata cache for one project, a JSON object
// mapping relative path to Metadata. It is owned by the sync executor.
type Store struct {
	path    string
	entries map[string]Metadata
}

// LoadStore reads the metadata store at path. An absent file yields an
// empty store; a file that cannot be parsed is an error the caller must
// surface rather than silently discarding history.
func LoadStore(path string) (*Store, error) {
	store := &Store{
		path:    path,
		entries: make(map[string]Metadata),
	}

	// #nosec G304 - path is the project's fixed metadata store location
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read metadata store %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &store.entries); err != nil {
		return nil, fmt.Errorf("parse metadata store %s: %w", path, err)
	}

	logging.Debug("loaded metadata store",
		logging.Path(path),
		logging.Count(len(store.entries)),
	)
	return store, nil
}

// Get returns the entry for a relative path.
func (s *Store) Get(relPath string) (Metadata, bool) {
	m, ok := s.entries[relPath]
	return m, ok
}

// Set records the entry for a relative path.
func (s *Store) Set(m Metadata) {
	s.entries[m.Path] = m
}

// Record updates the entry for relPath after a successful apply.
func (s *Store) Record(relPath, hash string, direction Direction) {
	s.entries[relPath] = Metadata{
		Path:         relPath,
		Hash:         hash,
		LastSyncedAt: time.Now(),
		Direction:    direction,
	}
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Paths returns all recorded relative paths in sorted order.
func (s *Store) Paths() []string {
	paths := make([]string, 0, len(s.entries))
	for p := range s.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Save writes the store as pretty-printed JSON, fully overwriting the
// previous file.
func (s *Store) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create metadata store directory: %w", err)
	}

	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata store: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write metadata store %s: %w", s.path, err)
	}

	logging.Debug("saved metadata store",
		logging.Path(s.path),
		logging.Count(len(s.entries)),
	)
	return nil
}
