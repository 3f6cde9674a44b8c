// Package scan walks content roots and fingerprints their files.
package scan

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/rulekit/rulekit/internal/logging"
	"github.com/rulekit/rulekit/internal/util"
)

// DefaultIncludes matches the markdown content files rulekit manages.
var DefaultIncludes = []string{"**/*.md"}

// Files the scanner must never treat as content, even though they live
// inside the content directory.
var reservedNames = map[string]bool{
	MetadataStoreName: true,
	RegistryStoreName: true,
}

const (
	// MetadataStoreName is the persisted sync metadata file.
	MetadataStoreName = ".sync-metadata.json"
	// RegistryStoreName is the persisted content registry file.
	RegistryStoreName = ".registry.json"
)

// ContentHash is the fingerprint of one file at scan time.
type ContentHash struct {
	// Path is the forward-slash relative path from the scanned root.
	Path string `json:"path"`
	// Hash is the hex SHA-256 digest of the raw file bytes.
	Hash string `json:"hash"`
	// Size is the byte length of the file.
	Size int64 `json:"size"`
	// ModifiedTime is the filesystem modification timestamp. Informational
	// only; it never feeds into the hash.
	ModifiedTime time.Time `json:"modified_time"`
}

// Snapshot maps relative path to its ContentHash for one scan of one root.
// Snapshots are value sets: recomputed every scan, never mutated in place.
type Snapshot map[string]ContentHash

// Paths returns the snapshot's keys in unspecified order.
func (s Snapshot) Paths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	return paths
}

// Scanner walks directory trees and produces snapshots. A Scanner holds no
// state across calls.
type Scanner struct {
	includes []string
}

// NewScanner creates a scanner with the given doublestar include patterns.
// Empty patterns fall back to DefaultIncludes.
func NewScanner(includes ...string) *Scanner {
	if len(includes) == 0 {
		includes = DefaultIncludes
	}
	return &Scanner{includes: includes}
}

// Scan walks root and returns a snapshot of every content file under it.
// A missing root yields an empty snapshot, not an error.
func (s *Scanner) Scan(root string) (Snapshot, error) {
	snapshot := make(Snapshot)

	if _, err := os.Stat(root); os.IsNotExist(err) {
		logging.Debug("scan root does not exist",
			logging.Path(root),
		)
		return snapshot, nil
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("walk %s: %w", path, walkErr)
		}

		name := d.Name()
		if d.IsDir() {
			// Hidden directories are never content, except the root itself
			// (the content dir is named .rulekit).
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if reservedNames[name] || strings.HasPrefix(name, ".") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", path, err)
		}
		rel = util.NormPath(rel)

		if !s.matches(rel) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logging.Warn("failed to stat file, skipping",
				logging.Path(path),
				logging.Err(err),
			)
			return nil
		}

		hash, err := hashFile(path)
		if err != nil {
			logging.Warn("failed to hash file, skipping",
				logging.Path(path),
				logging.Err(err),
			)
			return nil
		}

		snapshot[rel] = ContentHash{
			Path:         rel,
			Hash:         hash,
			Size:         info.Size(),
			ModifiedTime: info.ModTime(),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	return snapshot, nil
}

// matches reports whether rel matches any include pattern.
func (s *Scanner) matches(rel string) bool {
	for _, pattern := range s.includes {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// hashFile returns the hex SHA-256 digest of the file's contents.
func hashFile(path string) (string, error) {
	// #nosec G304 - path comes from walking a configured content root
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashBytes returns the hex SHA-256 digest of content. It is the same
// fingerprint Scan computes for a file with those bytes.
func HashBytes(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
