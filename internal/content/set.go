package content

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rulekit/rulekit/internal/logging"
	"github.com/rulekit/rulekit/internal/util"
)

// ContextFileName is the project-context document at the root of a content dir.
const ContextFileName = "context.md"

// Set is the resolved, merged content of one or more content roots. It is
// what editor adapters consume.
type Set struct {
	Rules     []Item `json:"rules"`
	Skills    []Item `json:"skills"`
	Workflows []Item `json:"workflows"`
	// Context is the project-context document, empty when absent.
	Context string `json:"context,omitempty"`
}

// LoadSet reads a content root's rules/, skills/, and workflows/
// subdirectories plus its context document. A missing root or missing
// subdirectory contributes nothing; neither is an error.
func LoadSet(root string) (*Set, error) {
	set := &Set{}

	for _, kind := range AllKinds() {
		items, err := loadKind(root, kind)
		if err != nil {
			return nil, fmt.Errorf("load %s content: %w", kind, err)
		}
		set.add(kind, items...)
	}

	ctxPath := filepath.Join(root, ContextFileName)
	// #nosec G304 - path is under a configured content root
	if data, err := os.ReadFile(ctxPath); err == nil {
		set.Context = string(data)
	}

	logging.Debug("loaded content set",
		logging.Path(root),
		logging.Count(set.Len()),
	)
	return set, nil
}

func loadKind(root string, kind Kind) ([]Item, error) {
	kindDir := filepath.Join(root, kind.DirName())
	if _, err := os.Stat(kindDir); os.IsNotExist(err) {
		return nil, nil
	}

	var items []Item
	err := filepath.WalkDir(kindDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != kindDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".md") || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logging.Warn("failed to stat content file, skipping",
				logging.Path(path),
				logging.Err(err),
			)
			return nil
		}
		// #nosec G304 - path comes from walking the content root
		raw, err := os.ReadFile(path)
		if err != nil {
			logging.Warn("failed to read content file, skipping",
				logging.Path(path),
				logging.Err(err),
			)
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		items = append(items, NewItem(kind, util.NormPath(rel), path, raw, info.ModTime()))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(items, func(i, j int) bool { return items[i].RelPath < items[j].RelPath })
	return items, nil
}

func (s *Set) add(kind Kind, items ...Item) {
	switch kind {
	case KindRule:
		s.Rules = append(s.Rules, items...)
	case KindSkill:
		s.Skills = append(s.Skills, items...)
	case KindWorkflow:
		s.Workflows = append(s.Workflows, items...)
	}
}

// Items returns all items of the given kind.
func (s *Set) Items(kind Kind) []Item {
	switch kind {
	case KindRule:
		return s.Rules
	case KindSkill:
		return s.Skills
	case KindWorkflow:
		return s.Workflows
	default:
		return nil
	}
}

// Len returns the total number of items across all kinds.
func (s *Set) Len() int {
	return len(s.Rules) + len(s.Skills) + len(s.Workflows)
}

// Merge folds other into s with s taking precedence: an item of the same
// kind and name already present in s is kept, and other's copy is dropped.
// Load the project root first, then shared folders, then packages, so local
// content always wins.
func (s *Set) Merge(other *Set) {
	if other == nil {
		return
	}
	for _, kind := range AllKinds() {
		existing := make(map[string]bool, len(s.Items(kind)))
		for _, item := range s.Items(kind) {
			existing[item.Name] = true
		}
		for _, item := range other.Items(kind) {
			if existing[item.Name] {
				logging.Debug("merge: keeping higher-precedence item",
					logging.Kind(kind.String()),
					logging.Item(item.Name),
				)
				continue
			}
			s.add(kind, item)
			existing[item.Name] = true
		}
	}
	if s.Context == "" {
		s.Context = other.Context
	}
}
