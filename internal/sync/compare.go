package sync

import (
	"fmt"
	"sort"

	"github.com/rulekit/rulekit/internal/logging"
	"github.com/rulekit/rulekit/internal/scan"
)

// Update is one path whose content diverged non-ambiguously: history shows
// which side changed, so the other side's copy is stale.
type Update struct {
	// Path is the relative path to update.
	Path string `json:"path"`
	// Direction is push when the source changed (target is stale) and pull
	// when the target changed (source is stale).
	Direction Direction `json:"direction"`
}

// Conflict is a path whose content diverged on both sides without a known
// common ancestor state to disambiguate.
type Conflict struct {
	Path       string `json:"path"`
	Reason     string `json:"reason"`
	SourceHash string `json:"source_hash"`
	TargetHash string `json:"target_hash"`
}

// Comparison classifies every differing path between two roots. It is
// computed fresh for each sync run and never persisted.
type Comparison struct {
	// ToAdd holds paths present only in the source.
	ToAdd []string
	// ToUpdate holds paths present in both with differing content whose
	// winning side is known from history.
	ToUpdate []Update
	// ToRemove holds paths present only in the target. Removal candidates;
	// the executor decides whether removal is honored.
	ToRemove []string
	// Conflicts holds paths where both sides changed independently since
	// the last known sync state.
	Conflicts []Conflict

	// Source and Target are the snapshots the comparison was computed from.
	Source scan.Snapshot
	Target scan.Snapshot
}

// IsClean returns true when nothing differs between the two roots.
func (c *Comparison) IsClean() bool {
	return len(c.ToAdd) == 0 && len(c.ToUpdate) == 0 && len(c.ToRemove) == 0 && len(c.Conflicts) == 0
}

// Comparator classifies differences between two content roots using the
// persisted metadata cache as sync history. It holds no state across calls.
type Comparator struct {
	scanner *scan.Scanner
}

// NewComparator creates a comparator using the given scanner.
func NewComparator(scanner *scan.Scanner) *Comparator {
	if scanner == nil {
		scanner = scan.NewScanner()
	}
	return &Comparator{scanner: scanner}
}

// Compare scans both roots and classifies every path into add, update,
// remove, or conflict. Paths equal on both sides are omitted.
func (c *Comparator) Compare(sourceRoot, targetRoot string, store *Store) (*Comparison, error) {
	defer logging.Timer("compare")()

	source, err := c.scanner.Scan(sourceRoot)
	if err != nil {
		return nil, fmt.Errorf("scan source: %w", err)
	}
	target, err := c.scanner.Scan(targetRoot)
	if err != nil {
		return nil, fmt.Errorf("scan target: %w", err)
	}

	cmp := &Comparison{Source: source, Target: target}

	for path, src := range source {
		tgt, inTarget := target[path]
		if !inTarget {
			cmp.ToAdd = append(cmp.ToAdd, path)
			continue
		}
		if src.Hash == tgt.Hash {
			continue
		}
		cmp.classifyDivergence(path, src, tgt, store)
	}

	for path := range target {
		if _, inSource := source[path]; !inSource {
			cmp.ToRemove = append(cmp.ToRemove, path)
		}
	}

	sort.Strings(cmp.ToAdd)
	sort.Strings(cmp.ToRemove)
	sort.Slice(cmp.ToUpdate, func(i, j int) bool { return cmp.ToUpdate[i].Path < cmp.ToUpdate[j].Path })
	sort.Slice(cmp.Conflicts, func(i, j int) bool { return cmp.Conflicts[i].Path < cmp.Conflicts[j].Path })

	logging.Debug("comparison complete",
		logging.Count(len(source)+len(target)),
		"add", len(cmp.ToAdd),
		"update", len(cmp.ToUpdate),
		"remove", len(cmp.ToRemove),
		"conflicts", len(cmp.Conflicts),
	)
	return cmp, nil
}

// classifyDivergence decides how to treat a path present on both sides with
// unequal hashes. The last-known hash disambiguates which side changed; when
// it matches neither side, or there is no history at all, the divergence is
// a conflict - correctness favors surfacing ambiguity over silent data loss.
func (cmp *Comparison) classifyDivergence(path string, src, tgt scan.ContentHash, store *Store) {
	last, known := store.Get(path)
	if !known {
		cmp.Conflicts = append(cmp.Conflicts, Conflict{
			Path:       path,
			Reason:     "both sides have content with no prior sync history",
			SourceHash: src.Hash,
			TargetHash: tgt.Hash,
		})
		return
	}

	switch last.Hash {
	case tgt.Hash:
		// Target still matches history; the source changed and wins.
		cmp.ToUpdate = append(cmp.ToUpdate, Update{Path: path, Direction: DirectionPush})
	case src.Hash:
		// Source still matches history; the target changed and wins.
		cmp.ToUpdate = append(cmp.ToUpdate, Update{Path: path, Direction: DirectionPull})
	default:
		cmp.Conflicts = append(cmp.Conflicts, Conflict{
			Path:       path,
			Reason:     "both sides changed since last sync",
			SourceHash: src.Hash,
			TargetHash: tgt.Hash,
		})
	}
}
