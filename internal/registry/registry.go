// Package registry maintains a secondary index of all known content items
// for conflict, orphan, and dependency reporting. It shares the hashing
// primitives of the sync core but is not required for sync correctness.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rulekit/rulekit/internal/content"
	"github.com/rulekit/rulekit/internal/logging"
	"github.com/rulekit/rulekit/internal/scan"
)

// Quality holds the scoring attached to a content item.
type Quality struct {
	Score float64 `json:"score"`
}

// ContentMetadata is one indexed content item.
type ContentMetadata struct {
	// ID is a stable identity derived from type and path.
	ID   string       `json:"id"`
	Type content.Kind `json:"type"`
	Name string       `json:"name"`
	// Path is the absolute path the item was last loaded from.
	Path    string   `json:"path"`
	Tags    []string `json:"tags,omitempty"`
	Quality Quality  `json:"quality"`
	// Dependencies and Dependents hold item IDs.
	Dependencies []string `json:"dependencies,omitempty"`
	Dependents   []string `json:"dependents,omitempty"`
	// Version is a monotonic counter incremented on each content change.
	Version  int    `json:"version"`
	Checksum string `json:"checksum"`
	// Source is where the item came from: local, external, or template.
	Source    string    `json:"source"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Filter selects items in FindContent. Zero-valued fields match anything.
type Filter struct {
	Type     content.Kind
	Tag      string
	Source   string
	MinScore float64
}

// Registry is the persisted index, keyed by item ID.
type Registry struct {
	path  string
	items map[string]*ContentMetadata
}

// ItemID derives the stable identity for a content item.
func ItemID(kind content.Kind, relPath string) string {
	return string(kind) + ":" + strings.TrimSuffix(relPath, ".md")
}

// Load reads the registry at path. An absent or unparseable file yields an
// empty registry; the index is rebuildable from content, so history loss
// here is recoverable.
func Load(path string) *Registry {
	r := &Registry{
		path:  path,
		items: make(map[string]*ContentMetadata),
	}

	// #nosec G304 - path is the project's fixed registry location
	data, err := os.ReadFile(path)
	if err != nil {
		return r
	}
	if err := json.Unmarshal(data, &r.items); err != nil {
		logging.Warn("registry unreadable, starting fresh",
			logging.Path(path),
			logging.Err(err),
		)
		r.items = make(map[string]*ContentMetadata)
	}
	return r
}

// Save writes the registry as pretty-printed JSON.
func (r *Registry) Save() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o750); err != nil {
		return fmt.Errorf("create registry directory: %w", err)
	}
	data, err := json.MarshalIndent(r.items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write registry %s: %w", r.path, err)
	}
	return nil
}

// Len returns the number of indexed items.
func (r *Registry) Len() int {
	return len(r.items)
}

// Get returns the item with the given ID.
func (r *Registry) Get(id string) (*ContentMetadata, bool) {
	m, ok := r.items[id]
	return m, ok
}

// Index folds a loaded content set into the registry. New items are
// created; existing items have their Version bumped and Checksum updated
// whenever the scanned content hash differs from the stored checksum.
// Dependency edges come from frontmatter declarations enriched by static
// reference scanning of the item body.
func (r *Registry) Index(set *content.Set, sourceLabel string) {
	defer logging.Timer("registry-index")()

	// Index every item before resolving edges, so forward references
	// within the set land on real IDs.
	var indexed []content.Item
	for _, kind := range content.AllKinds() {
		for _, item := range set.Items(kind) {
			r.indexItem(item, sourceLabel)
			indexed = append(indexed, item)
		}
	}
	for _, item := range indexed {
		r.items[ItemID(item.Kind, item.RelPath)].Dependencies = r.dependencyIDs(item)
	}
	r.rebuildDependents()
}

func (r *Registry) indexItem(item content.Item, sourceLabel string) {
	id := ItemID(item.Kind, item.RelPath)
	checksum := scan.HashBytes([]byte(item.Content))

	meta, exists := r.items[id]
	if !exists {
		meta = &ContentMetadata{
			ID:      id,
			Type:    item.Kind,
			Name:    item.Name,
			Version: 1,
			Source:  sourceLabel,
		}
		r.items[id] = meta
	} else if meta.Checksum != checksum {
		meta.Version++
	}

	meta.Name = item.Name
	meta.Path = item.Path
	meta.Tags = item.Tags
	meta.Checksum = checksum
	meta.Source = sourceLabel
	meta.UpdatedAt = time.Now()
}

// dependencyIDs maps declared and referenced dependency names to item IDs.
// References to unindexed items are kept as name-based IDs of the same
// kind so a later index pass can connect them.
func (r *Registry) dependencyIDs(item content.Item) []string {
	names := make(map[string]bool)
	for _, dep := range item.Dependencies {
		names[dep] = true
	}
	for _, ref := range ScanReferences(item.Body) {
		names[ref] = true
	}
	delete(names, item.Name)

	var ids []string
	for name := range names {
		ids = append(ids, r.resolveName(name, item.Kind))
	}
	sort.Strings(ids)
	return ids
}

// resolveName finds the ID of an indexed item by name, preferring the same
// kind, and falls back to a synthetic same-kind ID.
func (r *Registry) resolveName(name string, kind content.Kind) string {
	var fallback string
	for id, meta := range r.items {
		if meta.Name != name {
			continue
		}
		if meta.Type == kind {
			return id
		}
		if fallback == "" || id < fallback {
			fallback = id
		}
	}
	if fallback != "" {
		return fallback
	}
	return string(kind) + ":" + name
}

func (r *Registry) rebuildDependents() {
	for _, meta := range r.items {
		meta.Dependents = nil
	}
	ids := r.sortedIDs()
	for _, id := range ids {
		for _, dep := range r.items[id].Dependencies {
			if target, ok := r.items[dep]; ok {
				target.Dependents = append(target.Dependents, id)
			}
		}
	}
	for _, meta := range r.items {
		sort.Strings(meta.Dependents)
	}
}

// FindContent returns all items matching the filter, sorted by ID.
func (r *Registry) FindContent(f Filter) []*ContentMetadata {
	var found []*ContentMetadata
	for _, id := range r.sortedIDs() {
		meta := r.items[id]
		if f.Type != "" && meta.Type != f.Type {
			continue
		}
		if f.Source != "" && meta.Source != f.Source {
			continue
		}
		if f.MinScore > 0 && meta.Quality.Score < f.MinScore {
			continue
		}
		if f.Tag != "" && !hasTag(meta, f.Tag) {
			continue
		}
		found = append(found, meta)
	}
	return found
}

// DetectConflicts groups items whose type and name collide across
// different sources.
func (r *Registry) DetectConflicts() [][]*ContentMetadata {
	groups := make(map[string][]*ContentMetadata)
	for _, id := range r.sortedIDs() {
		meta := r.items[id]
		key := string(meta.Type) + "/" + meta.Name
		groups[key] = append(groups[key], meta)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var conflicts [][]*ContentMetadata
	for _, key := range keys {
		group := groups[key]
		if len(group) < 2 {
			continue
		}
		sources := make(map[string]bool)
		for _, meta := range group {
			sources[meta.Source] = true
		}
		if len(sources) > 1 {
			conflicts = append(conflicts, group)
		}
	}
	return conflicts
}

// DetectOrphans returns items with no dependencies and no dependents.
func (r *Registry) DetectOrphans() []*ContentMetadata {
	var orphans []*ContentMetadata
	for _, id := range r.sortedIDs() {
		meta := r.items[id]
		if len(meta.Dependencies) == 0 && len(meta.Dependents) == 0 {
			orphans = append(orphans, meta)
		}
	}
	return orphans
}

// Optimize prunes entries whose backing file no longer exists and returns
// the removed IDs.
func (r *Registry) Optimize() []string {
	var pruned []string
	for _, id := range r.sortedIDs() {
		meta := r.items[id]
		if meta.Path == "" {
			continue
		}
		if _, err := os.Stat(meta.Path); os.IsNotExist(err) {
			delete(r.items, id)
			pruned = append(pruned, id)
		}
	}
	if len(pruned) > 0 {
		r.rebuildDependents()
		logging.Debug("pruned stale registry entries",
			logging.Count(len(pruned)),
		)
	}
	return pruned
}

func (r *Registry) sortedIDs() []string {
	ids := make([]string, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func hasTag(meta *ContentMetadata, tag string) bool {
	for _, t := range meta.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
