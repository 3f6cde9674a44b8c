// Package adapter distributes a resolved content set into the on-disk
// formats the supported editor tools expect. Each tool is described by an
// immutable Spec record; behavior differences are data plus a couple of
// named layout strategies rather than per-tool types.
package adapter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rulekit/rulekit/internal/content"
)

// Layout names how a tool arranges content files.
type Layout string

const (
	// LayoutFlat writes every item into one directory as <kind>-<name>.md.
	LayoutFlat Layout = "flat"
	// LayoutSubdir mirrors the source tree under per-kind subdirectories.
	LayoutSubdir Layout = "subdir"
)

// ConfigFormat is the serialization of a tool's MCP server configuration.
type ConfigFormat string

const (
	FormatJSON ConfigFormat = "json"
	FormatTOML ConfigFormat = "toml"
)

// EntryGenerator builds a tool's top-level instruction document from the
// merged content set.
type EntryGenerator func(set *content.Set) string

// Spec describes one editor tool. Specs are constructed by NewRegistry
// and treated as immutable afterwards.
type Spec struct {
	// Name is the registry key, e.g. "cursor".
	Name        string
	DisplayName string
	// Dirs maps each content kind to its output directory relative to
	// the project root. Kinds without a mapping are not distributed.
	Dirs   map[content.Kind]string
	Layout Layout
	// EntryPoint is the tool's top-level instruction document, relative
	// to the project root. Empty when the tool has none.
	EntryPoint string
	// GenerateEntry overrides the default entry-point content. Nil with a
	// non-empty EntryPoint uses the standard context-plus-index document.
	GenerateEntry EntryGenerator
	// MCPConfigPath is where the tool reads MCP server definitions.
	// Empty when the tool does not support MCP configuration.
	MCPConfigPath string
	MCPFormat     ConfigFormat
}

// SupportsKind reports whether the spec distributes the given kind.
func (s Spec) SupportsKind(kind content.Kind) bool {
	_, ok := s.Dirs[kind]
	return ok
}

// contentPath computes the output path for one item, relative to the
// project root.
func (s Spec) contentPath(item content.Item) (string, error) {
	dir, ok := s.Dirs[item.Kind]
	if !ok {
		return "", fmt.Errorf("%s does not accept %s content", s.Name, item.Kind)
	}

	rel := strings.TrimPrefix(item.RelPath, item.Kind.DirName()+"/")
	switch s.Layout {
	case LayoutFlat:
		flat := strings.ReplaceAll(rel, "/", "-")
		return dir + "/" + string(item.Kind) + "-" + flat, nil
	case LayoutSubdir:
		return dir + "/" + rel, nil
	default:
		return "", fmt.Errorf("unknown layout %q for %s", s.Layout, s.Name)
	}
}

// entryContent renders the tool's entry-point document.
func (s Spec) entryContent(set *content.Set) string {
	if s.GenerateEntry != nil {
		return s.GenerateEntry(set)
	}
	return entryWithIndex(set)
}

// entryWithIndex is the default entry document: the project context
// followed by an index of the distributed content.
func entryWithIndex(set *content.Set) string {
	var b strings.Builder
	if set.Context != "" {
		b.WriteString(strings.TrimRight(set.Context, "\n"))
		b.WriteString("\n")
	}

	sections := []struct {
		title string
		items []content.Item
	}{
		{"Rules", set.Rules},
		{"Skills", set.Skills},
		{"Workflows", set.Workflows},
	}
	for _, sec := range sections {
		if len(sec.items) == 0 {
			continue
		}
		b.WriteString("\n## " + sec.title + "\n\n")
		names := make([]string, 0, len(sec.items))
		for _, item := range sec.items {
			line := "- " + item.Name
			if item.Description != "" {
				line += ": " + item.Description
			}
			names = append(names, line)
		}
		sort.Strings(names)
		b.WriteString(strings.Join(names, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

// entryContextOnly renders just the project context, for tools whose
// entry document is a plain prose file.
func entryContextOnly(set *content.Set) string {
	return set.Context
}

// entryInline renders the context followed by every rule body, for tools
// that read a single instruction file and nothing else.
func entryInline(set *content.Set) string {
	var b strings.Builder
	if set.Context != "" {
		b.WriteString(strings.TrimRight(set.Context, "\n"))
		b.WriteString("\n")
	}
	for _, item := range set.Rules {
		b.WriteString("\n## " + item.Name + "\n\n")
		b.WriteString(strings.TrimRight(item.Body, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}
