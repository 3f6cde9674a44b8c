package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rulekit/rulekit/internal/content"
	"github.com/rulekit/rulekit/internal/logging"
)

// FileOutput is one planned generated file.
type FileOutput struct {
	// Path is relative to the project root, forward slashes.
	Path string
	Data []byte
	Tool string
}

// Distributor writes a merged content set into each selected tool's
// layout.
type Distributor struct {
	root     string
	registry *Registry
	// DryRun plans and reports without touching the filesystem.
	DryRun bool
}

// NewDistributor creates a distributor rooted at the project directory.
func NewDistributor(root string, registry *Registry) *Distributor {
	return &Distributor{root: root, registry: registry}
}

// Plan computes every file the selected tools would receive. An empty
// tool list selects all registered tools. Tools sharing an output path
// (several read AGENTS.md) contribute it once.
func (d *Distributor) Plan(tools []string, set *content.Set, servers MCPServers) ([]FileOutput, error) {
	specs, err := d.registry.Resolve(tools)
	if err != nil {
		return nil, err
	}

	var outputs []FileOutput
	seen := make(map[string]bool)
	add := func(out FileOutput) {
		if seen[out.Path] {
			return
		}
		seen[out.Path] = true
		outputs = append(outputs, out)
	}

	for _, spec := range specs {
		for _, kind := range content.AllKinds() {
			if !spec.SupportsKind(kind) {
				continue
			}
			for _, item := range set.Items(kind) {
				path, err := spec.contentPath(item)
				if err != nil {
					return nil, err
				}
				add(FileOutput{Path: path, Data: []byte(item.Content), Tool: spec.Name})
			}
		}

		if spec.EntryPoint != "" {
			if entry := spec.entryContent(set); entry != "" {
				add(FileOutput{Path: spec.EntryPoint, Data: []byte(entry), Tool: spec.Name})
			}
		}

		if spec.MCPConfigPath != "" && len(servers) > 0 {
			data, err := renderMCPConfig(servers, spec.MCPFormat)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", spec.Name, err)
			}
			add(FileOutput{Path: spec.MCPConfigPath, Data: data, Tool: spec.Name})
		}
	}

	sort.Slice(outputs, func(i, j int) bool { return outputs[i].Path < outputs[j].Path })
	return outputs, nil
}

// Distribute plans and writes the outputs, then refreshes the managed
// gitignore block. It returns the written paths, relative to root. In
// dry-run mode nothing is written but the would-be paths are returned.
func (d *Distributor) Distribute(tools []string, set *content.Set, servers MCPServers) ([]string, error) {
	defer logging.Timer("distribute")()

	outputs, err := d.Plan(tools, set, servers)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(outputs))
	for _, out := range outputs {
		paths = append(paths, out.Path)
		if d.DryRun {
			continue
		}
		abs := filepath.Join(d.root, filepath.FromSlash(out.Path))
		if err := os.MkdirAll(filepath.Dir(abs), 0o750); err != nil {
			return paths, fmt.Errorf("create %s: %w", filepath.Dir(out.Path), err)
		}
		if err := os.WriteFile(abs, out.Data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", out.Path, err)
		}
		logging.Debug("wrote generated file",
			logging.Path(out.Path),
			logging.Adapter(out.Tool),
		)
	}

	if !d.DryRun {
		if err := UpdateGitignore(d.root, paths); err != nil {
			return paths, err
		}
	}

	logging.Info("distributed content",
		logging.Count(len(paths)),
	)
	return paths, nil
}
