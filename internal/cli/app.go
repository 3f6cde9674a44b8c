package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/rulekit/rulekit/internal/adapter"
	"github.com/rulekit/rulekit/internal/config"
	"github.com/rulekit/rulekit/internal/content"
	"github.com/rulekit/rulekit/internal/logging"
	"github.com/rulekit/rulekit/internal/registry"
	"github.com/rulekit/rulekit/internal/scan"
	"github.com/rulekit/rulekit/internal/source"
	"github.com/rulekit/rulekit/internal/sync"
	"github.com/rulekit/rulekit/internal/util"
)

// appEnv bundles the resolved project context every command needs.
type appEnv struct {
	cfg         *config.Config
	projectRoot string
	contentDir  string
	jsonOutput  bool
}

func loadEnv(cmd *cli.Command) (*appEnv, error) {
	root, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determine working directory: %w", err)
	}

	var cfg *config.Config
	if path := cmd.String("config"); path != "" {
		cfg, err = config.LoadFromPath(path)
	} else {
		cfg, err = config.Load(root)
	}
	if err != nil {
		return nil, err
	}

	return &appEnv{
		cfg:         cfg,
		projectRoot: root,
		contentDir:  util.ProjectContentDir(root),
		jsonOutput:  cmd.Bool("json") || cfg.Output.Format == "json",
	}, nil
}

func (env *appEnv) storePath() string {
	return filepath.Join(env.contentDir, scan.MetadataStoreName)
}

func (env *appEnv) registryPath() string {
	return filepath.Join(env.contentDir, scan.RegistryStoreName)
}

func (env *appEnv) scanner() *scan.Scanner {
	return scan.NewScanner(env.cfg.Sync.Include...)
}

// resolvedSource pairs a configured source with its on-disk directory.
type resolvedSource struct {
	src source.Source
	dir string
	ok  bool
}

func (env *appEnv) resolveSources() []resolvedSource {
	resolver := source.NewResolver(env.projectRoot)
	resolved := make([]resolvedSource, 0, len(env.cfg.Sources))
	for _, src := range env.cfg.ContentSources() {
		dir, ok := resolver.Resolve(src)
		resolved = append(resolved, resolvedSource{src: src, dir: dir, ok: ok})
	}
	return resolved
}

// syncRun reconciles the project content directory with every resolved
// local source, then redistributes the merged content to the configured
// editor tools and refreshes the content registry.
type syncRun struct {
	env         *appEnv
	dryRun      bool
	interactive bool
	// simplePrompt selects the line-based prompt over the TUI picker.
	simplePrompt bool
}

func (r *syncRun) execute() error {
	defer logging.Timer("sync-command")()

	env := r.env
	engine, err := sync.NewEngine(env.storePath(), env.scanner())
	if err != nil {
		renderResult(sync.ErrorResult(err, r.dryRun), env.jsonOutput)
		return fmt.Errorf("sync failed: %w", err)
	}
	opts := env.cfg.SyncOptions(r.dryRun)

	failed := false
	for _, rs := range env.resolveSources() {
		if rs.src.Kind != source.KindLocal {
			// Packages are read-only inputs; they merge into the content
			// set below but are never written back.
			continue
		}
		if !rs.ok {
			logging.Warn("source not found, skipping",
				logging.Source(rs.src.String()),
			)
			continue
		}

		fmt.Println(headerLine("Syncing with " + rs.src.Location))
		result := engine.Sync(env.contentDir, rs.dir, opts)

		if len(result.Conflicts) > 0 && r.interactive && !r.dryRun {
			result = r.resolveInteractively(engine, rs.dir, result)
		}

		renderResult(result, env.jsonOutput)
		if result.HasErrors() {
			failed = true
		}
	}

	set, err := env.loadMergedSet()
	if err != nil {
		return err
	}

	if err := r.distribute(set); err != nil {
		return err
	}
	if !r.dryRun {
		env.refreshRegistry()
	}

	if failed {
		return fmt.Errorf("sync completed with errors")
	}
	return nil
}

// resolveInteractively prompts for each conflict and applies the
// decisions, folding the settlement into the rendered result.
func (r *syncRun) resolveInteractively(engine *sync.Engine, sourceDir string, result *sync.Result) *sync.Result {
	cmp, err := engine.Compare(r.env.contentDir, sourceDir)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("re-compare for resolution: %v", err))
		return result
	}

	var decisions map[string]sync.ConflictPreference
	if r.simplePrompt {
		decisions, err = promptConflicts(cmp.Conflicts)
	} else {
		decisions, err = pickConflicts(cmp.Conflicts)
	}
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("conflict resolution: %v", err))
		return result
	}
	if len(decisions) == 0 {
		return result
	}

	settled := engine.Settle(cmp, r.env.contentDir, sourceDir, decisions)
	result.Conflicts = settled.Conflicts
	result.Updated = append(result.Updated, settled.Updated...)
	result.Skipped = append(result.Skipped, settled.Skipped...)
	result.Errors = append(result.Errors, settled.Errors...)
	return result
}

func (r *syncRun) distribute(set *content.Set) error {
	env := r.env
	dist := adapter.NewDistributor(env.projectRoot, adapter.NewRegistry())
	dist.DryRun = r.dryRun

	paths, err := dist.Distribute(env.cfg.Tools, set, env.cfg.MCPServers())
	if err != nil {
		return fmt.Errorf("distribute content: %w", err)
	}
	renderDistribution(paths, r.dryRun, env.jsonOutput)
	return nil
}

// loadMergedSet loads the project content plus every resolved source, in
// precedence order: project first, then sources as configured.
func (env *appEnv) loadMergedSet() (*content.Set, error) {
	set, err := content.LoadSet(env.contentDir)
	if err != nil {
		return nil, fmt.Errorf("load project content: %w", err)
	}
	for _, rs := range env.resolveSources() {
		if !rs.ok {
			continue
		}
		other, err := content.LoadSet(rs.dir)
		if err != nil {
			logging.Warn("failed to load source content, skipping",
				logging.Source(rs.src.String()),
				logging.Err(err),
			)
			continue
		}
		set.Merge(other)
	}
	return set, nil
}

// refreshRegistry reindexes all content into the registry store, keeping
// per-source attribution so cross-source collisions stay visible. Index
// failures only log; the registry is advisory and rebuildable.
func (env *appEnv) refreshRegistry() {
	reg := registry.Load(env.registryPath())
	localSet, err := content.LoadSet(env.contentDir)
	if err != nil {
		logging.Warn("failed to load project content for registry", logging.Err(err))
		return
	}
	reg.Index(localSet, "local")
	for _, rs := range env.resolveSources() {
		if !rs.ok {
			continue
		}
		srcSet, err := content.LoadSet(rs.dir)
		if err != nil {
			continue
		}
		reg.Index(srcSet, rs.src.String())
	}
	reg.Optimize()
	if err := reg.Save(); err != nil {
		logging.Warn("failed to persist registry", logging.Err(err))
	}
}
