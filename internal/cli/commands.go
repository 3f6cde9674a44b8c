package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/rulekit/rulekit/internal/registry"
	"github.com/rulekit/rulekit/internal/source"
	"github.com/rulekit/rulekit/internal/sync"
	"github.com/rulekit/rulekit/internal/ui"
	"github.com/rulekit/rulekit/internal/watch"
)

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Display version information",
		Action: func(_ context.Context, _ *cli.Command) error {
			fmt.Printf("rulekit %s\n", Version)
			fmt.Printf("  commit: %s\n", Commit)
			fmt.Printf("  built:  %s\n", BuildDate)
			return nil
		},
	}
}

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Reconcile content with shared sources and redistribute to editors",
		Description: `Synchronize the project's content directory with every configured
   shared folder, then regenerate each editor tool's files from the
   merged content.

   Examples:
     rulekit sync
     rulekit sync --dry-run
     rulekit sync --direction pull`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Preview changes without modifying files",
			},
			&cli.StringFlag{
				Name:  "direction",
				Usage: "Override the sync direction (push, pull)",
			},
			&cli.StringFlag{
				Name:  "prefer",
				Usage: "Resolve conflicts without prompting (source, target)",
			},
			&cli.BoolFlag{
				Name:  "delete",
				Usage: "Remove target files absent from the source",
			},
			&cli.BoolFlag{
				Name:  "no-prompt",
				Usage: "Never prompt; leave conflicts unresolved",
			},
			&cli.BoolFlag{
				Name:  "simple-prompt",
				Usage: "Use the line-based conflict prompt instead of the picker",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			applySyncFlags(env, cmd)

			run := &syncRun{
				env:          env,
				dryRun:       cmd.Bool("dry-run"),
				interactive:  !cmd.Bool("no-prompt") && ui.IsInteractive(),
				simplePrompt: cmd.Bool("simple-prompt"),
			}
			return run.execute()
		},
	}
}

func applySyncFlags(env *appEnv, cmd *cli.Command) {
	if v := cmd.String("direction"); v != "" {
		env.cfg.Sync.Direction = v
	}
	if v := cmd.String("prefer"); v != "" {
		env.cfg.Sync.Prefer = v
	}
	if cmd.Bool("delete") {
		env.cfg.Sync.Delete = true
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Watch the content directory and sync on changes",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "debounce",
				Usage: "Quiet period after the last change before syncing",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			debounce := env.cfg.Watch.Debounce
			if v := cmd.Duration("debounce"); v > 0 {
				debounce = v
			}

			run := &syncRun{env: env}
			engine := watch.NewEngine(func(context.Context) error {
				return run.execute()
			}, debounce)
			engine.OnTransition(func(from, to watch.State) {
				if to == watch.StateSyncing {
					fmt.Println(ui.Info("change detected, syncing..."))
				}
			})

			watcher := watch.NewWatcher(env.contentDir)
			if err := watcher.Start(ctx); err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}
			defer watcher.Stop()
			go func() {
				for path := range watcher.Events() {
					engine.Notify(path)
				}
			}()

			fmt.Println(ui.StatusSuccess("watching " + env.contentDir + " (ctrl-c to stop)"))
			return engine.Run(ctx)
		},
	}
}

func reconcileCommand() *cli.Command {
	return &cli.Command{
		Name:  "reconcile",
		Usage: "Reconcile with shared sources by modification time, no prompts",
		Description: `Walk each shared source and settle every differing file pair by
   modification time: the newer copy wins, ties fall to the configured
   tie_break side. Only copies matching the direction are applied.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "direction",
				Usage: "Override the sync direction (push, pull)",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			if v := cmd.String("direction"); v != "" {
				env.cfg.Sync.Direction = v
			}
			direction := sync.Direction(env.cfg.Sync.Direction)

			resolver := sync.NewResolver()
			resolver.TieBreak = env.cfg.TieBreakSide()

			for _, rs := range env.resolveSources() {
				if rs.src.Kind != source.KindLocal {
					continue
				}
				if !rs.ok {
					fmt.Println(ui.StatusError("source not found: " + rs.src.String()))
					continue
				}
				report, err := resolver.SyncWithConflictResolution(env.contentDir, rs.dir, direction)
				if err != nil {
					return fmt.Errorf("reconcile with %s: %w", rs.src.Location, err)
				}
				renderReport(rs.src.Location, report, env.jsonOutput)
			}
			return nil
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show pending changes against each shared source",
		Action: func(_ context.Context, cmd *cli.Command) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			engine, err := sync.NewEngine(env.storePath(), env.scanner())
			if err != nil {
				return err
			}

			clean := true
			for _, rs := range env.resolveSources() {
				if rs.src.Kind != source.KindLocal {
					continue
				}
				if !rs.ok {
					fmt.Println(ui.StatusError("source not found: " + rs.src.String()))
					clean = false
					continue
				}
				cmp, err := engine.Compare(env.contentDir, rs.dir)
				if err != nil {
					return fmt.Errorf("compare against %s: %w", rs.src.Location, err)
				}
				renderComparison(rs.src.Location, cmp, env.jsonOutput)
				if !cmp.IsClean() {
					clean = false
				}
			}

			if clean {
				fmt.Println(ui.StatusSuccess("everything up to date"))
			}
			return nil
		},
	}
}

func sourcesCommand() *cli.Command {
	return &cli.Command{
		Name:  "sources",
		Usage: "List configured content sources and where they resolve",
		Action: func(_ context.Context, cmd *cli.Command) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			renderSources(env.resolveSources(), env.jsonOutput)
			return nil
		},
	}
}

func registryCommand() *cli.Command {
	return &cli.Command{
		Name:  "registry",
		Usage: "Inspect the content registry",
		Commands: []*cli.Command{
			registryListCommand(),
			registryConflictsCommand(),
			registryOrphansCommand(),
			registryGraphCommand(),
			registryOptimizeCommand(),
		},
	}
}

func registryListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List indexed content items",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Usage: "Filter by kind (rule, skill, workflow)"},
			&cli.StringFlag{Name: "tag", Usage: "Filter by tag"},
			&cli.StringFlag{Name: "source", Usage: "Filter by source label"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			env, reg, err := loadRegistry(cmd)
			if err != nil {
				return err
			}
			items := reg.FindContent(registryFilter(cmd))
			renderRegistryItems(items, env.jsonOutput)
			return nil
		},
	}
}

func registryConflictsCommand() *cli.Command {
	return &cli.Command{
		Name:  "conflicts",
		Usage: "Show items whose type and name collide across sources",
		Action: func(_ context.Context, cmd *cli.Command) error {
			env, reg, err := loadRegistry(cmd)
			if err != nil {
				return err
			}
			renderRegistryConflicts(reg.DetectConflicts(), env.jsonOutput)
			return nil
		},
	}
}

func registryOrphansCommand() *cli.Command {
	return &cli.Command{
		Name:  "orphans",
		Usage: "Show items nothing depends on and that depend on nothing",
		Action: func(_ context.Context, cmd *cli.Command) error {
			env, reg, err := loadRegistry(cmd)
			if err != nil {
				return err
			}
			renderRegistryItems(reg.DetectOrphans(), env.jsonOutput)
			return nil
		},
	}
}

func registryGraphCommand() *cli.Command {
	return &cli.Command{
		Name:      "graph",
		Usage:     "Show the dependency neighborhood of one item",
		UsageText: "rulekit registry graph <item-id>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errors.New("graph requires exactly 1 argument: <item-id>")
			}
			env, reg, err := loadRegistry(cmd)
			if err != nil {
				return err
			}
			graph, err := reg.DependencyGraph(cmd.Args().Get(0))
			if err != nil {
				return err
			}
			renderGraph(graph, env.jsonOutput)
			return nil
		},
	}
}

func registryOptimizeCommand() *cli.Command {
	return &cli.Command{
		Name:  "optimize",
		Usage: "Prune registry entries whose files no longer exist",
		Action: func(_ context.Context, cmd *cli.Command) error {
			_, reg, err := loadRegistry(cmd)
			if err != nil {
				return err
			}
			pruned := reg.Optimize()
			if err := reg.Save(); err != nil {
				return err
			}
			if len(pruned) == 0 {
				fmt.Println(ui.StatusSuccess("registry already clean"))
				return nil
			}
			for _, id := range pruned {
				fmt.Println(ui.StatusSkipped("pruned " + id))
			}
			return nil
		},
	}
}

func loadRegistry(cmd *cli.Command) (*appEnv, *registry.Registry, error) {
	env, err := loadEnv(cmd)
	if err != nil {
		return nil, nil, err
	}
	return env, registry.Load(env.registryPath()), nil
}

func registryFilter(cmd *cli.Command) registry.Filter {
	return registry.Filter{
		Type:   kindFromFlag(cmd.String("type")),
		Tag:    cmd.String("tag"),
		Source: cmd.String("source"),
	}
}
