package sync

import (
	"fmt"

	"github.com/rulekit/rulekit/internal/logging"
	"github.com/rulekit/rulekit/internal/scan"
)

// Engine ties the comparator and executor together over one metadata store.
// Engines are not safe for concurrent runs against the same store; callers
// (the watch loop) serialize invocations.
type Engine struct {
	comparator *Comparator
	executor   *Executor
	store      *Store

	// cleanup hooks run on every Sync exit path, e.g. stopping an active
	// file watcher after a total run failure.
	cleanup []func()
}

// NewEngine constructs an engine, loading the metadata store at storePath.
// A corrupt store is a construction error; use Run for the top-level
// behavior of containing it in an error result.
func NewEngine(storePath string, scanner *scan.Scanner) (*Engine, error) {
	store, err := LoadStore(storePath)
	if err != nil {
		return nil, fmt.Errorf("load metadata store: %w", err)
	}
	return &Engine{
		comparator: NewComparator(scanner),
		executor:   NewExecutor(),
		store:      store,
	}, nil
}

// OnCleanup registers a hook that runs when a sync run finishes, on success
// and failure alike.
func (e *Engine) OnCleanup(fn func()) {
	e.cleanup = append(e.cleanup, fn)
}

// Store exposes the engine's metadata store.
func (e *Engine) Store() *Store {
	return e.store
}

// Compare classifies the differences between the two roots without
// applying anything.
func (e *Engine) Compare(sourceRoot, targetRoot string) (*Comparison, error) {
	return e.comparator.Compare(sourceRoot, targetRoot, e.store)
}

// Sync compares the two roots and applies the change set. Cleanup hooks
// run on every exit path.
func (e *Engine) Sync(sourceRoot, targetRoot string, opts Options) *Result {
	defer logging.Timer("sync")()
	defer func() {
		for _, fn := range e.cleanup {
			fn()
		}
	}()

	logging.Debug("starting sync run",
		logging.Source(sourceRoot),
		logging.Path(targetRoot),
		logging.Direction(string(opts.Direction)),
		"dry_run", opts.DryRun,
	)

	cmp, err := e.Compare(sourceRoot, targetRoot)
	if err != nil {
		return ErrorResult(fmt.Errorf("compare failed: %w", err), opts.DryRun)
	}

	return e.executor.Execute(cmp, sourceRoot, targetRoot, opts, e.store)
}

// Settle applies per-path conflict decisions gathered from the caller
// (an interactive prompt) against a prior comparison. Paths without a
// decision remain conflicted in the returned result.
func (e *Engine) Settle(cmp *Comparison, sourceRoot, targetRoot string, decisions map[string]ConflictPreference) *Result {
	return e.executor.SettleConflicts(cmp, sourceRoot, targetRoot, decisions, e.store)
}

// Run is the top-level entry point: it constructs an engine over storePath
// and syncs sourceRoot into targetRoot. Any total failure, including a
// metadata store corrupt beyond parsing, is contained as a single error
// result with an empty change set.
func Run(storePath, sourceRoot, targetRoot string, opts Options) *Result {
	engine, err := NewEngine(storePath, nil)
	if err != nil {
		logging.Error("sync run failed",
			logging.Err(err),
		)
		return ErrorResult(err, opts.DryRun)
	}
	return engine.Sync(sourceRoot, targetRoot, opts)
}
