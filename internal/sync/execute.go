package sync

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rulekit/rulekit/internal/logging"
	"github.com/rulekit/rulekit/internal/progress"
)

// Options configures how a change set is applied.
type Options struct {
	// DryRun reports the full result without touching the filesystem.
	DryRun bool

	// Direction selects which updates are honored. Defaults to push.
	Direction Direction

	// Delete honors removal candidates. When false, paths present only in
	// the target are left untouched and reported as skipped.
	Delete bool

	// ResolveConflicts applies one side of each conflict deterministically
	// instead of deferring to the caller.
	ResolveConflicts ConflictPreference
}

// DefaultOptions returns the default executor options.
func DefaultOptions() Options {
	return Options{Direction: DirectionPush}
}

// Executor applies a classified change set to the target directory and
// maintains the persisted metadata store.
type Executor struct{}

// NewExecutor creates an executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Execute applies cmp to the filesystem. Per-path failures are recorded in
// the result and never abort the rest of the batch. The metadata store is
// persisted after the mutation batch on every exit path of a non-dry run,
// even a partially failed one.
func (e *Executor) Execute(cmp *Comparison, sourceRoot, targetRoot string, opts Options, store *Store) *Result {
	defer logging.Timer("execute")()

	if opts.Direction == "" {
		opts.Direction = DirectionPush
	}

	result := &Result{DryRun: opts.DryRun}

	if !opts.DryRun {
		defer func() {
			if err := store.Save(); err != nil {
				logging.Error("failed to persist metadata store",
					logging.Err(err),
				)
				result.Errors = append(result.Errors, fmt.Sprintf("persist metadata: %v", err))
			}
		}()
	}

	total := len(cmp.ToAdd) + len(cmp.ToUpdate) + len(cmp.ToRemove) + len(cmp.Conflicts)
	bar := progress.Simple(int64(total), "Syncing")
	defer bar.Finish()

	for _, rel := range cmp.ToAdd {
		e.applyCopy(cmp, rel, sourceRoot, targetRoot, DirectionPush, opts, store, result, &result.Added)
		bar.Add(1)
	}

	for _, upd := range cmp.ToUpdate {
		bar.Add(1)
		if upd.Direction != opts.Direction {
			logging.Debug("update direction does not match run direction, skipping",
				logging.Path(upd.Path),
				logging.Direction(upd.Direction.String()),
			)
			result.Skipped = append(result.Skipped, upd.Path)
			continue
		}
		e.applyCopy(cmp, upd.Path, sourceRoot, targetRoot, upd.Direction, opts, store, result, &result.Updated)
	}

	for _, rel := range cmp.ToRemove {
		bar.Add(1)
		if !opts.Delete {
			result.Skipped = append(result.Skipped, rel)
			continue
		}
		e.applyRemove(rel, targetRoot, opts, store, result)
	}

	for _, conflict := range cmp.Conflicts {
		bar.Add(1)
		e.applyConflict(cmp, conflict, sourceRoot, targetRoot, opts, store, result)
	}

	logging.Info("sync executed",
		logging.Direction(opts.Direction.String()),
		"summary", result.Summary(),
	)
	return result
}

// applyCopy writes one path in the given direction and records the new
// hash in the metadata store.
func (e *Executor) applyCopy(cmp *Comparison, rel, sourceRoot, targetRoot string, dir Direction, opts Options, store *Store, result *Result, bucket *[]string) {
	src := filepath.Join(sourceRoot, filepath.FromSlash(rel))
	dst := filepath.Join(targetRoot, filepath.FromSlash(rel))
	hash := cmp.Source[rel].Hash
	if dir == DirectionPull {
		src, dst = dst, src
		hash = cmp.Target[rel].Hash
	}

	if !opts.DryRun {
		if err := copyFile(src, dst); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", rel, err))
			return
		}
		store.Record(rel, hash, dir)
	}
	*bucket = append(*bucket, rel)
}

// applyRemove deletes a target path, copying it to a timestamped backup
// first. A file already absent is a successful no-op.
func (e *Executor) applyRemove(rel, targetRoot string, opts Options, store *Store, result *Result) {
	path := filepath.Join(targetRoot, filepath.FromSlash(rel))

	if opts.DryRun {
		result.Removed = append(result.Removed, rel)
		return
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Already gone, likely raced with another writer.
		result.Removed = append(result.Removed, rel)
		return
	}

	backup := fmt.Sprintf("%s.backup.%d", path, time.Now().UnixMilli())
	if err := copyFile(path, backup); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: backup: %v", rel, err))
		return
	}
	if err := os.Remove(path); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", rel, err))
		return
	}

	logging.Debug("removed with backup",
		logging.Path(rel),
		"backup", backup,
	)
	result.Removed = append(result.Removed, rel)
}

// applyConflict defers the conflict to the caller unless options name a
// winning side.
func (e *Executor) applyConflict(cmp *Comparison, conflict Conflict, sourceRoot, targetRoot string, opts Options, store *Store, result *Result) {
	switch opts.ResolveConflicts {
	case PreferSource:
		e.applyCopy(cmp, conflict.Path, sourceRoot, targetRoot, DirectionPush, opts, store, result, &result.Updated)
	case PreferTarget:
		// The target copy stands. Write it back over the source so both
		// sides converge on the kept content; recording the hash alone
		// would leave the divergence on disk and the next push run would
		// read the stale source as a fresh edit and overwrite the choice.
		e.applyCopy(cmp, conflict.Path, sourceRoot, targetRoot, DirectionPull, opts, store, result, &result.Updated)
	default:
		result.Conflicts = append(result.Conflicts, conflict)
	}
}

// SettleConflicts applies a per-path preference map to the conflicts of a
// prior comparison. Conflicts without a decision are carried into the
// result untouched.
func (e *Executor) SettleConflicts(cmp *Comparison, sourceRoot, targetRoot string, decisions map[string]ConflictPreference, store *Store) *Result {
	result := &Result{}
	defer func() {
		if err := store.Save(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("persist metadata: %v", err))
		}
	}()

	for _, conflict := range cmp.Conflicts {
		opts := Options{
			Direction:        DirectionPush,
			ResolveConflicts: decisions[conflict.Path],
		}
		e.applyConflict(cmp, conflict, sourceRoot, targetRoot, opts, store, result)
	}
	return result
}

// copyFile copies src to dst, creating parent directories as needed.
// Writes are whole-file and idempotent; re-running a sync reconverges.
func copyFile(src, dst string) error {
	// #nosec G304 - paths are under configured content roots
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("create parent of %s: %w", dst, err)
	}

	// #nosec G304
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}
	return nil
}
