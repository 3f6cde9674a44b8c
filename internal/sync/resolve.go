package sync

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rulekit/rulekit/internal/logging"
	"github.com/rulekit/rulekit/internal/scan"
)

// ResolutionAction is the outcome of resolving one file pair.
type ResolutionAction string

const (
	// ActionCopyLocalToRemote pushes the local copy over the remote one.
	ActionCopyLocalToRemote ResolutionAction = "copy-local-to-remote"

	// ActionCopyRemoteToLocal pulls the remote copy over the local one.
	ActionCopyRemoteToLocal ResolutionAction = "copy-remote-to-local"

	// ActionNone leaves both sides untouched.
	ActionNone ResolutionAction = "no-action"
)

// Resolution pairs an action with the reason it was chosen.
type Resolution struct {
	Action ResolutionAction `json:"action"`
	Reason string           `json:"reason"`
}

// FileConflict describes a file pair the resolver examined, for reporting
// and interactive reconciliation. Produced transiently; never persisted.
type FileConflict struct {
	Path       string    `json:"path"`
	LocalTime  time.Time `json:"local_time"`
	RemoteTime time.Time `json:"remote_time"`
	LocalSize  int64     `json:"local_size"`
	RemoteSize int64     `json:"remote_size"`
	// Resolution is one of local, remote, or manual.
	Resolution string `json:"resolution"`
}

// ResolutionReport is the outcome of a directional batch reconciliation.
type ResolutionReport struct {
	// Applied holds paths whose resolution matched the requested direction
	// and was executed.
	Applied []string `json:"applied"`
	// Skipped holds paths whose resolution pointed the other way; they are
	// recorded, never silently applied against the requested direction.
	Skipped []string `json:"skipped"`
	// Conflicts holds the examined pairs that required a decision.
	Conflicts []FileConflict `json:"conflicts"`
	// Errors holds per-path failures; one failure never aborts the batch.
	Errors []string `json:"errors,omitempty"`
}

// Resolver decides between a local and a remote copy of the same path using
// modification-time and content-equality heuristics.
type Resolver struct {
	// TieBreak is the side that wins when timestamps are identical but
	// content differs. Defaults to SideRemote: the shared source of truth
	// is favored over the local copy.
	TieBreak Side
}

// NewResolver returns a resolver with the default remote tie-break.
func NewResolver() *Resolver {
	return &Resolver{TieBreak: SideRemote}
}

// ResolveFile decides what to do about one local/remote path pair. The
// policy, in order: a file existing on only one side is copied to the
// other; differing timestamps let the newer copy win; identical timestamps
// with identical content need no action; identical timestamps with
// differing content fall to the configured tie-break side.
func (r *Resolver) ResolveFile(localPath, remotePath string) (Resolution, error) {
	localInfo, localErr := os.Stat(localPath)
	remoteInfo, remoteErr := os.Stat(remotePath)

	localExists := localErr == nil
	remoteExists := remoteErr == nil

	switch {
	case !localExists && !remoteExists:
		return Resolution{Action: ActionNone, Reason: "neither side exists"}, nil
	case localExists && !remoteExists:
		return Resolution{Action: ActionCopyLocalToRemote, Reason: "exists only locally"}, nil
	case !localExists && remoteExists:
		return Resolution{Action: ActionCopyRemoteToLocal, Reason: "exists only remotely"}, nil
	}

	localTime := localInfo.ModTime()
	remoteTime := remoteInfo.ModTime()

	if localTime.After(remoteTime) {
		return Resolution{Action: ActionCopyLocalToRemote, Reason: "local copy is newer"}, nil
	}
	if remoteTime.After(localTime) {
		return Resolution{Action: ActionCopyRemoteToLocal, Reason: "remote copy is newer"}, nil
	}

	same, err := contentEqual(localPath, remotePath)
	if err != nil {
		return Resolution{}, fmt.Errorf("compare %s: %w", localPath, err)
	}
	if same {
		return Resolution{Action: ActionNone, Reason: "identical timestamp and content"}, nil
	}

	if r.tieBreak() == SideLocal {
		return Resolution{Action: ActionCopyLocalToRemote, Reason: "identical timestamp, local side preferred"}, nil
	}
	return Resolution{Action: ActionCopyRemoteToLocal, Reason: "identical timestamp, remote side preferred"}, nil
}

func (r *Resolver) tieBreak() Side {
	if r.TieBreak == SideLocal {
		return SideLocal
	}
	return SideRemote
}

// SyncWithConflictResolution reconciles every content file under localDir
// and remoteDir, applying only the copies whose resulting direction matches
// the requested one: push executes local-to-remote copies, pull executes
// remote-to-local copies. Resolutions pointing the other way are recorded
// as skipped so a pull can never accidentally push local changes.
func (r *Resolver) SyncWithConflictResolution(localDir, remoteDir string, direction Direction) (*ResolutionReport, error) {
	defer logging.Timer("reconcile")()

	if !direction.IsValid() {
		return nil, fmt.Errorf("invalid direction %q", direction)
	}

	scanner := scan.NewScanner()
	local, err := scanner.Scan(localDir)
	if err != nil {
		return nil, fmt.Errorf("scan local: %w", err)
	}
	remote, err := scanner.Scan(remoteDir)
	if err != nil {
		return nil, fmt.Errorf("scan remote: %w", err)
	}

	paths := make(map[string]bool, len(local)+len(remote))
	for p := range local {
		paths[p] = true
	}
	for p := range remote {
		paths[p] = true
	}
	ordered := make([]string, 0, len(paths))
	for p := range paths {
		ordered = append(ordered, p)
	}
	sort.Strings(ordered)

	report := &ResolutionReport{}
	for _, rel := range ordered {
		localPath := filepath.Join(localDir, filepath.FromSlash(rel))
		remotePath := filepath.Join(remoteDir, filepath.FromSlash(rel))

		res, err := r.ResolveFile(localPath, remotePath)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", rel, err))
			continue
		}

		if conflict := describeConflict(rel, localPath, remotePath, res.Action); conflict != nil {
			report.Conflicts = append(report.Conflicts, *conflict)
		}

		switch res.Action {
		case ActionNone:
			continue
		case ActionCopyLocalToRemote:
			if direction != DirectionPush {
				logging.Debug("skipping resolution against requested direction",
					logging.Path(rel),
					logging.Direction(direction.String()),
					"resolution", string(res.Action),
				)
				report.Skipped = append(report.Skipped, rel)
				continue
			}
			if err := copyPreservingTime(localPath, remotePath); err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", rel, err))
				continue
			}
			report.Applied = append(report.Applied, rel)
		case ActionCopyRemoteToLocal:
			if direction != DirectionPull {
				logging.Debug("skipping resolution against requested direction",
					logging.Path(rel),
					logging.Direction(direction.String()),
					"resolution", string(res.Action),
				)
				report.Skipped = append(report.Skipped, rel)
				continue
			}
			if err := copyPreservingTime(remotePath, localPath); err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", rel, err))
				continue
			}
			report.Applied = append(report.Applied, rel)
		}
	}

	logging.Info("reconciliation complete",
		logging.Direction(direction.String()),
		"applied", len(report.Applied),
		"skipped", len(report.Skipped),
		"errors", len(report.Errors),
	)
	return report, nil
}

// describeConflict reports the pair for paths that exist on both sides and
// needed a decision. One-sided copies are routine, not conflicts.
func describeConflict(rel, localPath, remotePath string, action ResolutionAction) *FileConflict {
	localInfo, localErr := os.Stat(localPath)
	remoteInfo, remoteErr := os.Stat(remotePath)
	if localErr != nil || remoteErr != nil {
		return nil
	}
	resolution := "manual"
	switch action {
	case ActionCopyLocalToRemote:
		resolution = "local"
	case ActionCopyRemoteToLocal:
		resolution = "remote"
	case ActionNone:
		return nil
	}
	return &FileConflict{
		Path:       rel,
		LocalTime:  localInfo.ModTime(),
		RemoteTime: remoteInfo.ModTime(),
		LocalSize:  localInfo.Size(),
		RemoteSize: remoteInfo.Size(),
		Resolution: resolution,
	}
}

// copyPreservingTime copies src to dst and carries over src's modification
// time. Without this, a fresh copy would always look newer than its origin
// and the next resolution pass would copy it straight back.
func copyPreservingTime(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	if err := os.Chtimes(dst, time.Now(), info.ModTime()); err != nil {
		return fmt.Errorf("set times on %s: %w", dst, err)
	}
	return nil
}

// contentEqual reports whether two files have identical bytes.
func contentEqual(a, b string) (bool, error) {
	// #nosec G304 - both paths are under configured content roots
	dataA, err := os.ReadFile(a)
	if err != nil {
		return false, err
	}
	// #nosec G304
	dataB, err := os.ReadFile(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(dataA, dataB), nil
}
