package sync

import (
	"fmt"
	"strings"
)

// Result is the structured outcome of one executed sync run.
type Result struct {
	// Added, Updated, Removed, and Skipped hold relative paths.
	Added   []string `json:"added"`
	Updated []string `json:"updated"`
	Removed []string `json:"removed"`
	Skipped []string `json:"skipped"`

	// Conflicts holds paths needing resolution; never auto-applied.
	Conflicts []Conflict `json:"conflicts"`

	// Errors holds per-path failure messages.
	Errors []string `json:"errors"`

	// DryRun indicates the run reported changes without applying them.
	DryRun bool `json:"dry_run"`
}

// HasChanges returns true if the run applied (or would apply) anything.
func (r *Result) HasChanges() bool {
	return len(r.Added) > 0 || len(r.Updated) > 0 || len(r.Removed) > 0
}

// HasErrors returns true if any per-path operation failed.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// IsClean returns true when nothing changed, nothing conflicted, and
// nothing failed.
func (r *Result) IsClean() bool {
	return !r.HasChanges() && len(r.Conflicts) == 0 && !r.HasErrors()
}

// ErrorResult wraps a total run failure as a single-error result with an
// empty change set.
func ErrorResult(err error, dryRun bool) *Result {
	return &Result{
		Errors: []string{err.Error()},
		DryRun: dryRun,
	}
}

// Summary returns a one-line human-readable description of the run.
func (r *Result) Summary() string {
	var parts []string
	if len(r.Added) > 0 {
		parts = append(parts, fmt.Sprintf("%d added", len(r.Added)))
	}
	if len(r.Updated) > 0 {
		parts = append(parts, fmt.Sprintf("%d updated", len(r.Updated)))
	}
	if len(r.Removed) > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", len(r.Removed)))
	}
	if len(r.Skipped) > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", len(r.Skipped)))
	}
	if len(r.Conflicts) > 0 {
		parts = append(parts, fmt.Sprintf("%d conflicts", len(r.Conflicts)))
	}
	if len(r.Errors) > 0 {
		parts = append(parts, fmt.Sprintf("%d errors", len(r.Errors)))
	}
	if len(parts) == 0 {
		parts = append(parts, "up to date")
	}

	summary := strings.Join(parts, ", ")
	if r.DryRun {
		summary += " (dry run)"
	}
	return summary
}
