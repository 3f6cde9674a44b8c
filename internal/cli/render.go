package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rulekit/rulekit/internal/content"
	"github.com/rulekit/rulekit/internal/registry"
	"github.com/rulekit/rulekit/internal/sync"
	"github.com/rulekit/rulekit/internal/ui"
)

func headerLine(text string) string {
	return ui.Header(text)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	// Stdout JSON encode failures have nowhere useful to go.
	_ = enc.Encode(v)
}

// renderResult prints one sync run's outcome.
func renderResult(result *sync.Result, asJSON bool) {
	if asJSON {
		printJSON(result)
		return
	}

	for _, rel := range result.Added {
		fmt.Printf("  %s %s\n", ui.Success(ui.SymbolAdded), rel)
	}
	for _, rel := range result.Updated {
		fmt.Printf("  %s %s\n", ui.Info(ui.SymbolUpdated), rel)
	}
	for _, rel := range result.Removed {
		fmt.Printf("  %s %s\n", ui.Error(ui.SymbolRemoved), rel)
	}
	for _, rel := range result.Skipped {
		fmt.Printf("  %s %s\n", ui.Dim(ui.SymbolSkipped), ui.Dim(rel))
	}
	for _, conflict := range result.Conflicts {
		fmt.Printf("  %s %s (%s)\n", ui.Warning(ui.SymbolConflict), conflict.Path, conflict.Reason)
	}
	for _, msg := range result.Errors {
		fmt.Println("  " + ui.StatusError(msg))
	}

	if result.IsClean() {
		fmt.Println("  " + ui.StatusSuccess(result.Summary()))
	} else {
		fmt.Println("  " + ui.Bold(result.Summary()))
	}
}

// renderComparison prints a status-style preview of pending changes.
func renderComparison(location string, cmp *sync.Comparison, asJSON bool) {
	if asJSON {
		printJSON(struct {
			Source     string           `json:"source"`
			Comparison *sync.Comparison `json:"comparison"`
		}{location, cmp})
		return
	}

	fmt.Println(headerLine(location))
	if cmp.IsClean() {
		fmt.Println("  " + ui.Dim("up to date"))
		return
	}
	for _, rel := range cmp.ToAdd {
		fmt.Printf("  %s %s\n", ui.Success(ui.SymbolAdded), rel)
	}
	for _, upd := range cmp.ToUpdate {
		fmt.Printf("  %s %s (%s)\n", ui.Info(ui.SymbolUpdated), upd.Path, upd.Direction)
	}
	for _, rel := range cmp.ToRemove {
		fmt.Printf("  %s %s\n", ui.Error(ui.SymbolRemoved), rel)
	}
	for _, conflict := range cmp.Conflicts {
		fmt.Println("  " + ui.StatusConflict(conflict.Path+" ("+conflict.Reason+")"))
	}
}

// renderReport prints a directional reconciliation's outcome.
func renderReport(location string, report *sync.ResolutionReport, asJSON bool) {
	if asJSON {
		printJSON(struct {
			Source string                 `json:"source"`
			Report *sync.ResolutionReport `json:"report"`
		}{location, report})
		return
	}

	fmt.Println(headerLine(location))
	for _, rel := range report.Applied {
		fmt.Printf("  %s %s\n", ui.Success(ui.SymbolUpdated), rel)
	}
	for _, rel := range report.Skipped {
		fmt.Printf("  %s %s\n", ui.Dim(ui.SymbolSkipped), ui.Dim(rel))
	}
	for _, msg := range report.Errors {
		fmt.Println("  " + ui.StatusError(msg))
	}
	manual := 0
	for _, conflict := range report.Conflicts {
		if conflict.Resolution == "manual" {
			manual++
			fmt.Printf("  %s %s (needs manual resolution)\n", ui.Warning(ui.SymbolConflict), conflict.Path)
		}
	}
	if len(report.Applied)+len(report.Errors)+manual == 0 {
		fmt.Println("  " + ui.Dim("nothing to reconcile"))
		return
	}
	summary := fmt.Sprintf("%d applied, %d skipped", len(report.Applied), len(report.Skipped))
	if len(report.Errors) > 0 {
		summary += fmt.Sprintf(", %d failed", len(report.Errors))
	}
	fmt.Println("  " + ui.Bold(summary))
}

func renderDistribution(paths []string, dryRun, asJSON bool) {
	if asJSON {
		printJSON(struct {
			Distributed []string `json:"distributed"`
			DryRun      bool     `json:"dry_run"`
		}{paths, dryRun})
		return
	}

	label := fmt.Sprintf("%d editor files generated", len(paths))
	if dryRun {
		label += " (dry run)"
	}
	fmt.Println(ui.StatusSuccess(label))
}

func renderSources(resolved []resolvedSource, asJSON bool) {
	if asJSON {
		type row struct {
			Kind     string `json:"kind"`
			Location string `json:"location"`
			Dir      string `json:"dir,omitempty"`
			Found    bool   `json:"found"`
		}
		rows := make([]row, 0, len(resolved))
		for _, rs := range resolved {
			rows = append(rows, row{string(rs.src.Kind), rs.src.Location, rs.dir, rs.ok})
		}
		printJSON(rows)
		return
	}

	if len(resolved) == 0 {
		fmt.Println(ui.Dim("no sources configured"))
		return
	}
	for _, rs := range resolved {
		if rs.ok {
			fmt.Printf("%s %s %s\n", ui.Success(ui.SymbolSuccess), rs.src.String(), ui.Dim(rs.dir))
		} else {
			fmt.Println(ui.StatusError(rs.src.String() + " (not found)"))
		}
	}
}

func renderRegistryItems(items []*registry.ContentMetadata, asJSON bool) {
	if asJSON {
		printJSON(items)
		return
	}

	if len(items) == 0 {
		fmt.Println(ui.Dim("no items"))
		return
	}
	for _, item := range items {
		line := fmt.Sprintf("%-10s %-24s v%-3d %s", item.Type, item.Name, item.Version, ui.Dim(item.Source))
		if len(item.Tags) > 0 {
			line += " " + ui.Info("["+strings.Join(item.Tags, ", ")+"]")
		}
		fmt.Println(line)
	}
}

func renderRegistryConflicts(groups [][]*registry.ContentMetadata, asJSON bool) {
	if asJSON {
		printJSON(groups)
		return
	}

	if len(groups) == 0 {
		fmt.Println(ui.StatusSuccess("no cross-source conflicts"))
		return
	}
	for _, group := range groups {
		fmt.Println(ui.StatusConflict(string(group[0].Type) + "/" + group[0].Name))
		for _, item := range group {
			fmt.Printf("    %s %s\n", ui.Dim(item.Source), item.Path)
		}
	}
}

func renderGraph(graph *registry.Graph, asJSON bool) {
	if asJSON {
		printJSON(graph)
		return
	}

	fmt.Println(headerLine(graph.ID))
	sections := []struct {
		title string
		ids   []string
	}{
		{"depends on", graph.Direct},
		{"indirectly", graph.Indirect},
		{"depended on by", graph.Dependents},
	}
	for _, sec := range sections {
		if len(sec.ids) == 0 {
			continue
		}
		fmt.Println("  " + ui.Bold(sec.title+":"))
		for _, id := range sec.ids {
			fmt.Println("    " + id)
		}
	}
	if len(graph.Direct)+len(graph.Indirect)+len(graph.Dependents) == 0 {
		fmt.Println("  " + ui.Dim("no dependencies or dependents"))
	}
}

func kindFromFlag(s string) content.Kind {
	kind := content.Kind(strings.ToLower(strings.TrimSpace(s)))
	if kind.IsValid() {
		return kind
	}
	return ""
}
