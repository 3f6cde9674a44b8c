package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rulekit/rulekit/internal/sync"
	"github.com/rulekit/rulekit/internal/ui"
	"github.com/rulekit/rulekit/internal/ui/tui"
)

// pickConflicts runs the interactive table picker and converts its
// decisions into executor preferences.
func pickConflicts(conflicts []sync.Conflict) (map[string]sync.ConflictPreference, error) {
	result, err := tui.RunConflictList(conflicts)
	if err != nil {
		return nil, err
	}
	if !result.Applied {
		return nil, nil
	}

	decisions := make(map[string]sync.ConflictPreference, len(result.Decisions))
	for _, d := range result.Decisions {
		switch d.Choice {
		case tui.ChoiceSource:
			decisions[d.Path] = sync.PreferSource
		case tui.ChoiceTarget:
			decisions[d.Path] = sync.PreferTarget
		}
	}
	return decisions, nil
}

// promptConflicts is the line-based fallback: one question per conflict
// on stdin.
func promptConflicts(conflicts []sync.Conflict) (map[string]sync.ConflictPreference, error) {
	return promptConflictsFrom(bufio.NewReader(os.Stdin), conflicts)
}

func promptConflictsFrom(reader *bufio.Reader, conflicts []sync.Conflict) (map[string]sync.ConflictPreference, error) {
	decisions := make(map[string]sync.ConflictPreference)

	fmt.Printf("\n%s\n", ui.Header("Conflict Resolution"))
	fmt.Printf("Found %d conflict(s) that require resolution.\n\n", len(conflicts))

	for i, conflict := range conflicts {
		fmt.Printf("%s %s\n", ui.Warning(fmt.Sprintf("[%d/%d]", i+1, len(conflicts))), conflict.Path)
		fmt.Printf("  %s\n", ui.Dim(conflict.Reason))
		fmt.Print("  Keep (s)ource, keep (t)arget, or s(k)ip? [s/t/k]: ")

		choice, err := readChoice(reader)
		if err != nil {
			return nil, fmt.Errorf("read resolution for %s: %w", conflict.Path, err)
		}
		switch choice {
		case "s":
			decisions[conflict.Path] = sync.PreferSource
		case "t":
			decisions[conflict.Path] = sync.PreferTarget
		}
		fmt.Println()
	}
	return decisions, nil
}

func readChoice(reader *bufio.Reader) (string, error) {
	for {
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		choice := strings.ToLower(strings.TrimSpace(line))
		switch choice {
		case "s", "t", "k":
			return choice, nil
		}
		if err == io.EOF {
			// Treat end of input as skip.
			return "k", nil
		}
		fmt.Print("  Enter s, t, or k: ")
	}
}
