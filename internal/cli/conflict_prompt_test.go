package cli

import (
	"bufio"
	"strings"
	"testing"

	"github.com/rulekit/rulekit/internal/sync"
)

func promptConflictsFixture() []sync.Conflict {
	return []sync.Conflict{
		{Path: "rules/a.md", Reason: "both sides changed since last sync"},
		{Path: "rules/b.md", Reason: "both sides changed since last sync"},
		{Path: "rules/c.md", Reason: "both sides have content with no prior sync history"},
	}
}

func TestPromptConflictsChoices(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("s\nt\nk\n"))
	decisions, err := promptConflictsFrom(reader, promptConflictsFixture())
	if err != nil {
		t.Fatalf("promptConflictsFrom: %v", err)
	}

	if decisions["rules/a.md"] != sync.PreferSource {
		t.Errorf("a.md = %q, want source", decisions["rules/a.md"])
	}
	if decisions["rules/b.md"] != sync.PreferTarget {
		t.Errorf("b.md = %q, want target", decisions["rules/b.md"])
	}
	if _, ok := decisions["rules/c.md"]; ok {
		t.Error("skipped conflict recorded a decision")
	}
}

func TestPromptConflictsRejectsInvalidInput(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("x\nmaybe\ns\nt\nk\n"))
	decisions, err := promptConflictsFrom(reader, promptConflictsFixture())
	if err != nil {
		t.Fatal(err)
	}
	if decisions["rules/a.md"] != sync.PreferSource {
		t.Errorf("invalid input not re-prompted, a.md = %q", decisions["rules/a.md"])
	}
	if len(decisions) != 2 {
		t.Errorf("got %d decisions, want 2", len(decisions))
	}
}

func TestPromptConflictsEOFSkips(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader(""))
	decisions, err := promptConflictsFrom(reader, promptConflictsFixture()[:1])
	if err != nil {
		t.Fatalf("EOF should not be an error: %v", err)
	}
	if len(decisions) != 0 {
		t.Errorf("EOF produced decisions: %v", decisions)
	}
}
