package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rulekit/rulekit/internal/sync"
)

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func testConflicts() []sync.Conflict {
	return []sync.Conflict{
		{Path: "rules/style.md", Reason: "both sides changed since last sync"},
		{Path: "skills/review.md", Reason: "both sides have content with no prior sync history"},
	}
}

func TestConflictListResolveAndApply(t *testing.T) {
	mdl := NewConflictListModel(testConflicts())

	var model tea.Model = mdl
	model, _ = model.Update(keyMsg('s'))
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model, _ = model.Update(keyMsg('t'))
	model, _ = model.Update(keyMsg('y'))

	m := model.(ConflictListModel)
	result := m.Result()
	if !result.Applied {
		t.Fatal("expected result to be applied")
	}
	if len(result.Decisions) != 2 {
		t.Fatalf("got %d decisions, want 2", len(result.Decisions))
	}
	if result.Decisions[0].Path != "rules/style.md" || result.Decisions[0].Choice != ChoiceSource {
		t.Errorf("first decision = %+v", result.Decisions[0])
	}
	if result.Decisions[1].Choice != ChoiceTarget {
		t.Errorf("second decision = %+v", result.Decisions[1])
	}
}

func TestConflictListConfirmRequiresAllChosen(t *testing.T) {
	mdl := NewConflictListModel(testConflicts())

	var model tea.Model = mdl
	model, _ = model.Update(keyMsg('s'))
	model, _ = model.Update(keyMsg('y'))

	m := model.(ConflictListModel)
	if m.Result().Applied {
		t.Error("apply succeeded with unresolved conflicts")
	}
}

func TestConflictListCancel(t *testing.T) {
	mdl := NewConflictListModel(testConflicts())

	var model tea.Model = mdl
	model, _ = model.Update(keyMsg('s'))
	model, _ = model.Update(keyMsg('q'))

	m := model.(ConflictListModel)
	result := m.Result()
	if result.Applied || len(result.Decisions) != 0 {
		t.Errorf("cancel produced %+v", result)
	}
}

func TestTruncateText(t *testing.T) {
	if got := truncateText("abcdefgh", 5); got != "ab..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncateText("abc", 5); got != "abc" {
		t.Errorf("short text truncated to %q", got)
	}
	if got := truncateText("abc", 0); got != "" {
		t.Errorf("zero width = %q", got)
	}
}
