package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rulekit/rulekit/internal/sync"
)

// ConflictChoice is how one conflicted path should be settled.
type ConflictChoice string

const (
	// ChoiceSource overwrites the target with the source version.
	ChoiceSource ConflictChoice = "source"
	// ChoiceTarget keeps the target version, writing it back to the source.
	ChoiceTarget ConflictChoice = "target"
	// ChoiceSkip leaves the conflict unresolved.
	ChoiceSkip ConflictChoice = "skip"
)

// ConflictDecision pairs a conflicted path with its chosen resolution.
type ConflictDecision struct {
	Path   string
	Choice ConflictChoice
}

// ConflictPickResult is the outcome of the interactive picker.
type ConflictPickResult struct {
	// Applied is false when the user cancelled.
	Applied   bool
	Decisions []ConflictDecision
}

type conflictKeyMap struct {
	Source  key.Binding
	Target  key.Binding
	Skip    key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

func defaultConflictKeyMap() conflictKeyMap {
	return conflictKeyMap{
		Source: key.NewBinding(
			key.WithKeys("s", "1"),
			key.WithHelp("s/1", "use source"),
		),
		Target: key.NewBinding(
			key.WithKeys("t", "2"),
			key.WithHelp("t/2", "keep target"),
		),
		Skip: key.NewBinding(
			key.WithKeys("x", "3"),
			key.WithHelp("x/3", "skip"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "apply choices"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "cancel"),
		),
	}
}

var titleCaser = cases.Title(language.English)

// ConflictListModel is the BubbleTea model for interactive conflict
// resolution.
type ConflictListModel struct {
	conflicts []sync.Conflict
	choices   map[string]ConflictChoice
	table     table.Model
	keys      conflictKeyMap
	result    ConflictPickResult
	quitting  bool
}

// NewConflictListModel creates a picker over the detected conflicts.
func NewConflictListModel(conflicts []sync.Conflict) ConflictListModel {
	columns := []table.Column{
		{Title: "Status", Width: 8},
		{Title: "Path", Width: 36},
		{Title: "Reason", Width: 34},
		{Title: "Choice", Width: 10},
	}

	rows := make([]table.Row, len(conflicts))
	for i, c := range conflicts {
		rows[i] = buildConflictRow(c, "")
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ConflictListModel{
		conflicts: conflicts,
		choices:   make(map[string]ConflictChoice),
		table:     t,
		keys:      defaultConflictKeyMap(),
	}
}

func buildConflictRow(c sync.Conflict, choice ConflictChoice) table.Row {
	status := "○"
	display := "-"
	if choice != "" {
		status = "✓"
		display = titleCaser.String(string(choice))
	}
	return table.Row{
		status,
		truncateText(c.Path, 36),
		truncateText(c.Reason, 34),
		display,
	}
}

// Init implements tea.Model.
func (m ConflictListModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ConflictListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-8, 5))

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.result = ConflictPickResult{}
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Source):
			m.choose(ChoiceSource)
			return m, nil

		case key.Matches(msg, m.keys.Target):
			m.choose(ChoiceTarget)
			return m, nil

		case key.Matches(msg, m.keys.Skip):
			m.choose(ChoiceSkip)
			return m, nil

		case key.Matches(msg, m.keys.Confirm):
			if len(m.choices) == len(m.conflicts) {
				m.result = ConflictPickResult{
					Applied:   true,
					Decisions: m.buildDecisions(),
				}
				m.quitting = true
				return m, tea.Quit
			}
		}
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *ConflictListModel) choose(choice ConflictChoice) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.conflicts) {
		return
	}
	c := m.conflicts[idx]
	m.choices[c.Path] = choice

	rows := m.table.Rows()
	if idx < len(rows) {
		rows[idx] = buildConflictRow(c, choice)
		m.table.SetRows(rows)
	}
}

func (m ConflictListModel) buildDecisions() []ConflictDecision {
	decisions := make([]ConflictDecision, 0, len(m.conflicts))
	for _, c := range m.conflicts {
		if choice, ok := m.choices[c.Path]; ok {
			decisions = append(decisions, ConflictDecision{Path: c.Path, Choice: choice})
		}
	}
	return decisions
}

// View implements tea.Model.
func (m ConflictListModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(Styles.Title.Render("Resolve Conflicts"))
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")

	status := fmt.Sprintf("%d/%d chosen", len(m.choices), len(m.conflicts))
	if len(m.choices) == len(m.conflicts) && len(m.conflicts) > 0 {
		status += " - press y to apply"
	}
	b.WriteString(Styles.Status.Render(status))
	b.WriteString("\n")

	help := []string{
		"↑/↓ navigate",
		"s source",
		"t target",
		"x skip",
		"y apply",
		"q cancel",
	}
	b.WriteString(Styles.Help.Render(strings.Join(help, " • ")))
	return b.String()
}

// Result returns the outcome of the interaction.
func (m ConflictListModel) Result() ConflictPickResult {
	return m.result
}

// RunConflictList runs the interactive picker over detected conflicts.
func RunConflictList(conflicts []sync.Conflict) (ConflictPickResult, error) {
	if len(conflicts) == 0 {
		return ConflictPickResult{}, nil
	}

	mdl := NewConflictListModel(conflicts)
	finalModel, err := Run(mdl)
	if err != nil {
		return ConflictPickResult{}, err
	}
	if m, ok := finalModel.(ConflictListModel); ok {
		return m.Result(), nil
	}
	return ConflictPickResult{}, nil
}
