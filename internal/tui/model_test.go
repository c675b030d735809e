package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/denjay/npm-scripts-runner/internal/picker"
)

func testItems() []picker.Item {
	return []picker.Item{
		{Label: "test", Description: "jest (Last executed)"},
		{Label: "build", Description: "tsc"},
		{Label: "lint", Description: "eslint ."},
	}
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		if !ok {
			t.Fatalf("Update returned %T", next)
		}
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_EnterPicksFirstByDefault(t *testing.T) {
	m := send(t, NewModel("Select", testItems()), tea.KeyMsg{Type: tea.KeyEnter})
	i, ok := m.Choice()
	if !ok || i != 0 {
		t.Fatalf("Choice = %d,%v, want 0,true", i, ok)
	}
}

func TestModel_MoveAndPick(t *testing.T) {
	m := send(t, NewModel("Select", testItems()),
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyUp},
		tea.KeyMsg{Type: tea.KeyEnter},
	)
	i, ok := m.Choice()
	if !ok || i != 1 {
		t.Fatalf("Choice = %d,%v, want 1,true", i, ok)
	}
}

func TestModel_FilterMapsBackToOriginalIndex(t *testing.T) {
	m := send(t, NewModel("Select", testItems()), runes("esl"))
	if len(m.filtered) != 1 {
		t.Fatalf("filtered = %v, want one match", m.filtered)
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	i, ok := m.Choice()
	if !ok || i != 2 {
		t.Fatalf("Choice = %d,%v, want 2,true", i, ok)
	}
}

func TestModel_FilterMatchesEveryTerm(t *testing.T) {
	m := send(t, NewModel("Select", testItems()), runes("last jest"))
	if len(m.filtered) != 1 || m.filtered[0] != 0 {
		t.Fatalf("filtered = %v, want [0]", m.filtered)
	}
	m = send(t, NewModel("Select", testItems()), runes("jest tsc"))
	if len(m.filtered) != 0 {
		t.Fatalf("filtered = %v, want none", m.filtered)
	}
}

func TestModel_EnterWithNoMatchesDoesNothing(t *testing.T) {
	m := send(t, NewModel("Select", testItems()), runes("zzz"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.done {
		t.Fatalf("expected prompt to stay open with no matches")
	}
	if _, ok := m.Choice(); ok {
		t.Fatalf("expected no choice")
	}
}

func TestModel_EscCancels(t *testing.T) {
	for _, k := range []tea.KeyMsg{{Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		m := send(t, NewModel("Select", testItems()), k)
		if _, ok := m.Choice(); ok {
			t.Fatalf("%s: expected cancel", k)
		}
		if m.View() != "" {
			t.Fatalf("%s: expected empty view after quit", k)
		}
	}
}

func TestModel_ViewShowsTitleAndRows(t *testing.T) {
	m := NewModel("Select an npm script to run", testItems())
	v := m.View()
	for _, want := range []string{"Select an npm script to run", "test", "jest (Last executed)", "build", "3/3"} {
		if !strings.Contains(v, want) {
			t.Fatalf("view missing %q:\n%s", want, v)
		}
	}
}

func TestModel_ScrollKeepsCursorVisible(t *testing.T) {
	var items []picker.Item
	for _, l := range strings.Split("a b c d e f g h i j", " ") {
		items = append(items, picker.Item{Label: l})
	}
	m := send(t, NewModel("Select", items), tea.WindowSizeMsg{Width: 80, Height: 6})
	if got := m.visibleRows(); got != 3 {
		t.Fatalf("visibleRows = %d, want 3", got)
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnd})
	if m.cursor != 9 || m.offset != 7 {
		t.Fatalf("cursor/offset = %d/%d, want 9/7", m.cursor, m.offset)
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyHome})
	if m.cursor != 0 || m.offset != 0 {
		t.Fatalf("cursor/offset = %d/%d, want 0/0", m.cursor, m.offset)
	}
}
