// Package tui is the terminal choice prompt used by the picker.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/denjay/npm-scripts-runner/internal/execx"
	"github.com/denjay/npm-scripts-runner/internal/picker"
)

// Model is a filterable single-choice list. Typing narrows the list; Enter
// picks the highlighted row; Esc cancels.
type Model struct {
	title    string
	items    []picker.Item
	filtered []int // indexes into items
	cursor   int
	offset   int
	width    int
	height   int
	filter   textinput.Model

	chosen    int
	done      bool
	cancelled bool
}

func NewModel(title string, items []picker.Item) Model {
	fi := textinput.New()
	fi.Placeholder = "type to filter..."
	fi.CharLimit = 100
	fi.Focus()

	m := Model{
		title:  title,
		items:  items,
		filter: fi,
		width:  100,
		height: 20,
		chosen: -1,
	}
	m.applyFilter()
	return m
}

func (m *Model) applyFilter() {
	m.filtered = m.filtered[:0]
	q := strings.TrimSpace(m.filter.Value())
	for i, it := range m.items {
		if execx.MatchTerms(it.Label+" "+it.Description, q) {
			m.filtered = append(m.filtered, i)
		}
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
	m.clampOffset()
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampOffset()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			m.cancelled = true
			m.done = true
			return m, tea.Quit

		case "enter":
			if len(m.filtered) == 0 {
				return m, nil
			}
			m.chosen = m.filtered[m.cursor]
			m.done = true
			return m, tea.Quit

		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
				m.clampOffset()
			}
			return m, nil

		case "down", "ctrl+n":
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
				m.clampOffset()
			}
			return m, nil

		case "home":
			m.cursor = 0
			m.clampOffset()
			return m, nil

		case "end":
			m.cursor = max(0, len(m.filtered)-1)
			m.clampOffset()
			return m, nil

		case "pgup":
			m.cursor -= m.visibleRows()
			if m.cursor < 0 {
				m.cursor = 0
			}
			m.clampOffset()
			return m, nil

		case "pgdown":
			m.cursor += m.visibleRows()
			if m.cursor >= len(m.filtered) {
				m.cursor = max(0, len(m.filtered)-1)
			}
			m.clampOffset()
			return m, nil
		}
	}

	var cmd tea.Cmd
	prev := m.filter.Value()
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != prev {
		m.cursor = 0
		m.applyFilter()
	}
	return m, cmd
}

func (m Model) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %d/%d", len(m.filtered), len(m.items))))
	b.WriteString("\n")
	b.WriteString(statusBarStyle.Render("Filter:") + " " + m.filter.View() + "\n")

	visible := m.visibleRows()
	end := min(m.offset+visible, len(m.filtered))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(m.items[m.filtered[i]], i == m.cursor))
		b.WriteString("\n")
	}
	if len(m.filtered) == 0 {
		b.WriteString(dimStyle.Render("  no matches") + "\n")
	}

	b.WriteString(helpStyle.Render("  ↑/↓: move  Enter: run  Esc: cancel"))
	return b.String()
}

func (m Model) renderRow(it picker.Item, selected bool) string {
	label := it.Label
	desc := it.Description
	room := m.width - lipgloss.Width(label) - 6
	if room < 10 {
		room = 10
	}
	if r := []rune(desc); len(r) > room {
		desc = string(r[:room-2]) + ".."
	}

	if selected {
		row := selectedStyle.Render(label + "  " + desc)
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Left, row)
	}
	return normalStyle.Render(label + "  " + descStyle.Render(desc))
}

func (m Model) visibleRows() int {
	// title, filter and help lines
	rows := m.height - 3
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *Model) clampOffset() {
	visible := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// Choice returns the index of the picked item in the original list.
func (m Model) Choice() (int, bool) {
	if m.cancelled || m.chosen < 0 {
		return -1, false
	}
	return m.chosen, true
}
