// Package ui styles the lines the CLI prints. Styling is off unless the
// output is a terminal that accepts it.
package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

type role int

const (
	roleBold role = iota
	roleDim
	roleOK
	roleWarn
	roleError
	roleLabel
	numRoles
)

type UI struct {
	enabled bool
	styles  [numRoles]lipgloss.Style
}

func New(out *os.File) UI {
	r := lipgloss.NewRenderer(out)

	u := UI{enabled: styled(out)}
	u.styles[roleBold] = r.NewStyle().Bold(true)
	u.styles[roleDim] = r.NewStyle().Faint(true)
	u.styles[roleOK] = r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	u.styles[roleWarn] = r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	u.styles[roleError] = r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	u.styles[roleLabel] = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#cb3837", Dark: "#f47e7d"}).Bold(true)
	return u
}

// styled honours NO_COLOR and TERM=dumb.
func styled(out *os.File) bool {
	if out == nil || !term.IsTerminal(int(out.Fd())) {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return !strings.EqualFold(strings.TrimSpace(os.Getenv("TERM")), "dumb")
}

func (u UI) Bold(s string) string  { return u.render(roleBold, s) }
func (u UI) Dim(s string) string   { return u.render(roleDim, s) }
func (u UI) OK(s string) string    { return u.render(roleOK, s) }
func (u UI) Warn(s string) string  { return u.render(roleWarn, s) }
func (u UI) Error(s string) string { return u.render(roleError, s) }
func (u UI) Label(s string) string { return u.render(roleLabel, s) }

func (u UI) Enabled() bool { return u.enabled }

// Row renders "  name  desc" with name padded to width so descriptions line
// up. Padding is computed on the unstyled name.
func (u UI) Row(name string, width int, desc string) string {
	pad := ""
	if n := width - lipgloss.Width(name); n > 0 {
		pad = strings.Repeat(" ", n)
	}
	return "  " + u.Bold(name) + pad + "  " + u.Dim(desc)
}

func (u UI) render(r role, s string) string {
	if !u.enabled {
		return s
	}
	return u.styles[r].Render(s)
}
