package ui

import "sync"

const (
	StatusText    = "▶ npm scripts"
	StatusTooltip = "Press Enter to show npm scripts"
)

// StatusIndicator is the entry point to the show-scripts command. It is
// visible only while at least one workspace is open.
type StatusIndicator struct {
	mu      sync.Mutex
	visible bool
}

func NewStatusIndicator() *StatusIndicator { return &StatusIndicator{} }

func (s *StatusIndicator) Update(openWorkspaces int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = openWorkspaces > 0
}

func (s *StatusIndicator) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Render returns the status line, or "" while hidden.
func (s *StatusIndicator) Render(u UI) string {
	if !s.Visible() {
		return ""
	}
	return u.Label(StatusText) + "  " + u.Dim(StatusTooltip)
}
