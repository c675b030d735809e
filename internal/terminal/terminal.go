// Package terminal keeps one interactive shell session per workspace on top
// of a Host (tmux or a PTY shell).
package terminal

import (
	"context"
	"fmt"

	"github.com/denjay/npm-scripts-runner/internal/workspace"
)

// Session is a live shell owned by a Host. Sessions are compared by identity.
type Session struct {
	ID     string
	Name   string
	Dir    string
	Target string
}

type Options struct {
	Name string
	Dir  string
}

// Host is the terminal capability the registry builds on.
type Host interface {
	Kind() string
	Create(ctx context.Context, opts Options) (*Session, error)
	IsAlive(s *Session) bool
	// Show brings s to the user's attention without blocking.
	Show(ctx context.Context, s *Session) error
	SendText(ctx context.Context, s *Session, text string) error
	Dispose(s *Session) error
	// Closed reports sessions that ended outside this process's control.
	Closed() <-chan *Session
	Close() error
}

// Attacher is implemented by hosts that can hand the controlling terminal to
// a session until the user detaches.
type Attacher interface {
	Attach(ctx context.Context, s *Session) error
}

// Label is the user-visible name of the session for ws.
func Label(ws workspace.Workspace) string {
	return fmt.Sprintf("Run NPM Scripts (%s)", ws.Name)
}
