package terminal

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/denjay/npm-scripts-runner/internal/workspace"
)

// Registry maps a workspace path to at most one live Session.
type Registry struct {
	mu       sync.Mutex
	host     Host
	logger   *log.Logger
	sessions map[string]*Session
}

func NewRegistry(host Host, logger *log.Logger) *Registry {
	return &Registry{
		host:     host,
		logger:   logger,
		sessions: map[string]*Session{},
	}
}

func (r *Registry) Host() Host { return r.host }

// GetOrCreate returns the registered session for ws while the host reports it
// alive, and otherwise creates and registers a new one rooted at ws.Path.
func (r *Registry) GetOrCreate(ctx context.Context, ws workspace.Workspace) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[ws.Path]; ok {
		if r.host.IsAlive(s) {
			return s, nil
		}
		r.logger.Debug("terminal gone, recreating", "workspace", ws.Path, "session", s.ID)
		delete(r.sessions, ws.Path)
	}

	s, err := r.host.Create(ctx, Options{Name: Label(ws), Dir: ws.Path})
	if err != nil {
		return nil, err
	}
	r.sessions[ws.Path] = s
	r.logger.Info("terminal created", "workspace", ws.Path, "session", s.ID, "target", s.Target)
	return s, nil
}

// Lookup returns the registered session for ws without checking liveness.
func (r *Registry) Lookup(ws workspace.Workspace) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[ws.Path]
	return s, ok
}

// Remove disposes and forgets the session of ws, if any.
func (r *Registry) Remove(ws workspace.Workspace) {
	r.mu.Lock()
	s, ok := r.sessions[ws.Path]
	delete(r.sessions, ws.Path)
	r.mu.Unlock()

	if !ok {
		return
	}
	if err := r.host.Dispose(s); err != nil {
		r.logger.Warn("dispose terminal", "workspace", ws.Path, "err", err)
	}
}

// HandleClosed forgets s after the host reported it closed. The lookup is by
// session identity: a workspace whose entry was already replaced keeps its
// newer session.
func (r *Registry) HandleClosed(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for path, cur := range r.sessions {
		if cur == s || (s != nil && cur.ID == s.ID) {
			delete(r.sessions, path)
			r.logger.Debug("terminal closed", "workspace", path, "session", s.ID)
			return true
		}
	}
	return false
}

// DisposeAll disposes every registered session and empties the registry.
func (r *Registry) DisposeAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = map[string]*Session{}
	r.mu.Unlock()

	for path, s := range sessions {
		if err := r.host.Dispose(s); err != nil {
			r.logger.Warn("dispose terminal", "workspace", path, "err", err)
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
