package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/denjay/npm-scripts-runner/internal/config"
	"github.com/denjay/npm-scripts-runner/internal/history"
	"github.com/denjay/npm-scripts-runner/internal/logx"
	"github.com/denjay/npm-scripts-runner/internal/picker"
	"github.com/denjay/npm-scripts-runner/internal/redact"
	"github.com/denjay/npm-scripts-runner/internal/store"
	"github.com/denjay/npm-scripts-runner/internal/terminal"
	"github.com/denjay/npm-scripts-runner/internal/ui"
	"github.com/denjay/npm-scripts-runner/internal/workspace"
)

var errNotActive = errors.New("service is not active")

// HostFactory builds the terminal host for an activation.
type HostFactory func(cfg config.Config, logger *log.Logger) (terminal.Host, error)

// Service holds everything that lives for one activation: the log file, the
// state database, the terminal host with its registry, the history store and
// the background loops reacting to host events.
type Service struct {
	cfg        config.Config
	workspaces *workspace.Set
	newHost    HostFactory

	// PersistSessions leaves tmux sessions running on Deactivate. PTY
	// sessions always end with the process.
	PersistSessions bool

	mu       sync.Mutex
	active   bool
	logger   *log.Logger
	logFile  io.Closer
	db       *store.DB
	host     terminal.Host
	registry *terminal.Registry
	history  *history.Store
	status   *ui.StatusIndicator
	changes  <-chan workspace.Change
	cancel   context.CancelFunc
	group    *errgroup.Group
}

func NewService(cfg config.Config, set *workspace.Set, newHost HostFactory) *Service {
	if newHost == nil {
		newHost = DefaultHost
	}
	return &Service{cfg: cfg, workspaces: set, newHost: newHost, status: ui.NewStatusIndicator()}
}

// DefaultHost picks tmux or a PTY host according to cfg.Terminal. In auto
// mode tmux is used when it can be found.
func DefaultHost(cfg config.Config, logger *log.Logger) (terminal.Host, error) {
	tmuxOpts := terminal.TmuxOptions{
		Prefix:       cfg.Tmux.SessionPrefix,
		PollInterval: cfg.Tmux.PollInterval.Duration,
	}
	ptyOpts := terminal.PTYOptions{Shell: cfg.Shell, Out: os.Stdout}

	switch cfg.Terminal {
	case config.TerminalTmux:
		return terminal.NewTmuxHost(tmuxOpts, logger)
	case config.TerminalPTY:
		return terminal.NewPTYHost(ptyOpts, logger), nil
	default:
		h, err := terminal.NewTmuxHost(tmuxOpts, logger)
		if err == nil {
			return h, nil
		}
		logger.Debug("tmux unavailable, using pty", "err", err)
		return terminal.NewPTYHost(ptyOpts, logger), nil
	}
}

// Activate opens resources and starts the background loops. Each activation
// builds a fresh registry, history store and loop set; calling Activate on an
// active service is a no-op.
func (s *Service) Activate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return nil
	}

	logger, logFile, err := logx.OpenFile(s.cfg.DataDir, s.cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	db, err := store.Open(s.cfg.DBPath())
	if err != nil {
		_ = logFile.Close()
		return fmt.Errorf("open state: %w", err)
	}
	host, err := s.newHost(s.cfg, logger)
	if err != nil {
		_ = db.Close()
		_ = logFile.Close()
		return fmt.Errorf("terminal: %w", err)
	}

	reg := terminal.NewRegistry(host, logger)
	hist := history.New(db)
	changes := s.workspaces.Subscribe()
	s.status.Update(s.workspaces.Len())

	loopCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(loopCtx)
	g.Go(func() error { return s.watchWorkspaces(gctx, logger, changes, reg, hist) })
	g.Go(func() error { return watchClosed(gctx, logger, host, reg) })
	g.Go(func() error { return s.sweepEvery(gctx, logger, hist, s.cfg.History.SweepInterval.Duration) })

	s.logger = logger
	s.logFile = logFile
	s.db = db
	s.host = host
	s.registry = reg
	s.history = hist
	s.changes = changes
	s.cancel = cancel
	s.group = g
	s.active = true

	logger.Info("activated", "terminal", host.Kind(), "workspaces", s.workspaces.Len())
	return nil
}

// Deactivate stops the loops, disposes sessions, runs the shutdown sweep and
// releases resources. Sweep failures are logged only.
func (s *Service) Deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.active = false

	s.cancel()
	if err := s.group.Wait(); err != nil {
		s.logger.Warn("background loop", "err", err)
	}
	s.workspaces.Unsubscribe(s.changes)

	if !s.PersistSessions || s.host.Kind() != config.TerminalTmux {
		s.registry.DisposeAll()
	}
	if s.cfg.History.SweepOnExit {
		sweep(context.Background(), s.logger, s.history, s.workspaces.Paths(), "shutdown")
	}

	if err := s.host.Close(); err != nil {
		s.logger.Warn("close terminal host", "err", err)
	}
	if err := s.db.Close(); err != nil {
		s.logger.Warn("close state", "err", err)
	}
	s.logger.Info("deactivated")
	_ = s.logFile.Close()

	s.logger = nil
	s.logFile = nil
	s.db = nil
	s.host = nil
	s.registry = nil
	s.history = nil
	s.changes = nil
	s.cancel = nil
	s.group = nil
}

// Orchestrator returns a picker wired to this activation.
func (s *Service) Orchestrator(prompt picker.Prompter, report picker.Reporter) (*picker.Orchestrator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return nil, errNotActive
	}

	db, logger, kind := s.db, s.logger, s.host.Kind()
	red := redact.Default()
	return &picker.Orchestrator{
		Workspaces: s.workspaces,
		History:    s.history,
		Terminals:  s.registry,
		Prompt:     prompt,
		Report:     report,
		Runner:     s.cfg.Runner,
		Logger:     logger,
		OnLaunch: func(ctx context.Context, l picker.Launch) {
			err := db.InsertLaunch(ctx, store.Launch{
				At:          l.At,
				Workspace:   l.Workspace.Path,
				Script:      l.Script,
				CommandText: l.CommandText,
				ScriptBody:  red.Command(l.ScriptBody),
				Terminal:    kind,
				SessionID:   l.Session.ID,
			})
			if err != nil {
				logger.Warn("record launch", "err", err)
			}
		},
	}, nil
}

// Sweep prunes history against the open workspaces now.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	hist := s.history
	s.mu.Unlock()
	if hist == nil {
		return 0, errNotActive
	}
	return hist.Sweep(ctx, s.workspaces.Paths())
}

func (s *Service) Workspaces() *workspace.Set { return s.workspaces }

func (s *Service) Status() *ui.StatusIndicator { return s.status }

func (s *Service) Host() terminal.Host {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.host
}

func (s *Service) Registry() *terminal.Registry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry
}

func (s *Service) Logger() *log.Logger {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.logger == nil {
		return logx.Discard()
	}
	return s.logger
}

func (s *Service) watchWorkspaces(ctx context.Context, logger *log.Logger, changes <-chan workspace.Change, reg *terminal.Registry, hist *history.Store) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case c, ok := <-changes:
			if !ok {
				return nil
			}
			for _, ws := range c.Removed {
				reg.Remove(ws)
			}
			s.status.Update(s.workspaces.Len())
			sweep(ctx, logger, hist, s.workspaces.Paths(), "workspaces changed")
		}
	}
}

func watchClosed(ctx context.Context, logger *log.Logger, host terminal.Host, reg *terminal.Registry) error {
	closed := host.Closed()
	for {
		select {
		case <-ctx.Done():
			return nil
		case sess, ok := <-closed:
			if !ok {
				return nil
			}
			if reg.HandleClosed(sess) {
				logger.Info("terminal closed", "session", sess.ID, "dir", sess.Dir)
			}
		}
	}
}

func (s *Service) sweepEvery(ctx context.Context, logger *log.Logger, hist *history.Store, every time.Duration) error {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			sweep(ctx, logger, hist, s.workspaces.Paths(), "interval")
		}
	}
}

func sweep(ctx context.Context, logger *log.Logger, hist *history.Store, open map[string]struct{}, reason string) {
	n, err := hist.Sweep(ctx, open)
	if err != nil {
		logger.Warn("history sweep failed", "reason", reason, "err", err)
		return
	}
	if n > 0 {
		logger.Info("history swept", "reason", reason, "removed", n)
	}
}
