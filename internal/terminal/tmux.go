package terminal

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/denjay/npm-scripts-runner/internal/execx"
)

const (
	DefaultTmuxPrefix = "nsr-"
	DefaultTmuxPoll   = 2 * time.Second
)

// Homebrew locations GUI-launched processes on macOS miss in PATH.
var tmuxFallbackDirs = []string{"/opt/homebrew/bin", "/usr/local/bin", "/usr/bin"}

type TmuxOptions struct {
	Prefix       string
	PollInterval time.Duration
}

// TmuxHost runs each session as a detached tmux session, so terminals
// outlive this process and survive between picker runs.
type TmuxHost struct {
	prefix string
	inTmux bool
	bin    string
	logger *log.Logger

	// run executes one tmux command; swapped out in tests.
	run func(ctx context.Context, args ...string) ([]byte, error)

	mu     sync.Mutex
	known  map[string]*Session
	closed chan *Session
	stop   chan struct{}
	once   sync.Once
}

func NewTmuxHost(opts TmuxOptions, logger *log.Logger) (*TmuxHost, error) {
	bin, err := execx.LookPath("tmux", tmuxFallbackDirs...)
	if err != nil {
		return nil, err
	}
	h := newTmuxHost(opts, logger, func(ctx context.Context, args ...string) ([]byte, error) {
		return exec.CommandContext(ctx, bin, args...).CombinedOutput()
	})
	h.bin = bin
	h.inTmux = os.Getenv("TMUX") != ""
	return h, nil
}

func newTmuxHost(opts TmuxOptions, logger *log.Logger, run func(ctx context.Context, args ...string) ([]byte, error)) *TmuxHost {
	if opts.Prefix == "" {
		opts.Prefix = DefaultTmuxPrefix
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultTmuxPoll
	}
	h := &TmuxHost{
		prefix: opts.Prefix,
		logger: logger,
		run:    run,
		known:  map[string]*Session{},
		closed: make(chan *Session, 16),
		stop:   make(chan struct{}),
	}
	go h.poll(opts.PollInterval)
	return h
}

func (h *TmuxHost) Kind() string { return "tmux" }

// TargetName derives a stable tmux session name for a workspace directory.
// tmux rejects '.' and ':' in session names.
func (h *TmuxHost) TargetName(dir string) string {
	sum := sha256.Sum256([]byte(dir))
	base := dir
	if i := strings.LastIndexAny(dir, `/\`); i >= 0 {
		base = dir[i+1:]
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return h.prefix + b.String() + "-" + hex.EncodeToString(sum[:])[:8]
}

// Create starts a detached tmux session in opts.Dir. A tmux session already
// running under the same name (left by an earlier process) is adopted.
func (h *TmuxHost) Create(ctx context.Context, opts Options) (*Session, error) {
	target := h.TargetName(opts.Dir)
	s := &Session{ID: uuid.NewString(), Name: opts.Name, Dir: opts.Dir, Target: target}

	if !h.hasSession(ctx, target) {
		if out, err := h.run(ctx, "new-session", "-d", "-s", target, "-n", opts.Name, "-c", opts.Dir); err != nil {
			return nil, fmt.Errorf("tmux new-session %s: %w: %s", target, err, strings.TrimSpace(string(out)))
		}
	} else {
		h.logger.Debug("adopting tmux session", "target", target)
	}

	h.mu.Lock()
	// The target now belongs to s; earlier sessions under it are gone.
	for id, old := range h.known {
		if old.Target == target {
			delete(h.known, id)
		}
	}
	h.known[s.ID] = s
	h.mu.Unlock()
	return s, nil
}

func (h *TmuxHost) IsAlive(s *Session) bool {
	if s == nil {
		return false
	}
	return h.hasSession(context.Background(), s.Target)
}

// Show switches the current tmux client to s when running inside tmux.
// Outside tmux the caller attaches (or prints a hint) after dispatching.
func (h *TmuxHost) Show(ctx context.Context, s *Session) error {
	if !h.inTmux {
		return nil
	}
	if out, err := h.run(ctx, "switch-client", "-t", exact(s.Target)); err != nil {
		return fmt.Errorf("tmux switch-client: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (h *TmuxHost) SendText(ctx context.Context, s *Session, text string) error {
	if out, err := h.run(ctx, "send-keys", "-t", exact(s.Target)+":", "-l", text); err != nil {
		return fmt.Errorf("tmux send-keys: %w: %s", err, strings.TrimSpace(string(out)))
	}
	if out, err := h.run(ctx, "send-keys", "-t", exact(s.Target)+":", "Enter"); err != nil {
		return fmt.Errorf("tmux send-keys: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (h *TmuxHost) Dispose(s *Session) error {
	h.mu.Lock()
	delete(h.known, s.ID)
	h.mu.Unlock()

	ctx := context.Background()
	if !h.hasSession(ctx, s.Target) {
		return nil
	}
	if out, err := h.run(ctx, "kill-session", "-t", exact(s.Target)); err != nil {
		return fmt.Errorf("tmux kill-session: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Attach hands the controlling terminal to s until the user detaches.
func (h *TmuxHost) Attach(ctx context.Context, s *Session) error {
	if h.bin == "" {
		return errors.New("tmux: attach needs a real tmux binary")
	}
	verb := "attach-session"
	if h.inTmux {
		verb = "switch-client"
	}
	cmd := exec.CommandContext(ctx, h.bin, verb, "-t", exact(s.Target))
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (h *TmuxHost) Closed() <-chan *Session { return h.closed }

func (h *TmuxHost) Close() error {
	h.once.Do(func() { close(h.stop) })
	return nil
}

func (h *TmuxHost) hasSession(ctx context.Context, target string) bool {
	_, err := h.run(ctx, "has-session", "-t", exact(target))
	return err == nil
}

// poll reports known sessions that disappeared (killed by the user, shell
// exited) on the Closed channel.
func (h *TmuxHost) poll(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-h.stop:
			return
		case <-t.C:
			h.reap()
		}
	}
}

func (h *TmuxHost) reap() {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.known))
	for _, s := range h.known {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		if h.IsAlive(s) {
			continue
		}
		h.mu.Lock()
		_, still := h.known[s.ID]
		delete(h.known, s.ID)
		h.mu.Unlock()
		if !still {
			continue
		}
		select {
		case h.closed <- s:
		case <-h.stop:
			return
		}
	}
}

// exact makes tmux match the session name literally instead of by prefix.
func exact(target string) string { return "=" + target }
