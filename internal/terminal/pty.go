package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/creack/pty"
	"github.com/google/uuid"

	"github.com/denjay/npm-scripts-runner/internal/execx"
)

const ptyTailBytes = 64 * 1024

var errSessionGone = errors.New("terminal: session is not running")

type PTYOptions struct {
	Shell string
	// Out receives the output of the shown session. Defaults to os.Stdout.
	Out io.Writer
}

// PTYHost runs each session as a shell on a pseudo-terminal owned by this
// process. Sessions end when the process exits.
type PTYHost struct {
	shell  string
	out    io.Writer
	logger *log.Logger

	mu     sync.Mutex
	procs  map[string]*ptyProc
	shown  string
	closed chan *Session
}

type ptyProc struct {
	sess *Session
	cmd  *exec.Cmd
	ptmx *os.File
	tail *execx.Tail
	done chan struct{}

	exitCode int
}

func NewPTYHost(opts PTYOptions, logger *log.Logger) *PTYHost {
	if opts.Shell == "" {
		opts.Shell = execx.DefaultShell()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &PTYHost{
		shell:  opts.Shell,
		out:    opts.Out,
		logger: logger,
		procs:  map[string]*ptyProc{},
		closed: make(chan *Session, 16),
	}
}

func (h *PTYHost) Kind() string { return "pty" }

func (h *PTYHost) Create(_ context.Context, opts Options) (*Session, error) {
	s := &Session{ID: uuid.NewString(), Name: opts.Name, Dir: opts.Dir}
	s.Target = "pty:" + s.ID[:8]

	// The shell must outlive the picker run, so it is not bound to a context.
	cmd := exec.Command(h.shell) //nolint:gosec
	cmd.Dir = opts.Dir
	cmd.Env = append(os.Environ(), "NSR_SESSION="+opts.Name)

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", h.shell, err)
	}

	p := &ptyProc{
		sess: s,
		cmd:  cmd,
		ptmx: ptmx,
		tail: execx.NewTail(ptyTailBytes),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.procs[s.ID] = p
	h.mu.Unlock()

	outputDone := make(chan struct{})
	go func() {
		if _, err := io.Copy(&ptyMirror{host: h, proc: p}, ptmx); err != nil {
			_ = err // best-effort; EIO once the shell exits
		}
		close(outputDone)
	}()
	go func() {
		err := cmd.Wait()
		<-outputDone
		p.exitCode = execx.ExitCode(err)
		close(p.done)
		h.logger.Debug("pty shell exited", "session", s.ID, "code", p.exitCode)
		select {
		case h.closed <- s:
		default:
			h.logger.Warn("dropped terminal closed event", "session", s.ID)
		}
	}()

	return s, nil
}

func (h *PTYHost) IsAlive(s *Session) bool {
	p, ok := h.proc(s)
	if !ok {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Show routes the output of s to the host's writer, replaying what the shell
// printed so far.
func (h *PTYHost) Show(_ context.Context, s *Session) error {
	p, ok := h.proc(s)
	if !ok {
		return errSessionGone
	}
	h.mu.Lock()
	already := h.shown == s.ID
	h.shown = s.ID
	h.mu.Unlock()
	if !already {
		if _, err := io.WriteString(h.out, p.tail.String()); err != nil {
			return err
		}
	}
	return nil
}

func (h *PTYHost) SendText(_ context.Context, s *Session, text string) error {
	if !h.IsAlive(s) {
		return errSessionGone
	}
	p, _ := h.proc(s)
	_, err := p.ptmx.Write([]byte(text + "\r"))
	return err
}

func (h *PTYHost) Dispose(s *Session) error {
	h.mu.Lock()
	p, ok := h.procs[s.ID]
	delete(h.procs, s.ID)
	if h.shown == s.ID {
		h.shown = ""
	}
	h.mu.Unlock()
	if !ok {
		return nil
	}

	select {
	case <-p.done:
	default:
		if p.cmd.Process != nil {
			_ = p.cmd.Process.Kill()
		}
	}
	return p.ptmx.Close()
}

// Attach forwards keyboard input to s until its shell exits or the user
// presses Ctrl-].
func (h *PTYHost) Attach(ctx context.Context, s *Session) error {
	p, ok := h.proc(s)
	if !ok {
		return errSessionGone
	}
	if err := h.Show(ctx, s); err != nil {
		return err
	}
	return execx.Bridge(ctx, p.ptmx, p.done)
}

// Tail returns the recent output of s.
func (h *PTYHost) Tail(s *Session) string {
	p, ok := h.proc(s)
	if !ok {
		return ""
	}
	return p.tail.String()
}

func (h *PTYHost) Closed() <-chan *Session { return h.closed }

func (h *PTYHost) Close() error { return nil }

func (h *PTYHost) proc(s *Session) (*ptyProc, bool) {
	if s == nil {
		return nil, false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.procs[s.ID]
	return p, ok
}

// ptyMirror records shell output and copies it to the host writer while the
// session is the shown one.
type ptyMirror struct {
	host *PTYHost
	proc *ptyProc
}

func (m *ptyMirror) Write(b []byte) (int, error) {
	_, _ = m.proc.tail.Write(b)
	m.host.mu.Lock()
	shown := m.host.shown == m.proc.sess.ID
	m.host.mu.Unlock()
	if shown {
		_, _ = m.host.out.Write(b)
	}
	return len(b), nil
}
