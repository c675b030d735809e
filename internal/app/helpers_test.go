package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"

	"github.com/denjay/npm-scripts-runner/internal/config"
	"github.com/denjay/npm-scripts-runner/internal/picker"
	"github.com/denjay/npm-scripts-runner/internal/terminal"
)

func captureStdoutStderr(t *testing.T, fn func() int) (code int, stdout string, stderr string) {
	t.Helper()

	oldOut := os.Stdout
	oldErr := os.Stderr

	outR, outW, err := os.Pipe()
	if err != nil {
		t.Fatalf("stdout pipe: %v", err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		_ = outR.Close()
		_ = outW.Close()
		t.Fatalf("stderr pipe: %v", err)
	}

	os.Stdout = outW
	os.Stderr = errW

	// Drain concurrently so large outputs cannot fill the pipe buffers.
	var wg sync.WaitGroup
	var outB, errB []byte
	var outErr, errErr error
	wg.Add(2)
	go func() { defer wg.Done(); outB, outErr = io.ReadAll(outR) }()
	go func() { defer wg.Done(); errB, errErr = io.ReadAll(errR) }()

	code = fn()

	os.Stdout = oldOut
	os.Stderr = oldErr

	_ = outW.Close()
	_ = errW.Close()
	wg.Wait()
	_ = outR.Close()
	_ = errR.Close()

	if outErr != nil {
		t.Fatalf("read stdout: %v", outErr)
	}
	if errErr != nil {
		t.Fatalf("read stderr: %v", errErr)
	}
	return code, string(outB), string(errB)
}

// setTempHomeAndCWD points HOME, the data dir and the working directory at a
// fresh temp tree and returns the working directory.
func setTempHomeAndCWD(t *testing.T) string {
	t.Helper()

	tmp := t.TempDir()
	home := filepath.Join(tmp, "home")
	cwd := filepath.Join(tmp, "proj")
	mkdirAll(t, home)
	mkdirAll(t, cwd)

	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("NSR_CONFIG", filepath.Join(home, "config.toml"))
	t.Setenv("NSR_DATA_DIR", filepath.Join(home, "data"))
	t.Setenv("NSR_TERMINAL", "")
	t.Setenv("NSR_LOG_LEVEL", "debug")
	homedir.DisableCache = true

	oldCwd, err := os.Getwd()
	if err != nil {
		oldCwd = ""
	}
	if err := os.Chdir(cwd); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if oldCwd != "" {
			if err := os.Chdir(oldCwd); err != nil {
				t.Fatalf("restore cwd: %v", err)
			}
		}
	})

	// Chdir may resolve symlinks in the temp path; use what Getwd reports.
	if wd, err := os.Getwd(); err == nil {
		cwd = wd
	}
	return cwd
}

func mkdirAll(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	mkdirAll(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

const buildTestManifest = `{"name":"demo","scripts":{"build":"tsc","test":"jest"}}`

// useFakes installs a fake terminal host and a scripted prompter for the
// duration of the test.
func useFakes(t *testing.T, answers ...int) (*fakeHost, *scriptedPrompter) {
	t.Helper()
	host := newFakeHost()
	prompt := &scriptedPrompter{answers: answers}

	oldHost, oldPrompter := hostFactory, newPrompter
	hostFactory = func(config.Config, *log.Logger) (terminal.Host, error) { return host, nil }
	newPrompter = func() picker.Prompter { return prompt }
	t.Cleanup(func() {
		hostFactory = oldHost
		newPrompter = oldPrompter
	})
	return host, prompt
}

type scriptedPrompter struct {
	mu           sync.Mutex
	answers      []int
	placeholders []string
	items        [][]picker.Item
}

func (p *scriptedPrompter) Pick(_ context.Context, placeholder string, items []picker.Item) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.placeholders = append(p.placeholders, placeholder)
	p.items = append(p.items, items)
	if len(p.answers) == 0 {
		return -1, picker.ErrCancelled
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}

func (p *scriptedPrompter) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.placeholders)
}

type fakeHost struct {
	mu       sync.Mutex
	n        int
	alive    map[string]bool
	sent     []string
	disposed []string
	closed   chan *terminal.Session
	closes   int
}

func newFakeHost() *fakeHost {
	return &fakeHost{alive: map[string]bool{}, closed: make(chan *terminal.Session, 8)}
}

func (f *fakeHost) Kind() string { return "fake" }

func (f *fakeHost) Create(_ context.Context, opts terminal.Options) (*terminal.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	s := &terminal.Session{ID: fmt.Sprintf("s%d", f.n), Name: opts.Name, Dir: opts.Dir, Target: opts.Dir}
	f.alive[s.ID] = true
	return s, nil
}

func (f *fakeHost) IsAlive(s *terminal.Session) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alive[s.ID]
}

func (f *fakeHost) Show(context.Context, *terminal.Session) error { return nil }

func (f *fakeHost) SendText(_ context.Context, _ *terminal.Session, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeHost) Dispose(s *terminal.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alive[s.ID] = false
	f.disposed = append(f.disposed, s.ID)
	return nil
}

func (f *fakeHost) Closed() <-chan *terminal.Session { return f.closed }

func (f *fakeHost) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

func (f *fakeHost) sentText() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func (f *fakeHost) disposedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.disposed...)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
