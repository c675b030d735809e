package terminal

import (
	"context"
	"fmt"
	"sync"
)

// fakeHost is an in-memory Host whose sessions die when kill is called.
type fakeHost struct {
	mu       sync.Mutex
	n        int
	alive    map[string]bool
	sent     map[string][]string
	disposed []string
	closed   chan *Session
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		alive:  map[string]bool{},
		sent:   map[string][]string{},
		closed: make(chan *Session, 8),
	}
}

func (f *fakeHost) Kind() string { return "fake" }

func (f *fakeHost) Create(_ context.Context, opts Options) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	s := &Session{ID: fmt.Sprintf("s%d", f.n), Name: opts.Name, Dir: opts.Dir, Target: opts.Dir}
	f.alive[s.ID] = true
	return s, nil
}

func (f *fakeHost) IsAlive(s *Session) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alive[s.ID]
}

func (f *fakeHost) Show(context.Context, *Session) error { return nil }

func (f *fakeHost) SendText(_ context.Context, s *Session, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[s.ID] = append(f.sent[s.ID], text)
	return nil
}

func (f *fakeHost) Dispose(s *Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alive[s.ID] = false
	f.disposed = append(f.disposed, s.ID)
	return nil
}

func (f *fakeHost) Closed() <-chan *Session { return f.closed }

func (f *fakeHost) Close() error { return nil }

// kill simulates the user closing s outside the tool.
func (f *fakeHost) kill(s *Session) {
	f.mu.Lock()
	f.alive[s.ID] = false
	f.mu.Unlock()
	f.closed <- s
}
