package execx

import "sync"

// Tail keeps the last cap bytes written to it. Safe for one writer and
// concurrent readers.
type Tail struct {
	mu  sync.Mutex
	buf []byte
	cap int
}

func NewTail(maxBytes int) *Tail {
	return &Tail{cap: maxBytes}
}

func (t *Tail) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if len(t.buf) > t.cap {
		t.buf = t.buf[len(t.buf)-t.cap:]
	}
	return len(p), nil
}

func (t *Tail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
