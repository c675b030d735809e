package workspace

import "sync"

// Change describes one mutation of a Set.
type Change struct {
	Added   []Workspace
	Removed []Workspace
}

// Set is the ordered collection of open workspaces, keyed by path.
type Set struct {
	mu    sync.Mutex
	items []Workspace
	subs  []chan Change
}

func NewSet(ws ...Workspace) *Set {
	s := &Set{}
	for _, w := range ws {
		if s.indexLocked(w.Path) < 0 {
			s.items = append(s.items, w)
		}
	}
	return s
}

// Subscribe returns a channel receiving every later Change. Writers never
// block: when a receiver falls behind, its pending changes are folded into
// one.
func (s *Set) Subscribe() <-chan Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Change, 16)
	s.subs = append(s.subs, ch)
	return ch
}

// Unsubscribe stops deliveries to ch and closes it.
func (s *Set) Unsubscribe(ch <-chan Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.subs {
		if c == ch {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			close(c)
			return
		}
	}
}

// Add opens ws; it reports false when a workspace with that path is already open.
func (s *Set) Add(ws Workspace) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(ws.Path) >= 0 {
		return false
	}
	s.items = append(s.items, ws)
	s.publishLocked(Change{Added: []Workspace{ws}})
	return true
}

// Remove closes the workspace at path.
func (s *Set) Remove(path string) (Workspace, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(path)
	if i < 0 {
		return Workspace{}, false
	}
	ws := s.items[i]
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	s.publishLocked(Change{Removed: []Workspace{ws}})
	return ws, true
}

func (s *Set) List() []Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Workspace(nil), s.items...)
}

// Paths returns the open workspace paths as a membership set.
func (s *Set) Paths() map[string]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]struct{}, len(s.items))
	for _, w := range s.items {
		out[w.Path] = struct{}{}
	}
	return out
}

func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Set) indexLocked(path string) int {
	for i, w := range s.items {
		if w.Path == path {
			return i
		}
	}
	return -1
}

// publishLocked sends c to every subscriber. Only publishLocked sends and
// it runs under s.mu, so after draining a full buffer the send cannot block.
func (s *Set) publishLocked(c Change) {
	for _, ch := range s.subs {
		select {
		case ch <- c:
			continue
		default:
		}
		var pending Change
	drain:
		for {
			select {
			case p := <-ch:
				pending = pending.merge(p)
			default:
				break drain
			}
		}
		ch <- pending.merge(c)
	}
}

// merge appends next to c, keeping the order of each list.
func (c Change) merge(next Change) Change {
	return Change{
		Added:   append(c.Added, next.Added...),
		Removed: append(c.Removed, next.Removed...),
	}
}
