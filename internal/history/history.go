// Package history remembers the last script launched in each workspace.
package history

import (
	"context"
	"strings"
	"sync"

	"github.com/denjay/npm-scripts-runner/internal/workspace"
)

const (
	// KeyPrefix prefixes every history key in the kv store.
	KeyPrefix = "lastExecutedScript_"
	// GlobalScope is a reserved key suffix. Nothing writes it and sweeps keep it.
	GlobalScope = "global"
)

// KV is the durable key-value storage the store persists into.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Record is one stored history entry.
type Record struct {
	Workspace string
	Script    string
}

func Key(ws workspace.Workspace) string { return KeyPrefix + ws.Path }

func GlobalKey() string { return KeyPrefix + GlobalScope }

// StaleKeys returns the history keys whose workspace is neither the global
// scope nor one of open. Keys without the prefix are ignored.
func StaleKeys(keys []string, open map[string]struct{}) []string {
	var out []string
	for _, k := range keys {
		path, ok := strings.CutPrefix(k, KeyPrefix)
		if !ok || path == GlobalScope {
			continue
		}
		if _, isOpen := open[path]; isOpen {
			continue
		}
		out = append(out, k)
	}
	return out
}

type Store struct {
	mu sync.Mutex
	kv KV
}

func New(kv KV) *Store {
	return &Store{kv: kv}
}

// Get returns the last script launched in ws.
func (s *Store) Get(ctx context.Context, ws workspace.Workspace) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Get(ctx, Key(ws))
}

func (s *Store) Set(ctx context.Context, ws workspace.Workspace, script string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Set(ctx, Key(ws), script)
}

// Clear forgets the history of ws.
func (s *Store) Clear(ctx context.Context, ws workspace.Workspace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Delete(ctx, Key(ws))
}

// All lists every stored record in key order.
func (s *Store) All(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.kv.Keys(ctx, KeyPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(keys))
	for _, k := range keys {
		v, ok, err := s.kv.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, Record{Workspace: strings.TrimPrefix(k, KeyPrefix), Script: v})
	}
	return out, nil
}

// Sweep deletes the history of every workspace not in open. It keeps going
// after a failed delete and returns the first error.
func (s *Store) Sweep(ctx context.Context, open map[string]struct{}) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.kv.Keys(ctx, KeyPrefix)
	if err != nil {
		return 0, err
	}

	var firstErr error
	deleted := 0
	for _, k := range StaleKeys(keys, open) {
		if err := s.kv.Delete(ctx, k); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		deleted++
	}
	return deleted, firstErr
}
