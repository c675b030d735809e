package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Document is a config file as a generic TOML tree, edited by dotted key.
// Comments and formatting are not preserved.
type Document struct {
	data map[string]any
}

func ParseDocument(b []byte) (*Document, error) {
	doc := &Document{data: map[string]any{}}
	if len(bytes.TrimSpace(b)) == 0 {
		return doc, nil
	}
	if err := toml.Unmarshal(b, &doc.data); err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *Document) Get(key string) (any, bool) {
	var cur any = d.data
	for _, k := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := m[k]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func (d *Document) Set(key string, value any) error {
	path := strings.Split(key, ".")
	if key == "" {
		return errors.New("config: empty key")
	}

	cur := d.data
	for _, k := range path[:len(path)-1] {
		child, ok := cur[k].(map[string]any)
		if !ok {
			// Missing, or a scalar where a table is needed.
			child = map[string]any{}
			cur[k] = child
		}
		cur = child
	}
	cur[path[len(path)-1]] = value
	return nil
}

// Delete removes key and reports whether it was present. Tables left empty
// are removed too.
func (d *Document) Delete(key string) bool {
	path := strings.Split(key, ".")
	return deleteIn(d.data, path)
}

func deleteIn(m map[string]any, path []string) bool {
	if len(path) == 1 {
		if _, ok := m[path[0]]; !ok {
			return false
		}
		delete(m, path[0])
		return true
	}
	child, ok := m[path[0]].(map[string]any)
	if !ok {
		return false
	}
	if !deleteIn(child, path[1:]) {
		return false
	}
	if len(child) == 0 {
		delete(m, path[0])
	}
	return true
}

func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(d.data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type keyKind int

const (
	kindString keyKind = iota
	kindBool
	kindDuration
	kindList
)

var editable = map[string]keyKind{
	"workspaces":             kindList,
	"terminal":               kindString,
	"runner":                 kindString,
	"shell":                  kindString,
	"data_dir":               kindString,
	"log_level":              kindString,
	"attach":                 kindBool,
	"history.sweep_interval": kindDuration,
	"history.sweep_on_exit":  kindBool,
	"tmux.session_prefix":    kindString,
	"tmux.poll_interval":     kindDuration,
}

// Keys lists the keys `config set` accepts.
func Keys() []string {
	out := make([]string, 0, len(editable))
	for k := range editable {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ParseValue converts the command line form of a value for key. Lists are
// comma separated.
func ParseValue(key, raw string) (any, error) {
	kind, ok := editable[key]
	if !ok {
		return nil, fmt.Errorf("unknown key %q", key)
	}
	raw = strings.TrimSpace(raw)
	switch kind {
	case kindBool:
		return strconv.ParseBool(raw)
	case kindDuration:
		if _, err := time.ParseDuration(raw); err != nil {
			return nil, err
		}
		return raw, nil
	case kindList:
		var out []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	default:
		return raw, nil
	}
}

// Value renders the effective value of key in c.
func (c Config) Value(key string) (string, error) {
	switch key {
	case "workspaces":
		return strings.Join(c.Workspaces, ","), nil
	case "terminal":
		return c.Terminal, nil
	case "runner":
		return c.Runner, nil
	case "shell":
		return c.Shell, nil
	case "data_dir":
		return c.DataDir, nil
	case "log_level":
		return c.LogLevel, nil
	case "attach":
		return strconv.FormatBool(c.Attach), nil
	case "history.sweep_interval":
		return c.History.SweepInterval.String(), nil
	case "history.sweep_on_exit":
		return strconv.FormatBool(c.History.SweepOnExit), nil
	case "tmux.session_prefix":
		return c.Tmux.SessionPrefix, nil
	case "tmux.poll_interval":
		return c.Tmux.PollInterval.String(), nil
	}
	return "", fmt.Errorf("unknown key %q", key)
}

// Edit applies fn to the file at path and writes the result back only when
// it still decodes to a valid Config. A missing file starts out empty.
func Edit(path string, fn func(*Document) error) error {
	b, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	doc, err := ParseDocument(b)
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	if err := fn(doc); err != nil {
		return err
	}

	out, err := doc.Bytes()
	if err != nil {
		return err
	}
	cfg, err := decode(out)
	if err == nil {
		err = cfg.normalize()
	}
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return writeFileAtomic(path, out, 0o644)
}

func writeFileAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".config-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
