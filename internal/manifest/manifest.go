// Package manifest reads the scripts section of a workspace's package.json.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/denjay/npm-scripts-runner/internal/workspace"
)

var (
	ErrNotFound = errors.New("No package.json found in the workspace")
	ErrParse    = errors.New("Invalid package.json: JSON parse error")
	ErrEmpty    = errors.New("No scripts found in package.json")
	ErrIO       = errors.New("Error reading package.json")
)

// Scripts maps script name to shell command in manifest order.
type Scripts = orderedmap.OrderedMap[string, string]

// Entry is one script definition.
type Entry struct {
	Name    string
	Command string
}

// Path returns the manifest location for ws.
func Path(ws workspace.Workspace) string {
	return filepath.Join(ws.Path, workspace.ManifestName)
}

// Load reads the manifest of ws fresh from disk. Errors match ErrNotFound,
// ErrParse, ErrEmpty or ErrIO with errors.Is; their text is user-facing.
func Load(ws workspace.Workspace) (*Scripts, error) {
	b, err := os.ReadFile(Path(ws))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, ioError{err}
	}
	return Parse(b)
}

// Parse extracts the scripts object from manifest content.
func Parse(b []byte) (*Scripts, error) {
	if !gjson.ValidBytes(b) {
		return nil, ErrParse
	}

	section := gjson.GetBytes(b, "scripts")
	if !section.IsObject() {
		return nil, ErrEmpty
	}

	scripts := orderedmap.New[string, string]()
	section.ForEach(func(key, value gjson.Result) bool {
		cmd := value.String()
		if value.Type == gjson.JSON {
			cmd = value.Raw
		}
		// Duplicate keys keep their first position and last value.
		scripts.Set(key.String(), cmd)
		return true
	})
	if scripts.Len() == 0 {
		return nil, ErrEmpty
	}
	return scripts, nil
}

// Entries flattens scripts in manifest order.
func Entries(scripts *Scripts) []Entry {
	if scripts == nil {
		return nil
	}
	out := make([]Entry, 0, scripts.Len())
	for p := scripts.Oldest(); p != nil; p = p.Next() {
		out = append(out, Entry{Name: p.Key, Command: p.Value})
	}
	return out
}

type ioError struct{ cause error }

func (e ioError) Error() string {
	return fmt.Sprintf("%s: %v", ErrIO.Error(), e.cause)
}

func (e ioError) Is(target error) bool { return target == ErrIO }

func (e ioError) Unwrap() error { return e.cause }
