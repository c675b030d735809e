// Package workspace models the set of project roots the tool operates on.
package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ManifestName is the script-definition file looked up at a workspace root.
const ManifestName = "package.json"

type Workspace struct {
	Name string
	Path string
}

// New returns the workspace rooted at path. The path is made absolute and
// cleaned; the name is its last element.
func New(path string) (Workspace, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Workspace{}, errors.New("workspace: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Workspace{}, err
	}
	abs = filepath.Clean(abs)
	return Workspace{Name: filepath.Base(abs), Path: abs}, nil
}

// Detect picks the workspace for the current directory: the nearest ancestor
// holding a package.json, else the git root, else the directory itself.
func Detect() (Workspace, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Workspace{}, err
	}
	return DetectFrom(cwd)
}

func DetectFrom(dir string) (Workspace, error) {
	if root := findUp(dir, ManifestName); root != "" {
		return New(root)
	}
	if root := findUp(dir, ".git"); root != "" {
		return New(root)
	}
	return New(dir)
}

func findUp(start, marker string) string {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
