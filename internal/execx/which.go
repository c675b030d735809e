package execx

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
)

// LookPath finds tool on PATH, then in the given fallback directories.
// GUI-launched processes on macOS often miss Homebrew directories in PATH.
func LookPath(tool string, fallbackDirs ...string) (string, error) {
	if p, err := exec.LookPath(tool); err == nil {
		return p, nil
	}
	for _, dir := range fallbackDirs {
		if found, ok := findExecutable(filepath.Clean(dir), tool); ok {
			return found, nil
		}
	}
	return "", errors.New(tool + " not found in PATH")
}

func findExecutable(dir, tool string) (string, bool) {
	path := filepath.Join(dir, tool)
	st, err := os.Stat(path)
	if err == nil && !st.IsDir() && st.Mode()&0o111 != 0 {
		return path, true
	}
	return "", false
}

// DefaultShell returns $SHELL, or /bin/sh when unset.
func DefaultShell() string {
	if s := os.Getenv("SHELL"); s != "" {
		return s
	}
	return "/bin/sh"
}
