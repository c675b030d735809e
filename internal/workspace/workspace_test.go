package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetectFrom_PrefersManifestRoot(t *testing.T) {
	tmp := t.TempDir()
	repo := filepath.Join(tmp, "repo")
	pkg := filepath.Join(repo, "packages", "web")
	sub := filepath.Join(pkg, "src", "components")
	mkdirAll(t, sub)
	mkdirAll(t, filepath.Join(repo, ".git"))
	writeFile(t, filepath.Join(pkg, ManifestName), `{"name":"web"}`)

	ws, err := DetectFrom(sub)
	if err != nil {
		t.Fatalf("DetectFrom: %v", err)
	}
	if cleanPath(ws.Path) != cleanPath(pkg) {
		t.Fatalf("Path=%q, want %q", ws.Path, pkg)
	}
	if ws.Name != "web" {
		t.Fatalf("Name=%q, want web", ws.Name)
	}
}

func TestDetectFrom_FallsBackToGitRoot(t *testing.T) {
	tmp := t.TempDir()
	root := filepath.Join(tmp, "repo")
	sub := filepath.Join(root, "a", "b")
	mkdirAll(t, sub)

	// Some git setups (e.g., worktrees/submodules) can use a .git *file*.
	writeFile(t, filepath.Join(root, ".git"), "gitdir: /tmp/elsewhere\n")

	ws, err := DetectFrom(sub)
	if err != nil {
		t.Fatalf("DetectFrom: %v", err)
	}
	if cleanPath(ws.Path) != cleanPath(root) {
		t.Fatalf("Path=%q, want %q", ws.Path, root)
	}
}

func TestDetectFrom_FallsBackToDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plain")
	mkdirAll(t, dir)

	ws, err := DetectFrom(dir)
	if err != nil {
		t.Fatalf("DetectFrom: %v", err)
	}
	if cleanPath(ws.Path) != cleanPath(dir) {
		t.Fatalf("Path=%q, want %q", ws.Path, dir)
	}
}

func TestDetect_UsesCwd(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, ManifestName), `{}`)
	sub := filepath.Join(tmp, "lib")
	mkdirAll(t, sub)

	old, err := os.Getwd()
	if err != nil {
		old = ""
	}
	if err := os.Chdir(sub); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if old != "" {
			if err := os.Chdir(old); err != nil {
				t.Fatalf("restore cwd: %v", err)
			}
		}
	})

	ws, err := Detect()
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if cleanPath(ws.Path) != cleanPath(tmp) {
		t.Fatalf("Detect()=%q, want %q", ws.Path, tmp)
	}
}

func TestNew_RejectsEmptyAndCleans(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
	ws, err := New("/tmp/x/../proj/")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ws.Path != "/tmp/proj" || ws.Name != "proj" {
		t.Fatalf("New=%#v, want /tmp/proj proj", ws)
	}
}

func mkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %q: %v", path, err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %q: %v", path, err)
	}
}

func cleanPath(path string) string {
	path = filepath.Clean(path)
	// macOS temp directories often include symlinked prefixes like /var -> /private/var.
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return filepath.Clean(resolved)
	}
	return path
}
