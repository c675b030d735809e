package app

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/denjay/npm-scripts-runner/internal/ui"
	"github.com/denjay/npm-scripts-runner/internal/workspace"
)

func TestWatchLoop_ManagesWorkspacesAndRunsScripts(t *testing.T) {
	cwd := setTempHomeAndCWD(t)
	a := filepath.Join(cwd, "a")
	b := filepath.Join(cwd, "b")
	writeFile(t, filepath.Join(a, "package.json"), buildTestManifest)
	writeFile(t, filepath.Join(b, "package.json"), `{"scripts":{"dev":"vite"}}`)
	host, prompt := useFakes(t, 1)

	cfg := testConfig(t)
	wsA, err := workspace.New(a)
	if err != nil {
		t.Fatal(err)
	}
	svc := NewService(cfg, workspace.NewSet(wsA), hostFactory)
	if err := svc.Activate(context.Background()); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	defer svc.Deactivate()

	input := strings.Join([]string{
		"",
		"ls",
		"add " + b,
		"add " + b,
		"rm " + a,
		"rm " + a,
		"nope",
		"q",
		"ls",
	}, "\n") + "\n"

	var out bytes.Buffer
	code, stdout, errOut := captureStdoutStderr(t, func() int {
		return watchLoop(context.Background(), svc, cfg, strings.NewReader(input), &out)
	})
	if code != 0 {
		t.Fatalf("code = %d", code)
	}

	if got := host.sentText(); len(got) != 1 || got[0] != "npm run test" {
		t.Fatalf("sent = %#v", got)
	}
	if prompt.calls() != 1 {
		t.Fatalf("prompt calls = %d", prompt.calls())
	}
	if !strings.Contains(stdout, "npm run test") {
		t.Fatalf("stdout = %q", stdout)
	}

	o := out.String()
	for _, want := range []string{
		ui.StatusText,
		"opened " + b,
		"already open " + b,
		"closed " + a,
		"not open " + a,
	} {
		if !strings.Contains(o, want) {
			t.Fatalf("watch output missing %q:\n%s", want, o)
		}
	}
	if !strings.Contains(errOut, "unknown watch subcommand: nope") {
		t.Fatalf("stderr = %q", errOut)
	}

	got := svc.Workspaces().List()
	if len(got) != 1 || got[0].Path != b {
		t.Fatalf("open workspaces = %#v", got)
	}
}

func TestWatchLoop_StatusHiddenWithoutWorkspaces(t *testing.T) {
	setTempHomeAndCWD(t)
	useFakes(t)

	cfg := testConfig(t)
	svc := NewService(cfg, workspace.NewSet(), hostFactory)
	if err := svc.Activate(context.Background()); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	defer svc.Deactivate()

	var out bytes.Buffer
	_, _, errOut := captureStdoutStderr(t, func() int {
		return watchLoop(context.Background(), svc, cfg, strings.NewReader("\nls\n"), &out)
	})
	if strings.Contains(out.String(), ui.StatusText) {
		t.Fatalf("status shown with no workspace:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "(no workspaces)") {
		t.Fatalf("output:\n%s", out.String())
	}
	if !strings.Contains(errOut, "Please open a workspace first") {
		t.Fatalf("stderr = %q", errOut)
	}
}
