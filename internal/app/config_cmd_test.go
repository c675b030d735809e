package app

import (
	"os"
	"strings"
	"testing"
)

func TestConfigCmd_SetGetUnset(t *testing.T) {
	setTempHomeAndCWD(t)

	code, out, _ := captureStdoutStderr(t, func() int { return RunCLI([]string{"config", "path"}) })
	if code != 0 || strings.TrimSpace(out) != os.Getenv("NSR_CONFIG") {
		t.Fatalf("config path: code=%d out=%q", code, out)
	}

	if code, _, errOut := captureStdoutStderr(t, func() int {
		return RunCLI([]string{"config", "set", "runner", "pnpm"})
	}); code != 0 {
		t.Fatalf("config set: code=%d stderr=%q", code, errOut)
	}

	code, out, _ = captureStdoutStderr(t, func() int { return RunCLI([]string{"config", "get", "runner", "attach"}) })
	if code != 0 {
		t.Fatalf("config get code = %d", code)
	}
	if !strings.Contains(out, "runner = pnpm\n") || !strings.Contains(out, "attach = false (default)") {
		t.Fatalf("config get output:\n%s", out)
	}

	if code, _, _ := captureStdoutStderr(t, func() int { return RunCLI([]string{"config", "unset", "runner"}) }); code != 0 {
		t.Fatalf("config unset code = %d", code)
	}
	_, out, _ = captureStdoutStderr(t, func() int { return RunCLI([]string{"config", "get", "runner"}) })
	if !strings.Contains(out, "runner = npm (default)") {
		t.Fatalf("after unset:\n%s", out)
	}
}

func TestConfigCmd_Errors(t *testing.T) {
	setTempHomeAndCWD(t)

	tests := []struct {
		args []string
		code int
		want string
	}{
		{[]string{"config"}, 2, "missing config subcommand"},
		{[]string{"config", "sett"}, 2, "try: npm-scripts-runner config set"},
		{[]string{"config", "set", "colour", "red"}, 2, `unknown key "colour"`},
		{[]string{"config", "set", "attach"}, 2, "want <key> <value>"},
		{[]string{"config", "set", "terminal", "kitty"}, 1, "terminal must be auto, tmux or pty"},
		{[]string{"config", "unset", "colour"}, 2, `unknown key "colour"`},
		{[]string{"config", "get", "colour"}, 2, `unknown key "colour"`},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			code, _, errOut := captureStdoutStderr(t, func() int { return RunCLI(tt.args) })
			if code != tt.code {
				t.Fatalf("code = %d, want %d (stderr %q)", code, tt.code, errOut)
			}
			if !strings.Contains(errOut, tt.want) {
				t.Fatalf("stderr = %q, want %q", errOut, tt.want)
			}
		})
	}
	if _, err := os.Stat(os.Getenv("NSR_CONFIG")); !os.IsNotExist(err) {
		t.Fatalf("failed edits must not create the config file (stat err %v)", err)
	}
}
