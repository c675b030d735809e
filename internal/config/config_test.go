package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
)

func setTempHome(t *testing.T) string {
	t.Helper()
	homedir.DisableCache = true
	home := filepath.Join(t.TempDir(), "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("NSR_CONFIG", "")
	t.Setenv("NSR_TERMINAL", "")
	t.Setenv("NSR_DATA_DIR", "")
	t.Setenv("NSR_LOG_LEVEL", "")
	return home
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	home := setTempHome(t)

	cfg, err := Load(filepath.Join(home, "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Terminal != TerminalAuto || cfg.Runner != "npm" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults %#v", cfg)
	}
	if cfg.History.SweepInterval.Duration != time.Hour || !cfg.History.SweepOnExit {
		t.Fatalf("unexpected history defaults %#v", cfg.History)
	}
	if !strings.HasPrefix(cfg.DataDir, home) {
		t.Fatalf("DataDir=%q should live under HOME=%q", cfg.DataDir, home)
	}
}

func TestLoad_ParsesFileAndExpandsHome(t *testing.T) {
	home := setTempHome(t)
	path := writeConfig(t, `
workspaces = ["~/src/web", "/srv/api"]
terminal = "PTY"
runner = "pnpm"
data_dir = "~/state"
attach = true

[history]
sweep_interval = "30m"
sweep_on_exit = false

[tmux]
session_prefix = "run-"
poll_interval = "5s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Terminal != TerminalPTY || cfg.Runner != "pnpm" || !cfg.Attach {
		t.Fatalf("unexpected config %#v", cfg)
	}
	if got, want := cfg.Workspaces[0], filepath.Join(home, "src", "web"); got != want {
		t.Fatalf("Workspaces[0]=%q, want %q", got, want)
	}
	if cfg.Workspaces[1] != "/srv/api" {
		t.Fatalf("Workspaces[1]=%q", cfg.Workspaces[1])
	}
	if got, want := cfg.DBPath(), filepath.Join(home, "state", "state.sqlite"); got != want {
		t.Fatalf("DBPath=%q, want %q", got, want)
	}
	if cfg.History.SweepInterval.Duration != 30*time.Minute || cfg.History.SweepOnExit {
		t.Fatalf("unexpected history %#v", cfg.History)
	}
	if cfg.Tmux.SessionPrefix != "run-" || cfg.Tmux.PollInterval.Duration != 5*time.Second {
		t.Fatalf("unexpected tmux %#v", cfg.Tmux)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	setTempHome(t)
	path := writeConfig(t, `terminal = "pty"`)
	t.Setenv("NSR_TERMINAL", "tmux")
	t.Setenv("NSR_LOG_LEVEL", "debug")
	t.Setenv("NSR_DATA_DIR", "/tmp/nsr-data")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Terminal != TerminalTmux || cfg.LogLevel != "debug" || cfg.DataDir != "/tmp/nsr-data" {
		t.Fatalf("env overrides not applied: %#v", cfg)
	}
}

func TestLoad_Rejects(t *testing.T) {
	setTempHome(t)
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad terminal", `terminal = "kitty"`, "terminal must be"},
		{"unknown key", `colour = "red"`, "unknown key"},
		{"bad duration", "[history]\nsweep_interval = \"soon\"", "invalid duration"},
		{"zero interval", "[history]\nsweep_interval = \"0s\"", "must be positive"},
		{"not toml", `= = =`, "config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load err=%v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestPath(t *testing.T) {
	home := setTempHome(t)
	if got, want := Path(), filepath.Join(home, ".config", "npm-scripts-runner", "config.toml"); got != want {
		t.Fatalf("Path=%q, want %q", got, want)
	}
	t.Setenv("NSR_CONFIG", "~/custom.toml")
	if got, want := Path(), filepath.Join(home, "custom.toml"); got != want {
		t.Fatalf("Path=%q, want %q", got, want)
	}
}
