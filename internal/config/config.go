// Package config loads the TOML configuration file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/go-homedir"

	"github.com/denjay/npm-scripts-runner/internal/store"
)

const (
	TerminalAuto = "auto"
	TerminalTmux = "tmux"
	TerminalPTY  = "pty"

	DefaultRunner        = "npm"
	DefaultSweepInterval = time.Hour
)

type Config struct {
	// Workspaces are the project roots opened at startup. Empty means the
	// project detected from the working directory.
	Workspaces []string `toml:"workspaces"`
	Terminal   string   `toml:"terminal"`
	Runner     string   `toml:"runner"`
	Shell      string   `toml:"shell"`
	DataDir    string   `toml:"data_dir"`
	LogLevel   string   `toml:"log_level"`
	// Attach hands the terminal to the session after a script is dispatched.
	Attach bool `toml:"attach"`

	History HistoryConfig `toml:"history"`
	Tmux    TmuxConfig    `toml:"tmux"`
}

type HistoryConfig struct {
	SweepInterval Duration `toml:"sweep_interval"`
	SweepOnExit   bool     `toml:"sweep_on_exit"`
}

type TmuxConfig struct {
	SessionPrefix string   `toml:"session_prefix"`
	PollInterval  Duration `toml:"poll_interval"`
}

// Duration decodes TOML strings such as "1h" or "30s".
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func Default() Config {
	return Config{
		Terminal: TerminalAuto,
		Runner:   DefaultRunner,
		DataDir:  store.DataDir(),
		LogLevel: "info",
		History: HistoryConfig{
			SweepInterval: Duration{DefaultSweepInterval},
			SweepOnExit:   true,
		},
		Tmux: TmuxConfig{
			SessionPrefix: "nsr-",
			PollInterval:  Duration{2 * time.Second},
		},
	}
}

// Path returns the config file location: $NSR_CONFIG, else
// ~/.config/npm-scripts-runner/config.toml.
func Path() string {
	if p := strings.TrimSpace(os.Getenv("NSR_CONFIG")); p != "" {
		return expand(p)
	}
	home, err := homedir.Dir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".config", "npm-scripts-runner", "config.toml")
}

// Load reads path over the defaults, then applies environment overrides. A
// missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if cfg, err = decode(b); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return Config{}, err
	}

	cfg.applyEnv()
	if err := cfg.normalize(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// decode reads TOML over the defaults. Unknown keys are errors.
func decode(b []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(b), &cfg)
	if err != nil {
		return Config{}, err
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return Config{}, fmt.Errorf("unknown key %q", undec[0].String())
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("NSR_TERMINAL")); v != "" {
		c.Terminal = v
	}
	if v := strings.TrimSpace(os.Getenv("NSR_DATA_DIR")); v != "" {
		c.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("NSR_LOG_LEVEL")); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) normalize() error {
	c.Terminal = strings.ToLower(strings.TrimSpace(c.Terminal))
	switch c.Terminal {
	case "":
		c.Terminal = TerminalAuto
	case TerminalAuto, TerminalTmux, TerminalPTY:
	default:
		return fmt.Errorf("terminal must be auto, tmux or pty, got %q", c.Terminal)
	}
	if strings.TrimSpace(c.Runner) == "" {
		c.Runner = DefaultRunner
	}
	if c.History.SweepInterval.Duration <= 0 {
		return fmt.Errorf("history.sweep_interval must be positive")
	}
	c.DataDir = expand(c.DataDir)
	c.Shell = expand(c.Shell)
	for i, w := range c.Workspaces {
		c.Workspaces[i] = expand(w)
	}
	return nil
}

// DBPath is the state database inside DataDir.
func (c Config) DBPath() string { return filepath.Join(c.DataDir, "state.sqlite") }

func expand(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if e, err := homedir.Expand(p); err == nil {
		return e
	}
	return p
}
