package app

import (
	"fmt"
	"os"

	"github.com/denjay/npm-scripts-runner/internal/config"
	"github.com/denjay/npm-scripts-runner/internal/execx"
	"github.com/denjay/npm-scripts-runner/internal/picker"
	"github.com/denjay/npm-scripts-runner/internal/tui"
	"github.com/denjay/npm-scripts-runner/internal/ui"
	"github.com/denjay/npm-scripts-runner/internal/workspace"
)

// Swapped out in tests.
var (
	newPrompter = func() picker.Prompter { return tui.Prompter{} }
	hostFactory HostFactory
	isTTY       = execx.IsTTY
)

func loadConfig() (config.Config, bool) {
	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.New(os.Stderr).Error(err.Error()))
		return config.Config{}, false
	}
	return cfg, true
}

// openWorkspaces resolves the open workspace set: -w flags, else the
// configured workspaces, else the project around the working directory.
// Nothing found yields an empty set.
func openWorkspaces(cfg config.Config, flags []string) *workspace.Set {
	paths := flags
	if len(paths) == 0 {
		paths = cfg.Workspaces
	}

	var wss []workspace.Workspace
	for _, p := range paths {
		ws, err := workspace.New(p)
		if err != nil {
			continue
		}
		wss = append(wss, ws)
	}
	if len(paths) == 0 {
		if ws, err := workspace.Detect(); err == nil {
			wss = append(wss, ws)
		}
	}
	return workspace.NewSet(wss...)
}

// stderrReporter prints picker errors as a single styled line.
type stderrReporter struct{}

func (stderrReporter) Error(msg string) {
	fmt.Fprintln(os.Stderr, ui.New(os.Stderr).Error(msg))
}
