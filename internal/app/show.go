package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/denjay/npm-scripts-runner/internal/config"
	"github.com/denjay/npm-scripts-runner/internal/picker"
	"github.com/denjay/npm-scripts-runner/internal/terminal"
	"github.com/denjay/npm-scripts-runner/internal/ui"
)

func showCmd(args []string) int {
	fs := newFlagSet("show")
	var paths pathList
	fs.Var(&paths, "w", "workspace path (repeatable)")
	attach := fs.Bool("attach", false, "attach to the terminal after dispatch")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "show: unexpected argument %q\n", fs.Arg(0))
		return 2
	}

	cfg, ok := loadConfig()
	if !ok {
		return 1
	}
	if *attach {
		cfg.Attach = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := NewService(cfg, openWorkspaces(cfg, paths), hostFactory)
	svc.PersistSessions = true
	if err := svc.Activate(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ui.New(os.Stderr).Error(err.Error()))
		return 1
	}
	defer svc.Deactivate()

	return runShow(ctx, svc, cfg)
}

// runShow runs one picker pass and hands the terminal to the session when
// asked to. PTY sessions end with this process, so they are always attached.
func runShow(ctx context.Context, svc *Service, cfg config.Config) int {
	o, err := svc.Orchestrator(newPrompter(), stderrReporter{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.New(os.Stderr).Error(err.Error()))
		return 1
	}
	l, err := o.Run(ctx)
	switch {
	case errors.Is(err, picker.ErrCancelled):
		return 0
	case err != nil:
		return 1
	}

	u := ui.New(os.Stdout)
	fmt.Printf("%s %s %s\n", u.OK("▶"), u.Bold(l.CommandText), u.Dim("in "+l.Session.Name))

	host := svc.Host()
	if cfg.Attach || host.Kind() == config.TerminalPTY {
		if a, ok := host.(terminal.Attacher); ok {
			if !isTTY() {
				fmt.Fprintln(os.Stderr, ui.New(os.Stderr).Warn("not a terminal; skipping attach"))
				return 0
			}
			if err := a.Attach(ctx, l.Session); err != nil {
				svc.Logger().Warn("attach", "session", l.Session.ID, "err", err)
				fmt.Fprintln(os.Stderr, ui.New(os.Stderr).Warn("attach failed: "+err.Error()))
			}
			return 0
		}
	}
	if host.Kind() == config.TerminalTmux {
		fmt.Println(u.Dim("attach with: tmux attach -t =" + l.Session.Target))
	}
	return 0
}
