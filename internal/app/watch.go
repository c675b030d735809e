package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/denjay/npm-scripts-runner/internal/config"
	"github.com/denjay/npm-scripts-runner/internal/ui"
	"github.com/denjay/npm-scripts-runner/internal/workspace"
)

var watchCommands = []string{"add", "rm", "ls", "sweep", "help", "q"}

// watchCmd keeps one activation alive across many picker runs, the way an
// editor session would. Terminals are disposed when it exits.
func watchCmd(args []string) int {
	fs := newFlagSet("watch")
	var paths pathList
	fs.Var(&paths, "w", "workspace path (repeatable)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	cfg, ok := loadConfig()
	if !ok {
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := NewService(cfg, openWorkspaces(cfg, paths), hostFactory)
	if err := svc.Activate(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ui.New(os.Stderr).Error(err.Error()))
		return 1
	}
	defer svc.Deactivate()

	return watchLoop(ctx, svc, cfg, os.Stdin, os.Stdout)
}

func watchLoop(ctx context.Context, svc *Service, cfg config.Config, in io.Reader, out io.Writer) int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	u := ui.New(os.Stdout)
	// Lines are read on request only, so the picker owns stdin while it runs.
	next := make(chan struct{})
	lines := make(chan string)
	defer close(next)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for range next {
			if !sc.Scan() {
				return
			}
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	prompt := func() {
		// Change events reach the indicator asynchronously.
		svc.Status().Update(svc.Workspaces().Len())
		if s := svc.Status().Render(u); s != "" {
			fmt.Fprintln(out, s)
		}
		fmt.Fprint(out, "> ")
	}

	prompt()
	for {
		next <- struct{}{}
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return 0
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return 0
			}
			line = l
		}

		cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		arg = strings.TrimSpace(arg)
		switch cmd {
		case "":
			runShow(ctx, svc, cfg)
		case "add":
			ws, err := workspace.New(arg)
			if err != nil {
				fmt.Fprintln(out, u.Error(err.Error()))
				break
			}
			if svc.Workspaces().Add(ws) {
				fmt.Fprintf(out, "%s %s\n", u.OK("opened"), ws.Path)
			} else {
				fmt.Fprintf(out, "%s %s\n", u.Dim("already open"), ws.Path)
			}
		case "rm":
			ws, err := workspace.New(arg)
			if err != nil {
				fmt.Fprintln(out, u.Error(err.Error()))
				break
			}
			if _, ok := svc.Workspaces().Remove(ws.Path); ok {
				fmt.Fprintf(out, "%s %s\n", u.OK("closed"), ws.Path)
			} else {
				fmt.Fprintf(out, "%s %s\n", u.Dim("not open"), ws.Path)
			}
		case "ls":
			wss := svc.Workspaces().List()
			if len(wss) == 0 {
				fmt.Fprintln(out, u.Dim("(no workspaces)"))
			}
			for _, ws := range wss {
				fmt.Fprintf(out, "%s %s\n", u.Label(ws.Name), u.Dim(ws.Path))
			}
		case "sweep":
			n, err := svc.Sweep(ctx)
			if err != nil {
				fmt.Fprintln(out, u.Error(err.Error()))
				break
			}
			fmt.Fprintf(out, "removed %d stale history entr%s\n", n, plural(n, "y", "ies"))
		case "help":
			fmt.Fprintln(out, "Enter: show scripts  add <path>  rm <path>  ls  sweep  q")
		case "q", "quit", "exit":
			return 0
		default:
			printUnknownSubcommand("watch", cmd, watchCommands)
		}
		prompt()
	}
}
