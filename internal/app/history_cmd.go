package app

import (
	"context"
	"fmt"
	"os"

	"github.com/denjay/npm-scripts-runner/internal/history"
	"github.com/denjay/npm-scripts-runner/internal/store"
	"github.com/denjay/npm-scripts-runner/internal/ui"
	"github.com/denjay/npm-scripts-runner/internal/workspace"
)

func historyCmd(args []string) int {
	if len(args) == 0 {
		return historyList(nil)
	}
	switch args[0] {
	case "list":
		return historyList(args[1:])
	case "clear":
		return historyClear(args[1:])
	case "launches":
		return historyLaunches(args[1:])
	default:
		printUnknownSubcommand("history", args[0], []string{"list", "clear", "launches"})
		return 2
	}
}

func historyList(args []string) int {
	fs := newFlagSet("history list")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	cfg, ok := loadConfig()
	if !ok {
		return 1
	}

	var recs []history.Record
	err := store.WithDB(cfg.DBPath(), func(db *store.DB) error {
		var err error
		recs, err = history.New(db).All(context.Background())
		return err
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.New(os.Stderr).Error(err.Error()))
		return 1
	}

	u := ui.New(os.Stdout)
	if len(recs) == 0 {
		fmt.Println(u.Dim("(no history)"))
		return 0
	}
	for _, r := range recs {
		fmt.Printf("%s  %s\n", r.Workspace, u.Bold(r.Script))
	}
	return 0
}

func historyClear(args []string) int {
	fs := newFlagSet("history clear")
	var paths pathList
	fs.Var(&paths, "w", "workspace path (repeatable)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	cfg, ok := loadConfig()
	if !ok {
		return 1
	}

	wss := openWorkspaces(cfg, paths).List()
	err := store.WithDB(cfg.DBPath(), func(db *store.DB) error {
		hist := history.New(db)
		for _, ws := range wss {
			if err := hist.Clear(context.Background(), ws); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.New(os.Stderr).Error(err.Error()))
		return 1
	}

	u := ui.New(os.Stdout)
	for _, ws := range wss {
		fmt.Printf("%s %s\n", u.OK("cleared"), ws.Path)
	}
	return 0
}

// historyLaunches prints the launch log, newest first.
func historyLaunches(args []string) int {
	fs := newFlagSet("history launches")
	ws := fs.String("w", "", "only launches in this workspace")
	limit := fs.Int("n", 20, "maximum number of launches")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *limit <= 0 {
		fmt.Fprintln(os.Stderr, "history launches: -n must be positive")
		return 2
	}
	cfg, ok := loadConfig()
	if !ok {
		return 1
	}

	filter := ""
	if *ws != "" {
		w, err := workspace.New(*ws)
		if err != nil {
			fmt.Fprintln(os.Stderr, ui.New(os.Stderr).Error(err.Error()))
			return 2
		}
		filter = w.Path
	}

	var launches []store.Launch
	err := store.WithDB(cfg.DBPath(), func(db *store.DB) error {
		var err error
		launches, err = db.ListLaunches(context.Background(), filter, *limit)
		return err
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.New(os.Stderr).Error(err.Error()))
		return 1
	}

	u := ui.New(os.Stdout)
	if len(launches) == 0 {
		fmt.Println(u.Dim("(no launches)"))
		return 0
	}
	for _, l := range launches {
		fmt.Printf("%s  %s  %s  %s\n",
			u.Dim(l.At.Local().Format("2006-01-02 15:04:05")),
			l.Workspace,
			u.Bold(l.Script),
			u.Dim(l.ScriptBody),
		)
	}
	return 0
}

// sweepCmd prunes history against the open workspaces immediately.
func sweepCmd(args []string) int {
	fs := newFlagSet("sweep")
	var paths pathList
	fs.Var(&paths, "w", "workspace path (repeatable)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	cfg, ok := loadConfig()
	if !ok {
		return 1
	}

	open := openWorkspaces(cfg, paths).Paths()
	var n int
	err := store.WithDB(cfg.DBPath(), func(db *store.DB) error {
		var err error
		n, err = history.New(db).Sweep(context.Background(), open)
		return err
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.New(os.Stderr).Error(err.Error()))
		return 1
	}
	fmt.Printf("removed %d stale history entr%s\n", n, plural(n, "y", "ies"))
	return 0
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
