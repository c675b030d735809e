package app

import (
	"context"
	"fmt"
	"os"

	"github.com/denjay/npm-scripts-runner/internal/history"
	"github.com/denjay/npm-scripts-runner/internal/manifest"
	"github.com/denjay/npm-scripts-runner/internal/picker"
	"github.com/denjay/npm-scripts-runner/internal/store"
	"github.com/denjay/npm-scripts-runner/internal/ui"
)

// listCmd prints every open workspace's scripts in picker order.
func listCmd(args []string) int {
	fs := newFlagSet("list")
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
	uerr := ui.New(os.Stderr)
	if len(wss) == 0 {
		fmt.Fprintln(os.Stderr, uerr.Error(picker.ErrNoWorkspace.Error()))
		return 1
	}

	ctx := context.Background()
	u := ui.New(os.Stdout)
	code := 0
	err := store.WithDB(cfg.DBPath(), func(db *store.DB) error {
		hist := history.New(db)
		for i, ws := range wss {
			if len(wss) > 1 {
				if i > 0 {
					fmt.Println()
				}
				fmt.Printf("%s %s\n", u.Label(ws.Name), u.Dim(ws.Path))
			}

			scripts, err := manifest.Load(ws)
			if err != nil {
				fmt.Fprintln(os.Stderr, uerr.Error(err.Error()))
				code = 1
				continue
			}
			last, _, err := hist.Get(ctx, ws)
			if err != nil {
				return err
			}
			items := picker.ScriptItems(manifest.Entries(scripts), last)

			width := 0
			for _, it := range items {
				width = max(width, len(it.Label))
			}
			for _, it := range items {
				fmt.Println(u.Row(it.Label, width, it.Description))
			}
		}
		return nil
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, uerr.Error(err.Error()))
		return 1
	}
	return code
}
