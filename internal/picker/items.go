package picker

import (
	"sort"

	"github.com/kballard/go-shellquote"

	"github.com/denjay/npm-scripts-runner/internal/execx"
	"github.com/denjay/npm-scripts-runner/internal/manifest"
	"github.com/denjay/npm-scripts-runner/internal/workspace"
)

// LastExecutedMarker is appended to the description of the last launched script.
const LastExecutedMarker = "(Last executed)"

// Item is one row of a choice prompt.
type Item struct {
	Label       string
	Description string
}

// ScriptItems builds the script prompt rows in manifest order, with the entry
// named last moved to the front and marked.
func ScriptItems(entries []manifest.Entry, last string) []Item {
	type keyed struct {
		item Item
		key  int
	}
	rows := make([]keyed, 0, len(entries))
	for _, e := range entries {
		row := keyed{item: Item{Label: e.Name, Description: e.Command}, key: 1}
		if last != "" && e.Name == last {
			row.item.Description = e.Command + " " + LastExecutedMarker
			row.key = 0
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].key < rows[j].key })

	out := make([]Item, len(rows))
	for i, r := range rows {
		out[i] = r.item
	}
	return out
}

func WorkspaceItems(wss []workspace.Workspace) []Item {
	out := make([]Item, len(wss))
	for i, ws := range wss {
		out[i] = Item{Label: ws.Name, Description: ws.Path}
	}
	return out
}

// CommandText is the line typed into the terminal to run script. runner may
// carry its own arguments ("pnpm --silent").
func CommandText(runner, script string) string {
	argv, err := shellquote.Split(runner)
	if err != nil || len(argv) == 0 {
		argv = []string{"npm"}
	}
	return execx.ShellJoin(append(argv, "run", script))
}
