package app

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

var commands = []string{"show", "list", "history", "sweep", "watch", "config", "version", "help"}

func RunCLI(args []string) int {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return showCmd(args)
	}
	switch args[0] {
	case "show":
		return showCmd(args[1:])
	case "list":
		return listCmd(args[1:])
	case "history":
		return historyCmd(args[1:])
	case "sweep":
		return sweepCmd(args[1:])
	case "watch":
		return watchCmd(args[1:])
	case "config":
		return configCmd(args[1:])
	case "version":
		printVersion()
		return 0
	case "help":
		usage()
		return 0
	default:
		printUnknownCommand(args[0], commands)
		return 2
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `npm-scripts-runner

Commands:
  show [-w <path>]... [--attach]     pick a script and run it (default)
  list [-w <path>]...                print scripts, last executed first
  history [list]                     print the last script per workspace
  history clear [-w <path>]...       forget the last script
  history launches [-w <path>] [-n N] print recent launches
  sweep                              drop history of workspaces not open
  watch [-w <path>]...               keep workspaces open and run scripts on Enter
  config path|get [key...]|set <key> <value>|unset <key>
  version

Scripts run in one terminal session per workspace (tmux when available).
`)
}

// pathList collects a repeatable -w flag.
type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }

func (p *pathList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return fmt.Errorf("empty path")
	}
	*p = append(*p, v)
	return nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}
