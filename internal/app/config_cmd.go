package app

import (
	"fmt"
	"os"
	"slices"

	"github.com/denjay/npm-scripts-runner/internal/config"
	"github.com/denjay/npm-scripts-runner/internal/ui"
)

func configCmd(args []string) int {
	if len(args) == 0 {
		printUnknownSubcommand("config", "", []string{"path", "get", "set", "unset"})
		return 2
	}
	switch args[0] {
	case "path":
		fmt.Println(config.Path())
		return 0
	case "get":
		return configGet(args[1:])
	case "set":
		return configSet(args[1:])
	case "unset":
		return configUnset(args[1:])
	default:
		printUnknownSubcommand("config", args[0], []string{"path", "get", "set", "unset"})
		return 2
	}
}

// configGet prints effective values; keys not set in the file are marked.
func configGet(args []string) int {
	keys := args
	if len(keys) == 0 {
		keys = config.Keys()
	}
	cfg, ok := loadConfig()
	if !ok {
		return 1
	}
	b, err := os.ReadFile(config.Path())
	if err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, ui.New(os.Stderr).Error(err.Error()))
		return 1
	}
	doc, err := config.ParseDocument(b)
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.New(os.Stderr).Error(err.Error()))
		return 1
	}

	u := ui.New(os.Stdout)
	for _, k := range keys {
		v, err := cfg.Value(k)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config get: %v\n", err)
			return 2
		}
		line := k + " = " + v
		if _, set := doc.Get(k); !set {
			line += " " + u.Dim("(default)")
		}
		fmt.Println(line)
	}
	return 0
}

func configSet(args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "config set: want <key> <value>")
		return 2
	}
	v, err := config.ParseValue(args[0], args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config set: %v\n", err)
		return 2
	}
	if err := config.Edit(config.Path(), func(d *config.Document) error {
		return d.Set(args[0], v)
	}); err != nil {
		fmt.Fprintln(os.Stderr, ui.New(os.Stderr).Error(err.Error()))
		return 1
	}
	return 0
}

func configUnset(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "config unset: want <key>")
		return 2
	}
	if !slices.Contains(config.Keys(), args[0]) {
		fmt.Fprintf(os.Stderr, "config unset: unknown key %q\n", args[0])
		return 2
	}
	if err := config.Edit(config.Path(), func(d *config.Document) error {
		d.Delete(args[0])
		return nil
	}); err != nil {
		fmt.Fprintln(os.Stderr, ui.New(os.Stderr).Error(err.Error()))
		return 1
	}
	return 0
}
