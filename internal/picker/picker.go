// Package picker runs the show-scripts flow: choose a workspace, choose one of
// its scripts, and run it in that workspace's terminal.
package picker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/denjay/npm-scripts-runner/internal/manifest"
	"github.com/denjay/npm-scripts-runner/internal/terminal"
	"github.com/denjay/npm-scripts-runner/internal/workspace"
)

const (
	WorkspacePlaceholder = "Select a workspace to run npm scripts"
	ScriptPlaceholder    = "Select an npm script to run"
)

var (
	ErrNoWorkspace = errors.New("Please open a workspace first")
	// ErrCancelled means the user dismissed a prompt. It is not reported.
	ErrCancelled = errors.New("picker: cancelled")
)

// Prompter shows a choice list and returns the chosen index, or ErrCancelled.
type Prompter interface {
	Pick(ctx context.Context, placeholder string, items []Item) (int, error)
}

// Reporter shows a one-line error message to the user.
type Reporter interface {
	Error(msg string)
}

type Workspaces interface {
	List() []workspace.Workspace
}

type History interface {
	Get(ctx context.Context, ws workspace.Workspace) (string, bool, error)
	Set(ctx context.Context, ws workspace.Workspace, script string) error
}

type Terminals interface {
	GetOrCreate(ctx context.Context, ws workspace.Workspace) (*terminal.Session, error)
	Host() terminal.Host
}

// Launch describes a dispatched script.
type Launch struct {
	At        time.Time
	Workspace workspace.Workspace
	Script    string
	// ScriptBody is the script's command as written in the manifest.
	ScriptBody  string
	CommandText string
	Session     *terminal.Session
}

type Orchestrator struct {
	Workspaces Workspaces
	// Load reads the scripts of a workspace; manifest.Load when nil.
	Load      func(workspace.Workspace) (*manifest.Scripts, error)
	History   History
	Terminals Terminals
	Prompt    Prompter
	Report    Reporter
	Runner    string
	Logger    *log.Logger
	// OnLaunch, when set, observes every dispatched script.
	OnLaunch func(ctx context.Context, l Launch)
}

// Run performs one show-scripts invocation. User-facing failures are reported
// through Report before being returned; ErrCancelled is returned silently.
func (o *Orchestrator) Run(ctx context.Context) (Launch, error) {
	wss := o.Workspaces.List()
	if len(wss) == 0 {
		o.Report.Error(ErrNoWorkspace.Error())
		return Launch{}, ErrNoWorkspace
	}

	ws := wss[0]
	if len(wss) > 1 {
		i, err := o.pick(ctx, WorkspacePlaceholder, WorkspaceItems(wss))
		if err != nil {
			return Launch{}, err
		}
		ws = wss[i]
	}

	load := o.Load
	if load == nil {
		load = manifest.Load
	}
	scripts, err := load(ws)
	if err != nil {
		o.Logger.Debug("load scripts", "workspace", ws.Path, "err", err)
		o.Report.Error(err.Error())
		return Launch{}, err
	}

	last, _, err := o.History.Get(ctx, ws)
	if err != nil {
		o.Logger.Warn("read history", "workspace", ws.Path, "err", err)
		last = ""
	}

	items := ScriptItems(manifest.Entries(scripts), last)
	i, err := o.pick(ctx, ScriptPlaceholder, items)
	if err != nil {
		return Launch{}, err
	}
	script := items[i].Label

	sess, err := o.Terminals.GetOrCreate(ctx, ws)
	if err != nil {
		o.Report.Error(fmt.Sprintf("Failed to open terminal: %v", err))
		return Launch{}, err
	}
	host := o.Terminals.Host()
	if err := host.Show(ctx, sess); err != nil {
		o.Logger.Warn("show terminal", "session", sess.ID, "err", err)
	}

	text := CommandText(o.Runner, script)
	if err := host.SendText(ctx, sess, text); err != nil {
		o.Report.Error(fmt.Sprintf("Failed to run %s: %v", script, err))
		return Launch{}, err
	}

	if err := o.History.Set(ctx, ws, script); err != nil {
		o.Logger.Warn("record history", "workspace", ws.Path, "err", err)
	}

	body, _ := scripts.Get(script)
	l := Launch{At: time.Now(), Workspace: ws, Script: script, ScriptBody: body, CommandText: text, Session: sess}
	o.Logger.Info("script launched", "workspace", ws.Path, "script", script, "session", sess.ID)
	if o.OnLaunch != nil {
		o.OnLaunch(ctx, l)
	}
	return l, nil
}

func (o *Orchestrator) pick(ctx context.Context, placeholder string, items []Item) (int, error) {
	i, err := o.Prompt.Pick(ctx, placeholder, items)
	if err != nil {
		return 0, err
	}
	if i < 0 || i >= len(items) {
		return 0, ErrCancelled
	}
	return i, nil
}
