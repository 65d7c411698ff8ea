package main

import (
	"fmt"
	"io"

	"github.com/spf13/viper"

	"github.com/localeforge/localeforge/internal/client/config"
	"github.com/localeforge/localeforge/internal/client/remote"
	"github.com/localeforge/localeforge/internal/client/sync"
	"github.com/localeforge/localeforge/internal/client/workspace"
)

// app bundles the per-invocation wiring: workspace, config and sync
// manager for the project directory selected via --project.
type app struct {
	ws  *workspace.Workspace
	cfg *config.Config
	mgr *sync.Manager
}

// newApp resolves the project and its configured remote. Commands that
// need no remote (backup, state) use newLocalApp instead.
func newApp() (*app, error) {
	ws, cfg, err := loadProject()
	if err != nil {
		return nil, err
	}

	if cfg == nil || cfg.RemoteURL == "" {
		return nil, fmt.Errorf("project is not linked to a remote; run 'lforge link <url>' first")
	}

	remoteURL, err := remote.Parse(cfg.RemoteURL)
	if err != nil {
		return nil, fmt.Errorf("configured remote is invalid: %w", err)
	}

	return &app{
		ws:  ws,
		cfg: cfg,
		mgr: sync.NewManager(ws, cfg, remote.NewClient(remoteURL)),
	}, nil
}

// newLocalApp resolves the project without requiring a linked remote.
func newLocalApp() (*app, error) {
	ws, cfg, err := loadProject()
	if err != nil {
		return nil, err
	}

	return &app{
		ws:  ws,
		cfg: cfg,
		mgr: sync.NewManager(ws, cfg, nil),
	}, nil
}

func loadProject() (*workspace.Workspace, *config.Config, error) {
	ws, err := workspace.NewWorkspace(viper.GetString("project"))
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(ws)
	if err != nil {
		return nil, nil, err
	}
	return ws, cfg, nil
}

// printValidation renders accumulated warnings and errors.
func printValidation(w io.Writer, result *sync.ValidationResult) {
	if result == nil {
		return
	}
	for _, warning := range result.Warnings {
		fmt.Fprintln(w, cyan("warning:"), warning)
	}
	for _, errMsg := range result.Errors {
		fmt.Fprintln(w, red("error:"), errMsg)
	}
}

func printConflicts(w io.Writer, conflicts []sync.ConflictRecord) {
	for _, c := range conflicts {
		fmt.Fprintf(w, "%s %s (%s)\n", red("conflict:"), c.Path, c.Type)
		if c.Detail != "" {
			fmt.Fprintf(w, "  %s\n", c.Detail)
		}
	}
}

func printDiff(w io.Writer, diff *sync.DiffSummary) {
	if diff == nil || !diff.HasChanges() {
		fmt.Fprintln(w, "everything up to date")
		return
	}
	for _, p := range diff.FilesToAdd {
		fmt.Fprintln(w, green("  + "+p))
	}
	for _, p := range diff.FilesToUpdate {
		fmt.Fprintln(w, cyan("  ~ "+p))
	}
	for _, p := range diff.FilesToDelete {
		fmt.Fprintln(w, red("  - "+p))
	}
	fmt.Fprintf(w, "%s\n", bold(fmt.Sprintf("%d change(s)", diff.TotalChanges())))
}
