package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/avelara/portify/internal/pipeline"
	"github.com/avelara/portify/internal/shared"
	"github.com/avelara/portify/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for a migration run.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.dest == nil {
		return fmt.Errorf("%w: Spotify not authenticated, run 'portify auth login'", shared.ErrNotAuthenticated)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/portify-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	opts := pipeline.Options{
		SourceRef:   cmd.String("source"),
		Name:        cmd.String("name"),
		Workers:     r.config.Migrate.Workers,
		SearchLimit: r.config.Migrate.SearchLimit,
		RateLimit:   r.config.Migrate.RateLimit,
	}

	model := ui.NewModel(ctx, r.engine, opts)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	report, runErr := model.Report()
	if runErr != nil {
		return runErr
	}

	if report != nil {
		r.recordRun(report)
		if len(report.Unmatched) > 0 {
			return cli.Exit("", 2)
		}
	}

	return nil
}
