package main

import (
	"context"
	"fmt"

	"github.com/avelara/portify/internal/pipeline"
	"github.com/avelara/portify/internal/shared"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

// migrateOptions builds pipeline options from command flags and config.
func (r *Runner) migrateOptions(cmd *cli.Command) pipeline.Options {
	cfg := r.config.Migrate

	opts := pipeline.Options{
		SourceRef:   cmd.String("source"),
		Name:        cmd.String("name"),
		Description: cmd.String("description"),
		Workers:     cfg.Workers,
		SearchLimit: cfg.SearchLimit,
		RateLimit:   cfg.RateLimit,
	}

	if workers := cmd.Int("workers"); workers > 0 {
		opts.Workers = workers
	}
	if limit := cmd.Int("limit"); limit > 0 {
		opts.SearchLimit = limit
	}

	return opts
}

// migrateEngine picks the engine for one invocation, rebuilding it when the
// threshold flag overrides the configured scorer or the cache is disabled.
func (r *Runner) migrateEngine(cmd *cli.Command) (*pipeline.Engine, error) {
	threshold := cmd.Float("threshold")
	noCache := cmd.Bool("no-cache")

	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: threshold %v must be between 0 and 1", shared.ErrInvalidArgument, threshold)
	}

	if threshold == 0 && !noCache {
		return r.engine, nil
	}
	if threshold == 0 {
		threshold = r.config.Migrate.Threshold
	}
	return r.buildEngine(threshold, !noCache), nil
}

// MigrateRun runs a full YouTube Music → Spotify migration.
func (r *Runner) MigrateRun(ctx context.Context, cmd *cli.Command) error {
	if r.dest == nil {
		return fmt.Errorf("%w: Spotify not authenticated, run 'portify auth login'", shared.ErrNotAuthenticated)
	}

	engine, err := r.migrateEngine(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	opts := r.migrateOptions(cmd)
	useJSON := cmd.Bool("json")

	r.logger.Info("starting migration", "source", opts.SourceRef)
	r.writePlain("Starting playlist migration...\n")
	r.writePlain("Source: %s\n\n", opts.SourceRef)

	// Create progress channel and goroutine to handle updates
	progressCh := make(chan pipeline.ProgressUpdate, 50)
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		for update := range progressCh {
			switch update.Phase {
			case pipeline.FetchSource:
				r.writePlain("📥 %s\n", update.Message)
			case pipeline.SearchTracks:
				if update.Step == 0 {
					r.writePlain("\n🔍 %s\n", update.Message)
				} else {
					r.writePlain("   %s\n", update.Message)
				}
			case pipeline.CreatePlaylist:
				r.writePlain("\n📝 %s\n", update.Message)
			case pipeline.AppendTracks:
				r.writePlain("➕ %s\n", update.Message)
			}
		}
	}()

	report, err := engine.Run(ctx, opts, progressCh)
	close(progressCh)
	<-progressDone

	if report != nil {
		r.recordRun(report)
	}

	if err != nil {
		if report != nil {
			r.writePlainln("%s", pipeline.Summarize(report))
		}
		return err
	}

	if useJSON {
		return r.writeJSON(report, true)
	}

	r.writePlain("\n═══════════════════════════════════════\n")
	r.writePlain("Migration Complete!\n")
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%s", pipeline.Summarize(report))

	if len(report.Unmatched) > 0 {
		return cli.Exit("", 2)
	}

	return nil
}

// MigratePreview matches every source track without touching the destination
// playlist. Useful for tuning the threshold before a real run.
func (r *Runner) MigratePreview(ctx context.Context, cmd *cli.Command) error {
	if r.dest == nil {
		return fmt.Errorf("%w: Spotify not authenticated, run 'portify auth login'", shared.ErrNotAuthenticated)
	}

	engine, err := r.migrateEngine(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	opts := r.migrateOptions(cmd)
	opts.DryRun = true
	useJSON := cmd.Bool("json")

	r.logger.Info("previewing migration", "source", opts.SourceRef)

	report, err := engine.Run(ctx, opts, nil)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(report, true)
	}

	r.writePlain("Preview for: %s\n\n", report.SourcePlaylist.Name)
	for _, outcome := range report.Matched {
		r.writePlain("✓ %.2f  %s - %s  →  %s - %s [%s]\n",
			outcome.Score,
			outcome.Source.ArtistLine(), outcome.Source.Title,
			outcome.Candidate.ArtistLine(), outcome.Candidate.Title,
			outcome.Confidence)
	}
	for _, outcome := range report.Unmatched {
		r.writePlain("✗       %s - %s  (%s)\n",
			outcome.Source.ArtistLine(), outcome.Source.Title, outcome.Reason)
	}

	r.writePlainln("%d of %d tracks matched (%.1f%%)", len(report.Matched), report.TotalSource, report.SuccessRate())

	if len(report.Unmatched) > 0 {
		return cli.Exit("", 2)
	}

	return nil
}

// recordRun persists a completed report when the run log is available.
func (r *Runner) recordRun(report *pipeline.Report) {
	if r.runlog == nil {
		return
	}
	if err := r.runlog.Record(report); err != nil {
		r.logger.Warn("failed to record run", "error", err)
	}
}
