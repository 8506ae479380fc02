package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
)

// CacheStats shows search cache statistics.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	if r.cache == nil {
		return fmt.Errorf("database not initialized, run 'portify setup' first")
	}

	rows, queries, err := r.cache.Stats()
	if err != nil {
		return fmt.Errorf("failed to read cache stats: %w", err)
	}

	r.writePlain("Cached results: %d\n", rows)
	r.writePlain("Distinct queries: %d\n", queries)
	return nil
}

// CacheClear deletes all cached search results.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	if r.cache == nil {
		return fmt.Errorf("database not initialized, run 'portify setup' first")
	}

	if err := r.cache.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	r.logger.Info("search cache cleared")
	return r.writePlain("✓ Search cache cleared\n")
}

// CacheRuns lists recent migration runs from the run log.
func (r *Runner) CacheRuns(ctx context.Context, cmd *cli.Command) error {
	if r.runlog == nil {
		return fmt.Errorf("database not initialized, run 'portify setup' first")
	}

	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")

	records, err := r.runlog.Recent(limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if useJSON {
		return r.writeJSON(records, true)
	}

	if len(records) == 0 {
		return r.writePlain("No migration runs recorded\n")
	}

	for _, rec := range records {
		r.writePlain("%s  %s\n", rec.CreatedAt.Format(time.DateTime), rec.SourceRef)
		r.writePlain("  matched %d/%d, written %d", rec.Matched, rec.Total, rec.Written)
		if rec.PlaylistID != "" {
			r.writePlain(", playlist %s", rec.PlaylistID)
		}
		r.writePlain("\n")
	}

	return nil
}
