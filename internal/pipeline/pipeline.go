// package pipeline implements the playlist migration between catalogs.
//
// The core abstraction is [Engine], which orchestrates the full run: fetch
// the source playlist, search and score every track against the destination,
// create the destination playlist, and append the matched tracks. Operations
// emit progress updates via channels for non-blocking status reporting to
// CLI/UI layers.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/avelara/portify/internal/catalog"
	"github.com/avelara/portify/internal/match"
	"github.com/avelara/portify/internal/shared"
	"golang.org/x/time/rate"
)

// Options configures one migration run.
type Options struct {
	SourceRef   string  // Source playlist URL or ID
	Name        string  // Destination playlist name (default: source name)
	Description string  // Destination playlist description
	Workers     int     // Concurrent search workers (default 4, max 10)
	SearchLimit int     // Candidates requested per search (default 5)
	RateLimit   float64 // Destination searches per second (default 5)
	DryRun      bool    // Match only; never create or write the playlist
}

// SearchCache stores destination search results between runs.
//
// Implementations must be safe for concurrent use; failures are absorbed by
// the implementation, a missed lookup just means a network search.
type SearchCache interface {
	Lookup(query string) ([]catalog.Track, bool)
	Store(query string, tracks []catalog.Track)
}

// Engine drives playlist migrations from a source catalog to a destination.
type Engine struct {
	source catalog.Reader
	dest   catalog.Writer
	scorer *match.Scorer
	cache  SearchCache
}

// NewEngine creates an Engine with the provided collaborators.
func NewEngine(source catalog.Reader, dest catalog.Writer, scorer *match.Scorer) *Engine {
	if scorer == nil {
		scorer = match.NewScorer(match.DefaultThreshold)
	}
	return &Engine{source: source, dest: dest, scorer: scorer}
}

// WithCache attaches a search cache consulted before destination searches.
func (e *Engine) WithCache(cache SearchCache) *Engine {
	e.cache = cache
	return e
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default so progress reporting never stalls the run.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run performs a full migration and returns the finalized report.
//
// Fatal failures wrap [shared.ErrSourceFetch], [shared.ErrDestinationCreate]
// or [shared.ErrDestinationWrite]; the two destination failures also return
// the report built so far, so callers can see per-track outcomes and the
// confirmed written count. Per-track search failures never abort the run;
// they are recorded as unmatched outcomes.
func (e *Engine) Run(ctx context.Context, opts Options, progress chan<- ProgressUpdate) (*Report, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: source catalog not initialized", shared.ErrServiceUnavailable)
	}
	if e.dest == nil {
		return nil, fmt.Errorf("%w: destination catalog not initialized", shared.ErrServiceUnavailable)
	}

	applyDefaults(&opts)

	e.sendProgress(progress, fetchSourceUpdate(e.source.Name()))

	export, err := e.source.PlaylistTracks(ctx, opts.SourceRef)
	if err != nil {
		if errors.Is(err, shared.ErrSourceFetch) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrSourceFetch, err)
	}

	e.sendProgress(progress, foundPlaylistUpdate(export))

	report := &Report{
		ID:             shared.GenerateID(),
		SourceRef:      opts.SourceRef,
		SourcePlaylist: export.Playlist,
		TotalSource:    len(export.Tracks),
	}

	outcomes, searchFailures := e.matchAll(ctx, export.Tracks, opts, progress)
	report.SearchFailures = int(searchFailures)

	for _, outcome := range outcomes {
		if outcome.Matched() {
			report.Matched = append(report.Matched, outcome)
		} else {
			report.Unmatched = append(report.Unmatched, outcome)
		}
	}

	if opts.DryRun || len(report.Matched) == 0 {
		return report, nil
	}

	e.sendProgress(progress, createPlaylistUpdate(e.dest.Name()))

	name, description := destinationMetadata(opts, export, e.source.Name(), len(report.Unmatched))
	playlist, err := e.dest.CreatePlaylist(ctx, name, description)
	if err != nil {
		if errors.Is(err, shared.ErrDestinationCreate) {
			return report, err
		}
		return report, fmt.Errorf("%w: %v", shared.ErrDestinationCreate, err)
	}
	report.DestinationPlaylist = playlist

	trackIDs := make([]string, len(report.Matched))
	for i, outcome := range report.Matched {
		trackIDs[i] = outcome.Candidate.ID
	}

	e.sendProgress(progress, appendTracksUpdate(len(trackIDs)))

	written, err := e.dest.AppendTracks(ctx, playlist.ID, trackIDs)
	report.Written = written
	if err != nil {
		if errors.Is(err, shared.ErrDestinationWrite) {
			return report, err
		}
		return report, fmt.Errorf("%w: %v", shared.ErrDestinationWrite, err)
	}

	e.sendProgress(progress, doneUpdate(playlist))
	return report, nil
}

// matchAll searches and scores every track against the destination using a
// bounded worker pool. Results are collected into an index-keyed slice so
// the returned outcomes always follow source playlist order regardless of
// worker scheduling.
func (e *Engine) matchAll(ctx context.Context, tracks []catalog.Track, opts Options, progress chan<- ProgressUpdate) ([]match.Outcome, int64) {
	total := len(tracks)
	outcomes := make([]match.Outcome, total)
	if total == 0 {
		return outcomes, 0
	}

	e.sendProgress(progress, searchStartUpdate(total, e.dest.Name()))

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	var (
		wg             sync.WaitGroup
		completed      atomic.Int64
		searchFailures atomic.Int64
	)

	jobs := make(chan int)
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcome, failed := e.matchTrack(ctx, limiter, tracks[i], opts.SearchLimit)
				if failed {
					searchFailures.Add(1)
				}
				outcomes[i] = outcome

				step := int(completed.Add(1))
				e.sendProgress(progress, trackOutcomeUpdate(step, total, outcome))
			}
		}()
	}

	for i := range tracks {
		select {
		case <-ctx.Done():
			// Remaining tracks fall through as zero-value outcomes; mark
			// them unmatched so the report partition stays complete.
			for j := i; j < total; j++ {
				outcomes[j] = match.Outcome{Source: tracks[j], Reason: match.MissNoSearchResults}
			}
			close(jobs)
			wg.Wait()
			return outcomes, searchFailures.Load()
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return outcomes, searchFailures.Load()
}

// matchTrack resolves a single source track to an outcome. A failed search
// call is reported as (unmatched, true) rather than an error.
func (e *Engine) matchTrack(ctx context.Context, limiter *rate.Limiter, track catalog.Track, searchLimit int) (match.Outcome, bool) {
	query := match.Normalize(track).Query()

	if e.cache != nil {
		if candidates, ok := e.cache.Lookup(query); ok {
			return e.scorer.SelectBest(track, candidates), false
		}
	}

	if err := limiter.Wait(ctx); err != nil {
		return match.Outcome{Source: track, Reason: match.MissNoSearchResults}, true
	}

	candidates, err := e.dest.Search(ctx, query, searchLimit)
	if err != nil {
		return match.Outcome{Source: track, Reason: match.MissNoSearchResults}, true
	}

	if e.cache != nil && len(candidates) > 0 {
		e.cache.Store(query, candidates)
	}

	return e.scorer.SelectBest(track, candidates), false
}

func applyDefaults(opts *Options) {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Workers > 10 {
		opts.Workers = 10
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = 5
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
}

// destinationMetadata picks the destination playlist name and description,
// preferring explicit overrides, then source metadata, then defaults.
func destinationMetadata(opts Options, export *catalog.PlaylistExport, sourceName string, unmatchedCount int) (string, string) {
	name := opts.Name
	if name == "" {
		name = export.Playlist.Name
	}
	if name == "" {
		name = fmt.Sprintf("Playlist from %s", sourceName)
	}

	description := opts.Description
	if description == "" {
		description = export.Playlist.Description
	}
	if description == "" {
		description = fmt.Sprintf("Migrated from %s. %d tracks not found.", sourceName, unmatchedCount)
	}

	return name, description
}
