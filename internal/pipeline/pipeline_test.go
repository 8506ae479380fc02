package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/avelara/portify/internal/catalog"
	"github.com/avelara/portify/internal/match"
	"github.com/avelara/portify/internal/shared"
	tu "github.com/avelara/portify/internal/testing"
)

// sourceTrack builds a source track whose normalized search query is
// "song NN artist NN".
func sourceTrack(n int) catalog.Track {
	return catalog.Track{
		ID:          fmt.Sprintf("src%02d", n),
		Title:       fmt.Sprintf("Song %02d", n),
		Artists:     []string{fmt.Sprintf("Artist %02d", n)},
		DurationSec: 180 + n,
	}
}

func candidateFor(n int) catalog.Track {
	return catalog.Track{
		ID:          fmt.Sprintf("dst%02d", n),
		Title:       fmt.Sprintf("Song %02d", n),
		Artists:     []string{fmt.Sprintf("Artist %02d", n)},
		DurationSec: 180 + n,
	}
}

func queryFor(n int) string {
	return fmt.Sprintf("song %02d artist %02d", n, n)
}

func newFixture(total int, missing map[int]bool) (*tu.MockReader, *tu.MockWriter) {
	export := &catalog.PlaylistExport{
		Playlist: catalog.Playlist{ID: "pl1", Name: "Road Trip", TrackCount: total},
	}
	results := map[string][]catalog.Track{}

	for n := 0; n < total; n++ {
		export.Tracks = append(export.Tracks, sourceTrack(n))
		if !missing[n] {
			results[queryFor(n)] = []catalog.Track{candidateFor(n)}
		}
	}

	return &tu.MockReader{Export: export}, &tu.MockWriter{Results: results}
}

func TestEngineRun(t *testing.T) {
	ctx := context.Background()

	t.Run("full migration", func(t *testing.T) {
		reader, writer := newFixture(5, nil)
		engine := NewEngine(reader, writer, nil)

		report, err := engine.Run(ctx, Options{SourceRef: "pl1", RateLimit: 1000}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if report.TotalSource != 5 {
			t.Errorf("expected 5 source tracks, got %d", report.TotalSource)
		}
		if len(report.Matched) != 5 || len(report.Unmatched) != 0 {
			t.Errorf("expected 5 matched / 0 unmatched, got %d / %d", len(report.Matched), len(report.Unmatched))
		}
		if report.DestinationPlaylist == nil {
			t.Fatal("expected destination playlist")
		}
		if report.Written != 5 {
			t.Errorf("expected 5 written, got %d", report.Written)
		}
		if writer.CreateCalls != 1 {
			t.Errorf("expected one create call, got %d", writer.CreateCalls)
		}
		if writer.CreatedName != "Road Trip" {
			t.Errorf("expected source playlist name, got %q", writer.CreatedName)
		}
	})

	t.Run("every source track lands in exactly one partition", func(t *testing.T) {
		missing := map[int]bool{2: true, 7: true, 11: true}
		reader, writer := newFixture(12, missing)
		engine := NewEngine(reader, writer, nil)

		report, err := engine.Run(ctx, Options{SourceRef: "pl1", Workers: 4, RateLimit: 1000}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(report.Matched)+len(report.Unmatched) != report.TotalSource {
			t.Errorf("partition incomplete: %d + %d != %d", len(report.Matched), len(report.Unmatched), report.TotalSource)
		}
		if len(report.Unmatched) != len(missing) {
			t.Errorf("expected %d unmatched, got %d", len(missing), len(report.Unmatched))
		}
		for _, outcome := range report.Unmatched {
			if outcome.Reason != match.MissNoSearchResults {
				t.Errorf("expected MissNoSearchResults for %s, got %v", outcome.Source.ID, outcome.Reason)
			}
		}
	})

	t.Run("outcomes preserve source order under concurrency", func(t *testing.T) {
		reader, writer := newFixture(40, nil)
		engine := NewEngine(reader, writer, nil)

		report, err := engine.Run(ctx, Options{SourceRef: "pl1", Workers: 8, RateLimit: 1000}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for i, outcome := range report.Matched {
			want := fmt.Sprintf("src%02d", i)
			if outcome.Source.ID != want {
				t.Fatalf("position %d holds %s, want %s", i, outcome.Source.ID, want)
			}
		}

		// Appended track IDs mirror the matched order.
		for i, id := range writer.Appended {
			want := fmt.Sprintf("dst%02d", i)
			if id != want {
				t.Fatalf("appended position %d holds %s, want %s", i, id, want)
			}
		}
	})

	t.Run("search failures do not abort the run", func(t *testing.T) {
		reader, writer := newFixture(3, nil)
		writer.SearchErr = errors.New("rate limited")
		engine := NewEngine(reader, writer, nil)

		report, err := engine.Run(ctx, Options{SourceRef: "pl1", RateLimit: 1000}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(report.Unmatched) != 3 {
			t.Errorf("expected 3 unmatched, got %d", len(report.Unmatched))
		}
		if report.SearchFailures != 3 {
			t.Errorf("expected 3 search failures, got %d", report.SearchFailures)
		}
		if writer.CreateCalls != 0 {
			t.Errorf("nothing matched, expected no create call, got %d", writer.CreateCalls)
		}
	})

	t.Run("source fetch failure is fatal", func(t *testing.T) {
		reader := &tu.MockReader{Err: errors.New("proxy down")}
		_, writer := newFixture(1, nil)
		engine := NewEngine(reader, writer, nil)

		report, err := engine.Run(ctx, Options{SourceRef: "pl1", RateLimit: 1000}, nil)
		if !errors.Is(err, shared.ErrSourceFetch) {
			t.Errorf("expected ErrSourceFetch, got %v", err)
		}
		if report != nil {
			t.Error("expected nil report on source failure")
		}
		if len(writer.SearchQueries) != 0 {
			t.Error("expected no searches after source failure")
		}
	})

	t.Run("create failure skips append", func(t *testing.T) {
		reader, writer := newFixture(2, nil)
		writer.CreateErr = errors.New("quota exceeded")
		engine := NewEngine(reader, writer, nil)

		report, err := engine.Run(ctx, Options{SourceRef: "pl1", RateLimit: 1000}, nil)
		if !errors.Is(err, shared.ErrDestinationCreate) {
			t.Errorf("expected ErrDestinationCreate, got %v", err)
		}
		if report == nil {
			t.Fatal("expected partial report")
		}
		if len(report.Matched) != 2 {
			t.Errorf("expected match outcomes preserved, got %d", len(report.Matched))
		}
		if len(writer.Appended) != 0 {
			t.Errorf("expected no append after create failure, got %d tracks", len(writer.Appended))
		}
	})

	t.Run("append failure reports confirmed writes", func(t *testing.T) {
		reader, writer := newFixture(3, nil)
		writer.AppendErr = errors.New("server error")
		writer.AppendLimit = 1
		engine := NewEngine(reader, writer, nil)

		report, err := engine.Run(ctx, Options{SourceRef: "pl1", RateLimit: 1000}, nil)
		if !errors.Is(err, shared.ErrDestinationWrite) {
			t.Errorf("expected ErrDestinationWrite, got %v", err)
		}
		if report == nil {
			t.Fatal("expected partial report")
		}
		if report.Written != 1 {
			t.Errorf("expected 1 written, got %d", report.Written)
		}
		if report.DestinationPlaylist == nil {
			t.Error("expected created playlist in partial report")
		}
	})

	t.Run("dry run never touches the destination playlist", func(t *testing.T) {
		reader, writer := newFixture(4, nil)
		engine := NewEngine(reader, writer, nil)

		report, err := engine.Run(ctx, Options{SourceRef: "pl1", RateLimit: 1000, DryRun: true}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(report.Matched) != 4 {
			t.Errorf("expected 4 matched, got %d", len(report.Matched))
		}
		if writer.CreateCalls != 0 || len(writer.Appended) != 0 {
			t.Error("dry run must not create or append")
		}
		if report.DestinationPlaylist != nil {
			t.Error("expected no destination playlist on dry run")
		}
	})

	t.Run("empty source playlist", func(t *testing.T) {
		reader, writer := newFixture(0, nil)
		engine := NewEngine(reader, writer, nil)

		report, err := engine.Run(ctx, Options{SourceRef: "pl1", RateLimit: 1000}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.TotalSource != 0 || len(report.Matched) != 0 || len(report.Unmatched) != 0 {
			t.Errorf("expected empty report, got %+v", report)
		}
		if writer.CreateCalls != 0 {
			t.Error("expected no create for empty playlist")
		}
	})

	t.Run("cancelled context leaves a complete partition", func(t *testing.T) {
		reader, writer := newFixture(30, nil)
		engine := NewEngine(reader, writer, nil)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		report, err := engine.Run(cancelled, Options{SourceRef: "pl1", RateLimit: 1000}, nil)
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Fatalf("unexpected error: %v", err)
		}
		if report == nil {
			t.Skip("source fetch observed cancellation first")
		}
		if len(report.Matched)+len(report.Unmatched) != report.TotalSource {
			t.Errorf("partition incomplete after cancel: %d + %d != %d",
				len(report.Matched), len(report.Unmatched), report.TotalSource)
		}
	})
}

func TestEngineRunWithCache(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit skips destination search", func(t *testing.T) {
		reader, writer := newFixture(2, nil)
		cache := tu.NewMemoryCache()
		cache.Store(queryFor(0), []catalog.Track{candidateFor(0)})
		cache.Store(queryFor(1), []catalog.Track{candidateFor(1)})
		cache.Stores = 0

		engine := NewEngine(reader, writer, nil).WithCache(cache)

		report, err := engine.Run(ctx, Options{SourceRef: "pl1", RateLimit: 1000, DryRun: true}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(report.Matched) != 2 {
			t.Errorf("expected 2 matched, got %d", len(report.Matched))
		}
		if len(writer.SearchQueries) != 0 {
			t.Errorf("expected no destination searches, got %d", len(writer.SearchQueries))
		}
		if cache.Hits != 2 {
			t.Errorf("expected 2 cache hits, got %d", cache.Hits)
		}
	})

	t.Run("misses populate the cache", func(t *testing.T) {
		reader, writer := newFixture(3, nil)
		cache := tu.NewMemoryCache()

		engine := NewEngine(reader, writer, nil).WithCache(cache)

		if _, err := engine.Run(ctx, Options{SourceRef: "pl1", RateLimit: 1000, DryRun: true}, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cache.Stores != 3 {
			t.Errorf("expected 3 cache stores, got %d", cache.Stores)
		}
		if len(writer.SearchQueries) != 3 {
			t.Errorf("expected 3 destination searches, got %d", len(writer.SearchQueries))
		}
	})
}

func TestEngineProgressUpdates(t *testing.T) {
	reader, writer := newFixture(2, nil)
	engine := NewEngine(reader, writer, nil)

	progress := make(chan ProgressUpdate, 50)
	if _, err := engine.Run(context.Background(), Options{SourceRef: "pl1", RateLimit: 1000}, progress); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(progress)

	seen := map[Phase]bool{}
	for update := range progress {
		seen[update.Phase] = true
	}

	for _, phase := range []Phase{FetchSource, SearchTracks, CreatePlaylist, AppendTracks, Done} {
		if !seen[phase] {
			t.Errorf("expected a %v progress update", phase)
		}
	}
}

func TestEngineNilServices(t *testing.T) {
	_, writer := newFixture(1, nil)

	engine := NewEngine(nil, writer, nil)
	if _, err := engine.Run(context.Background(), Options{SourceRef: "pl1", RateLimit: 1000}, nil); !errors.Is(err, shared.ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable for nil source, got %v", err)
	}

	reader, _ := newFixture(1, nil)
	engine = NewEngine(reader, nil, nil)
	if _, err := engine.Run(context.Background(), Options{SourceRef: "pl1", RateLimit: 1000}, nil); !errors.Is(err, shared.ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable for nil destination, got %v", err)
	}
}
