package pipeline

import (
	"fmt"
	"strings"

	"github.com/avelara/portify/internal/catalog"
	"github.com/avelara/portify/internal/match"
)

// Report is the finalized record of one migration run.
//
// Matched and Unmatched each preserve source playlist order; every source
// track appears in exactly one of them, so
// len(Matched)+len(Unmatched) == TotalSource always holds.
// The report is built once by [Engine.Run] and never mutated afterward.
type Report struct {
	ID             string
	SourceRef      string
	SourcePlaylist catalog.Playlist
	TotalSource    int
	Matched        []match.Outcome
	Unmatched      []match.Outcome

	// DestinationPlaylist is nil until creation succeeds (and always nil
	// for dry runs or when nothing matched).
	DestinationPlaylist *catalog.Playlist

	// Written counts tracks confirmed added to the destination playlist;
	// it can trail len(Matched) when an append batch failed.
	Written int

	// SearchFailures counts per-track search calls that errored and were
	// recorded as unmatched rather than aborting the run.
	SearchFailures int
}

// SuccessRate returns the matched percentage, 0 for an empty source.
func (r *Report) SuccessRate() float64 {
	if r.TotalSource == 0 {
		return 0
	}
	return float64(len(r.Matched)) / float64(r.TotalSource) * 100
}

// Summarize renders the human-readable migration summary.
//
// Pure function of a completed report; contains the total, matched and
// unmatched counts and the success rate, plus the unmatched track listing.
func Summarize(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Playlist: %s\n", r.SourcePlaylist.Name)
	fmt.Fprintf(&b, "Total tracks: %d\n", r.TotalSource)
	fmt.Fprintf(&b, "Matched: %d\n", len(r.Matched))
	fmt.Fprintf(&b, "Not found: %d\n", len(r.Unmatched))
	fmt.Fprintf(&b, "Success rate: %.1f%%\n", r.SuccessRate())

	if r.DestinationPlaylist != nil {
		if r.DestinationPlaylist.URL != "" {
			fmt.Fprintf(&b, "Created playlist: %s\n", r.DestinationPlaylist.URL)
		} else {
			fmt.Fprintf(&b, "Created playlist: %s\n", r.DestinationPlaylist.ID)
		}
		if r.Written < len(r.Matched) {
			fmt.Fprintf(&b, "Tracks written: %d of %d\n", r.Written, len(r.Matched))
		}
	}

	if r.SearchFailures > 0 {
		fmt.Fprintf(&b, "Search failures: %d\n", r.SearchFailures)
	}

	if lowCount := countLowConfidence(r.Matched); lowCount > 0 {
		fmt.Fprintf(&b, "Low-confidence matches: %d\n", lowCount)
	}

	if len(r.Unmatched) > 0 {
		b.WriteString("\nTracks not found:\n")
		for _, outcome := range r.Unmatched {
			fmt.Fprintf(&b, "  - %s - %s (%s)\n", outcome.Source.ArtistLine(), outcome.Source.Title, outcome.Reason)
		}
	}

	return b.String()
}

func countLowConfidence(outcomes []match.Outcome) int {
	count := 0
	for _, o := range outcomes {
		if o.Confidence == match.ConfidenceLow {
			count++
		}
	}
	return count
}
