package pipeline

import (
	"fmt"

	"github.com/avelara/portify/internal/catalog"
	"github.com/avelara/portify/internal/match"
)

// ProgressUpdate represents a progress event during a migration.
//
// Used to send real-time updates to the CLI or TUI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchSource Phase = iota
	SearchTracks
	CreatePlaylist
	AppendTracks
	Done
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case SearchTracks:
		return "search_tracks"
	case CreatePlaylist:
		return "create_playlist"
	case AppendTracks:
		return "append_tracks"
	case Done:
		return "done"
	default:
		return ""
	}
}

func fetchSourceUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching source playlist from %s...", name),
	}
}

func foundPlaylistUpdate(export *catalog.PlaylistExport) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found playlist: %s (%d tracks)", export.Playlist.Name, len(export.Tracks)),
		Data:    export,
	}
}

func searchStartUpdate(total int, destName string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTracks,
		Total:   total,
		Message: fmt.Sprintf("Searching for tracks on %s...", destName),
	}
}

func trackOutcomeUpdate(step, total int, outcome match.Outcome) ProgressUpdate {
	mark := "✗"
	if outcome.Matched() {
		mark = "✓"
	}
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s - %s", step, total, mark, outcome.Source.ArtistLine(), outcome.Source.Title),
		Data:    outcome,
	}
}

func createPlaylistUpdate(destName string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist on %s...", destName),
	}
}

func appendTracksUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AppendTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Adding %d tracks...", count),
	}
}

func doneUpdate(pl *catalog.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", pl.Name, pl.ID),
		Data:    pl,
	}
}
