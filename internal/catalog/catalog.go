// package catalog defines capability interfaces for the two music catalogs
// involved in a migration.
//
// YouTube Music (via proxy) reads, Spotify writes.
package catalog

import (
	"context"
	"strings"
)

// Track is the minimal identifying metadata for a song in either catalog.
//
// ID is an opaque catalog-specific identifier; it is empty for tracks read
// from the source when the source exposes no usable identity.
// DurationSec of zero means the duration is unknown.
type Track struct {
	ID          string
	Title       string
	Artists     []string
	Album       string
	DurationSec int
}

// PrimaryArtist returns the first listed artist, or an empty string.
func (t Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// ArtistLine renders all artists as a single display string.
func (t Track) ArtistLine() string {
	return strings.Join(t.Artists, ", ")
}

// Playlist represents playlist metadata from either catalog.
type Playlist struct {
	ID          string
	Name        string
	Description string
	TrackCount  int
	URL         string
}

// PlaylistExport is a playlist together with its full, ordered track listing.
type PlaylistExport struct {
	Playlist Playlist
	Tracks   []Track
}

// Reader fetches playlists from the source catalog.
type Reader interface {
	// PlaylistTracks resolves a playlist reference (URL or bare ID) and
	// returns the playlist with its tracks in playlist order.
	PlaylistTracks(ctx context.Context, ref string) (*PlaylistExport, error)

	// Name returns the catalog name for display (e.g. "YouTube Music").
	Name() string
}

// Writer searches and mutates the destination catalog.
type Writer interface {
	// Search returns up to limit candidate tracks for the query, in the
	// catalog's relevance order. An empty result is not an error.
	Search(ctx context.Context, query string, limit int) ([]Track, error)

	// CreatePlaylist creates a new private playlist and returns it.
	CreatePlaylist(ctx context.Context, name, description string) (*Playlist, error)

	// AppendTracks adds tracks to the playlist in the given order and
	// returns how many were confirmed written, which may be less than
	// len(trackIDs) when a batch fails mid-way.
	AppendTracks(ctx context.Context, playlistID string, trackIDs []string) (int, error)

	// Name returns the catalog name for display (e.g. "Spotify").
	Name() string
}
