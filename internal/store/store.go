// package store persists destination search results and migration run
// history in SQLite.
//
// The search cache keeps repeated migrations of overlapping playlists from
// re-querying the destination catalog; the run log records one row per
// completed migration for later inspection.
package store

import (
	"database/sql"
	"strings"
	"time"

	"github.com/avelara/portify/internal/catalog"
	"github.com/avelara/portify/internal/pipeline"
	"github.com/avelara/portify/internal/shared"
)

// artistSep joins artist names in a single column. The ASCII unit separator
// cannot appear in artist names coming off either API.
const artistSep = "\x1f"

// SearchCache is a SQLite-backed [pipeline.SearchCache].
//
// Safe for concurrent use; database/sql serializes access per connection and
// write failures are absorbed (a failed Store just means a future search).
type SearchCache struct {
	db *sql.DB
}

// NewSearchCache creates a cache over an open database. The schema must
// already be migrated (see shared.RunMigrations).
func NewSearchCache(db *sql.DB) *SearchCache {
	return &SearchCache{db: db}
}

// Lookup returns the cached candidate list for a query, in original search
// relevance order. The second return is false when the query was never
// cached or the read failed.
func (c *SearchCache) Lookup(query string) ([]catalog.Track, bool) {
	rows, err := c.db.Query(`
		SELECT track_id, title, artists, album, duration_seconds
		FROM search_cache WHERE query = ? ORDER BY position`, query)
	if err != nil {
		return nil, false
	}
	defer rows.Close()

	var tracks []catalog.Track
	for rows.Next() {
		var track catalog.Track
		var artists string
		if err := rows.Scan(&track.ID, &track.Title, &artists, &track.Album, &track.DurationSec); err != nil {
			return nil, false
		}
		if artists != "" {
			track.Artists = strings.Split(artists, artistSep)
		}
		tracks = append(tracks, track)
	}

	if rows.Err() != nil || len(tracks) == 0 {
		return nil, false
	}

	return tracks, true
}

// Store caches the candidate list for a query, replacing any previous entry.
// Failures are swallowed; the cache is an optimization, not a ledger.
func (c *SearchCache) Store(query string, tracks []catalog.Track) {
	tx, err := c.db.Begin()
	if err != nil {
		return
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM search_cache WHERE query = ?", query); err != nil {
		return
	}

	for i, track := range tracks {
		_, err := tx.Exec(`
			INSERT INTO search_cache (id, query, position, track_id, title, artists, album, duration_seconds)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			shared.GenerateID(), query, i, track.ID, track.Title,
			strings.Join(track.Artists, artistSep), track.Album, track.DurationSec)
		if err != nil {
			return
		}
	}

	tx.Commit()
}

// Stats returns the number of cached rows and distinct queries.
func (c *SearchCache) Stats() (rows, queries int, err error) {
	err = c.db.QueryRow("SELECT COUNT(*), COUNT(DISTINCT query) FROM search_cache").Scan(&rows, &queries)
	return rows, queries, err
}

// Clear removes every cached search result.
func (c *SearchCache) Clear() error {
	_, err := c.db.Exec("DELETE FROM search_cache")
	return err
}

// RunRecord is one persisted migration run.
type RunRecord struct {
	ID         string
	SourceRef  string
	PlaylistID string
	Total      int
	Matched    int
	Unmatched  int
	Written    int
	CreatedAt  time.Time
}

// RunLog persists completed migration reports.
type RunLog struct {
	db *sql.DB
}

// NewRunLog creates a run log over an open database.
func NewRunLog(db *sql.DB) *RunLog {
	return &RunLog{db: db}
}

// Record inserts one row for a completed report.
func (l *RunLog) Record(report *pipeline.Report) error {
	playlistID := ""
	if report.DestinationPlaylist != nil {
		playlistID = report.DestinationPlaylist.ID
	}

	_, err := l.db.Exec(`
		INSERT INTO migration_runs (id, source_ref, playlist_id, total_tracks, matched, unmatched, written)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.SourceRef, playlistID,
		report.TotalSource, len(report.Matched), len(report.Unmatched), report.Written)
	return err
}

// Recent returns up to limit runs, newest first.
func (l *RunLog) Recent(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := l.db.Query(`
		SELECT id, source_ref, playlist_id, total_tracks, matched, unmatched, written, created_at
		FROM migration_runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(&rec.ID, &rec.SourceRef, &rec.PlaylistID, &rec.Total, &rec.Matched, &rec.Unmatched, &rec.Written, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
