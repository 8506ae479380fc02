// Spotify [Writer] implementation built on the zmb3/spotify SDK.
//
// Requires a user-authorized OAuth2 token (playlist-modify scopes); tokens
// are persisted as JSON and refreshed automatically by the oauth2 client.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/avelara/portify/internal/shared"
	spotify "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// appendBatchSize is the Spotify API cap on tracks added per request.
const appendBatchSize = 100

// maxSearchLimit is the Spotify API cap on search results per request.
const maxSearchLimit = 50

// SpotifyService implements [Writer] for the Spotify Web API.
type SpotifyService struct {
	client    spotifyClient
	userID    string
	batchSize int
}

// spotifyClient is the subset of [spotify.Client] the service uses,
// extracted so tests can substitute a double.
type spotifyClient interface {
	Search(ctx context.Context, query string, t spotify.SearchType, opts ...spotify.RequestOption) (*spotify.SearchResult, error)
	CreatePlaylistForUser(ctx context.Context, userID, playlistName, description string, public bool, collaborative bool) (*spotify.FullPlaylist, error)
	AddTracksToPlaylist(ctx context.Context, playlistID spotify.ID, trackIDs ...spotify.ID) (string, error)
}

// NewSpotifyService authenticates against Spotify using a persisted token
// and returns a ready-to-use service bound to the current user.
func NewSpotifyService(ctx context.Context, cfg shared.SpotifyConfig) (*SpotifyService, error) {
	token, err := LoadToken(cfg.TokenPath)
	if err != nil {
		return nil, fmt.Errorf("%w: run 'portify auth login' first: %v", shared.ErrNotAuthenticated, err)
	}

	httpClient := NewSpotifyAuthenticator(cfg).Client(ctx, token)
	client := spotify.New(httpClient, spotify.WithRetry(true))

	user, err := client.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	return &SpotifyService{
		client:    client,
		userID:    user.ID,
		batchSize: appendBatchSize,
	}, nil
}

// newSpotifyServiceForTest builds a service around a client double.
func newSpotifyServiceForTest(client spotifyClient, userID string) *SpotifyService {
	return &SpotifyService{client: client, userID: userID, batchSize: appendBatchSize}
}

// Name returns the catalog name.
func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Search queries the track index and returns candidates in relevance order.
//
// An empty result set is returned as (nil, nil); only transport or auth
// failures produce an error.
func (s *SpotifyService) Search(ctx context.Context, query string, limit int) ([]Track, error) {
	if limit <= 0 {
		limit = 5
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	result, err := s.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("%w: search %q: %v", shared.ErrAPIRequest, query, err)
	}

	if result.Tracks == nil || len(result.Tracks.Tracks) == 0 {
		return nil, nil
	}

	tracks := make([]Track, len(result.Tracks.Tracks))
	for i, ft := range result.Tracks.Tracks {
		tracks[i] = fullTrackToTrack(ft)
	}

	return tracks, nil
}

// CreatePlaylist creates a new private playlist for the authenticated user.
// Failures wrap [shared.ErrDestinationCreate].
func (s *SpotifyService) CreatePlaylist(ctx context.Context, name, description string) (*Playlist, error) {
	pl, err := s.client.CreatePlaylistForUser(ctx, s.userID, name, description, false, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrDestinationCreate, err)
	}

	return &Playlist{
		ID:          string(pl.ID),
		Name:        pl.Name,
		Description: pl.Description,
		URL:         pl.ExternalURLs["spotify"],
	}, nil
}

// AppendTracks adds the given track IDs to the playlist in order, batching
// requests to the API's per-call cap. Returns how many tracks were confirmed
// written; a mid-run failure wraps [shared.ErrDestinationWrite].
func (s *SpotifyService) AppendTracks(ctx context.Context, playlistID string, trackIDs []string) (int, error) {
	batchSize := s.batchSize
	if batchSize <= 0 {
		batchSize = appendBatchSize
	}

	written := 0
	for start := 0; start < len(trackIDs); start += batchSize {
		end := min(start+batchSize, len(trackIDs))

		batch := make([]spotify.ID, 0, end-start)
		for _, id := range trackIDs[start:end] {
			batch = append(batch, spotify.ID(id))
		}

		if _, err := s.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), batch...); err != nil {
			return written, fmt.Errorf("%w: wrote %d of %d tracks: %v", shared.ErrDestinationWrite, written, len(trackIDs), err)
		}
		written += len(batch)
	}

	return written, nil
}

func fullTrackToTrack(ft spotify.FullTrack) Track {
	track := Track{
		ID:          string(ft.ID),
		Title:       ft.Name,
		Album:       ft.Album.Name,
		DurationSec: int(ft.Duration) / 1000,
	}
	for _, artist := range ft.Artists {
		track.Artists = append(track.Artists, artist.Name)
	}
	return track
}

// NewSpotifyAuthenticator builds the OAuth2 authenticator with the scopes
// playlist creation requires.
func NewSpotifyAuthenticator(cfg shared.SpotifyConfig) *spotifyauth.Authenticator {
	return spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithRedirectURL(cfg.RedirectURI),
		spotifyauth.WithScopes(
			spotifyauth.ScopeUserReadPrivate,
			spotifyauth.ScopePlaylistModifyPrivate,
			spotifyauth.ScopePlaylistModifyPublic,
		),
	)
}

// LoadToken reads a persisted OAuth2 token from disk.
func LoadToken(path string) (*oauth2.Token, error) {
	if path == "" {
		return nil, fmt.Errorf("no token path configured")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	return &token, nil
}

// SaveToken persists an OAuth2 token to disk with owner-only permissions.
func SaveToken(path string, token *oauth2.Token) error {
	if path == "" {
		return fmt.Errorf("no token path configured")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}

	return nil
}
