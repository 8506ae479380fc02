// YouTube Music [Reader] implementation
//
// Communicates with a FastAPI proxy server wrapping the ytmusicapi Python
// library. The auth_file path is sent via the X-Auth-File header on each
// request; the proxy handles YouTube Music authentication complexities.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/avelara/portify/internal/shared"
)

const defaultYTBaseURL string = "http://localhost:8080"

// YouTubeArtist represents an artist in YouTube Music responses.
type YouTubeArtist struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type youtubeAlbum struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// YouTubeTrack represents a track/video in YouTube Music responses.
type YouTubeTrack struct {
	VideoID     string          `json:"videoId"`
	Title       string          `json:"title"`
	Artists     []YouTubeArtist `json:"artists"`
	Album       *youtubeAlbum   `json:"album"`
	Duration    string          `json:"duration"`
	DurationSec int             `json:"duration_seconds"`
}

// YouTubeService implements [Reader] for YouTube Music via the proxy.
type YouTubeService struct {
	baseURL    string
	authFile   string
	httpClient *http.Client
}

// NewYouTubeService creates a new YouTube Music service instance.
func NewYouTubeService(baseURL string) *YouTubeService {
	if baseURL == "" {
		baseURL = defaultYTBaseURL
	}

	return &YouTubeService{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
}

// Name returns the catalog name.
func (y *YouTubeService) Name() string {
	return "YouTube Music"
}

// SetAuthFile stores the auth file path sent to the proxy on each request.
func (y *YouTubeService) SetAuthFile(path string) {
	y.authFile = path
}

func (y *YouTubeService) doRequest(ctx context.Context, method, endpoint string, result any) error {
	apiURL := y.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, method, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if y.authFile != "" {
		req.Header.Set("X-Auth-File", y.authFile)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Detail string `json:"detail"`
		}
		detail := fmt.Sprintf("status %d", resp.StatusCode)
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			detail = fmt.Sprintf("status %d: %s", resp.StatusCode, errResp.Detail)
		}
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, detail)
		}
		return fmt.Errorf("youtube music API error: %s", detail)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// PlaylistTracks fetches a playlist with its full track listing.
//
// Accepts either a bare playlist ID or a YouTube Music URL carrying the ID
// in its "list" query parameter. Calls GET /api/playlists/{id} on the proxy.
// Failures wrap [shared.ErrSourceFetch].
func (y *YouTubeService) PlaylistTracks(ctx context.Context, ref string) (*PlaylistExport, error) {
	playlistID, err := ExtractPlaylistID(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrSourceFetch, err)
	}

	var ytPlaylist struct {
		ID          string         `json:"id"`
		Title       string         `json:"title"`
		Description string         `json:"description"`
		TrackCount  int            `json:"trackCount"`
		Tracks      []YouTubeTrack `json:"tracks"`
	}

	endpoint := fmt.Sprintf("/api/playlists/%s", url.PathEscape(playlistID))
	if err := y.doRequest(ctx, http.MethodGet, endpoint, &ytPlaylist); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrSourceFetch, err)
	}

	playlist := Playlist{
		ID:          ytPlaylist.ID,
		Name:        ytPlaylist.Title,
		Description: ytPlaylist.Description,
		TrackCount:  ytPlaylist.TrackCount,
	}

	tracks := make([]Track, len(ytPlaylist.Tracks))
	for i, ytt := range ytPlaylist.Tracks {
		track := Track{
			ID:          ytt.VideoID,
			Title:       ytt.Title,
			DurationSec: ytt.DurationSec,
		}

		for _, artist := range ytt.Artists {
			if artist.Name != "" {
				track.Artists = append(track.Artists, artist.Name)
			}
		}

		if ytt.Album != nil {
			track.Album = ytt.Album.Name
		}

		tracks[i] = track
	}

	return &PlaylistExport{
		Playlist: playlist,
		Tracks:   tracks,
	}, nil
}

// ExtractPlaylistID resolves a playlist reference to a bare playlist ID.
//
// A reference carrying a URL scheme must contain a non-empty "list" query
// parameter; anything else is returned unchanged as an ID.
func ExtractPlaylistID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty playlist reference", shared.ErrMissingArgument)
	}

	if !strings.Contains(ref, "://") {
		return ref, nil
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("%w: invalid playlist URL: %v", shared.ErrInvalidArgument, err)
	}

	id := parsed.Query().Get("list")
	if id == "" {
		return "", fmt.Errorf("%w: playlist URL has no list parameter: %s", shared.ErrInvalidArgument, ref)
	}

	return id, nil
}
