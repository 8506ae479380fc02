// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/avelara/portify/internal/catalog"
)

// MockReader is a test double for [catalog.Reader].
type MockReader struct {
	Export   *catalog.PlaylistExport
	Err      error
	Requests []string
}

func (m *MockReader) PlaylistTracks(ctx context.Context, ref string) (*catalog.PlaylistExport, error) {
	m.Requests = append(m.Requests, ref)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Export == nil {
		return &catalog.PlaylistExport{}, nil
	}
	return m.Export, nil
}

func (m *MockReader) Name() string { return "mock source" }

// MockWriter is a test double for [catalog.Writer] with call recording.
//
// Search results are keyed by query; queries without an entry return the
// Fallback slice. Safe for concurrent use.
type MockWriter struct {
	mu sync.Mutex

	Results  map[string][]catalog.Track
	Fallback []catalog.Track

	SearchErr error
	CreateErr error
	AppendErr error

	// AppendLimit caps how many tracks append reports as written when
	// AppendErr is set, simulating a mid-batch failure.
	AppendLimit int

	SearchQueries []string
	CreateCalls   int
	CreatedName   string
	CreatedDesc   string
	Appended      []string
}

func (m *MockWriter) Search(ctx context.Context, query string, limit int) ([]catalog.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SearchQueries = append(m.SearchQueries, query)
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	if tracks, ok := m.Results[query]; ok {
		return tracks, nil
	}
	return m.Fallback, nil
}

func (m *MockWriter) CreatePlaylist(ctx context.Context, name, description string) (*catalog.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls++
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.CreatedName = name
	m.CreatedDesc = description
	return &catalog.Playlist{ID: "dest-playlist", Name: name, Description: description}, nil
}

func (m *MockWriter) AppendTracks(ctx context.Context, playlistID string, trackIDs []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.AppendErr != nil {
		written := m.AppendLimit
		if written > len(trackIDs) {
			written = len(trackIDs)
		}
		m.Appended = append(m.Appended, trackIDs[:written]...)
		return written, m.AppendErr
	}
	m.Appended = append(m.Appended, trackIDs...)
	return len(trackIDs), nil
}

func (m *MockWriter) Name() string { return "mock destination" }

// MemoryCache is an in-memory [pipeline.SearchCache] double.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string][]catalog.Track

	Lookups int
	Hits    int
	Stores  int
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string][]catalog.Track{}}
}

func (c *MemoryCache) Lookup(query string) ([]catalog.Track, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Lookups++
	tracks, ok := c.entries[query]
	if ok {
		c.Hits++
	}
	return tracks, ok
}

func (c *MemoryCache) Store(query string, tracks []catalog.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Stores++
	c.entries[query] = tracks
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}
