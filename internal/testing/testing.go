// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/tracklist/internal/services"
	"github.com/desertthunder/tracklist/internal/shared"
)

// MockMetadataService is a test double for [services.MetadataService] backed by fixed data.
//
// Artists are keyed by name and tracks by "title|artist". Err, when set, is returned by every call.
type MockMetadataService struct {
	Top     []services.TopTrack
	Artists map[string]*services.ArtistInfo
	Tracks  map[string]*services.TrackInfo
	Err     error

	mu    sync.Mutex
	calls []string
}

func (m *MockMetadataService) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

// Calls returns the lookups made so far, e.g. "artist:Queen".
func (m *MockMetadataService) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockMetadataService) TopTracks(ctx context.Context) ([]services.TopTrack, error) {
	m.record("top")
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Top, nil
}

func (m *MockMetadataService) ArtistInfo(ctx context.Context, name string) (*services.ArtistInfo, error) {
	m.record("artist:" + name)
	if m.Err != nil {
		return nil, m.Err
	}
	if info, ok := m.Artists[name]; ok {
		return info, nil
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrArtistNotFound, name)
}

func (m *MockMetadataService) TrackInfo(ctx context.Context, title, artist string) (*services.TrackInfo, error) {
	m.record("track:" + title + "|" + artist)
	if m.Err != nil {
		return nil, m.Err
	}
	if info, ok := m.Tracks[title+"|"+artist]; ok {
		return info, nil
	}
	return nil, fmt.Errorf("%w: %s by %s", shared.ErrTrackNotFound, title, artist)
}

func (m *MockMetadataService) Name() string { return "mock" }

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

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
