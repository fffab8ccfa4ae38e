// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/NinoBlz/dzx/internal/services"
)

// MockService is a configurable test double for [services.Service].
//
// Each func field, when set, overrides the zero-value behavior (empty
// results, nil errors).
type MockService struct {
	ServiceName           string
	AuthenticateFunc      func(ctx context.Context, credentials map[string]string) error
	GetPlaylistsFunc      func(ctx context.Context) ([]services.Playlist, error)
	GetPlaylistTracksFunc func(ctx context.Context, playlistID string) ([]services.Track, error)
	SearchTrackFunc       func(ctx context.Context, title, artist string) ([]services.Track, error)
	CreatePlaylistFunc    func(ctx context.Context, name string, trackIDs []string) (string, error)

	SearchCalls []string // "artist|title" per SearchTrack call
	CreateCalls [][]string
}

func (m *MockService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, credentials)
	}
	return nil
}

func (m *MockService) GetPlaylists(ctx context.Context) ([]services.Playlist, error) {
	if m.GetPlaylistsFunc != nil {
		return m.GetPlaylistsFunc(ctx)
	}
	return []services.Playlist{}, nil
}

func (m *MockService) GetPlaylistTracks(ctx context.Context, playlistID string) ([]services.Track, error) {
	if m.GetPlaylistTracksFunc != nil {
		return m.GetPlaylistTracksFunc(ctx, playlistID)
	}
	return []services.Track{}, nil
}

func (m *MockService) SearchTrack(ctx context.Context, title, artist string) ([]services.Track, error) {
	m.SearchCalls = append(m.SearchCalls, artist+"|"+title)
	if m.SearchTrackFunc != nil {
		return m.SearchTrackFunc(ctx, title, artist)
	}
	return nil, nil
}

func (m *MockService) CreatePlaylist(ctx context.Context, name string, trackIDs []string) (string, error) {
	m.CreateCalls = append(m.CreateCalls, trackIDs)
	if m.CreatePlaylistFunc != nil {
		return m.CreatePlaylistFunc(ctx, name, trackIDs)
	}
	return "mock-playlist-id", nil
}

func (m *MockService) Name() string {
	if m.ServiceName != "" {
		return m.ServiceName
	}
	return "mock"
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

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
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
