// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/desertthunder/sptx/internal/services"
)

// MockService is a configurable test double for [services.Service].
//
// Zero-value fields return empty results; set the function fields to script behavior.
type MockService struct {
	CurrentUserFunc    func(ctx context.Context) (*services.User, error)
	GetPlaylistsFunc   func(ctx context.Context) ([]services.Playlist, error)
	GetPlaylistFunc    func(ctx context.Context, playlistID string) (*services.Playlist, error)
	ExportPlaylistFunc func(ctx context.Context, playlistID string) (*services.PlaylistExport, error)
	CreatePlaylistFunc func(ctx context.Context, name, description string, public bool) (*services.Playlist, error)
	AddTracksFunc      func(ctx context.Context, playlistID string, uris []string) (string, error)
	RemoveTracksFunc   func(ctx context.Context, playlistID string, uris []string) (string, error)
	SearchTrackFunc    func(ctx context.Context, title, artist string) (*services.Track, error)
}

func (m *MockService) Name() string { return "mock" }

func (m *MockService) CurrentUser(ctx context.Context) (*services.User, error) {
	if m.CurrentUserFunc != nil {
		return m.CurrentUserFunc(ctx)
	}
	return &services.User{ID: "mock_user"}, nil
}

func (m *MockService) GetPlaylists(ctx context.Context) ([]services.Playlist, error) {
	if m.GetPlaylistsFunc != nil {
		return m.GetPlaylistsFunc(ctx)
	}
	return []services.Playlist{}, nil
}

func (m *MockService) GetPlaylist(ctx context.Context, playlistID string) (*services.Playlist, error) {
	if m.GetPlaylistFunc != nil {
		return m.GetPlaylistFunc(ctx, playlistID)
	}
	return nil, nil
}

func (m *MockService) ExportPlaylist(ctx context.Context, playlistID string) (*services.PlaylistExport, error) {
	if m.ExportPlaylistFunc != nil {
		return m.ExportPlaylistFunc(ctx, playlistID)
	}
	return nil, nil
}

func (m *MockService) CreatePlaylist(ctx context.Context, name, description string, public bool) (*services.Playlist, error) {
	if m.CreatePlaylistFunc != nil {
		return m.CreatePlaylistFunc(ctx, name, description, public)
	}
	return nil, nil
}

func (m *MockService) AddTracks(ctx context.Context, playlistID string, uris []string) (string, error) {
	if m.AddTracksFunc != nil {
		return m.AddTracksFunc(ctx, playlistID, uris)
	}
	return "", nil
}

func (m *MockService) RemoveTracks(ctx context.Context, playlistID string, uris []string) (string, error) {
	if m.RemoveTracksFunc != nil {
		return m.RemoveTracksFunc(ctx, playlistID, uris)
	}
	return "", nil
}

func (m *MockService) SearchTrack(ctx context.Context, title, artist string) (*services.Track, error) {
	if m.SearchTrackFunc != nil {
		return m.SearchTrackFunc(ctx, title, artist)
	}
	return nil, nil
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
