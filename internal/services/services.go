// package services defines interface Service for interacting with music provider HTTP APIs
package services

import (
	"context"

	"github.com/desertthunder/sptx/internal/auth"
)

// Authorizer supplies bearer tokens to outbound requests.
//
// Token returns a currently valid token set, walking cache/refresh/login as needed.
// Refresh performs exactly one refresh attempt; it backs the single 401 retry.
// Implemented by [auth.Flow].
type Authorizer interface {
	Token(ctx context.Context) (*auth.TokenSet, error)
	Refresh(ctx context.Context) (*auth.TokenSet, error)
}

// Service defines the provider-neutral operations exposed to the CLI and task engine.
type Service interface {
	// Name returns the name of the service (e.g., "Spotify")
	Name() string

	// CurrentUser retrieves the authenticated user's profile.
	CurrentUser(ctx context.Context) (*User, error)

	// GetPlaylists retrieves all playlists for the authenticated user.
	GetPlaylists(ctx context.Context) ([]Playlist, error)

	// GetPlaylist retrieves a specific playlist by ID.
	GetPlaylist(ctx context.Context, playlistID string) (*Playlist, error)

	// ExportPlaylist exports a playlist with all its tracks.
	ExportPlaylist(ctx context.Context, playlistID string) (*PlaylistExport, error)

	// CreatePlaylist creates a playlist owned by the authenticated user.
	CreatePlaylist(ctx context.Context, name, description string, public bool) (*Playlist, error)

	// AddTracks appends tracks (by URI) to a playlist and returns the new snapshot ID.
	AddTracks(ctx context.Context, playlistID string, uris []string) (string, error)

	// RemoveTracks removes tracks (by URI) from a playlist and returns the new snapshot ID.
	RemoveTracks(ctx context.Context, playlistID string, uris []string) (string, error)

	// SearchTrack searches for a track by title and artist and returns the best match.
	SearchTrack(ctx context.Context, title, artist string) (*Track, error)
}

// User represents an authenticated account on a service
type User struct {
	ID          string
	DisplayName string
	Email       string
	Country     string
}

// Playlist represents a music playlist from any service
type Playlist struct {
	ID          string
	Name        string
	Description string
	TrackCount  int
	Public      bool
	SnapshotID  string
	Owner       string
}

// PlaylistExport represents a playlist with all its tracks
type PlaylistExport struct {
	Playlist Playlist
	Tracks   []Track
}

// Track represents a music track from any service
type Track struct {
	ID       string
	Title    string
	Artist   string
	Album    string
	Duration int    // Duration in seconds
	ISRC     string // International Standard Recording Code for matching
	URI      string
}
