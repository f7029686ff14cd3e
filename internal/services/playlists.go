// Playlist endpoints of the Spotify Web API
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// UserPlaylists retrieves the current user's playlists with pagination.
func (s *SpotifyService) UserPlaylists(ctx context.Context, limit, offset int) (*SpotifyPaginatedPlaylists, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", limit, offset)

	var response SpotifyPaginatedPlaylists
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// Playlist retrieves a playlist by ID.
func (s *SpotifyService) Playlist(ctx context.Context, playlistID string) (*SpotifyPlaylist, error) {
	endpoint := fmt.Sprintf("/playlists/%s", url.PathEscape(playlistID))

	var playlist SpotifyPlaylist
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &playlist); err != nil {
		return nil, err
	}

	return &playlist, nil
}

type createPlaylistRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Public        bool   `json:"public"`
	Collaborative bool   `json:"collaborative"`
}

// CreateSpotifyPlaylist creates a playlist for the given user.
func (s *SpotifyService) CreateSpotifyPlaylist(ctx context.Context, userID, name, description string, public, collaborative bool) (*SpotifyPlaylist, error) {
	if name == "" {
		return nil, fmt.Errorf("playlist name is required")
	}

	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))
	body := createPlaylistRequest{
		Name:          name,
		Description:   description,
		Public:        public,
		Collaborative: collaborative,
	}

	var playlist SpotifyPlaylist
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &playlist); err != nil {
		return nil, err
	}

	return &playlist, nil
}

// PlaylistChanges describes a partial update to playlist details. Nil fields are left unchanged.
type PlaylistChanges struct {
	Name          *string `json:"name,omitempty"`
	Description   *string `json:"description,omitempty"`
	Public        *bool   `json:"public,omitempty"`
	Collaborative *bool   `json:"collaborative,omitempty"`
}

// UpdatePlaylist updates playlist details (name, description, visibility).
func (s *SpotifyService) UpdatePlaylist(ctx context.Context, playlistID string, changes PlaylistChanges) error {
	endpoint := fmt.Sprintf("/playlists/%s", url.PathEscape(playlistID))
	return s.doRequest(ctx, http.MethodPut, endpoint, changes, nil)
}

type addTracksRequest struct {
	URIs     []string `json:"uris"`
	Position *int     `json:"position,omitempty"`
}

// AddTracksAt appends tracks to a playlist at an optional position and returns the new snapshot ID.
func (s *SpotifyService) AddTracksAt(ctx context.Context, playlistID string, uris []string, position *int) (string, error) {
	if len(uris) == 0 {
		return "", fmt.Errorf("no track URIs provided")
	}
	if len(uris) > 100 {
		return "", fmt.Errorf("maximum 100 track URIs allowed per request")
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	body := addTracksRequest{URIs: uris, Position: position}

	var response snapshotResponse
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &response); err != nil {
		return "", err
	}

	return response.SnapshotID, nil
}

type removeTracksRequest struct {
	Tracks     []trackURI `json:"tracks"`
	SnapshotID string     `json:"snapshot_id,omitempty"`
}

type trackURI struct {
	URI string `json:"uri"`
}

// RemoveTracksFrom removes tracks from a playlist, optionally against a specific snapshot, and returns the new snapshot ID.
func (s *SpotifyService) RemoveTracksFrom(ctx context.Context, playlistID string, uris []string, snapshotID string) (string, error) {
	if len(uris) == 0 {
		return "", fmt.Errorf("no track URIs provided")
	}

	body := removeTracksRequest{SnapshotID: snapshotID}
	for _, uri := range uris {
		body.Tracks = append(body.Tracks, trackURI{URI: uri})
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))

	var response snapshotResponse
	if err := s.doRequest(ctx, http.MethodDelete, endpoint, body, &response); err != nil {
		return "", err
	}

	return response.SnapshotID, nil
}

// Service interface implementation

// GetPlaylists retrieves all playlists for the authenticated user, walking pagination.
func (s *SpotifyService) GetPlaylists(ctx context.Context) ([]Playlist, error) {
	var allPlaylists []Playlist
	limit := 50
	offset := 0

	for {
		response, err := s.UserPlaylists(ctx, limit, offset)
		if err != nil {
			return nil, err
		}

		for _, sp := range response.Items {
			allPlaylists = append(allPlaylists, Playlist{
				ID:          sp.ID,
				Name:        sp.Name,
				Description: sp.Description,
				TrackCount:  sp.Tracks.Total,
				Public:      sp.Public,
				SnapshotID:  sp.SnapshotID,
				Owner:       sp.Owner.ID,
			})
		}

		if response.Next == nil {
			break
		}
		offset += limit
	}

	return allPlaylists, nil
}

// GetPlaylist retrieves a specific playlist by ID.
func (s *SpotifyService) GetPlaylist(ctx context.Context, playlistID string) (*Playlist, error) {
	sp, err := s.Playlist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	return &Playlist{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		TrackCount:  sp.Tracks.Total,
		Public:      sp.Public,
		SnapshotID:  sp.SnapshotID,
		Owner:       sp.Owner.ID,
	}, nil
}

// ExportPlaylist exports a playlist with all its tracks.
func (s *SpotifyService) ExportPlaylist(ctx context.Context, playlistID string) (*PlaylistExport, error) {
	sp, err := s.Playlist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	playlist := Playlist{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		TrackCount:  sp.Tracks.Total,
		Public:      sp.Public,
		SnapshotID:  sp.SnapshotID,
		Owner:       sp.Owner.ID,
	}

	var tracks []Track
	for _, item := range sp.Tracks.Items {
		track := Track{
			ID:       item.Track.ID,
			Title:    item.Track.Name,
			Duration: item.Track.DurationMS / 1000,
			ISRC:     item.Track.ExternalIDs.ISRC,
			URI:      item.Track.URI,
		}

		if len(item.Track.Artists) > 0 {
			track.Artist = item.Track.Artists[0].Name
		}

		if item.Track.Album.Name != "" {
			track.Album = item.Track.Album.Name
		}

		tracks = append(tracks, track)
	}

	return &PlaylistExport{
		Playlist: playlist,
		Tracks:   tracks,
	}, nil
}

// CreatePlaylist creates a playlist owned by the authenticated user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, name, description string, public bool) (*Playlist, error) {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	sp, err := s.CreateSpotifyPlaylist(ctx, userID, name, description, public, false)
	if err != nil {
		return nil, err
	}

	return &Playlist{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		TrackCount:  sp.Tracks.Total,
		Public:      sp.Public,
		SnapshotID:  sp.SnapshotID,
		Owner:       sp.Owner.ID,
	}, nil
}

// AddTracks appends tracks to a playlist and returns the new snapshot ID.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, uris []string) (string, error) {
	return s.AddTracksAt(ctx, playlistID, uris, nil)
}

// RemoveTracks removes tracks from a playlist and returns the new snapshot ID.
func (s *SpotifyService) RemoveTracks(ctx context.Context, playlistID string, uris []string) (string, error) {
	return s.RemoveTracksFrom(ctx, playlistID, uris, "")
}
