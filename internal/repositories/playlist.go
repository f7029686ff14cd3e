package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/sptx/internal/services"
	"github.com/desertthunder/sptx/internal/shared"
)

// PlaylistRepository persists playlist metadata in the local cache database.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a PlaylistRepository over an open database.
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Upsert inserts or updates the cached copy of a playlist from a service.
func (r *PlaylistRepository) Upsert(service string, playlist services.Playlist) (*PersistedPlaylist, error) {
	now := time.Now().UTC()

	existing, err := r.GetByServiceID(service, playlist.ID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		_, err = r.db.Exec(
			`UPDATE playlists SET name = ?, description = ?, track_count = ?, public = ?, snapshot_id = ?, updated_at = ?
			 WHERE service = ? AND service_id = ?`,
			playlist.Name, playlist.Description, playlist.TrackCount, boolToInt(playlist.Public), playlist.SnapshotID,
			now.Format(timeFormat), service, playlist.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update cached playlist: %w", err)
		}

		existing.Playlist = playlist
		existing.UpdatedAt = now
		return existing, nil
	}

	row := &PersistedPlaylist{
		ID:        shared.GenerateID(),
		Service:   service,
		ServiceID: playlist.ID,
		Playlist:  playlist,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = r.db.Exec(
		`INSERT INTO playlists (id, service, service_id, name, description, track_count, public, snapshot_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.Service, row.ServiceID, playlist.Name, playlist.Description, playlist.TrackCount,
		boolToInt(playlist.Public), playlist.SnapshotID, now.Format(timeFormat), now.Format(timeFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert cached playlist: %w", err)
	}

	return row, nil
}

// GetByServiceID looks up a cached playlist by its remote identity. Returns (nil, nil) when absent.
func (r *PlaylistRepository) GetByServiceID(service, serviceID string) (*PersistedPlaylist, error) {
	row := r.db.QueryRow(
		`SELECT id, service, service_id, name, description, track_count, public, snapshot_id, created_at, updated_at
		 FROM playlists WHERE service = ? AND service_id = ?`,
		service, serviceID,
	)

	p, err := scanPlaylist(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cached playlist: %w", err)
	}

	return p, nil
}

// List returns all cached playlists, most recently updated first.
func (r *PlaylistRepository) List() ([]PersistedPlaylist, error) {
	rows, err := r.db.Query(
		`SELECT id, service, service_id, name, description, track_count, public, snapshot_id, created_at, updated_at
		 FROM playlists ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cached playlists: %w", err)
	}
	defer rows.Close()

	var playlists []PersistedPlaylist
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cached playlist: %w", err)
		}
		playlists = append(playlists, *p)
	}

	return playlists, rows.Err()
}

// Delete removes a cached playlist by its remote identity.
func (r *PlaylistRepository) Delete(service, serviceID string) error {
	_, err := r.db.Exec("DELETE FROM playlists WHERE service = ? AND service_id = ?", service, serviceID)
	if err != nil {
		return fmt.Errorf("failed to delete cached playlist: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlaylist(row rowScanner) (*PersistedPlaylist, error) {
	var p PersistedPlaylist
	var description, snapshotID sql.NullString
	var public int
	var createdAt, updatedAt string

	err := row.Scan(&p.ID, &p.Service, &p.ServiceID, &p.Playlist.Name, &description,
		&p.Playlist.TrackCount, &public, &snapshotID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	p.Playlist.ID = p.ServiceID
	p.Playlist.Description = description.String
	p.Playlist.SnapshotID = snapshotID.String
	p.Playlist.Public = public != 0
	p.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	p.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)

	return &p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
