package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/sptx/internal/services"
	"github.com/desertthunder/sptx/internal/shared"
)

// TrackRepository persists track metadata in the local cache database.
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a TrackRepository over an open database.
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// Create inserts a cached track row.
func (r *TrackRepository) Create(service string, track services.Track) (*PersistedTrack, error) {
	now := time.Now().UTC()

	row := &PersistedTrack{
		ID:        shared.GenerateID(),
		Service:   service,
		ServiceID: track.ID,
		Track:     track,
		CreatedAt: now,
	}

	_, err := r.db.Exec(
		`INSERT INTO tracks (id, service, service_id, title, artist, album, duration, isrc, uri, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.Service, row.ServiceID, track.Title, track.Artist, track.Album,
		track.Duration, track.ISRC, track.URI, now.Format(timeFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert cached track: %w", err)
	}

	return row, nil
}

// GetByServiceID looks up a cached track by its remote identity. Returns (nil, nil) when absent.
func (r *TrackRepository) GetByServiceID(service, serviceID string) (*PersistedTrack, error) {
	row := r.db.QueryRow(
		`SELECT id, service, service_id, title, artist, album, duration, isrc, uri, created_at
		 FROM tracks WHERE service = ? AND service_id = ?`,
		service, serviceID,
	)

	t, err := scanTrack(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cached track: %w", err)
	}

	return t, nil
}

// FindByISRC returns cached tracks matching an International Standard Recording Code.
func (r *TrackRepository) FindByISRC(isrc string) ([]PersistedTrack, error) {
	rows, err := r.db.Query(
		`SELECT id, service, service_id, title, artist, album, duration, isrc, uri, created_at
		 FROM tracks WHERE isrc = ?`,
		isrc,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached tracks by ISRC: %w", err)
	}
	defer rows.Close()

	var tracks []PersistedTrack
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cached track: %w", err)
		}
		tracks = append(tracks, *t)
	}

	return tracks, rows.Err()
}

// Count returns the number of cached tracks for a service.
func (r *TrackRepository) Count(service string) (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM tracks WHERE service = ?", service).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count cached tracks: %w", err)
	}
	return count, nil
}

func scanTrack(row rowScanner) (*PersistedTrack, error) {
	var t PersistedTrack
	var artist, album, isrc, uri sql.NullString
	var createdAt string

	err := row.Scan(&t.ID, &t.Service, &t.ServiceID, &t.Track.Title, &artist, &album,
		&t.Track.Duration, &isrc, &uri, &createdAt)
	if err != nil {
		return nil, err
	}

	t.Track.ID = t.ServiceID
	t.Track.Artist = artist.String
	t.Track.Album = album.String
	t.Track.ISRC = isrc.String
	t.Track.URI = uri.String
	t.CreatedAt, _ = time.Parse(timeFormat, createdAt)

	return &t, nil
}

// TrackCacheAdapter implements tasks.TrackCacher using TrackRepository.
//
// Duplicate tracks are silently ignored (UNIQUE constraint on service+service_id).
type TrackCacheAdapter struct {
	repo *TrackRepository
}

// NewTrackCacheAdapter creates a TrackCacheAdapter with the given repository.
func NewTrackCacheAdapter(repo *TrackRepository) *TrackCacheAdapter {
	return &TrackCacheAdapter{repo: repo}
}

// CacheTrack caches a track from a service.
// Returns nil if the track already exists; only actual failures surface.
func (a *TrackCacheAdapter) CacheTrack(service string, track services.Track) error {
	existing, err := a.repo.GetByServiceID(service, track.ID)
	if err == nil && existing != nil {
		return nil
	}

	if _, err := a.repo.Create(service, track); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to cache track: %w", err)
	}

	return nil
}
