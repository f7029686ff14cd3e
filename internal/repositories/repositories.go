// package repositories provides the SQLite persistence layer for locally cached playlists and tracks.
//
// Rows are keyed by uuid and deduplicated on (service, service_id) so re-caching
// the same remote entity is an upsert, never a duplicate.
package repositories

import (
	"time"

	"github.com/desertthunder/sptx/internal/services"
)

const timeFormat = time.RFC3339

// PersistedPlaylist is a playlist row in the local cache database.
type PersistedPlaylist struct {
	ID        string
	Service   string
	ServiceID string
	Playlist  services.Playlist
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PersistedTrack is a track row in the local cache database.
type PersistedTrack struct {
	ID        string
	Service   string
	ServiceID string
	Track     services.Track
	CreatedAt time.Time
}
