// package tasks implements long-running playlist operations on top of the Spotify service.
//
// The core abstraction is PlaylistEngine, which orchestrates bulk exports.
// Operations emit progress updates via channels for non-blocking status reporting to the CLI layer.
package tasks

import (
	"github.com/desertthunder/sptx/internal/services"
)

// TrackCacher persists tracks encountered during engine operations.
//
// Implemented by repositories.TrackCacheAdapter; a nil cacher disables caching.
type TrackCacher interface {
	CacheTrack(service string, track services.Track) error
}

// PlaylistEngine implements bulk playlist operations.
type PlaylistEngine struct {
	svc    services.Service
	cacher TrackCacher
}

// NewPlaylistEngine creates a new PlaylistEngine with the provided service and optional track cacher.
func NewPlaylistEngine(svc services.Service, cacher TrackCacher) *PlaylistEngine {
	return &PlaylistEngine{
		svc:    svc,
		cacher: cacher,
	}
}

// sendProgress sends an update without blocking when no receiver is listening.
func (e *PlaylistEngine) sendProgress(prog chan<- ProgressUpdate, update ProgressUpdate) {
	if prog == nil {
		return
	}
	select {
	case prog <- update:
	default:
	}
}

// cacheExportedTracks stores an export's tracks through the cacher, ignoring a nil cacher.
func (e *PlaylistEngine) cacheExportedTracks(export *services.PlaylistExport) {
	if e.cacher == nil {
		return
	}
	for _, track := range export.Tracks {
		// Dedup happens in the cacher; failures there are soft.
		e.cacher.CacheTrack(e.svc.Name(), track)
	}
}
