package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/sptx/internal/repositories"
	"github.com/desertthunder/sptx/internal/shared"
	"github.com/desertthunder/sptx/internal/tasks"
	"github.com/urfave/cli/v3"
)

const serviceName = "spotify"

// openDatabase opens the metadata cache database and applies pending migrations.
func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, err
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// CachePlaylist fetches a playlist (with tracks) from the API and stores it in the local database.
func (r *Runner) CachePlaylist(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSpotify(); err != nil {
		return err
	}

	playlistID := cmd.Args().First()
	if playlistID == "" {
		return fmt.Errorf("%w: playlist ID", shared.ErrMissingArgument)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	export, err := r.spotify.ExportPlaylist(ctx, playlistID)
	if err != nil {
		return fmt.Errorf("failed to fetch playlist: %w", err)
	}

	playlistRepo := repositories.NewPlaylistRepository(db)
	persisted, err := playlistRepo.Upsert(serviceName, export.Playlist)
	if err != nil {
		return fmt.Errorf("failed to cache playlist: %w", err)
	}

	cacher := repositories.NewTrackCacheAdapter(repositories.NewTrackRepository(db))
	cached := 0
	for _, track := range export.Tracks {
		if err := cacher.CacheTrack(serviceName, track); err != nil {
			r.logger.Warn("failed to cache track", "track", track.Title, "error", err)
			continue
		}
		cached++
	}

	r.writeOK("Cached playlist %q (%s)", persisted.Playlist.Name, persisted.ID)
	r.writeOK("Cached %d/%d tracks", cached, len(export.Tracks))

	return nil
}

// CacheList prints the locally cached playlists.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	playlistRepo := repositories.NewPlaylistRepository(db)
	playlists, err := playlistRepo.List()
	if err != nil {
		return fmt.Errorf("failed to list cached playlists: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, true)
	}

	if len(playlists) == 0 {
		return r.writePlain("No cached playlists. Run 'sptx cache playlist <id>' first.\n")
	}

	trackRepo := repositories.NewTrackRepository(db)
	trackCount, err := trackRepo.Count(serviceName)
	if err != nil {
		return fmt.Errorf("failed to count cached tracks: %w", err)
	}

	r.writePlain("Cached playlists (%d, %d tracks total):\n\n", len(playlists), trackCount)
	for i, p := range playlists {
		r.writePlain("%3d. %s (%d tracks)\n", i+1, p.Playlist.Name, p.Playlist.TrackCount)
		r.writePlain("     %s/%s, updated %s\n", p.Service, p.ServiceID, p.UpdatedAt.Format(time.RFC1123))
	}

	return nil
}

// CacheClear deletes a cached playlist record.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.Args().First()
	if playlistID == "" {
		return fmt.Errorf("%w: playlist ID", shared.ErrMissingArgument)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	playlistRepo := repositories.NewPlaylistRepository(db)
	if err := playlistRepo.Delete(serviceName, playlistID); err != nil {
		return fmt.Errorf("failed to delete cached playlist: %w", err)
	}

	return r.writeOK("Removed %s from the cache", playlistID)
}

// withTrackCache rebuilds the export engine with a database-backed track cacher.
//
// Returns a cleanup func that closes the database.
func (r *Runner) withTrackCache() (func(), error) {
	db, err := r.openDatabase()
	if err != nil {
		return nil, err
	}

	cacher := repositories.NewTrackCacheAdapter(repositories.NewTrackRepository(db))
	r.engine = tasks.NewPlaylistEngine(r.spotify, cacher)

	return func() { db.Close() }, nil
}
