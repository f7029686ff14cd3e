package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/sptx/internal/formatter"
	"github.com/desertthunder/sptx/internal/shared"
	"github.com/desertthunder/sptx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// PlaylistList prints the authenticated user's playlists.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSpotify(); err != nil {
		return err
	}

	asJSON := cmd.Bool("json")

	playlists, err := r.spotify.GetPlaylists(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch playlists: %w", err)
	}

	if asJSON {
		return r.writeJSON(playlists, true)
	}

	if len(playlists) == 0 {
		return r.writePlain("No playlists found.\n")
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		visibility := shared.VisibilityString(p.Public)
		r.writePlain("%3d. %s (%d tracks, %s)\n", i+1, p.Name, p.TrackCount, visibility)
		r.writePlain("     ID: %s\n", p.ID)
	}

	return nil
}

// PlaylistShow prints a single playlist's metadata.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSpotify(); err != nil {
		return err
	}

	playlistID := cmd.Args().First()
	if playlistID == "" {
		return fmt.Errorf("%w: playlist ID", shared.ErrMissingArgument)
	}

	asJSON := cmd.Bool("json")

	playlist, err := r.spotify.GetPlaylist(ctx, playlistID)
	if err != nil {
		return fmt.Errorf("failed to fetch playlist: %w", err)
	}

	if asJSON {
		return r.writeJSON(playlist, true)
	}

	r.writePlain("Name:        %s\n", playlist.Name)
	if playlist.Description != "" {
		r.writePlain("Description: %s\n", playlist.Description)
	}
	r.writePlain("Owner:       %s\n", playlist.Owner)
	r.writePlain("Tracks:      %d\n", playlist.TrackCount)
	r.writePlain("Visibility:  %s\n", shared.VisibilityString(playlist.Public))
	r.writePlain("Snapshot:    %s\n", playlist.SnapshotID)
	r.writePlain("ID:          %s\n", playlist.ID)

	return nil
}

// PlaylistCreate creates a new playlist for the authenticated user.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSpotify(); err != nil {
		return err
	}

	name := cmd.Args().First()
	if name == "" {
		name = cmd.String("name")
	}
	if name == "" {
		return fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	description := cmd.String("description")
	public := cmd.Bool("public")

	playlist, err := r.spotify.CreatePlaylist(ctx, name, description, public)
	if err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}

	r.writeOK("Created playlist %q (%s)", playlist.Name, shared.VisibilityString(playlist.Public))
	r.writePlain("  ID: %s\n", playlist.ID)

	return nil
}

// PlaylistAdd appends track URIs to a playlist.
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSpotify(); err != nil {
		return err
	}

	playlistID := cmd.Args().First()
	if playlistID == "" {
		return fmt.Errorf("%w: playlist ID", shared.ErrMissingArgument)
	}

	uris := trackURIs(cmd)
	if len(uris) == 0 {
		return fmt.Errorf("%w: at least one track URI", shared.ErrMissingArgument)
	}

	snapshot, err := r.spotify.AddTracks(ctx, playlistID, uris)
	if err != nil {
		return fmt.Errorf("failed to add tracks: %w", err)
	}

	r.writeOK("Added %d tracks to playlist %s", len(uris), playlistID)
	r.writePlain("  Snapshot: %s\n", snapshot)

	return nil
}

// PlaylistRemove removes track URIs from a playlist.
func (r *Runner) PlaylistRemove(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSpotify(); err != nil {
		return err
	}

	playlistID := cmd.Args().First()
	if playlistID == "" {
		return fmt.Errorf("%w: playlist ID", shared.ErrMissingArgument)
	}

	uris := trackURIs(cmd)
	if len(uris) == 0 {
		return fmt.Errorf("%w: at least one track URI", shared.ErrMissingArgument)
	}

	snapshot, err := r.spotify.RemoveTracks(ctx, playlistID, uris)
	if err != nil {
		return fmt.Errorf("failed to remove tracks: %w", err)
	}

	r.writeOK("Removed %d tracks from playlist %s", len(uris), playlistID)
	r.writePlain("  Snapshot: %s\n", snapshot)

	return nil
}

// trackURIs collects URIs from the --uri flag and remaining positional args. Spotify IDs get prefixed.
func trackURIs(cmd *cli.Command) []string {
	raw := append([]string{}, cmd.StringSlice("uri")...)
	args := cmd.Args().Slice()
	if len(args) > 1 {
		raw = append(raw, args[1:]...)
	}

	uris := make([]string, 0, len(raw))
	for _, u := range raw {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if !strings.Contains(u, ":") {
			u = "spotify:track:" + u
		}
		uris = append(uris, u)
	}

	return uris
}

// PlaylistExport exports a single playlist to a file in the requested format.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSpotify(); err != nil {
		return err
	}

	playlistID := cmd.Args().First()
	if playlistID == "" {
		return fmt.Errorf("%w: playlist ID", shared.ErrMissingArgument)
	}

	format := strings.ToLower(cmd.String("format"))
	outputPath := cmd.String("output")

	export, err := r.spotify.ExportPlaylist(ctx, playlistID)
	if err != nil {
		return fmt.Errorf("failed to export playlist: %w", err)
	}

	if outputPath == "" {
		base := sanitizeFilename(export.Playlist.Name)
		switch format {
		case "csv":
			outputPath = base + ".csv"
		case "markdown", "md":
			outputPath = base + ".md"
		case "txt", "text":
			outputPath = base + ".txt"
		default:
			outputPath = base + ".json"
		}
	}

	switch format {
	case "csv":
		result, err := formatter.WriteCSVExport(export, strings.TrimSuffix(outputPath, ".csv"))
		if err != nil {
			return err
		}
		r.writeOK("Exported %d tracks to %s", len(export.Tracks), result.TracksFile)
		r.writePlain("  Metadata: %s\n", result.MetadataFile)
	case "markdown", "md":
		result, err := formatter.WriteMarkdownExport(export, strings.TrimSuffix(outputPath, ".md"), "")
		if err != nil {
			return err
		}
		r.writeOK("Exported %d tracks to %s", len(export.Tracks), filepath.Join(result.Directory, "README.md"))
	case "txt", "text":
		path, err := formatter.WriteTextExport(export, outputPath)
		if err != nil {
			return err
		}
		r.writeOK("Exported %d tracks to %s", len(export.Tracks), path)
	case "json", "":
		data, err := shared.MarshalJSON(export, true)
		if err != nil {
			return err
		}
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		r.writeOK("Exported %d tracks to %s", len(export.Tracks), outputPath)
	default:
		return fmt.Errorf("%w: unknown format %q (want json, csv, markdown, or txt)", shared.ErrInvalidFlag, format)
	}

	return nil
}

// PlaylistExportAll exports every playlist (or the IDs given as args) concurrently.
func (r *Runner) PlaylistExportAll(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSpotify(); err != nil {
		return err
	}

	format := strings.ToLower(cmd.String("format"))
	if format == "" {
		format = "json"
	}

	if cmd.Bool("cache-tracks") {
		cleanup, err := r.withTrackCache()
		if err != nil {
			return err
		}
		defer cleanup()
	}

	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		playlists, err := r.spotify.GetPlaylists(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch playlists: %w", err)
		}
		for _, p := range playlists {
			ids = append(ids, p.ID)
		}
	}

	if len(ids) == 0 {
		return r.writePlain("No playlists to export.\n")
	}

	opts := tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output-dir"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate-limit"),
	}

	prog := make(chan tasks.ProgressUpdate, len(ids)*2)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			r.writePlain("%s\n", update.Message)
		}
	}()

	start := time.Now()
	result, err := r.engine.BulkExport(ctx, prog, ids, opts)
	close(prog)
	<-done

	if err != nil {
		return fmt.Errorf("bulk export failed: %w", err)
	}

	r.writePlainln("Export complete in %s", time.Since(start).Round(time.Millisecond))
	r.writeOK("%d/%d playlists exported to %s", result.SuccessfulExports, result.TotalPlaylists, result.OutputDirectory)
	if result.FailedExports > 0 {
		r.writeWarn("%d playlists failed (see manifest)", result.FailedExports)
	}
	r.writePlain("  Manifest: %s\n", result.ManifestPath)

	return nil
}

// sanitizeFilename replaces characters unsafe for filenames.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	sanitized := strings.TrimSpace(replacer.Replace(name))
	if sanitized == "" {
		sanitized = "playlist"
	}
	return sanitized
}
