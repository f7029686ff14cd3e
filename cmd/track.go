package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/sptx/internal/services"
	"github.com/desertthunder/sptx/internal/shared"
	"github.com/urfave/cli/v3"
)

// TrackGet fetches one or more tracks by ID.
func (r *Runner) TrackGet(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSpotify(); err != nil {
		return err
	}

	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("%w: track ID", shared.ErrMissingArgument)
	}

	asJSON := cmd.Bool("json")

	spotify, ok := r.spotify.(*services.SpotifyService)
	if !ok {
		return fmt.Errorf("%w: track lookup requires the Spotify service", shared.ErrServiceUnavailable)
	}

	if len(ids) == 1 {
		track, err := spotify.Track(ctx, ids[0])
		if err != nil {
			return fmt.Errorf("failed to fetch track: %w", err)
		}
		if asJSON {
			return r.writeJSON(track, true)
		}
		printSpotifyTrack(r, track)
		return nil
	}

	tracks, err := spotify.SeveralTracks(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to fetch tracks: %w", err)
	}

	if asJSON {
		return r.writeJSON(tracks, true)
	}

	for i := range tracks {
		printSpotifyTrack(r, &tracks[i])
		if i < len(tracks)-1 {
			r.writePlain("\n")
		}
	}

	return nil
}

func printSpotifyTrack(r *Runner, track *services.SpotifyTrack) {
	artists := make([]string, 0, len(track.Artists))
	for _, a := range track.Artists {
		artists = append(artists, a.Name)
	}

	r.writePlain("Title:    %s\n", track.Name)
	r.writePlain("Artist:   %s\n", strings.Join(artists, ", "))
	r.writePlain("Album:    %s\n", track.Album.Name)
	r.writePlain("Duration: %s\n", shared.FormatDuration(track.DurationMS/1000))
	if track.ExternalIDs.ISRC != "" {
		r.writePlain("ISRC:     %s\n", track.ExternalIDs.ISRC)
	}
	r.writePlain("URI:      %s\n", track.URI)
	r.writePlain("ID:       %s\n", track.ID)
}

// TrackSearch searches the catalog and prints matching tracks.
func (r *Runner) TrackSearch(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSpotify(); err != nil {
		return err
	}

	query := strings.Join(cmd.Args().Slice(), " ")
	title := cmd.String("title")
	artist := cmd.String("artist")

	if query == "" && title == "" {
		return fmt.Errorf("%w: search query or --title", shared.ErrMissingArgument)
	}

	asJSON := cmd.Bool("json")

	if title != "" {
		track, err := r.spotify.SearchTrack(ctx, title, artist)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		if asJSON {
			return r.writeJSON(track, true)
		}
		printTrack(r, track)
		return nil
	}

	spotify, ok := r.spotify.(*services.SpotifyService)
	if !ok {
		return fmt.Errorf("%w: free-text search requires the Spotify service", shared.ErrServiceUnavailable)
	}

	limit := int(cmd.Int("limit"))
	result, err := spotify.Search(ctx, query, limit, 0)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if asJSON {
		return r.writeJSON(result.Tracks.Items, true)
	}

	if len(result.Tracks.Items) == 0 {
		return r.writePlain("No tracks found for %q.\n", query)
	}

	r.writePlain("Found %d tracks (of %d total):\n\n", len(result.Tracks.Items), result.Tracks.Total)
	for i, t := range result.Tracks.Items {
		artist := ""
		if len(t.Artists) > 0 {
			artist = t.Artists[0].Name
		}
		r.writePlain("%3d. %s - %s [%s]\n", i+1, artist, t.Name, shared.FormatDuration(t.DurationMS/1000))
		r.writePlain("     %s\n", t.URI)
	}

	return nil
}

func printTrack(r *Runner, track *services.Track) {
	r.writePlain("Title:    %s\n", track.Title)
	r.writePlain("Artist:   %s\n", track.Artist)
	r.writePlain("Album:    %s\n", track.Album)
	r.writePlain("Duration: %s\n", shared.FormatDuration(track.Duration))
	if track.ISRC != "" {
		r.writePlain("ISRC:     %s\n", track.ISRC)
	}
	r.writePlain("URI:      %s\n", track.URI)
}

// TrackSaved lists the authenticated user's saved tracks.
func (r *Runner) TrackSaved(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSpotify(); err != nil {
		return err
	}

	spotify, ok := r.spotify.(*services.SpotifyService)
	if !ok {
		return fmt.Errorf("%w: saved tracks require the Spotify service", shared.ErrServiceUnavailable)
	}

	limit := int(cmd.Int("limit"))
	offset := int(cmd.Int("offset"))

	page, err := spotify.SavedTracks(ctx, limit, offset)
	if err != nil {
		return fmt.Errorf("failed to fetch saved tracks: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(page, true)
	}

	if len(page.Items) == 0 {
		return r.writePlain("No saved tracks.\n")
	}

	r.writePlain("Saved tracks %d-%d of %d:\n\n", offset+1, offset+len(page.Items), page.Total)
	for i, item := range page.Items {
		t := item.Track
		artist := ""
		if len(t.Artists) > 0 {
			artist = t.Artists[0].Name
		}
		r.writePlain("%3d. %s - %s [%s]\n", offset+i+1, artist, t.Name, shared.FormatDuration(t.DurationMS/1000))
	}

	return nil
}
