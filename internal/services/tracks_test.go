package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/desertthunder/sptx/internal/shared"
)

func TestTracks(t *testing.T) {
	ctx := context.Background()

	t.Run("Track fetches by ID", func(t *testing.T) {
		svc := newTestService(t, &fakeAuthorizer{token: "access"}, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/tracks/t_1" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			fmt.Fprint(w, `{
				"id": "t_1",
				"name": "Song One",
				"artists": [{"id": "a_1", "name": "Artist One"}],
				"album": {"id": "al_1", "name": "Album One"},
				"duration_ms": 215000,
				"external_ids": {"isrc": "USRC17607839"},
				"uri": "spotify:track:t_1"
			}`)
		})

		track, err := svc.Track(ctx, "t_1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if track.Name != "Song One" || track.DurationMS != 215000 {
			t.Errorf("unexpected track: %+v", track)
		}
		if track.ExternalIDs.ISRC != "USRC17607839" {
			t.Errorf("expected ISRC, got %q", track.ExternalIDs.ISRC)
		}
	})

	t.Run("SeveralTracks", func(t *testing.T) {
		t.Run("joins IDs", func(t *testing.T) {
			svc := newTestService(t, &fakeAuthorizer{token: "access"}, func(w http.ResponseWriter, r *http.Request) {
				ids := r.URL.Query().Get("ids")
				if ids != "t_1,t_2" {
					t.Errorf("unexpected ids param: %q", ids)
				}
				fmt.Fprint(w, `{"tracks": [{"id": "t_1", "name": "One"}, {"id": "t_2", "name": "Two"}]}`)
			})

			tracks, err := svc.SeveralTracks(ctx, []string{"t_1", "t_2"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 2 {
				t.Errorf("expected 2 tracks, got %d", len(tracks))
			}
		})

		t.Run("rejects empty and oversized batches", func(t *testing.T) {
			svc := NewSpotifyService(&fakeAuthorizer{token: "access"}, nil, nil)

			if _, err := svc.SeveralTracks(ctx, nil); err == nil {
				t.Error("expected error for empty batch")
			}

			tooMany := make([]string, 51)
			for i := range tooMany {
				tooMany[i] = fmt.Sprintf("t_%d", i)
			}
			if _, err := svc.SeveralTracks(ctx, tooMany); err == nil {
				t.Error("expected error for more than 50 IDs")
			}
		})
	})

	t.Run("SavedTracks clamps limit", func(t *testing.T) {
		var gotQuery string
		svc := newTestService(t, &fakeAuthorizer{token: "access"}, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			fmt.Fprint(w, `{"items": [], "total": 0, "next": null}`)
		})

		if _, err := svc.SavedTracks(ctx, 200, 10); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(gotQuery, "limit=50") || !strings.Contains(gotQuery, "offset=10") {
			t.Errorf("unexpected query: %q", gotQuery)
		}
	})

	t.Run("Search", func(t *testing.T) {
		t.Run("requires a query", func(t *testing.T) {
			svc := NewSpotifyService(&fakeAuthorizer{token: "access"}, nil, nil)
			if _, err := svc.Search(ctx, "", 10, 0); err == nil {
				t.Error("expected error for empty query")
			}
		})

		t.Run("sets type and encodes query", func(t *testing.T) {
			svc := newTestService(t, &fakeAuthorizer{token: "access"}, func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if q.Get("type") != "track" {
					t.Errorf("expected type=track, got %q", q.Get("type"))
				}
				if q.Get("q") != "bohemian rhapsody" {
					t.Errorf("unexpected query: %q", q.Get("q"))
				}
				fmt.Fprint(w, `{"tracks": {"items": [{"id": "t_1", "name": "Bohemian Rhapsody"}], "total": 1}}`)
			})

			result, err := svc.Search(ctx, "bohemian rhapsody", 10, 0)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result.Tracks.Total != 1 {
				t.Errorf("unexpected total: %d", result.Tracks.Total)
			}
		})
	})

	t.Run("SearchTrack", func(t *testing.T) {
		t.Run("builds field-filtered query", func(t *testing.T) {
			var gotQuery string
			svc := newTestService(t, &fakeAuthorizer{token: "access"}, func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.Query().Get("q")
				fmt.Fprint(w, `{"tracks": {"items": [{
					"id": "t_1",
					"name": "Song One",
					"artists": [{"id": "a_1", "name": "Artist One"}],
					"album": {"id": "al_1", "name": "Album One"},
					"duration_ms": 215000,
					"uri": "spotify:track:t_1"
				}], "total": 1}}`)
			})

			track, err := svc.SearchTrack(ctx, "Song One", "Artist One")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if gotQuery != "track:Song One artist:Artist One" {
				t.Errorf("unexpected query: %q", gotQuery)
			}
			if track.Title != "Song One" || track.Artist != "Artist One" {
				t.Errorf("unexpected track: %+v", track)
			}
			if track.Duration != 215 {
				t.Errorf("expected duration in seconds, got %d", track.Duration)
			}
		})

		t.Run("no match", func(t *testing.T) {
			svc := newTestService(t, &fakeAuthorizer{token: "access"}, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"tracks": {"items": [], "total": 0}}`)
			})

			_, err := svc.SearchTrack(ctx, "Nonexistent", "")
			if !errors.Is(err, shared.ErrTrackNotFound) {
				t.Errorf("expected ErrTrackNotFound, got %v", err)
			}
		})

		t.Run("requires a title", func(t *testing.T) {
			svc := NewSpotifyService(&fakeAuthorizer{token: "access"}, nil, nil)
			if _, err := svc.SearchTrack(ctx, "", "Artist"); err == nil {
				t.Error("expected error for empty title")
			}
		})
	})
}
