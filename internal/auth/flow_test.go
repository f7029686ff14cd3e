package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/sptx/internal/shared"
	"golang.org/x/oauth2"
)

// tokenEndpoint is a fake provider token endpoint that counts requests.
type tokenEndpoint struct {
	server *httptest.Server
	calls  atomic.Int64
	// status overrides the default 200 response when non-zero
	status int
	body   string
}

func newTokenEndpoint(t *testing.T) *tokenEndpoint {
	t.Helper()

	ep := &tokenEndpoint{}
	ep.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ep.calls.Add(1)
		w.Header().Set("Content-Type", "application/json")

		if ep.status != 0 {
			w.WriteHeader(ep.status)
			fmt.Fprint(w, ep.body)
			return
		}

		fmt.Fprint(w, `{
			"access_token": "refreshed_access",
			"token_type": "Bearer",
			"expires_in": 3600,
			"refresh_token": "rotated_refresh",
			"scope": "playlist-read-private"
		}`)
	}))
	t.Cleanup(ep.server.Close)

	return ep
}

func newTestFlow(t *testing.T, ep *tokenEndpoint) (*Flow, *FileCache) {
	t.Helper()

	config := &oauth2.Config{
		ClientID:     "test_client_id",
		ClientSecret: "test_client_secret",
		Endpoint: oauth2.Endpoint{
			AuthURL:  ep.server.URL + "/authorize",
			TokenURL: ep.server.URL + "/token",
		},
		Scopes: []string{"playlist-read-private"},
	}

	cache := NewFileCache(filepath.Join(t.TempDir(), "tokens.json"), nil)
	return NewFlow(config, cache, nil), cache
}

func TestFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("Token", func(t *testing.T) {
		t.Run("valid cached token skips the network", func(t *testing.T) {
			ep := newTokenEndpoint(t)
			flow, cache := newTestFlow(t, ep)

			saved := &TokenSet{
				AccessToken:  "cached_access",
				RefreshToken: "cached_refresh",
				ExpiresAt:    time.Now().Add(time.Hour).Unix(),
			}
			if err := cache.Save(saved); err != nil {
				t.Fatalf("failed to seed cache: %v", err)
			}

			tokens, err := flow.Token(ctx)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if tokens.AccessToken != "cached_access" {
				t.Errorf("expected cached token, got %s", tokens.AccessToken)
			}
			if calls := ep.calls.Load(); calls != 0 {
				t.Errorf("expected no token endpoint calls, got %d", calls)
			}
			if flow.State() != StateAuthorized {
				t.Errorf("expected authorized state, got %s", flow.State())
			}
		})

		t.Run("expired token triggers exactly one refresh", func(t *testing.T) {
			ep := newTokenEndpoint(t)
			flow, cache := newTestFlow(t, ep)

			saved := &TokenSet{
				AccessToken:  "stale_access",
				RefreshToken: "cached_refresh",
				ExpiresAt:    time.Now().Add(-time.Hour).Unix(),
			}
			if err := cache.Save(saved); err != nil {
				t.Fatalf("failed to seed cache: %v", err)
			}

			tokens, err := flow.Token(ctx)
			if err != nil {
				t.Fatalf("expected refresh to succeed, got %v", err)
			}
			if tokens.AccessToken != "refreshed_access" {
				t.Errorf("expected refreshed token, got %s", tokens.AccessToken)
			}
			if tokens.RefreshToken != "rotated_refresh" {
				t.Errorf("expected rotated refresh token, got %s", tokens.RefreshToken)
			}
			if calls := ep.calls.Load(); calls != 1 {
				t.Errorf("expected exactly 1 token endpoint call, got %d", calls)
			}

			loaded, err := cache.Load()
			if err != nil {
				t.Fatalf("failed to load cache: %v", err)
			}
			if loaded == nil || loaded.AccessToken != "refreshed_access" {
				t.Error("expected refreshed tokens to be persisted")
			}
		})

		t.Run("no cached token and no login func", func(t *testing.T) {
			ep := newTokenEndpoint(t)
			flow, _ := newTestFlow(t, ep)

			_, err := flow.Token(ctx)
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
			if flow.State() != StateNoToken {
				t.Errorf("expected no_token state, got %s", flow.State())
			}
		})

		t.Run("falls back to login when refresh is rejected", func(t *testing.T) {
			ep := newTokenEndpoint(t)
			ep.status = http.StatusBadRequest
			ep.body = `{"error": "invalid_grant", "error_description": "Refresh token revoked"}`
			flow, cache := newTestFlow(t, ep)

			saved := &TokenSet{
				AccessToken:  "stale_access",
				RefreshToken: "revoked_refresh",
				ExpiresAt:    time.Now().Add(-time.Hour).Unix(),
			}
			if err := cache.Save(saved); err != nil {
				t.Fatalf("failed to seed cache: %v", err)
			}

			loginCalled := false
			flow.SetLoginFunc(func(ctx context.Context, config *oauth2.Config, state string) (*oauth2.Token, error) {
				loginCalled = true
				return &oauth2.Token{
					AccessToken: "fresh_access",
					Expiry:      time.Now().Add(time.Hour),
				}, nil
			})

			tokens, err := flow.Token(ctx)
			if err != nil {
				t.Fatalf("expected login fallback to succeed, got %v", err)
			}
			if !loginCalled {
				t.Error("expected login func to be invoked")
			}
			if tokens.AccessToken != "fresh_access" {
				t.Errorf("expected fresh token, got %s", tokens.AccessToken)
			}
		})

		t.Run("surfaces provider outage without forcing reauth", func(t *testing.T) {
			ep := newTokenEndpoint(t)
			ep.status = http.StatusInternalServerError
			ep.body = `{"error": "server_error"}`
			flow, cache := newTestFlow(t, ep)

			saved := &TokenSet{
				AccessToken:  "stale_access",
				RefreshToken: "cached_refresh",
				ExpiresAt:    time.Now().Add(-time.Hour).Unix(),
			}
			if err := cache.Save(saved); err != nil {
				t.Fatalf("failed to seed cache: %v", err)
			}

			flow.SetLoginFunc(func(ctx context.Context, config *oauth2.Config, state string) (*oauth2.Token, error) {
				t.Error("login should not run on a transient refresh failure")
				return nil, nil
			})

			_, err := flow.Token(ctx)
			if !errors.Is(err, shared.ErrRefreshFailed) {
				t.Errorf("expected ErrRefreshFailed, got %v", err)
			}

			loaded, loadErr := cache.Load()
			if loadErr != nil {
				t.Fatalf("failed to load cache: %v", loadErr)
			}
			if loaded == nil {
				t.Error("cache should survive a transient refresh failure")
			}
		})
	})

	t.Run("Refresh", func(t *testing.T) {
		t.Run("no refresh token", func(t *testing.T) {
			ep := newTokenEndpoint(t)
			flow, _ := newTestFlow(t, ep)

			_, err := flow.Refresh(ctx)
			if !errors.Is(err, shared.ErrNoRefreshToken) {
				t.Errorf("expected ErrNoRefreshToken, got %v", err)
			}
		})

		t.Run("invalid_grant clears the cache", func(t *testing.T) {
			ep := newTokenEndpoint(t)
			ep.status = http.StatusBadRequest
			ep.body = `{"error": "invalid_grant"}`
			flow, cache := newTestFlow(t, ep)

			saved := &TokenSet{
				AccessToken:  "stale_access",
				RefreshToken: "revoked_refresh",
				ExpiresAt:    time.Now().Add(-time.Hour).Unix(),
			}
			if err := cache.Save(saved); err != nil {
				t.Fatalf("failed to seed cache: %v", err)
			}

			_, err := flow.Refresh(ctx)
			if !errors.Is(err, shared.ErrRefreshFailed) {
				t.Errorf("expected ErrRefreshFailed, got %v", err)
			}
			if flow.State() != StateNoToken {
				t.Errorf("expected no_token state after invalid_grant, got %s", flow.State())
			}

			loaded, loadErr := cache.Load()
			if loadErr != nil {
				t.Fatalf("failed to load cache: %v", loadErr)
			}
			if loaded != nil {
				t.Error("expected cache to be cleared after invalid_grant")
			}
		})
	})

	t.Run("Login", func(t *testing.T) {
		t.Run("persists tokens and defaults scope", func(t *testing.T) {
			ep := newTokenEndpoint(t)
			flow, cache := newTestFlow(t, ep)

			var gotState string
			flow.SetLoginFunc(func(ctx context.Context, config *oauth2.Config, state string) (*oauth2.Token, error) {
				gotState = state
				return &oauth2.Token{
					AccessToken:  "fresh_access",
					RefreshToken: "fresh_refresh",
					Expiry:       time.Now().Add(time.Hour),
				}, nil
			})

			tokens, err := flow.Login(ctx)
			if err != nil {
				t.Fatalf("expected login to succeed, got %v", err)
			}
			if gotState == "" {
				t.Error("expected a CSRF state to be generated")
			}
			if tokens.Scope != "playlist-read-private" {
				t.Errorf("expected scope to default to configured scopes, got %q", tokens.Scope)
			}
			if flow.State() != StateAuthorized {
				t.Errorf("expected authorized state, got %s", flow.State())
			}

			loaded, loadErr := cache.Load()
			if loadErr != nil {
				t.Fatalf("failed to load cache: %v", loadErr)
			}
			if loaded == nil || loaded.AccessToken != "fresh_access" {
				t.Error("expected tokens to be persisted after login")
			}
		})

		t.Run("login failure resets state", func(t *testing.T) {
			ep := newTokenEndpoint(t)
			flow, _ := newTestFlow(t, ep)

			flow.SetLoginFunc(func(ctx context.Context, config *oauth2.Config, state string) (*oauth2.Token, error) {
				return nil, errors.New("user closed browser")
			})

			_, err := flow.Login(ctx)
			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", err)
			}
			if flow.State() != StateNoToken {
				t.Errorf("expected no_token state, got %s", flow.State())
			}
		})
	})

	t.Run("Logout", func(t *testing.T) {
		ep := newTokenEndpoint(t)
		flow, cache := newTestFlow(t, ep)

		if err := cache.Save(&TokenSet{AccessToken: "access"}); err != nil {
			t.Fatalf("failed to seed cache: %v", err)
		}

		if err := flow.Logout(); err != nil {
			t.Fatalf("logout failed: %v", err)
		}
		if flow.State() != StateNoToken {
			t.Errorf("expected no_token state, got %s", flow.State())
		}

		loaded, err := cache.Load()
		if err != nil {
			t.Fatalf("failed to load cache: %v", err)
		}
		if loaded != nil {
			t.Error("expected cache to be cleared on logout")
		}
	})
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateNoToken:     "no_token",
		StateAuthorizing: "authorizing",
		StateAuthorized:  "authorized",
		StateExpired:     "expired",
		StateRefreshing:  "refreshing",
		State(99):        "unknown",
	}

	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
