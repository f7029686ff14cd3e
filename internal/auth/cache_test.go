package auth

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestFileCache(t *testing.T) {
	newCache := func(t *testing.T) *FileCache {
		t.Helper()
		return NewFileCache(filepath.Join(t.TempDir(), "tokens.json"), nil)
	}

	t.Run("Load", func(t *testing.T) {
		t.Run("missing file", func(t *testing.T) {
			cache := newCache(t)

			tokens, err := cache.Load()
			if err != nil {
				t.Fatalf("expected no error for missing file, got %v", err)
			}
			if tokens != nil {
				t.Error("expected nil tokens for missing file")
			}
		})

		t.Run("corrupt file", func(t *testing.T) {
			cache := newCache(t)
			if err := os.WriteFile(cache.Path(), []byte("{not json"), 0600); err != nil {
				t.Fatalf("failed to write corrupt file: %v", err)
			}

			tokens, err := cache.Load()
			if err != nil {
				t.Fatalf("expected corruption to be non-fatal, got %v", err)
			}
			if tokens != nil {
				t.Error("expected nil tokens for corrupt file")
			}
		})
	})

	t.Run("Save and Load round trip", func(t *testing.T) {
		cache := newCache(t)
		original := &TokenSet{
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresAt:    time.Now().Add(time.Hour).Unix(),
			Scope:        "playlist-read-private user-read-email",
		}

		if err := cache.Save(original); err != nil {
			t.Fatalf("failed to save tokens: %v", err)
		}

		loaded, err := cache.Load()
		if err != nil {
			t.Fatalf("failed to load tokens: %v", err)
		}
		if loaded == nil {
			t.Fatal("expected tokens to be loaded")
		}

		if loaded.AccessToken != original.AccessToken {
			t.Errorf("access token mismatch: %s != %s", loaded.AccessToken, original.AccessToken)
		}
		if loaded.RefreshToken != original.RefreshToken {
			t.Errorf("refresh token mismatch: %s != %s", loaded.RefreshToken, original.RefreshToken)
		}
		if loaded.ExpiresAt != original.ExpiresAt {
			t.Errorf("expiry mismatch: %d != %d", loaded.ExpiresAt, original.ExpiresAt)
		}
		if loaded.Scope != original.Scope {
			t.Errorf("scope mismatch: %s != %s", loaded.Scope, original.Scope)
		}
	})

	t.Run("Save", func(t *testing.T) {
		t.Run("refuses empty token set", func(t *testing.T) {
			cache := newCache(t)

			if err := cache.Save(nil); err == nil {
				t.Error("expected error saving nil token set")
			}
			if err := cache.Save(&TokenSet{RefreshToken: "refresh"}); err == nil {
				t.Error("expected error saving token set without access token")
			}
		})

		t.Run("creates parent directory", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "dir", "tokens.json")
			cache := NewFileCache(path, nil)

			if err := cache.Save(&TokenSet{AccessToken: "access"}); err != nil {
				t.Fatalf("failed to save with nested path: %v", err)
			}
			if _, err := os.Stat(path); err != nil {
				t.Errorf("expected cache file to exist: %v", err)
			}
		})

		t.Run("restricts file permissions", func(t *testing.T) {
			if runtime.GOOS == "windows" {
				t.Skip("unix permissions only")
			}

			cache := newCache(t)
			if err := cache.Save(&TokenSet{AccessToken: "access"}); err != nil {
				t.Fatalf("failed to save tokens: %v", err)
			}

			info, err := os.Stat(cache.Path())
			if err != nil {
				t.Fatalf("failed to stat cache file: %v", err)
			}
			if perm := info.Mode().Perm(); perm != 0600 {
				t.Errorf("expected 0600 permissions, got %o", perm)
			}
		})
	})

	t.Run("Clear", func(t *testing.T) {
		cache := newCache(t)
		if err := cache.Save(&TokenSet{AccessToken: "access"}); err != nil {
			t.Fatalf("failed to save tokens: %v", err)
		}

		if err := cache.Clear(); err != nil {
			t.Fatalf("failed to clear cache: %v", err)
		}

		tokens, err := cache.Load()
		if err != nil {
			t.Fatalf("load after clear failed: %v", err)
		}
		if tokens != nil {
			t.Error("expected no tokens after clear")
		}

		t.Run("idempotent", func(t *testing.T) {
			if err := cache.Clear(); err != nil {
				t.Errorf("clearing an empty cache should not fail: %v", err)
			}
		})
	})
}
