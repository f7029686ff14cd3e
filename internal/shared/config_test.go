package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Credentials.Spotify.RedirectURI == "" {
			t.Error("expected a default redirect URI")
		}
		if len(config.Credentials.Spotify.Scopes) == 0 {
			t.Error("expected default scopes")
		}
		if config.Server.Port == 0 {
			t.Error("expected a default server port")
		}
		if config.Database.Path == "" {
			t.Error("expected a default database path")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		t.Run("valid file", func(t *testing.T) {
			t.Setenv("SPOTIFY_CLIENT_ID", "")
			t.Setenv("SPOTIFY_CLIENT_SECRET", "")
			t.Setenv("SPOTIFY_REDIRECT_URI", "")
			t.Setenv("SPOTIFY_SCOPES", "")

			path := filepath.Join(t.TempDir(), "config.toml")
			content := `
[credentials.spotify]
client_id = "file_client_id"
client_secret = "file_client_secret"
redirect_uri = "http://127.0.0.1:9999/cb"
scopes = ["playlist-read-private"]

[server]
host = "127.0.0.1"
port = 9999

[database]
path = "test.db"
max_open_conns = 5
max_idle_conns = 2
`
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			config, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("failed to load config: %v", err)
			}

			if config.Credentials.Spotify.ClientID != "file_client_id" {
				t.Errorf("unexpected client_id: %s", config.Credentials.Spotify.ClientID)
			}
			if config.Server.Port != 9999 {
				t.Errorf("unexpected port: %d", config.Server.Port)
			}
			if config.Database.MaxOpenConns != 5 {
				t.Errorf("unexpected max_open_conns: %d", config.Database.MaxOpenConns)
			}
		})

		t.Run("missing file", func(t *testing.T) {
			if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
				t.Error("expected error for missing config file")
			}
		})

		t.Run("invalid toml", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.toml")
			if err := os.WriteFile(path, []byte("not [valid toml"), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			if _, err := LoadConfig(path); err == nil {
				t.Error("expected error for invalid TOML")
			}
		})
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("SPOTIFY_CLIENT_ID", "env_client_id")
		t.Setenv("SPOTIFY_CLIENT_SECRET", "env_client_secret")
		t.Setenv("SPOTIFY_REDIRECT_URI", "http://127.0.0.1:4321/callback")
		t.Setenv("SPOTIFY_SCOPES", "scope-one scope-two")

		config := DefaultConfig()

		if config.Credentials.Spotify.ClientID != "env_client_id" {
			t.Errorf("expected env client_id, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Credentials.Spotify.ClientSecret != "env_client_secret" {
			t.Errorf("expected env client_secret, got %s", config.Credentials.Spotify.ClientSecret)
		}
		if config.Credentials.Spotify.RedirectURI != "http://127.0.0.1:4321/callback" {
			t.Errorf("expected env redirect_uri, got %s", config.Credentials.Spotify.RedirectURI)
		}
		if len(config.Credentials.Spotify.Scopes) != 2 || config.Credentials.Spotify.Scopes[1] != "scope-two" {
			t.Errorf("expected env scopes, got %v", config.Credentials.Spotify.Scopes)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		valid := SpotifyConfig{ClientID: "id", ClientSecret: "secret"}
		if err := valid.Validate(); err != nil {
			t.Errorf("expected valid credentials, got %v", err)
		}

		missing := SpotifyConfig{ClientID: "id"}
		if err := missing.Validate(); err == nil {
			t.Error("expected error for missing client_secret")
		}

		blank := SpotifyConfig{ClientID: "  ", ClientSecret: "secret"}
		if err := blank.Validate(); err == nil {
			t.Error("expected error for whitespace client_id")
		}
	})

	t.Run("Map", func(t *testing.T) {
		sc := SpotifyConfig{
			ClientID:     "id",
			ClientSecret: "secret",
			RedirectURI:  "http://127.0.0.1:8000/callback",
			Scopes:       []string{"a", "b"},
		}

		m := sc.Map()
		if m["client_id"] != "id" {
			t.Errorf("unexpected client_id: %s", m["client_id"])
		}
		if m["scopes"] != "a b" {
			t.Errorf("expected space-joined scopes, got %s", m["scopes"])
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := LoadConfig(path); err != nil {
			t.Errorf("created config should parse: %v", err)
		}

		if err := CreateConfigFile(path); err == nil {
			t.Error("expected error when config already exists")
		}
	})

	t.Run("SaveConfig round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		original := DefaultConfig()
		original.Credentials.Spotify.ClientID = "saved_id"

		if err := SaveConfig(path, original); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}
		if loaded.Credentials.Spotify.ClientID != "saved_id" {
			t.Errorf("expected saved client_id, got %s", loaded.Credentials.Spotify.ClientID)
		}
	})
}
