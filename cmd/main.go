package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/sptx/internal/auth"
	"github.com/desertthunder/sptx/internal/services"
	"github.com/desertthunder/sptx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
	}

	var flow *auth.Flow
	var cache *auth.FileCache
	var spotifyService services.Service

	oauthConfig, err := services.NewOAuthConfig(config.Credentials.Spotify.Map())
	if err == nil {
		cachePath := config.Cache.TokenPath
		if cachePath == "" {
			cachePath = auth.DefaultCachePath()
		}

		cache = auth.NewFileCache(cachePath, logger)
		flow = auth.NewFlow(oauthConfig, cache, logger)
		spotifyService = services.NewSpotifyService(flow, nil, logger)
	} else {
		logger.Debug("Spotify credentials not configured", "error", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Flow:    flow,
		Cache:   cache,
		Spotify: spotifyService,
		Logger:  logger,
	})

	if flow != nil {
		flow.SetLoginFunc(runner.doOAuth)
	}

	app := &cli.Command{
		Name:     "sptx",
		Usage:    "Spotify playlist and track operations from the terminal",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
