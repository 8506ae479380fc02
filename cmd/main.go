package main

import (
	"context"
	"database/sql"
	"os"

	"github.com/avelara/portify/internal/catalog"
	"github.com/avelara/portify/internal/shared"
	"github.com/avelara/portify/internal/store"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	ctx := context.Background()

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}
	config.Migrate.Normalize()

	youtubeService := catalog.NewYouTubeService(config.Credentials.YouTube.ProxyURL)
	if config.Credentials.YouTube.AuthFile != "" {
		youtubeService.SetAuthFile(config.Credentials.YouTube.AuthFile)
	}

	// The destination stays nil until auth login has produced a token;
	// commands that need it report that themselves.
	var spotifyService catalog.Writer
	if svc, err := catalog.NewSpotifyService(ctx, config.Credentials.Spotify); err == nil {
		spotifyService = svc
	} else {
		logger.Debug("spotify service unavailable", "error", err)
	}

	var db *sql.DB
	var cache *store.SearchCache
	var runlog *store.RunLog
	if _, err := os.Stat(config.Database.Path); err == nil {
		if db, err = shared.NewDatabase(config.Database.Path); err == nil {
			shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
			cache = store.NewSearchCache(db)
			runlog = store.NewRunLog(db)
			defer db.Close()
		} else {
			logger.Warn("failed to open database", "error", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Source: youtubeService,
		Dest:   spotifyService,
		Cache:  cache,
		RunLog: runlog,
		DB:     db,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "portify",
		Usage:    "Migrate playlists from YouTube Music to Spotify",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(ctx, os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
