// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// migrateFlags are shared by the run and preview subcommands.
func migrateFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "source",
			Aliases:  []string{"s"},
			Usage:    "Source playlist URL or ID",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "name",
			Aliases: []string{"n"},
			Usage:   "Destination playlist name (default: source playlist name)",
		},
		&cli.StringFlag{
			Name:  "description",
			Usage: "Destination playlist description",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Concurrent search workers (max 10)",
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Candidates requested per search",
		},
		&cli.FloatFlag{
			Name:  "threshold",
			Usage: "Minimum acceptance score between 0 and 1",
		},
		&cli.BoolFlag{
			Name:  "no-cache",
			Usage: "Skip the local search cache",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output the report as JSON",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
		},
	}
}

// migrateCommand handles playlist migration operations
func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate playlists from YouTube Music to Spotify",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run a full playlist migration",
				Flags:  migrateFlags(),
				Action: r.MigrateRun,
			},
			{
				Name:   "preview",
				Usage:  "Match tracks without creating the destination playlist",
				Flags:  migrateFlags(),
				Action: r.MigratePreview,
			},
		},
	}
}

// authCommand handles Spotify authentication
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Spotify authentication commands",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authenticate with Spotify using OAuth2",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening a browser",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the stored Spotify token state",
				Action: r.AuthStatus,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// cacheCommand handles the local search cache and run history
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Search cache and run history operations",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show search cache statistics",
				Action: r.CacheStats,
			},
			{
				Name:   "clear",
				Usage:  "Delete all cached search results",
				Action: r.CacheClear,
			},
			{
				Name:  "runs",
				Usage: "List recent migration runs",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to show",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheRuns,
			},
		},
	}
}

// tuiCommand launches the interactive migration UI
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Run a migration with an interactive terminal UI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "source",
				Aliases:  []string{"s"},
				Usage:    "Source playlist URL or ID",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Destination playlist name (default: source playlist name)",
			},
		},
		Action: r.TUI,
	}
}
