// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output raw JSON",
	}
}

func prettyFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "pretty",
		Usage: "Pretty-print output",
	}
}

func userFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "user",
		Aliases: []string{"u"},
		Usage:   "Email address of the playlist owner",
		Sources: cli.EnvVars("TRACKLIST_USER"),
	}
}

// setupCommand handles database setup and migrations.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create config if missing, initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
			{
				Name:   "status",
				Usage:  "List migrations and whether they have been applied",
				Flags:  []cli.Flag{jsonFlag(), prettyFlag()},
				Action: r.SetupStatus,
			},
		},
	}
}

// serveCommand runs the HTTP server.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// userCommand manages accounts.
func userCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "user",
		Aliases: []string{"users"},
		Usage:   "Manage user accounts",
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Create a user account",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "username"},
					&cli.StringArg{Name: "email"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Sources:  cli.EnvVars("TRACKLIST_PASSWORD"),
						Required: true,
					},
				},
				Action: r.UserRegister,
			},
			{
				Name:   "list",
				Usage:  "List user accounts",
				Flags:  []cli.Flag{jsonFlag(), prettyFlag()},
				Action: r.UserList,
			},
		},
	}
}

// lastfmCommand handles Last.fm lookups.
func lastfmCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "lastfm",
		Aliases: []string{"fm"},
		Usage:   "Look up charts, artists and tracks on Last.fm",
		Commands: []*cli.Command{
			{
				Name:   "top",
				Usage:  "Show the top tracks for the configured country",
				Flags:  []cli.Flag{jsonFlag(), prettyFlag()},
				Action: r.LastFMTop,
			},
			{
				Name:  "artist",
				Usage: "Show an artist's biography and similar artists",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags:  []cli.Flag{jsonFlag(), prettyFlag()},
				Action: r.LastFMArtist,
			},
			{
				Name:  "track",
				Usage: "Show a track's summary and album art",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "title"},
					&cli.StringArg{Name: "artist"},
				},
				Flags:  []cli.Flag{jsonFlag(), prettyFlag()},
				Action: r.LastFMTrack,
			},
		},
	}
}

// playlistCommand handles playlist operations for one owner.
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Manage a user's playlists",
		Flags:   []cli.Flag{userFlag()},
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Action: r.PlaylistCreate,
			},
			{
				Name:   "list",
				Usage:  "List playlists",
				Flags:  []cli.Flag{jsonFlag(), prettyFlag()},
				Action: r.PlaylistList,
			},
			{
				Name:  "tracks",
				Usage: "List the tracks in a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags:  []cli.Flag{jsonFlag(), prettyFlag()},
				Action: r.PlaylistTracks,
			},
			{
				Name:  "add",
				Usage: "Add a track to a playlist with a rating",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "title"},
					&cli.StringArg{Name: "artist"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "playlist",
						Usage:    "Playlist name",
						Required: true,
					},
					&cli.IntFlag{
						Name:     "rating",
						Aliases:  []string{"r"},
						Usage:    "Rating from 1 to 10",
						Required: true,
					},
				},
				Action: r.PlaylistAdd,
			},
			{
				Name:  "delete",
				Usage: "Delete a playlist by name",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Action: r.PlaylistDelete,
			},
			{
				Name:  "rate",
				Usage: "Overwrite the rating of a known track",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "title"},
					&cli.StringArg{Name: "rating"},
				},
				Action: r.PlaylistRate,
			},
			{
				Name:  "export",
				Usage: "Export one playlist to a file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					formatFlag(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
						Value:   ".",
					},
					&cli.BoolFlag{
						Name:  "cover",
						Usage: "Download album art for Markdown exports",
					},
				},
				Action: r.PlaylistExport,
			},
			{
				Name:  "seed",
				Usage: "Fill a playlist from the Last.fm top tracks chart",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "rating",
						Aliases: []string{"r"},
						Usage:   "Rating given to every charted track",
						Value:   5,
					},
				},
				Action: r.PlaylistSeed,
			},
		},
	}
}

// exportCommand runs a bulk export of every playlist a user owns.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export all of a user's playlists concurrently",
		Flags: []cli.Flag{
			userFlag(),
			formatFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory (default: tracklist_export_{epoch})",
			},
			&cli.StringSliceFlag{
				Name:  "playlist",
				Usage: "Only export these playlist IDs",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of concurrent workers",
				Value: 5,
			},
			&cli.BoolFlag{
				Name:  "covers",
				Usage: "Download album art for Markdown exports",
			},
		},
		Action: r.Export,
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Browse, export and delete playlists interactively",
		Flags: []cli.Flag{
			userFlag(),
			formatFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory for exports started from the TUI",
				Value:   "exports",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Log file used while the TUI owns the terminal",
				Value: "./tmp/tracklist-tui.log",
			},
		},
		Action: r.TUI,
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Export format: json, csv, markdown, txt",
		Value:   "json",
	}
}
