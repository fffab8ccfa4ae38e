// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// spotifyCommand handles Spotify operations
func spotifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Spotify playlist operations",
		Commands: []*cli.Command{
			{
				Name:   "auth",
				Usage:  "Authenticate with Spotify using OAuth2",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SpotifyAuth,
			},
			{
				Name:  "playlists",
				Usage: "List Spotify playlists",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of playlists to return",
						Value: 50,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.SpotifyPlaylists,
			},
			{
				Name:  "tracks",
				Usage: "List tracks in a Spotify playlist",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Playlist ID",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
					&cli.StringFlag{
						Name:  "csv",
						Usage: "Write tracks to a CSV file (default: {id}_tracks.csv)",
					},
				},
				Action: r.SpotifyTracks,
			},
		},
	}
}

// deezerCommand handles Deezer operations
func deezerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "deezer",
		Aliases: []string{"dz"},
		Usage:   "Deezer playlist operations",
		Commands: []*cli.Command{
			{
				Name:   "auth",
				Usage:  "Authenticate with Deezer using OAuth2",
				Flags:  []cli.Flag{configFlag()},
				Action: r.DeezerAuth,
			},
			{
				Name:   "auth-url",
				Usage:  "Print the Deezer consent URL for manual authorization",
				Action: r.DeezerAuthURL,
			},
			{
				Name:  "token",
				Usage: "Validate and store a manually obtained access token",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "token"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.DeezerToken,
			},
			{
				Name:  "playlists",
				Usage: "List Deezer playlists",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of playlists to return",
						Value: 50,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.DeezerPlaylists,
			},
		},
	}
}

// convertCommand handles playlist conversion operations
func convertCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "Convert playlists between services",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Convert a playlist by ID",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "from",
						Usage:    "Source service (spotify or deezer)",
						Value:    "spotify",
						Required: false,
					},
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Source playlist ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Destination playlist name (default: \"From <Service> - <timestamp>\")",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output report as JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
						Value: true,
					},
				},
				Action: r.ConvertRun,
			},
			{
				Name:  "url",
				Usage: "Convert the playlist referenced by a Spotify or Deezer URL",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "url"},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "name",
						Usage: "Destination playlist name (default: \"From <Service> - <timestamp>\")",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output report as JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
						Value: true,
					},
				},
				Action: r.ConvertURL,
			},
		},
	}
}

// setupCommand handles configuration bootstrap.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Create a config.toml from the embedded template",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist conversion.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for playlist conversion",
		Action:  r.TUI,
	}
}
