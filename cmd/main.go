package main

import (
	"context"
	"os"

	"github.com/NinoBlz/dzx/internal/services"
	"github.com/NinoBlz/dzx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var spotifyService services.Service
	if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
		spotifyService = svc
	}

	deezerService := services.NewDeezerService(config.Credentials.Deezer.Map())

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Spotify: spotifyService,
		Deezer:  deezerService,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "dzx",
		Usage:    "Convert playlists between Spotify & Deezer",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
