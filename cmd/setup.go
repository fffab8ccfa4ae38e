package main

import (
	"context"

	"github.com/NinoBlz/dzx/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig creates a config.toml from the embedded template.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", configPath)

	r.writePlain("✓ Config file created at %s\n\n", configPath)
	r.writePlain("Next steps:\n")
	r.writePlain("1. Add your Spotify client_id and client_secret (https://developer.spotify.com/dashboard)\n")
	r.writePlain("2. Add your Deezer app_id and app_secret (https://developers.deezer.com/myapps)\n")
	r.writePlain("3. Run 'dzx spotify auth' and 'dzx deezer auth'\n")

	return nil
}
