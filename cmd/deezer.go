package main

import (
	"context"
	"fmt"

	"github.com/NinoBlz/dzx/internal/formatter"
	"github.com/NinoBlz/dzx/internal/services"
	"github.com/NinoBlz/dzx/internal/shared"
	"github.com/urfave/cli/v3"
)

// DeezerAuth performs the OAuth2 authorization-code flow for Deezer.
func (r *Runner) DeezerAuth(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if config.Credentials.Deezer.AppID == "" || config.Credentials.Deezer.AppSecret == "" {
		return fmt.Errorf("%w: Deezer app_id and app_secret must be set in config.toml", shared.ErrMissingCredentials)
	}

	deezerService := services.NewDeezerService(config.Credentials.Deezer.Map())
	deezerService.SetLogger(shared.WithLogger(r.logger, "service", "deezer"))

	token, err := r.doOAuth(ctx, deezerService, config.Credentials.Deezer.RedirectURI, "Deezer")
	if err != nil {
		return err
	}

	r.logger.Info("verifying deezer access token")
	if err := deezerService.Authenticate(ctx, map[string]string{"access_token": token.AccessToken}); err != nil {
		return err
	}

	config.Credentials.Deezer.AccessToken = token.AccessToken
	if err := shared.SaveConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.config = config
	r.deezer = deezerService

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Token saved to %s\n\n", configPath)
	r.writePlain("You can now use: dzx deezer playlists\n")

	return nil
}

// DeezerAuthURL prints the Deezer consent URL for manual authorization.
//
// Useful on headless machines where no browser can be opened; the resulting
// token is fed back with 'dzx deezer token'.
func (r *Runner) DeezerAuthURL(ctx context.Context, cmd *cli.Command) error {
	if r.config.Credentials.Deezer.AppID == "" {
		return fmt.Errorf("%w: Deezer app_id must be set in config.toml", shared.ErrMissingCredentials)
	}

	deezerService := services.NewDeezerService(r.config.Credentials.Deezer.Map())

	r.writePlain("Open this URL in your browser to authorize:\n\n%s\n", deezerService.GetAuthURL(""))
	return nil
}

// DeezerToken stores a manually obtained access token after validating it.
func (r *Runner) DeezerToken(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	accessToken := cmd.StringArg("token")

	if accessToken == "" {
		return fmt.Errorf("%w: token argument is required", shared.ErrMissingArgument)
	}

	deezerService := services.NewDeezerService(r.config.Credentials.Deezer.Map())
	deezerService.SetLogger(shared.WithLogger(r.logger, "service", "deezer"))

	r.logger.Info("validating deezer access token")
	if err := deezerService.Authenticate(ctx, map[string]string{"access_token": accessToken}); err != nil {
		return err
	}

	r.config.Credentials.Deezer.AccessToken = accessToken
	if err := shared.SaveConfig(configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.deezer = deezerService

	r.writePlain("✓ Token validated and saved to %s\n", configPath)
	return nil
}

// DeezerPlaylists lists Deezer playlists with optional limit.
func (r *Runner) DeezerPlaylists(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if r.deezer == nil {
		return fmt.Errorf("%w: Deezer service not initialized", shared.ErrServiceUnavailable)
	}

	if err := r.authenticateFromConfig(ctx, r.deezer, r.config.Credentials.Deezer.Map()); err != nil {
		return err
	}

	r.logger.Infof("listing deezer playlists with limit %v", limit)

	playlists, err := r.deezer.GetPlaylists(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if limit > 0 && limit < len(playlists) {
		playlists = playlists[:limit]
	}

	if useJSON {
		return r.writeJSON(playlists, pretty)
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	return r.writePlain("%s", formatter.PlaylistsToText(playlists))
}
