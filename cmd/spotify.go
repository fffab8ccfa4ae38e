package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/NinoBlz/dzx/internal/formatter"
	"github.com/NinoBlz/dzx/internal/server"
	"github.com/NinoBlz/dzx/internal/services"
	"github.com/NinoBlz/dzx/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// authTimeout bounds how long the flow waits for the user to finish the
// consent screen before tearing the listener down.
const authTimeout = 5 * time.Minute

// SpotifyAuth performs the OAuth2 authorization-code flow for Spotify.
//
// Starts a local HTTP server, opens the browser for user authorization, and
// exchanges the auth code for tokens.
func (r *Runner) SpotifyAuth(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if config == nil {
		var err error
		if _, statErr := os.Stat(configPath); statErr == nil {
			config, err = shared.LoadConfig(configPath)
			if err != nil {
				r.logger.Warnf("failed to load config, using defaults %v", err)
				config = shared.DefaultConfig()
			}
		} else {
			config = shared.DefaultConfig()
		}
	}

	if config.Credentials.Spotify.ClientID == "" || config.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in config.toml", shared.ErrMissingCredentials)
	}

	spotifyService, err := services.NewSpotifyService(config.Credentials.Spotify.Map())
	if err != nil {
		return fmt.Errorf("failed to create Spotify service: %w", err)
	}
	spotifyService.SetLogger(shared.WithLogger(r.logger, "service", "spotify"))

	token, err := r.doOAuth(ctx, spotifyService, config.Credentials.Spotify.RedirectURI, "Spotify")
	if err != nil {
		return err
	}

	if err := config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}

	if err := shared.SaveConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.config = config
	r.spotify = spotifyService

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", configPath)
	r.writePlain("You can now use: dzx spotify playlists\n")

	return nil
}

// SpotifyPlaylists lists Spotify playlists with optional limit.
func (r *Runner) SpotifyPlaylists(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	if err := r.authenticateFromConfig(ctx, r.spotify, r.config.Credentials.Spotify.Map()); err != nil {
		return err
	}

	r.logger.Infof("listing spotify playlists with limit %v", limit)

	playlists, err := r.spotify.GetPlaylists(ctx)
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

// SpotifyTracks lists the tracks of a Spotify playlist, optionally exporting CSV.
func (r *Runner) SpotifyTracks(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.String("id")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")
	csvPath := cmd.String("csv")

	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	if err := r.authenticateFromConfig(ctx, r.spotify, r.config.Credentials.Spotify.Map()); err != nil {
		return err
	}

	tracks, err := r.spotify.GetPlaylistTracks(ctx, playlistID)
	if err != nil {
		return err
	}

	if cmd.IsSet("csv") {
		path, err := formatter.WriteTracksCSV(playlistID, tracks, csvPath)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Tracks exported to %s\n", path)
	}

	if useJSON {
		return r.writeJSON(tracks, pretty)
	}

	return r.writePlain("%s", formatter.TracksToText(playlistID, tracks))
}

// authenticateFromConfig wires cached credentials into a service before use.
func (r *Runner) authenticateFromConfig(ctx context.Context, svc services.Service, credentials map[string]string) error {
	if credentials["access_token"] == "" {
		return fmt.Errorf("%w: run 'dzx %s auth' first", shared.ErrNotAuthenticated, strings.ToLower(svc.Name()))
	}
	return svc.Authenticate(ctx, credentials)
}

// doOAuth executes the OAuth2 authorization-code flow with a local HTTP server.
//
// The listener is torn down on every exit path, including timeout and denial.
func (r *Runner) doOAuth(ctx context.Context, oauthSrv services.OAuthService, redirectURI, label string) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, err
	}

	callbackPath := "/callback"
	if parsed, err := url.Parse(redirectURI); err == nil && parsed.Path != "" {
		callbackPath = parsed.Path
	}

	authURL := oauthSrv.GetAuthURL(state)
	callbackHandler := server.NewCallbackHandler(callbackPath, state)
	router := server.NewBasicRouter()
	router.Handler(callbackHandler)

	httpServer := &http.Server{
		Addr:    r.config.Server.Addr(),
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth listener for %s at %v", label, httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("%w: %v", shared.ErrPortUnavailable, err)
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for %s authorization...\n", label)
	if err := r.openBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%s timeout)...\n", r.authTimeout)

	timeout := time.NewTimer(r.authTimeout)
	defer timeout.Stop()

	var result server.CallbackResult

	select {
	case result = <-callbackHandler.Result():
	case err := <-serverErrors:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timeout.C:
		return nil, fmt.Errorf("%w: no authorization after %s", shared.ErrTimeout, r.authTimeout)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	token, err := oauthSrv.ExchangeCode(ctx, result.Code)
	if err != nil {
		return nil, err
	}

	return token, nil
}
