package main

import (
	"context"
	"fmt"

	"github.com/NinoBlz/dzx/internal/formatter"
	"github.com/NinoBlz/dzx/internal/services"
	"github.com/NinoBlz/dzx/internal/shared"
	"github.com/NinoBlz/dzx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ConvertRun runs a full playlist conversion between the two services.
func (r *Runner) ConvertRun(ctx context.Context, cmd *cli.Command) error {
	sourceName := cmd.String("from")
	sourceID := cmd.String("id")
	destName := cmd.String("name")

	source, err := r.resolveService(sourceName)
	if err != nil {
		return err
	}
	dest, err := r.resolveService(otherService(sourceName))
	if err != nil {
		return err
	}

	return r.runConversion(ctx, cmd, source, dest, sourceID, destName)
}

// ConvertURL converts the playlist referenced by a Spotify or Deezer URL.
//
// Accepts open.spotify.com and www.deezer.com playlist links, spotify:
// playlist URIs, and link.deezer.com short links (resolved via redirect).
func (r *Runner) ConvertURL(ctx context.Context, cmd *cli.Command) error {
	rawURL := cmd.StringArg("url")
	destName := cmd.String("name")

	if rawURL == "" {
		return fmt.Errorf("%w: url argument is required", shared.ErrMissingArgument)
	}

	ref, err := shared.ParsePlaylistURL(rawURL, r.httpClient)
	if err != nil {
		return err
	}

	r.logger.Info("parsed playlist URL", "service", ref.Service, "id", ref.ID)

	source, err := r.resolveService(ref.Service)
	if err != nil {
		return err
	}
	dest, err := r.resolveService(otherService(ref.Service))
	if err != nil {
		return err
	}

	return r.runConversion(ctx, cmd, source, dest, ref.ID, destName)
}

// runConversion authenticates both services, runs the engine with live
// progress output, and prints the final report.
func (r *Runner) runConversion(ctx context.Context, cmd *cli.Command, source, dest services.Service, sourceID, destName string) error {
	useJSON := cmd.Bool("json")

	for _, svc := range []services.Service{source, dest} {
		if err := r.authenticateFromConfig(ctx, svc, r.credentialsFor(svc)); err != nil {
			return err
		}
	}

	r.logger.Info("starting conversion", "source", source.Name(), "dest", dest.Name(), "playlist", sourceID)
	r.writePlain("Converting %s playlist %s to %s...\n\n", source.Name(), sourceID, dest.Name())

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchSource:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.SearchTracks:
				r.writePlain("   %s\n", update.Message)
			case tasks.CreatePlaylist:
				r.writePlain("\n📝 %s\n", update.Message)
			}
		}
	}()

	report, err := r.engine.Convert(ctx, progressCh, source, dest, sourceID, destName)
	close(progressCh)
	<-done

	if err != nil && report == nil {
		return err
	}
	if err != nil {
		r.logger.Warn("conversion finished with errors", "error", err)
	}

	if useJSON {
		return r.writeJSON(report, cmd.Bool("pretty"))
	}

	r.writePlain("\n")
	r.writePlainHeader("Conversion Report")
	return r.writePlain("%s", formatter.ReportToText(report))
}
