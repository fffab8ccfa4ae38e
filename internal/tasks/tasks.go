package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/NinoBlz/dzx/internal/services"
	"github.com/NinoBlz/dzx/internal/shared"
	"golang.org/x/time/rate"
)

// searchInterval paces destination search calls so long playlists don't trip
// the platforms' rate limits.
const searchInterval = 100 * time.Millisecond

// Status is the terminal state of a conversion.
type Status int

const (
	// StatusDone means the destination playlist was created and every
	// resolved track was added.
	StatusDone Status = iota
	// StatusAborted means no destination playlist was created: the source
	// was empty or no track resolved.
	StatusAborted
	// StatusPartial means the playlist was created but adding tracks failed;
	// the report still carries the playlist ID.
	StatusPartial
)

func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusAborted:
		return "aborted"
	case StatusPartial:
		return "partial"
	default:
		return ""
	}
}

// ConversionReport contains all data from a full conversion run.
type ConversionReport struct {
	Status        Status                  // Terminal state of the run
	SourceName    string                  // Source service name
	DestName      string                  // Destination service name
	PlaylistID    string                  // Created destination playlist ID ("" when aborted)
	PlaylistName  string                  // Destination playlist name
	Matches       []services.MatchResult  // Per-track match outcomes, in source order
	TotalTracks   int                     // Tracks in the source playlist
	ResolvedCount int                     // Tracks added to the destination
	Unresolved    []string                // "Artist - Title" for each unresolved track
	FallbackCount int                     // Resolved tracks that used the first-result fallback
}

// MatchPercentage returns the resolved share as a percentage.
func (r *ConversionReport) MatchPercentage() float64 {
	if r.TotalTracks == 0 {
		return 0
	}
	return float64(r.ResolvedCount) / float64(r.TotalTracks) * 100
}

// ConversionEngine defines operations for converting playlists between services.
type ConversionEngine interface {
	// Convert performs a full source → destination conversion: fetches the
	// source playlist's tracks, resolves each against the destination
	// catalog, and creates the destination playlist with the resolved IDs.
	Convert(ctx context.Context, progress chan<- ProgressUpdate, source, dest services.Service, sourceID, destName string) (*ConversionReport, error)
}

// PlaylistEngine implements ConversionEngine.
//
// A rate limiter spaces out destination searches; everything else is driven
// by the two services.
type PlaylistEngine struct {
	limiter *rate.Limiter
}

// NewPlaylistEngine creates a new PlaylistEngine.
func NewPlaylistEngine() *PlaylistEngine {
	return &PlaylistEngine{
		limiter: rate.NewLimiter(rate.Every(searchInterval), 1),
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Convert performs a full playlist conversion.
//
// An empty source playlist aborts the run without creating anything and
// without error. If every search misses, the run likewise aborts. A playlist
// that was created but could not be filled yields StatusPartial with the
// playlist ID kept in the report.
func (e *PlaylistEngine) Convert(ctx context.Context, progress chan<- ProgressUpdate, source, dest services.Service, sourceID, destName string) (*ConversionReport, error) {
	if source == nil || dest == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}

	report := &ConversionReport{
		SourceName: source.Name(),
		DestName:   dest.Name(),
	}

	e.sendProgress(progress, fetchSourceUpdate(source.Name()))

	tracks, err := source.GetPlaylistTracks(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	report.TotalTracks = len(tracks)
	e.sendProgress(progress, foundTracksUpdate(len(tracks)))

	if len(tracks) == 0 {
		report.Status = StatusAborted
		return report, nil
	}

	matches := make([]services.MatchResult, 0, len(tracks))
	trackIDs := make([]string, 0, len(tracks))

	for i, track := range tracks {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		e.sendProgress(progress, searchTrackUpdate(i+1, len(tracks), track))

		match := services.MatchTrack(ctx, dest, track)
		matches = append(matches, match)

		if match.Match != nil {
			trackIDs = append(trackIDs, match.Match.ID)
			report.ResolvedCount++
			if match.Confidence == services.MatchFallback {
				report.FallbackCount++
			}
		} else {
			report.Unresolved = append(report.Unresolved, fmt.Sprintf("%s - %s", track.Artist, track.Title))
		}

		e.sendProgress(progress, matchResultUpdate(i+1, len(tracks), match))
	}

	report.Matches = matches

	if len(trackIDs) == 0 {
		report.Status = StatusAborted
		return report, nil
	}

	if destName == "" {
		destName = fmt.Sprintf("From %s - %d", source.Name(), time.Now().Unix())
	}
	report.PlaylistName = destName

	e.sendProgress(progress, createPlaylistUpdate(destName))

	playlistID, err := dest.CreatePlaylist(ctx, destName, trackIDs)
	report.PlaylistID = playlistID
	if err != nil {
		if playlistID != "" {
			report.Status = StatusPartial
			return report, err
		}
		return nil, err
	}

	report.Status = StatusDone
	e.sendProgress(progress, playlistCreatedUpdate(destName, playlistID))
	return report, nil
}
