// package services defines interface Service for interacting with HTTP APIs
//
// Spotify, Deezer
package services

import (
	"context"

	"golang.org/x/oauth2"
)

// Service defines the capability set shared by music catalog providers
// (Spotify, Deezer): playlist listing, track enumeration, search, and
// playlist creation.
type Service interface {
	// Authenticate performs token-based authentication with the service.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// GetPlaylists retrieves all playlists for the authenticated user,
	// traversing every page.
	GetPlaylists(ctx context.Context) ([]Playlist, error)

	// GetPlaylistTracks retrieves every track in a playlist, traversing every
	// page. A failure on a page after the first truncates the result rather
	// than discarding already-fetched tracks.
	GetPlaylistTracks(ctx context.Context, playlistID string) ([]Track, error)

	// SearchTrack searches the catalog for a track by title and artist,
	// returning up to 5 candidates in relevance order. A miss or a failed
	// search yields an empty slice, not an error.
	SearchTrack(ctx context.Context, title, artist string) ([]Track, error)

	// CreatePlaylist creates a playlist and adds the given native track IDs
	// in order, returning the new playlist's ID. A failure adding tracks
	// after the playlist was created returns the ID alongside
	// [shared.ErrTracksNotAdded].
	CreatePlaylist(ctx context.Context, name string, trackIDs []string) (string, error)

	// Name returns the name of the service (e.g., "Spotify", "Deezer")
	Name() string
}

// OAuthService extends Service for providers using the authorization-code flow.
type OAuthService interface {
	Service

	// GetAuthURL returns the user consent URL embedding the client identifier,
	// redirect URI, scope, and code response type.
	GetAuthURL(state string) string

	// ExchangeCode exchanges an authorization code for an access token and
	// authenticates the service with it.
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
}

// Playlist represents a music playlist from any service
type Playlist struct {
	ID          string
	Name        string
	Description string
	TrackCount  int
	Public      bool
}

// Track represents a music track from any service.
//
// ID is the platform-native identifier and is meaningful only to the Service
// that produced it; it must never be passed to a different platform's client.
type Track struct {
	ID       string
	Title    string
	Artist   string
	Album    string
	Duration int // Duration in seconds
}
