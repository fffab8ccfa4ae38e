// Deezer API implementation of [Service]
//
// Deezer API response types based on https://developers.deezer.com/api
//
// Unlike Spotify, Deezer authenticates with an access_token query parameter,
// paginates via an absolute "next" link, and its token endpoint answers with
// a form-encoded key=value body rather than JSON.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/NinoBlz/dzx/internal/shared"
	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
)

const (
	deezerBaseURL  = "https://api.deezer.com"
	deezerAuthURL  = "https://connect.deezer.com/oauth/auth.php"
	deezerTokenURL = "https://connect.deezer.com/oauth/access_token.php"

	deezerPerms = "basic_access,email,offline_access,manage_library"
)

// DeezerUser represents a Deezer user profile.
type DeezerUser struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Country string `json:"country"`
}

// DeezerArtist represents an artist in Deezer responses.
type DeezerArtist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DeezerAlbum represents an album in Deezer responses.
type DeezerAlbum struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// DeezerTrack represents a track in Deezer responses.
type DeezerTrack struct {
	ID       int64        `json:"id"`
	Title    string       `json:"title"`
	Duration int          `json:"duration"`
	Artist   DeezerArtist `json:"artist"`
	Album    DeezerAlbum  `json:"album"`
}

// DeezerPlaylist represents a playlist in Deezer responses.
type DeezerPlaylist struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Public   bool   `json:"public"`
	NbTracks int    `json:"nb_tracks"`
}

// deezerPage is one page of a paginated Deezer collection. Next is an
// absolute URL, absent on the last page.
type deezerPage[T any] struct {
	Data  []T    `json:"data"`
	Total int    `json:"total"`
	Next  string `json:"next"`
}

// DeezerService implements the [Service] interface for Deezer API interactions.
type DeezerService struct {
	appID       string
	appSecret   string
	redirectURI string
	accessToken string
	baseURL     string
	authURL     string
	tokenURL    string
	httpClient  *http.Client
	logger      *log.Logger
}

// NewDeezerService creates a new Deezer service instance.
//
// app_id and app_secret are required only for the OAuth flow; fetching public
// playlists and searching work without credentials.
func NewDeezerService(credentials map[string]string) *DeezerService {
	redirectURI := credentials["redirect_uri"]
	if redirectURI == "" {
		redirectURI = "http://localhost:8080/deezer_callback"
	}

	return &DeezerService{
		appID:       credentials["app_id"],
		appSecret:   credentials["app_secret"],
		redirectURI: redirectURI,
		accessToken: credentials["access_token"],
		baseURL:     deezerBaseURL,
		authURL:     deezerAuthURL,
		tokenURL:    deezerTokenURL,
		httpClient:  http.DefaultClient,
		logger:      log.Default(),
	}
}

// SetLogger replaces the service's logger.
func (d *DeezerService) SetLogger(l *log.Logger) {
	if l != nil {
		d.logger = l
	}
}

func (d *DeezerService) Name() string {
	return "Deezer"
}

// Authenticate stores an access token after validating it against /user/me.
//
// Expects credentials["access_token"]; used for manual token entry and for
// tokens cached in the config file.
func (d *DeezerService) Authenticate(ctx context.Context, credentials map[string]string) error {
	accessToken, ok := credentials["access_token"]
	if !ok || accessToken == "" {
		return fmt.Errorf("%w: missing access_token", shared.ErrMissingCredentials)
	}

	d.accessToken = accessToken

	if _, err := d.UserProfile(ctx); err != nil {
		d.accessToken = ""
		return fmt.Errorf("%w: %v", shared.ErrInvalidCredentials, err)
	}

	return nil
}

// GetAuthURL returns the Deezer consent URL for the authorization-code flow.
func (d *DeezerService) GetAuthURL(state string) string {
	params := url.Values{}
	params.Set("app_id", d.appID)
	params.Set("redirect_uri", d.redirectURI)
	params.Set("perms", deezerPerms)
	params.Set("response_type", "code")
	if state != "" {
		params.Set("state", state)
	}
	return d.authURL + "?" + params.Encode()
}

// ExchangeCode exchanges an authorization code for an access token.
//
// Deezer's token endpoint takes app_id/secret/code query parameters and
// answers 200 with a body of the form "access_token=TOKEN&expires=SECONDS".
// A non-2xx response or a body missing the access_token field fails with
// [shared.ErrTokenExchange].
func (d *DeezerService) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	if d.appID == "" || d.appSecret == "" {
		return nil, fmt.Errorf("%w: app_id and app_secret required", shared.ErrMissingCredentials)
	}

	params := url.Values{}
	params.Set("app_id", d.appID)
	params.Set("secret", d.appSecret)
	params.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.tokenURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTokenExchange, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTokenExchange, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", shared.ErrTokenExchange, resp.StatusCode, string(body))
	}

	values, err := url.ParseQuery(strings.TrimSpace(string(body)))
	if err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", shared.ErrTokenExchange, err)
	}

	accessToken := values.Get("access_token")
	if accessToken == "" {
		return nil, fmt.Errorf("%w: response missing access_token: %s", shared.ErrTokenExchange, string(body))
	}

	token := &oauth2.Token{AccessToken: accessToken}
	if expires := values.Get("expires"); expires != "" {
		if seconds, err := strconv.Atoi(expires); err == nil && seconds > 0 {
			token.Expiry = time.Now().Add(time.Duration(seconds) * time.Second)
		}
	}

	d.accessToken = accessToken
	return token, nil
}

// get performs a GET request against the Deezer API, attaching the access
// token as a query parameter when present.
func (d *DeezerService) get(ctx context.Context, rawURL string, authed bool, result any) (int, error) {
	if authed && d.accessToken != "" {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		rawURL += sep + "access_token=" + url.QueryEscape(d.accessToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("%w: deezer API status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp.StatusCode, nil
}

// postForm performs a form-encoded POST against the Deezer API with the
// access token attached.
func (d *DeezerService) postForm(ctx context.Context, rawURL string, form url.Values, result any) error {
	if d.accessToken == "" {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	form.Set("access_token", d.accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: deezer API status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// UserProfile retrieves the profile for the token's user.
func (d *DeezerService) UserProfile(ctx context.Context) (*DeezerUser, error) {
	if d.accessToken == "" {
		return nil, fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	var user DeezerUser
	if _, err := d.get(ctx, d.baseURL+"/user/me", true, &user); err != nil {
		return nil, err
	}

	if user.ID == 0 {
		return nil, fmt.Errorf("%w: token rejected by /user/me", shared.ErrInvalidCredentials)
	}

	return &user, nil
}

// GetPlaylists retrieves all playlists for the authenticated user.
func (d *DeezerService) GetPlaylists(ctx context.Context) ([]Playlist, error) {
	var playlists []Playlist
	next := d.baseURL + "/user/me/playlists"
	authed := true

	for next != "" {
		var page deezerPage[DeezerPlaylist]
		if _, err := d.get(ctx, next, authed, &page); err != nil {
			return nil, err
		}

		for _, dp := range page.Data {
			playlists = append(playlists, Playlist{
				ID:         strconv.FormatInt(dp.ID, 10),
				Name:       dp.Title,
				TrackCount: dp.NbTracks,
				Public:     dp.Public,
			})
		}

		// The next link already carries the token and offset.
		next = page.Next
		authed = false
	}

	return playlists, nil
}

// GetPlaylistTracks retrieves every track of a (public) playlist, following
// the "next" link until absent.
//
// A 403 maps to [shared.ErrPlaylistForbidden] and a 404 to
// [shared.ErrPlaylistNotFound]; both are distinct from a transport failure
// and both yield an empty result. A failure on any page after the first logs
// and truncates the sequence rather than discarding fetched tracks.
func (d *DeezerService) GetPlaylistTracks(ctx context.Context, playlistID string) ([]Track, error) {
	var tracks []Track
	next := fmt.Sprintf("%s/playlist/%s/tracks", d.baseURL, url.PathEscape(playlistID))

	for next != "" {
		var page deezerPage[DeezerTrack]
		status, err := d.get(ctx, next, true, &page)
		if err != nil {
			if len(tracks) > 0 {
				d.logger.Warn("playlist page fetch failed, truncating", "playlist", playlistID, "fetched", len(tracks), "error", err)
				return tracks, nil
			}
			switch status {
			case http.StatusForbidden:
				return nil, fmt.Errorf("%w: playlist %s", shared.ErrPlaylistForbidden, playlistID)
			case http.StatusNotFound:
				return nil, fmt.Errorf("%w: playlist %s", shared.ErrPlaylistNotFound, playlistID)
			}
			return nil, err
		}

		for _, dt := range page.Data {
			tracks = append(tracks, deezerToTrack(dt))
		}

		next = page.Next
	}

	return tracks, nil
}

// SearchTrack searches Deezer for a track, returning up to 5 candidates.
//
// The query is the normalized artist and title joined with a space. A failed
// or empty search yields an empty slice, never an error.
func (d *DeezerService) SearchTrack(ctx context.Context, title, artist string) ([]Track, error) {
	query := strings.TrimSpace(shared.Normalize(artist) + " " + shared.Normalize(title))
	searchURL := fmt.Sprintf("%s/search?q=%s&limit=%d", d.baseURL, url.QueryEscape(query), searchLimit)

	var page deezerPage[DeezerTrack]
	if _, err := d.get(ctx, searchURL, false, &page); err != nil {
		d.logger.Warn("deezer search failed", "title", title, "artist", artist, "error", err)
		return nil, nil
	}

	tracks := make([]Track, 0, len(page.Data))
	for _, dt := range page.Data {
		tracks = append(tracks, deezerToTrack(dt))
	}

	return tracks, nil
}

// CreatePlaylist creates a playlist for the current user and adds the given
// track IDs in a single call.
//
// Deezer accepts the full id list as one comma-joined "songs" field, so no
// chunking is needed. If the playlist was created but the add call fails, the
// playlist ID is returned alongside [shared.ErrTracksNotAdded].
func (d *DeezerService) CreatePlaylist(ctx context.Context, name string, trackIDs []string) (string, error) {
	var created struct {
		ID int64 `json:"id"`
	}

	form := url.Values{}
	form.Set("title", name)

	if err := d.postForm(ctx, d.baseURL+"/user/me/playlists", form, &created); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrPlaylistCreate, err)
	}
	if created.ID == 0 {
		return "", fmt.Errorf("%w: no playlist id in response", shared.ErrPlaylistCreate)
	}

	playlistID := strconv.FormatInt(created.ID, 10)

	if len(trackIDs) > 0 {
		addForm := url.Values{}
		addForm.Set("songs", strings.Join(trackIDs, ","))

		addURL := fmt.Sprintf("%s/playlist/%s/tracks", d.baseURL, playlistID)
		if err := d.postForm(ctx, addURL, addForm, nil); err != nil {
			return playlistID, fmt.Errorf("%w: %v", shared.ErrTracksNotAdded, err)
		}
	}

	return playlistID, nil
}

func deezerToTrack(dt DeezerTrack) Track {
	return Track{
		ID:       strconv.FormatInt(dt.ID, 10),
		Title:    dt.Title,
		Artist:   dt.Artist.Name,
		Album:    dt.Album.Title,
		Duration: dt.Duration,
	}
}
