package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/NinoBlz/dzx/internal/shared"
)

func newTestSpotify(t *testing.T, baseURL string) *SpotifyService {
	t.Helper()

	srv, err := NewSpotifyService(map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	if err := srv.Authenticate(context.Background(), map[string]string{"access_token": "test_token"}); err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}

	srv.baseURL = baseURL
	return srv
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(map[string]string{
				"client_id":     "test_client_id",
				"client_secret": "test_client_secret",
				"redirect_uri":  "http://localhost:9999/cb",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
			if srv.config.RedirectURL != "http://localhost:9999/cb" {
				t.Errorf("unexpected redirect URI %s", srv.config.RedirectURL)
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_secret": "s"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_id": "c"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Default Redirect URI", func(t *testing.T) {
			srv, err := NewSpotifyService(map[string]string{
				"client_id":     "c",
				"client_secret": "s",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.config.RedirectURL != "http://127.0.0.1:8080/callback" {
				t.Errorf("unexpected default redirect URI %s", srv.config.RedirectURL)
			}
		})
	})

	t.Run("GetAuthURL", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		authURL := srv.GetAuthURL("test_state")
		for _, want := range []string{"accounts.spotify.com", "test_client_id", "test_state", "playlist-read-private"} {
			if !strings.Contains(authURL, want) {
				t.Errorf("auth URL should contain %q: %s", want, authURL)
			}
		}
	})

	t.Run("Authenticate", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "c",
			"client_secret": "s",
		})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		t.Run("With Access Token", func(t *testing.T) {
			err := srv.Authenticate(context.Background(), map[string]string{"access_token": "tok"})
			if err != nil {
				t.Errorf("expected no error with access token, got %v", err)
			}
		})

		t.Run("Missing Credentials", func(t *testing.T) {
			err := srv.Authenticate(context.Background(), map[string]string{})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("Requires Authentication", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "c",
			"client_secret": "s",
		})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		_, err = srv.GetPlaylists(context.Background())
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

func TestSpotifyTokenRefresh(t *testing.T) {
	var refreshed bool
	var sentAuth string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/token":
			refreshed = true
			r.ParseForm()
			if r.FormValue("grant_type") != "refresh_token" {
				t.Errorf("expected refresh_token grant, got %q", r.FormValue("grant_type"))
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"fresh","token_type":"Bearer","expires_in":3600,"refresh_token":"refresh"}`)
		case "/me":
			sentAuth = r.Header.Get("Authorization")
			fmt.Fprint(w, `{"id":"user1"}`)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer ts.Close()

	srv, err := NewSpotifyService(map[string]string{
		"client_id":     "c",
		"client_secret": "s",
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	srv.baseURL = ts.URL
	srv.config.Endpoint.TokenURL = ts.URL + "/api/token"

	err = srv.Authenticate(context.Background(), map[string]string{
		"access_token":  "stale",
		"refresh_token": "refresh",
		"expiry":        time.Now().Add(-time.Hour).Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}

	if _, err := srv.UserProfile(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !refreshed {
		t.Error("expected expired cached token to trigger a refresh")
	}
	if sentAuth != "Bearer fresh" {
		t.Errorf("expected refreshed bearer token on the API call, got %q", sentAuth)
	}
}

func TestSpotifyGetPlaylists(t *testing.T) {
	requests := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		next := "more"
		page := SpotifyPaginatedPlaylists{Next: &next}

		switch r.URL.Query().Get("offset") {
		case "0", "":
			page.Items = []SpotifySimplePlaylist{
				{ID: "p1", Name: "First", Tracks: spotifyPlaylistTrackCount{Total: 10}},
				{ID: "p2", Name: "Second", Public: true},
			}
		case "50":
			page.Items = []SpotifySimplePlaylist{{ID: "p3", Name: "Third"}}
			page.Next = nil
		default:
			t.Errorf("unexpected offset %q", r.URL.Query().Get("offset"))
		}

		json.NewEncoder(w).Encode(page)
	}))
	defer ts.Close()

	srv := newTestSpotify(t, ts.URL)

	playlists, err := srv.GetPlaylists(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if requests != 2 {
		t.Errorf("expected 2 page requests, got %d", requests)
	}
	if len(playlists) != 3 {
		t.Fatalf("expected 3 playlists, got %d", len(playlists))
	}
	if playlists[0].TrackCount != 10 {
		t.Errorf("expected track count 10, got %d", playlists[0].TrackCount)
	}
	if !playlists[1].Public {
		t.Error("expected second playlist to be public")
	}
}

func TestSpotifyGetPlaylistTracks(t *testing.T) {
	t.Run("Follows Next Links", func(t *testing.T) {
		var ts *httptest.Server
		ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/page2") {
				json.NewEncoder(w).Encode(SpotifyPaginatedTracks{
					Items: []SpotifyPlaylistItem{
						{Track: SpotifyTrack{ID: "t3", Name: "Three", Type: "track"}},
					},
				})
				return
			}

			next := ts.URL + "/page2"
			json.NewEncoder(w).Encode(SpotifyPaginatedTracks{
				Items: []SpotifyPlaylistItem{
					{Track: SpotifyTrack{ID: "t1", Name: "One", Type: "track", Artists: []SpotifyArtist{{Name: "A"}}, DurationMS: 187000}},
					{Track: SpotifyTrack{ID: "t2", Name: "Two", Type: "track"}},
				},
				Next: &next,
			})
		}))
		defer ts.Close()

		srv := newTestSpotify(t, ts.URL)

		tracks, err := srv.GetPlaylistTracks(context.Background(), "pl1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 3 {
			t.Fatalf("expected 3 tracks, got %d", len(tracks))
		}
		if tracks[0].Artist != "A" {
			t.Errorf("expected artist A, got %q", tracks[0].Artist)
		}
		if tracks[0].Duration != 187 {
			t.Errorf("expected duration in seconds, got %d", tracks[0].Duration)
		}
	})

	t.Run("Skips Episodes And Removed Tracks", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(SpotifyPaginatedTracks{
				Items: []SpotifyPlaylistItem{
					{Track: SpotifyTrack{ID: "t1", Name: "Song", Type: "track"}},
					{Track: SpotifyTrack{ID: "e1", Name: "Podcast", Type: "episode"}},
					{Track: SpotifyTrack{ID: "", Name: "Removed"}},
				},
			})
		}))
		defer ts.Close()

		srv := newTestSpotify(t, ts.URL)

		tracks, err := srv.GetPlaylistTracks(context.Background(), "pl1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 1 || tracks[0].ID != "t1" {
			t.Errorf("expected only the real track, got %+v", tracks)
		}
	})

	t.Run("Truncates On Later Page Failure", func(t *testing.T) {
		var ts *httptest.Server
		ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/page2") {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}

			next := ts.URL + "/page2"
			json.NewEncoder(w).Encode(SpotifyPaginatedTracks{
				Items: []SpotifyPlaylistItem{{Track: SpotifyTrack{ID: "t1", Name: "One", Type: "track"}}},
				Next:  &next,
			})
		}))
		defer ts.Close()

		srv := newTestSpotify(t, ts.URL)

		tracks, err := srv.GetPlaylistTracks(context.Background(), "pl1")
		if err != nil {
			t.Fatalf("expected truncated result without error, got %v", err)
		}
		if len(tracks) != 1 {
			t.Errorf("expected 1 track from first page, got %d", len(tracks))
		}
	})

	t.Run("First Page Failure Is An Error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer ts.Close()

		srv := newTestSpotify(t, ts.URL)

		tracks, err := srv.GetPlaylistTracks(context.Background(), "missing")
		if err == nil {
			t.Fatal("expected error for first page failure")
		}
		if tracks != nil {
			t.Errorf("expected nil tracks, got %+v", tracks)
		}
	})

	t.Run("Expired Token", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer ts.Close()

		srv := newTestSpotify(t, ts.URL)

		_, err := srv.GetPlaylistTracks(context.Background(), "pl1")
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
	})
}

func TestSpotifySearchTrack(t *testing.T) {
	t.Run("Returns Candidates", func(t *testing.T) {
		var gotQuery string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query().Get("q")
			fmt.Fprint(w, `{"tracks":{"items":[
				{"id":"s1","name":"Yesterday","artists":[{"name":"The Beatles"}]},
				{"id":"s2","name":"Yesterday (Live)","artists":[{"name":"The Beatles"}]}
			]}}`)
		}))
		defer ts.Close()

		srv := newTestSpotify(t, ts.URL)

		tracks, err := srv.SearchTrack(context.Background(), "Yesterday!", "The Beatles")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 2 {
			t.Fatalf("expected 2 results, got %d", len(tracks))
		}

		if !strings.Contains(gotQuery, "track:Yesterday") {
			t.Errorf("expected normalized title filter in query, got %q", gotQuery)
		}
		if strings.Contains(gotQuery, "!") {
			t.Errorf("expected punctuation stripped from query, got %q", gotQuery)
		}
	})

	t.Run("Failure Degrades To Empty", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer ts.Close()

		srv := newTestSpotify(t, ts.URL)

		tracks, err := srv.SearchTrack(context.Background(), "a", "b")
		if err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
		if len(tracks) != 0 {
			t.Errorf("expected empty result, got %+v", tracks)
		}
	})
}

func TestSpotifyCreatePlaylist(t *testing.T) {
	type addCall struct {
		count int
	}

	setup := func(t *testing.T, addStatus int) (*SpotifyService, *[]addCall, func()) {
		t.Helper()
		calls := &[]addCall{}

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.URL.Path == "/me":
				fmt.Fprint(w, `{"id":"user1"}`)
			case r.URL.Path == "/users/user1/playlists" && r.Method == http.MethodPost:
				var req struct {
					Name   string `json:"name"`
					Public bool   `json:"public"`
				}
				json.NewDecoder(r.Body).Decode(&req)
				if req.Public {
					t.Error("created playlist should be private")
				}
				fmt.Fprint(w, `{"id":"new_pl"}`)
			case r.URL.Path == "/playlists/new_pl/tracks" && r.Method == http.MethodPost:
				var req struct {
					URIs []string `json:"uris"`
				}
				json.NewDecoder(r.Body).Decode(&req)
				for _, uri := range req.URIs {
					if !strings.HasPrefix(uri, "spotify:track:") {
						t.Errorf("expected spotify:track: URI, got %q", uri)
					}
				}
				*calls = append(*calls, addCall{count: len(req.URIs)})
				w.WriteHeader(addStatus)
			default:
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				w.WriteHeader(http.StatusNotFound)
			}
		}))

		return newTestSpotify(t, ts.URL), calls, ts.Close
	}

	t.Run("Chunks Adds At 100", func(t *testing.T) {
		srv, calls, closeFn := setup(t, http.StatusCreated)
		defer closeFn()

		trackIDs := make([]string, 250)
		for i := range trackIDs {
			trackIDs[i] = fmt.Sprintf("t%d", i)
		}

		id, err := srv.CreatePlaylist(context.Background(), "Big Playlist", trackIDs)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if id != "new_pl" {
			t.Errorf("expected playlist ID new_pl, got %q", id)
		}

		want := []int{100, 100, 50}
		if len(*calls) != len(want) {
			t.Fatalf("expected %d add calls, got %d", len(want), len(*calls))
		}
		for i, c := range *calls {
			if c.count != want[i] {
				t.Errorf("add call %d: expected %d URIs, got %d", i, want[i], c.count)
			}
		}
	})

	t.Run("Empty Track List Skips Add", func(t *testing.T) {
		srv, calls, closeFn := setup(t, http.StatusCreated)
		defer closeFn()

		id, err := srv.CreatePlaylist(context.Background(), "Empty", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if id != "new_pl" {
			t.Errorf("expected playlist ID new_pl, got %q", id)
		}
		if len(*calls) != 0 {
			t.Errorf("expected no add calls, got %d", len(*calls))
		}
	})

	t.Run("Add Failure Keeps Playlist ID", func(t *testing.T) {
		srv, _, closeFn := setup(t, http.StatusInternalServerError)
		defer closeFn()

		id, err := srv.CreatePlaylist(context.Background(), "Partial", []string{"t1", "t2"})
		if !errors.Is(err, shared.ErrTracksNotAdded) {
			t.Fatalf("expected ErrTracksNotAdded, got %v", err)
		}
		if id != "new_pl" {
			t.Errorf("expected playlist ID preserved, got %q", id)
		}
	})
}
