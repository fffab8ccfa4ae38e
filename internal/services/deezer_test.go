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

	"github.com/NinoBlz/dzx/internal/shared"
)

func newTestDeezer(baseURL string) *DeezerService {
	srv := NewDeezerService(map[string]string{
		"app_id":       "test_app_id",
		"app_secret":   "test_app_secret",
		"access_token": "test_token",
	})
	srv.baseURL = baseURL
	return srv
}

func TestDeezerService(t *testing.T) {
	t.Run("NewDeezerService", func(t *testing.T) {
		srv := NewDeezerService(map[string]string{"app_id": "a", "app_secret": "s"})
		if srv.Name() != "Deezer" {
			t.Errorf("expected service name 'Deezer', got %s", srv.Name())
		}
		if srv.redirectURI != "http://localhost:8080/deezer_callback" {
			t.Errorf("unexpected default redirect URI %s", srv.redirectURI)
		}
	})

	t.Run("GetAuthURL", func(t *testing.T) {
		srv := NewDeezerService(map[string]string{
			"app_id":       "test_app_id",
			"app_secret":   "s",
			"redirect_uri": "http://localhost:8080/deezer_callback",
		})

		authURL := srv.GetAuthURL("state42")
		for _, want := range []string{"connect.deezer.com", "app_id=test_app_id", "response_type=code", "state42", "manage_library"} {
			if !strings.Contains(authURL, want) {
				t.Errorf("auth URL should contain %q: %s", want, authURL)
			}
		}
	})

	t.Run("GetAuthURL Omits Empty State", func(t *testing.T) {
		srv := NewDeezerService(map[string]string{"app_id": "a", "app_secret": "s"})
		if strings.Contains(srv.GetAuthURL(""), "state=") {
			t.Error("auth URL should not contain empty state parameter")
		}
	})

	t.Run("Authenticate", func(t *testing.T) {
		t.Run("Valid Token", func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("access_token") != "good_token" {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				fmt.Fprint(w, `{"id":123,"name":"tester"}`)
			}))
			defer ts.Close()

			srv := NewDeezerService(nil)
			srv.baseURL = ts.URL

			err := srv.Authenticate(context.Background(), map[string]string{"access_token": "good_token"})
			if err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})

		t.Run("Rejected Token", func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			}))
			defer ts.Close()

			srv := NewDeezerService(nil)
			srv.baseURL = ts.URL

			err := srv.Authenticate(context.Background(), map[string]string{"access_token": "bad"})
			if !errors.Is(err, shared.ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})

		t.Run("Missing Token", func(t *testing.T) {
			srv := NewDeezerService(nil)
			err := srv.Authenticate(context.Background(), map[string]string{})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})
}

func TestDeezerExchangeCode(t *testing.T) {
	t.Run("Parses Form Encoded Response", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("app_id") != "test_app_id" {
				t.Errorf("expected app_id query param, got %q", r.URL.Query().Get("app_id"))
			}
			if r.URL.Query().Get("secret") != "test_app_secret" {
				t.Errorf("expected secret query param, got %q", r.URL.Query().Get("secret"))
			}
			if r.URL.Query().Get("code") != "auth123" {
				t.Errorf("expected code query param, got %q", r.URL.Query().Get("code"))
			}
			fmt.Fprint(w, "access_token=frHEXmtFuS&expires=3600")
		}))
		defer ts.Close()

		srv := newTestDeezer("")
		srv.tokenURL = ts.URL

		token, err := srv.ExchangeCode(context.Background(), "auth123")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token.AccessToken != "frHEXmtFuS" {
			t.Errorf("expected parsed access token, got %q", token.AccessToken)
		}
		if token.Expiry.IsZero() {
			t.Error("expected expiry to be set from expires parameter")
		}
		if srv.accessToken != "frHEXmtFuS" {
			t.Error("expected service to store the new token")
		}
	})

	t.Run("Missing Access Token In Response", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "wrong code")
		}))
		defer ts.Close()

		srv := newTestDeezer("")
		srv.tokenURL = ts.URL

		_, err := srv.ExchangeCode(context.Background(), "bad")
		if !errors.Is(err, shared.ErrTokenExchange) {
			t.Errorf("expected ErrTokenExchange, got %v", err)
		}
	})

	t.Run("Missing App Credentials", func(t *testing.T) {
		srv := NewDeezerService(nil)
		_, err := srv.ExchangeCode(context.Background(), "code")
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}

func TestDeezerGetPlaylists(t *testing.T) {
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/page2" {
			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{
					{"id": 3, "title": "Third", "nb_tracks": 7},
				},
			})
			return
		}

		if r.URL.Query().Get("access_token") != "test_token" {
			t.Errorf("expected access_token on first request, got %q", r.URL.Query().Get("access_token"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": 1, "title": "First", "public": true, "nb_tracks": 3},
				{"id": 2, "title": "Second"},
			},
			"next": ts.URL + "/page2",
		})
	}))
	defer ts.Close()

	srv := newTestDeezer(ts.URL)

	playlists, err := srv.GetPlaylists(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(playlists) != 3 {
		t.Fatalf("expected 3 playlists, got %d", len(playlists))
	}
	if playlists[0].ID != "1" {
		t.Errorf("expected numeric ID as string, got %q", playlists[0].ID)
	}
	if !playlists[0].Public {
		t.Error("expected first playlist public")
	}
	if playlists[2].TrackCount != 7 {
		t.Errorf("expected track count 7, got %d", playlists[2].TrackCount)
	}
}

func TestDeezerGetPlaylistTracks(t *testing.T) {
	t.Run("Follows Next Links", func(t *testing.T) {
		var ts *httptest.Server
		ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/page2" {
				json.NewEncoder(w).Encode(map[string]any{
					"data": []map[string]any{
						{"id": 30, "title": "Three", "artist": map[string]any{"name": "C"}},
					},
				})
				return
			}

			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{
					{"id": 10, "title": "One", "duration": 200, "artist": map[string]any{"name": "A"}, "album": map[string]any{"title": "Alb"}},
					{"id": 20, "title": "Two", "artist": map[string]any{"name": "B"}},
				},
				"next": ts.URL + "/page2",
			})
		}))
		defer ts.Close()

		srv := newTestDeezer(ts.URL)

		tracks, err := srv.GetPlaylistTracks(context.Background(), "555")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 3 {
			t.Fatalf("expected 3 tracks, got %d", len(tracks))
		}
		if tracks[0].ID != "10" || tracks[0].Artist != "A" || tracks[0].Album != "Alb" || tracks[0].Duration != 200 {
			t.Errorf("unexpected first track %+v", tracks[0])
		}
	})

	t.Run("Private Playlist Is Forbidden", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer ts.Close()

		srv := newTestDeezer(ts.URL)

		_, err := srv.GetPlaylistTracks(context.Background(), "555")
		if !errors.Is(err, shared.ErrPlaylistForbidden) {
			t.Errorf("expected ErrPlaylistForbidden, got %v", err)
		}
	})

	t.Run("Unknown Playlist Is Not Found", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer ts.Close()

		srv := newTestDeezer(ts.URL)

		_, err := srv.GetPlaylistTracks(context.Background(), "999")
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("Truncates On Later Page Failure", func(t *testing.T) {
		var ts *httptest.Server
		ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/page2" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{{"id": 10, "title": "One"}},
				"next": ts.URL + "/page2",
			})
		}))
		defer ts.Close()

		srv := newTestDeezer(ts.URL)

		tracks, err := srv.GetPlaylistTracks(context.Background(), "555")
		if err != nil {
			t.Fatalf("expected truncated result without error, got %v", err)
		}
		if len(tracks) != 1 {
			t.Errorf("expected 1 track from first page, got %d", len(tracks))
		}
	})
}

func TestDeezerSearchTrack(t *testing.T) {
	t.Run("Returns Candidates", func(t *testing.T) {
		var gotQuery string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query().Get("q")
			if r.URL.Query().Get("limit") != "5" {
				t.Errorf("expected limit 5, got %q", r.URL.Query().Get("limit"))
			}
			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{
					{"id": 1, "title": "Imagine", "artist": map[string]any{"name": "John Lennon"}},
				},
			})
		}))
		defer ts.Close()

		srv := newTestDeezer(ts.URL)

		tracks, err := srv.SearchTrack(context.Background(), "Imagine!", "John Lennon")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 1 || tracks[0].Title != "Imagine" {
			t.Errorf("unexpected results %+v", tracks)
		}
		if strings.Contains(gotQuery, "!") {
			t.Errorf("expected punctuation stripped from query, got %q", gotQuery)
		}
		if !strings.HasPrefix(gotQuery, "John Lennon") {
			t.Errorf("expected artist-first query, got %q", gotQuery)
		}
	})

	t.Run("Failure Degrades To Empty", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer ts.Close()

		srv := newTestDeezer(ts.URL)

		tracks, err := srv.SearchTrack(context.Background(), "a", "b")
		if err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
		if len(tracks) != 0 {
			t.Errorf("expected empty result, got %+v", tracks)
		}
	})
}

func TestDeezerCreatePlaylist(t *testing.T) {
	setup := func(t *testing.T, addStatus int) (*DeezerService, *[]string, func()) {
		t.Helper()
		songs := &[]string{}

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.URL.Path == "/user/me/playlists" && r.Method == http.MethodPost:
				r.ParseForm()
				if r.PostForm.Get("title") == "" {
					t.Error("expected title form field")
				}
				if r.PostForm.Get("access_token") == "" {
					t.Error("expected access_token form field")
				}
				fmt.Fprint(w, `{"id":777}`)
			case r.URL.Path == "/playlist/777/tracks" && r.Method == http.MethodPost:
				r.ParseForm()
				*songs = append(*songs, r.PostForm.Get("songs"))
				w.WriteHeader(addStatus)
			default:
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				w.WriteHeader(http.StatusNotFound)
			}
		}))

		return newTestDeezer(ts.URL), songs, ts.Close
	}

	t.Run("Single Add Call With Comma Joined IDs", func(t *testing.T) {
		srv, songs, closeFn := setup(t, http.StatusOK)
		defer closeFn()

		id, err := srv.CreatePlaylist(context.Background(), "My Mix", []string{"1", "2", "3"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if id != "777" {
			t.Errorf("expected playlist ID 777, got %q", id)
		}
		if len(*songs) != 1 {
			t.Fatalf("expected exactly one add call, got %d", len(*songs))
		}
		if (*songs)[0] != "1,2,3" {
			t.Errorf("expected comma-joined IDs, got %q", (*songs)[0])
		}
	})

	t.Run("Empty Track List Skips Add", func(t *testing.T) {
		srv, songs, closeFn := setup(t, http.StatusOK)
		defer closeFn()

		if _, err := srv.CreatePlaylist(context.Background(), "Empty", nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(*songs) != 0 {
			t.Errorf("expected no add calls, got %d", len(*songs))
		}
	})

	t.Run("Add Failure Keeps Playlist ID", func(t *testing.T) {
		srv, _, closeFn := setup(t, http.StatusInternalServerError)
		defer closeFn()

		id, err := srv.CreatePlaylist(context.Background(), "Partial", []string{"9"})
		if !errors.Is(err, shared.ErrTracksNotAdded) {
			t.Fatalf("expected ErrTracksNotAdded, got %v", err)
		}
		if id != "777" {
			t.Errorf("expected playlist ID preserved, got %q", id)
		}
	})

	t.Run("Requires Authentication", func(t *testing.T) {
		srv := NewDeezerService(nil)
		_, err := srv.CreatePlaylist(context.Background(), "X", []string{"1"})
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}
