// Utilities for extracting playlist IDs from platform URLs.
package shared

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Playlist URL service names.
const (
	ServiceSpotify = "spotify"
	ServiceDeezer  = "deezer"
)

// PlaylistRef identifies a playlist on a specific service.
type PlaylistRef struct {
	Service string
	ID      string
}

// ParsePlaylistURL extracts a playlist reference from a platform URL or URI.
//
// Supported forms:
//   - spotify:playlist:<id>
//   - https://open.spotify.com/playlist/<id>
//   - https://www.deezer.com/[lang/]playlist/<id>
//   - https://link.deezer.com/s/<code> (resolved by following redirects)
//
// The client is used only to resolve shortened Deezer links; pass nil to use
// [http.DefaultClient]. Unrecognized hosts or malformed paths return
// [ErrInvalidURL], never a panic.
func ParsePlaylistURL(rawURL string, client *http.Client) (*PlaylistRef, error) {
	return parsePlaylistURL(rawURL, client, 0)
}

func parsePlaylistURL(rawURL string, client *http.Client, depth int) (*PlaylistRef, error) {
	if depth > 3 {
		return nil, fmt.Errorf("%w: too many redirects for %q", ErrInvalidURL, rawURL)
	}

	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("%w: empty URL", ErrInvalidURL)
	}

	if strings.HasPrefix(rawURL, "spotify:playlist:") {
		id := strings.TrimPrefix(rawURL, "spotify:playlist:")
		if id == "" {
			return nil, fmt.Errorf("%w: missing playlist ID in %q", ErrInvalidURL, rawURL)
		}
		return &PlaylistRef{Service: ServiceSpotify, ID: id}, nil
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	host := strings.ToLower(parsed.Hostname())

	switch {
	case host == "link.deezer.com":
		resolved, err := resolveShortLink(rawURL, client)
		if err != nil {
			return nil, fmt.Errorf("%w: could not resolve shortened link: %v", ErrInvalidURL, err)
		}
		return parsePlaylistURL(resolved, client, depth+1)

	case strings.HasSuffix(host, "spotify.com"):
		id := playlistPathID(parsed.Path)
		if id == "" {
			return nil, fmt.Errorf("%w: no playlist ID in %q", ErrInvalidURL, rawURL)
		}
		return &PlaylistRef{Service: ServiceSpotify, ID: id}, nil

	case strings.HasSuffix(host, "deezer.com"):
		id := playlistPathID(parsed.Path)
		if id == "" {
			return nil, fmt.Errorf("%w: no playlist ID in %q", ErrInvalidURL, rawURL)
		}
		return &PlaylistRef{Service: ServiceDeezer, ID: id}, nil
	}

	return nil, fmt.Errorf("%w: unsupported host %q", ErrInvalidURL, host)
}

// playlistPathID returns the path segment following "/playlist/", or "".
func playlistPathID(path string) string {
	const marker = "/playlist/"
	idx := strings.Index(path, marker)
	if idx < 0 {
		return ""
	}
	id := path[idx+len(marker):]
	if slash := strings.IndexByte(id, '/'); slash >= 0 {
		id = id[:slash]
	}
	return id
}

// resolveShortLink follows redirects on a shortened link and returns the final URL.
func resolveShortLink(rawURL string, client *http.Client) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequest(http.MethodHead, rawURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	final := resp.Request.URL.String()
	if final == rawURL {
		return "", fmt.Errorf("link did not redirect")
	}

	return final, nil
}
