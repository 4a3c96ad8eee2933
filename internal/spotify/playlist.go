package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/zmb3/spotify/v2"
)

// ErrInvalidPlaylist is returned when a playlist reference cannot be parsed.
var ErrInvalidPlaylist = errors.New("invalid playlist reference")

// PlaylistTracks returns the tracks on the first page of a playlist, up to limit.
// Non-track items such as podcast episodes are skipped.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string, limit int) ([]spotify.FullTrack, error) {
	page, err := c.api.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("fetching playlist %s: %w", playlistID, err)
	}
	if page == nil {
		return nil, fmt.Errorf("%w: playlist %s returned no items page", ErrMalformedResponse, playlistID)
	}

	tracks := make([]spotify.FullTrack, 0, len(page.Items))
	for _, item := range page.Items {
		if item.Track.Track == nil {
			continue
		}
		tracks = append(tracks, *item.Track.Track)
	}
	return tracks, nil
}

// ParsePlaylistID extracts a playlist ID from a bare ID, a spotify:playlist: URI,
// or an open.spotify.com playlist link (query string ignored).
func ParsePlaylistID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidPlaylist)
	}

	if id, ok := strings.CutPrefix(ref, "spotify:playlist:"); ok {
		return validID(id)
	}

	if strings.Contains(ref, "://") {
		u, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidPlaylist, err)
		}
		if u.Host != "open.spotify.com" {
			return "", fmt.Errorf("%w: unexpected host %q", ErrInvalidPlaylist, u.Host)
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) < 2 || parts[len(parts)-2] != "playlist" {
			return "", fmt.Errorf("%w: not a playlist link", ErrInvalidPlaylist)
		}
		return validID(parts[len(parts)-1])
	}

	return validID(ref)
}

// validID accepts Spotify's base-62 identifiers.
func validID(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%w: missing ID", ErrInvalidPlaylist)
	}
	for _, r := range id {
		if !('0' <= r && r <= '9' || 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z') {
			return "", fmt.Errorf("%w: bad character in %q", ErrInvalidPlaylist, id)
		}
	}
	return id, nil
}
