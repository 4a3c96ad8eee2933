package spotify

import (
	"context"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"
)

// SearchTracks runs a single track search and returns the first page of results
// in the order Spotify returned them. Further pages are never requested.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]spotify.FullTrack, error) {
	result, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("searching tracks %q: %w", query, err)
	}
	if result == nil || result.Tracks == nil {
		return nil, fmt.Errorf("%w: search %q returned no tracks page", ErrMalformedResponse, query)
	}

	page := result.Tracks
	if total := int(page.Total); total > len(page.Tracks) {
		c.logger.Debug("more matches than returned", "query", query, "returned", len(page.Tracks), "total", total)
	}

	return page.Tracks, nil
}

// JoinArtists returns the artist names joined by ", ".
func JoinArtists(artists []spotify.SimpleArtist) string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}
