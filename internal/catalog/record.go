// Package catalog fetches Spotify tracks year by year and flattens them into records.
package catalog

import (
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// Record is the flattened metadata of one search-result track.
// Records are built once per fetch and never modified.
type Record struct {
	Name        string `json:"name"`
	URI         string `json:"uri"`
	ArtistName  string `json:"artist_name"` // first listed artist only
	AlbumName   string `json:"album_name"`
	ReleaseDate string `json:"release_date"` // as supplied, precision varies
	Popularity  int    `json:"popularity"`
	QueryYear   int    `json:"query_year"`
}

// newRecord flattens a search item, checking that every required field is present.
// Release date and popularity are taken as-is.
func newRecord(t spotify.FullTrack, year int) (Record, error) {
	switch {
	case t.Name == "":
		return Record{}, fmt.Errorf("%w: missing name", ErrMalformedItem)
	case t.URI == "":
		return Record{}, fmt.Errorf("%w: %q missing uri", ErrMalformedItem, t.Name)
	case len(t.Artists) == 0:
		return Record{}, fmt.Errorf("%w: %q has no artists", ErrMalformedItem, t.Name)
	case t.Artists[0].Name == "":
		return Record{}, fmt.Errorf("%w: %q first artist has no name", ErrMalformedItem, t.Name)
	case t.Album.Name == "":
		return Record{}, fmt.Errorf("%w: %q missing album name", ErrMalformedItem, t.Name)
	}

	return Record{
		Name:        t.Name,
		URI:         string(t.URI),
		ArtistName:  t.Artists[0].Name,
		AlbumName:   t.Album.Name,
		ReleaseDate: t.Album.ReleaseDate,
		Popularity:  int(t.Popularity),
		QueryYear:   year,
	}, nil
}
