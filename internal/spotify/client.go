// Package spotify provides a wrapper around the Spotify Web API.
package spotify

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-spotify-year-tracks/internal/logging"
)

// MaxSearchLimit is the most items Spotify returns for a single search request.
const MaxSearchLimit = 50

// ErrMalformedResponse is returned when a response lacks the page the request asked for.
var ErrMalformedResponse = errors.New("malformed Spotify response")

// Searcher is the subset of *spotify.Client used by Client.
type Searcher interface {
	Search(ctx context.Context, query string, t spotify.SearchType, opts ...spotify.RequestOption) (*spotify.SearchResult, error)
	GetPlaylistItems(ctx context.Context, playlistID spotify.ID, opts ...spotify.RequestOption) (*spotify.PlaylistItemPage, error)
}

// Client wraps the Spotify API client with convenience methods.
type Client struct {
	api    Searcher
	logger *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api Searcher, opts ...Option) *Client {
	c := &Client{
		api:    api,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxLimit returns the largest page size Spotify accepts for a search.
func (c *Client) MaxLimit() int {
	return MaxSearchLimit
}
