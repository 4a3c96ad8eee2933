package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-spotify-year-tracks/internal/catalog"
	"github.com/justestif/go-spotify-year-tracks/internal/logging"
	spotifyclient "github.com/justestif/go-spotify-year-tracks/internal/spotify"
)

const (
	defaultSearchLimit   = 10
	defaultPlaylistLimit = 25
	maxYearSpan          = 100

	// Years outside this range are rejected before any arithmetic on them.
	minYear = 0
	maxYear = 9999
)

// Catalog is the Spotify lookup surface used by the handlers.
type Catalog interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]spotify.FullTrack, error)
	PlaylistTracks(ctx context.Context, playlistID string, limit int) ([]spotify.FullTrack, error)
}

// YearFetcher runs a year-range fetch.
type YearFetcher interface {
	FetchTracksByYear(ctx context.Context, startYear, endYear, limit int) ([]catalog.Record, error)
	DefaultPageSize() int
}

// Handlers contains HTTP handlers for the track API.
type Handlers struct {
	catalog Catalog
	fetcher YearFetcher
	logger  *log.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(c Catalog, f YearFetcher, logger *log.Logger) *Handlers {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handlers{
		catalog: c,
		fetcher: f,
		logger:  logger,
	}
}

// searchResult is one track in a search response.
type searchResult struct {
	Name        string `json:"name"`
	URI         string `json:"uri"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	ReleaseDate string `json:"release_date"`
	Popularity  int    `json:"popularity"`
	AlbumCover  string `json:"album_cover,omitempty"`
}

// playlistTrack is one track in a playlist response.
type playlistTrack struct {
	AlbumCover *string `json:"album_cover"`
	Artist     string  `json:"artist"`
	Song       string  `json:"song"`
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
	Year  int    `json:"year,omitempty"`
}

// Health reports liveness (GET /healthz).
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Search runs a free-text track search (GET /api/search?query=&limit=).
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeJSON(w, http.StatusOK, []searchResult{})
		return
	}

	limit, err := intParam(r, "limit", defaultSearchLimit)
	if err != nil {
		h.badRequest(w, err)
		return
	}
	if limit < 1 || limit > spotifyclient.MaxSearchLimit {
		h.badRequest(w, fmt.Errorf("limit must be between 1 and %d, got %d", spotifyclient.MaxSearchLimit, limit))
		return
	}

	tracks, err := h.catalog.SearchTracks(r.Context(), query, limit)
	if err != nil {
		h.upstreamError(w, "searching tracks", err)
		return
	}

	results := make([]searchResult, len(tracks))
	for i, t := range tracks {
		results[i] = searchResult{
			Name:        t.Name,
			URI:         string(t.URI),
			Artist:      spotifyclient.JoinArtists(t.Artists),
			Album:       t.Album.Name,
			ReleaseDate: t.Album.ReleaseDate,
			Popularity:  int(t.Popularity),
		}
		if cover := albumCover(t); cover != nil {
			results[i].AlbumCover = *cover
		}
	}
	writeJSON(w, http.StatusOK, results)
}

// Playlist lists the first tracks of a playlist (GET /api/playlists/{id}).
// The id may be a bare ID, a spotify: URI or an open.spotify.com link.
func (h *Handlers) Playlist(w http.ResponseWriter, r *http.Request) {
	id, err := spotifyclient.ParsePlaylistID(chi.URLParam(r, "id"))
	if err != nil {
		h.badRequest(w, err)
		return
	}

	tracks, err := h.catalog.PlaylistTracks(r.Context(), id, defaultPlaylistLimit)
	if err != nil {
		h.upstreamError(w, "fetching playlist", err)
		return
	}

	out := make([]playlistTrack, len(tracks))
	for i, t := range tracks {
		out[i] = playlistTrack{
			AlbumCover: albumCover(t),
			Artist:     spotifyclient.JoinArtists(t.Artists),
			Song:       t.Name,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// Tracks fetches a year range (GET /api/tracks?start=&end=&limit=).
func (h *Handlers) Tracks(w http.ResponseWriter, r *http.Request) {
	start, err := requiredIntParam(r, "start")
	if err != nil {
		h.badRequest(w, err)
		return
	}
	end, err := requiredIntParam(r, "end")
	if err != nil {
		h.badRequest(w, err)
		return
	}
	limit, err := intParam(r, "limit", h.fetcher.DefaultPageSize())
	if err != nil {
		h.badRequest(w, err)
		return
	}
	for _, year := range []int{start, end} {
		if year < minYear || year > maxYear {
			h.badRequest(w, fmt.Errorf("year %d outside %d-%d", year, minYear, maxYear))
			return
		}
	}
	if end >= start && end-start >= maxYearSpan {
		h.badRequest(w, fmt.Errorf("year range spans more than %d years", maxYearSpan))
		return
	}

	records, err := h.fetcher.FetchTracksByYear(r.Context(), start, end, limit)
	switch {
	case errors.Is(err, catalog.ErrInvalidRange), errors.Is(err, catalog.ErrInvalidLimit):
		h.badRequest(w, err)
		return
	case err != nil:
		h.logger.Error("year fetch failed", "start", start, "end", end, "err", err)
		resp := errorResponse{Error: err.Error()}
		var yearErr *catalog.YearError
		if errors.As(err, &yearErr) {
			resp.Year = yearErr.Year
		}
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}

	if records == nil {
		records = []catalog.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handlers) badRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func (h *Handlers) upstreamError(w http.ResponseWriter, action string, err error) {
	h.logger.Error(action, "err", err)
	writeJSON(w, http.StatusBadGateway, errorResponse{Error: fmt.Sprintf("%s: %v", action, err)})
}

// albumCover returns the first (largest) album image URL, or nil if there is none.
func albumCover(t spotify.FullTrack) *string {
	if len(t.Album.Images) == 0 {
		return nil
	}
	url := t.Album.Images[0].URL
	return &url
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return v, nil
}

func requiredIntParam(r *http.Request, name string) (int, error) {
	if r.URL.Query().Get(name) == "" {
		return 0, fmt.Errorf("missing %s parameter", name)
	}
	return intParam(r, name, 0)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
