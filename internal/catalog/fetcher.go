package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-spotify-year-tracks/internal/logging"
)

// DefaultLimit is the per-year result count requested when callers have no
// preference. Fetchers clamp it to their searcher's cap; see [Fetcher.DefaultPageSize].
const DefaultLimit = 100

// TrackSearcher runs one track search and returns the first page of results.
type TrackSearcher interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]spotify.FullTrack, error)
}

// limiter is implemented by searchers that cap the page size.
type limiter interface {
	MaxLimit() int
}

// Fetcher issues one search per year and collects the flattened results.
type Fetcher struct {
	searcher       TrackSearcher
	logger         *log.Logger
	requestTimeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLogger sets the logger used for progress and failure reports.
func WithLogger(l *log.Logger) Option {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// WithRequestTimeout bounds each search call. Zero means no per-call timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.requestTimeout = d
	}
}

// New creates a Fetcher that searches through the given capability.
func New(searcher TrackSearcher, opts ...Option) *Fetcher {
	f := &Fetcher{
		searcher: searcher,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ValidateArgs checks a year range and per-year limit. A maxLimit of zero
// or less means the limit has no upper bound.
func ValidateArgs(startYear, endYear, limit, maxLimit int) error {
	if startYear > endYear {
		return fmt.Errorf("%w: %d > %d", ErrInvalidRange, startYear, endYear)
	}
	if limit < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	if maxLimit > 0 && limit > maxLimit {
		return fmt.Errorf("%w: %d exceeds maximum %d", ErrInvalidLimit, limit, maxLimit)
	}
	return nil
}

// DefaultPageSize returns DefaultLimit, lowered to the searcher's cap if it has one.
func (f *Fetcher) DefaultPageSize() int {
	if m := f.maxLimit(); m > 0 {
		return min(DefaultLimit, m)
	}
	return DefaultLimit
}

func (f *Fetcher) maxLimit() int {
	if l, ok := f.searcher.(limiter); ok {
		return l.MaxLimit()
	}
	return 0
}

// YearQuery returns the search query matching tracks released in year.
func YearQuery(year int) string {
	return fmt.Sprintf("year:%d", year)
}

// FetchTracksByYear searches each year from startYear to endYear inclusive, in
// ascending order, requesting up to limit tracks per year. Records keep the
// year order and, within a year, the order Spotify returned them.
//
// Only the first page per year is read. The first year that fails aborts the
// whole fetch: the returned error is a *YearError wrapping ErrRemoteRequest,
// and no records are returned.
func (f *Fetcher) FetchTracksByYear(ctx context.Context, startYear, endYear, limit int) ([]Record, error) {
	if err := ValidateArgs(startYear, endYear, limit, f.maxLimit()); err != nil {
		return nil, err
	}

	logger := f.logger.With("run", uuid.NewString())
	logger.Info("fetching tracks", "start", startYear, "end", endYear, "limit", limit)

	var records []Record
	// year <= endYear always holds at math.MaxInt; stop on equality instead.
	for year := startYear; ; year++ {
		logger.Info("fetching tracks for year", "year", year)

		yearRecords, err := f.fetchYear(ctx, year, limit)
		if err != nil {
			logger.Error("year failed, aborting fetch", "year", year, "err", err)
			return nil, &YearError{Year: year, Err: fmt.Errorf("%w: %w", ErrRemoteRequest, err)}
		}

		logger.Debug("year fetched", "year", year, "tracks", len(yearRecords))
		records = append(records, yearRecords...)
		if year == endYear {
			break
		}
	}

	logger.Info("fetch complete", "tracks", len(records))
	return records, nil
}

// fetchYear returns all records for one year, or none if any item is malformed.
func (f *Fetcher) fetchYear(ctx context.Context, year, limit int) ([]Record, error) {
	if f.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.requestTimeout)
		defer cancel()
	}

	tracks, err := f.searcher.SearchTracks(ctx, YearQuery(year), limit)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(tracks))
	for i, t := range tracks {
		r, err := newRecord(t, year)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		records = append(records, r)
	}
	return records, nil
}
