package catalog

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrInvalidRange is returned when the start year is after the end year.
	ErrInvalidRange = errors.New("start year after end year")

	// ErrInvalidLimit is returned when the per-year limit is not positive or exceeds the searcher's cap.
	ErrInvalidLimit = errors.New("invalid per-year limit")

	// ErrRemoteRequest is returned when a year's search request fails.
	ErrRemoteRequest = errors.New("remote search request failed")

	// ErrMalformedItem is returned when a search item lacks a required field.
	ErrMalformedItem = errors.New("malformed search item")
)

// YearError reports the year whose fetch aborted the run.
type YearError struct {
	Year int
	Err  error
}

func (e *YearError) Error() string {
	return fmt.Sprintf("year %d: %v", e.Year, e.Err)
}

func (e *YearError) Unwrap() error {
	return e.Err
}
