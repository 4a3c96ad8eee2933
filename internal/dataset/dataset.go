// Package dataset holds fetched track records as an in-memory table and renders it.
package dataset

import (
	"strconv"

	"github.com/justestif/go-spotify-year-tracks/internal/catalog"
)

// columns lists the table columns in display order.
var columns = []string{
	"name",
	"uri",
	"artist_name",
	"album_name",
	"release_date",
	"popularity",
	"query_year",
}

// Dataset is a read-only table of track records, one row per record.
type Dataset struct {
	records []catalog.Record
}

// New builds a Dataset over a copy of records, keeping their order.
func New(records []catalog.Record) *Dataset {
	return &Dataset{records: append([]catalog.Record(nil), records...)}
}

// Columns returns the column names.
func (d *Dataset) Columns() []string {
	return append([]string(nil), columns...)
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Records returns a copy of the underlying records.
func (d *Dataset) Records() []catalog.Record {
	return append([]catalog.Record(nil), d.records...)
}

// Head returns a Dataset holding the first n rows.
// A non-positive n or one past the end returns all rows.
func (d *Dataset) Head(n int) *Dataset {
	if n <= 0 || n >= len(d.records) {
		return New(d.records)
	}
	return New(d.records[:n])
}

// Row returns row i as strings in column order.
func (d *Dataset) Row(i int) []string {
	r := d.records[i]
	return []string{
		r.Name,
		r.URI,
		r.ArtistName,
		r.AlbumName,
		r.ReleaseDate,
		strconv.Itoa(r.Popularity),
		strconv.Itoa(r.QueryYear),
	}
}

// Rows returns every row as strings in column order.
func (d *Dataset) Rows() [][]string {
	rows := make([][]string, len(d.records))
	for i := range d.records {
		rows[i] = d.Row(i)
	}
	return rows
}
