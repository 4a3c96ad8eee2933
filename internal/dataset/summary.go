package dataset

import (
	"fmt"
	"strings"

	"github.com/justestif/go-spotify-year-tracks/internal/catalog"
)

// yearStats accumulates per-year totals.
type yearStats struct {
	year          int
	count         int
	popularitySum int
}

// FormatYearSummary returns a human-readable summary of records per query year,
// in the order years first appear, with the mean popularity of each year.
func FormatYearSummary(records []catalog.Record) string {
	var sb strings.Builder

	if len(records) == 0 {
		sb.WriteString("No tracks fetched\n")
		return sb.String()
	}

	var stats []*yearStats
	byYear := make(map[int]*yearStats)
	for _, r := range records {
		s, ok := byYear[r.QueryYear]
		if !ok {
			s = &yearStats{year: r.QueryYear}
			byYear[r.QueryYear] = s
			stats = append(stats, s)
		}
		s.count++
		s.popularitySum += r.Popularity
	}

	sb.WriteString(fmt.Sprintf("Fetched %d %s across %d %s\n",
		len(records), plural(len(records), "track"), len(stats), plural(len(stats), "year")))

	for _, s := range stats {
		mean := float64(s.popularitySum) / float64(s.count)
		sb.WriteString(fmt.Sprintf("  %d: %d %s, mean popularity %.1f\n",
			s.year, s.count, plural(s.count, "track"), mean))
	}

	return sb.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
