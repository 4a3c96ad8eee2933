// Package clustering groups fetched tracks into eras by release year and popularity.
package clustering

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/justestif/go-spotify-year-tracks/internal/catalog"
)

// ErrInvalidConfig is returned for a non-positive cluster count.
var ErrInvalidConfig = errors.New("invalid clustering config")

// Config holds clustering parameters.
type Config struct {
	NumClusters    int // Number of clusters to create
	MinClusterSize int // Smaller clusters become outliers
}

// DefaultConfig returns the recommended default configuration.
func DefaultConfig() Config {
	return Config{
		NumClusters:    3,
		MinClusterSize: 2,
	}
}

// Era is a group of records with similar release year and popularity.
type Era struct {
	Records        []catalog.Record
	StartYear      int     // Earliest release year in the era
	EndYear        int     // Latest release year in the era
	MeanPopularity float64 // Centroid popularity, 0-100
}

// recordObservation wraps a Record to implement clusters.Observation.
type recordObservation struct {
	record catalog.Record
	year   int
	coords clusters.Coordinates
}

func (o recordObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o recordObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// DetectEras partitions records with k-means over (release year, popularity),
// both scaled to [0, 1]. Records whose release date has no leading year, and
// members of clusters smaller than MinClusterSize, are returned as outliers.
// Eras are ordered by start year, then end year.
func DetectEras(records []catalog.Record, cfg Config) ([]Era, []catalog.Record, error) {
	if cfg.NumClusters <= 0 {
		return nil, nil, fmt.Errorf("%w: cluster count must be positive, got %d", ErrInvalidConfig, cfg.NumClusters)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	var dated []recordObservation
	var outliers []catalog.Record
	minYear, maxYear := 0, 0
	for _, r := range records {
		year, ok := ReleaseYear(r.ReleaseDate)
		if !ok {
			outliers = append(outliers, r)
			continue
		}
		if len(dated) == 0 || year < minYear {
			minYear = year
		}
		if len(dated) == 0 || year > maxYear {
			maxYear = year
		}
		dated = append(dated, recordObservation{record: r, year: year})
	}

	// Too few points to partition; nothing forms an era.
	if len(dated) < cfg.NumClusters {
		for _, o := range dated {
			outliers = append(outliers, o.record)
		}
		return nil, outliers, nil
	}

	span := float64(maxYear - minYear)
	obs := make(clusters.Observations, len(dated))
	for i := range dated {
		yearCoord := 0.0
		if span > 0 {
			yearCoord = float64(dated[i].year-minYear) / span
		}
		dated[i].coords = clusters.Coordinates{yearCoord, float64(dated[i].record.Popularity) / 100}
		obs[i] = dated[i]
	}

	result, err := kmeans.New().Partition(obs, cfg.NumClusters)
	if err != nil {
		return nil, nil, fmt.Errorf("partitioning %d records: %w", len(dated), err)
	}

	var eras []Era
	for _, cluster := range result {
		var members []recordObservation
		for _, o := range cluster.Observations {
			if ro, ok := o.(recordObservation); ok {
				members = append(members, ro)
			}
		}
		if len(members) == 0 {
			continue
		}
		if len(members) < cfg.MinClusterSize {
			for _, m := range members {
				outliers = append(outliers, m.record)
			}
			continue
		}
		eras = append(eras, newEra(members, cluster.Center))
	}

	slices.SortFunc(eras, func(a, b Era) int {
		if a.StartYear != b.StartYear {
			return a.StartYear - b.StartYear
		}
		return a.EndYear - b.EndYear
	})

	return eras, outliers, nil
}

// newEra builds an era from its members, keeping fetch order.
func newEra(members []recordObservation, center clusters.Coordinates) Era {
	era := Era{
		StartYear: members[0].year,
		EndYear:   members[0].year,
	}
	if len(center) > 1 {
		era.MeanPopularity = center[1] * 100
	}
	for _, m := range members {
		era.Records = append(era.Records, m.record)
		era.StartYear = min(era.StartYear, m.year)
		era.EndYear = max(era.EndYear, m.year)
	}
	return era
}

// ReleaseYear extracts the leading four-digit year from a Spotify release
// date ("1999", "1999-09" or "1999-09-09").
func ReleaseYear(date string) (int, bool) {
	if len(date) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year <= 0 {
		return 0, false
	}
	return year, true
}
