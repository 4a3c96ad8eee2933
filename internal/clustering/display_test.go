package clustering

import (
	"strings"
	"testing"

	"github.com/justestif/go-spotify-year-tracks/internal/catalog"
)

func TestFormatEraSummary(t *testing.T) {
	tests := []struct {
		name     string
		eras     []Era
		outliers []catalog.Record
		contains []string
		excludes []string
	}{
		{
			name:     "no eras",
			contains: []string{"No eras found from 0 tracks"},
			excludes: []string{"outliers skipped"},
		},
		{
			name:     "no eras with outliers",
			outliers: []catalog.Record{record("x", "", 10), record("y", "", 10)},
			contains: []string{"No eras found from 2 tracks (2 outliers skipped)"},
		},
		{
			name: "single era single year",
			eras: []Era{{
				Records:        []catalog.Record{record("a", "2001", 50)},
				StartYear:      2001,
				EndYear:        2001,
				MeanPopularity: 50,
			}},
			contains: []string{
				"Found 1 era from 1 track\n",
				"Era 1: 2001 (1 track, popularity ~50)",
				`• "a" - Artist a`,
			},
			excludes: []string{"more", "2001 to"},
		},
		{
			name: "era with more than three tracks",
			eras: []Era{{
				Records: []catalog.Record{
					record("a", "1990", 10), record("b", "1991", 20),
					record("c", "1992", 30), record("d", "1993", 40),
					record("e", "1994", 50),
				},
				StartYear:      1990,
				EndYear:        1994,
				MeanPopularity: 30,
			}},
			outliers: []catalog.Record{record("z", "", 0)},
			contains: []string{
				"Found 1 era from 6 tracks (1 outliers skipped)",
				"Era 1: 1990 to 1994 (5 tracks, popularity ~30)",
				`• "c" - Artist c`,
				"... and 2 more",
			},
			excludes: []string{`"d"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatEraSummary(tt.eras, tt.outliers)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("missing %q in:\n%s", want, got)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("unexpected %q in:\n%s", unwanted, got)
				}
			}
		})
	}
}
