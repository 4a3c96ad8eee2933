package clustering

import (
	"fmt"
	"strings"

	"github.com/justestif/go-spotify-year-tracks/internal/catalog"
)

const sampleTrackCount = 3

// FormatEraSummary returns a human-readable summary of detected eras.
// Shows year range, track count, and first 3 sample tracks for each era.
// Outliers are summarized by count only.
func FormatEraSummary(eras []Era, outliers []catalog.Record) string {
	var sb strings.Builder

	totalTracks := len(outliers)
	for _, era := range eras {
		totalTracks += len(era.Records)
	}

	if len(eras) == 0 {
		sb.WriteString(fmt.Sprintf("No eras found from %d %s", totalTracks, plural(totalTracks, "track")))
		if len(outliers) > 0 {
			sb.WriteString(fmt.Sprintf(" (%d outliers skipped)", len(outliers)))
		}
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("Found %d %s from %d %s",
		len(eras), plural(len(eras), "era"), totalTracks, plural(totalTracks, "track")))
	if len(outliers) > 0 {
		sb.WriteString(fmt.Sprintf(" (%d outliers skipped)", len(outliers)))
	}
	sb.WriteString("\n")

	for i, era := range eras {
		sb.WriteString("\n")
		sb.WriteString(formatEra(i+1, era))
	}

	return sb.String()
}

// formatEra formats a single era with its sample tracks.
func formatEra(num int, era Era) string {
	var sb strings.Builder

	years := fmt.Sprintf("%d", era.StartYear)
	if era.EndYear != era.StartYear {
		years = fmt.Sprintf("%d to %d", era.StartYear, era.EndYear)
	}

	sb.WriteString(fmt.Sprintf("Era %d: %s (%d %s, popularity ~%.0f)\n",
		num, years, len(era.Records), plural(len(era.Records), "track"), era.MeanPopularity))

	sampleCount := min(sampleTrackCount, len(era.Records))
	for i := 0; i < sampleCount; i++ {
		r := era.Records[i]
		sb.WriteString(fmt.Sprintf("  • \"%s\" - %s\n", r.Name, r.ArtistName))
	}

	if remaining := len(era.Records) - sampleTrackCount; remaining > 0 {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", remaining))
	}

	return sb.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
