package dataset

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/justestif/go-spotify-year-tracks/internal/catalog"
)

// Format selects how a Dataset is rendered.
type Format string

// Supported formats.
const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat converts a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatCSV, FormatJSON:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Render writes the dataset to w in the given format.
func (d *Dataset) Render(w io.Writer, format Format) error {
	switch format {
	case FormatTable:
		return d.renderTable(w)
	case FormatCSV:
		return d.renderCSV(w)
	case FormatJSON:
		return d.renderJSON(w)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func (d *Dataset) renderTable(w io.Writer) error {
	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(d.Columns()...).
		Rows(d.Rows()...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}
	_, err := fmt.Fprintf(w, "[%d rows x %d columns]\n", d.Len(), len(columns))
	return err
}

func (d *Dataset) renderCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(d.Columns()); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	if err := writer.WriteAll(d.Rows()); err != nil {
		return fmt.Errorf("writing CSV rows: %w", err)
	}
	return nil
}

func (d *Dataset) renderJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	records := d.records
	if records == nil {
		records = []catalog.Record{}
	}
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}
