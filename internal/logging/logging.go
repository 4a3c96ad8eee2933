// Package logging builds the structured loggers shared by the CLI and server.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New returns a [log.Logger] writing to w (stderr if nil) at the given level.
// Unknown levels fall back to info.
func New(w io.Writer, level string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := log.NewWithOptions(w, log.Options{ReportTimestamp: true})
	logger.SetLevel(ParseLevel(level))
	return logger
}

// ParseLevel converts a level name to a [log.Level], defaulting to info.
func ParseLevel(level string) log.Level {
	if level == "" {
		return log.InfoLevel
	}
	l, err := log.ParseLevel(level)
	if err != nil {
		return log.InfoLevel
	}
	return l
}

// Discard returns a logger that drops everything, for tests and library defaults.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
