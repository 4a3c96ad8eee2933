// Command spotify-year-tracks fetches Spotify tracks for a span of years
// and prints them as a table, or serves the same lookups over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	runner := NewRunner(RunnerOpts{})
	return runner.app().Run(context.Background(), os.Args)
}
