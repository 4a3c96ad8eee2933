package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/justestif/go-spotify-year-tracks/internal/auth"
	"github.com/justestif/go-spotify-year-tracks/internal/catalog"
	"github.com/justestif/go-spotify-year-tracks/internal/clustering"
	"github.com/justestif/go-spotify-year-tracks/internal/config"
	"github.com/justestif/go-spotify-year-tracks/internal/credentials"
	"github.com/justestif/go-spotify-year-tracks/internal/dataset"
	"github.com/justestif/go-spotify-year-tracks/internal/logging"
	spotifyclient "github.com/justestif/go-spotify-year-tracks/internal/spotify"
	"github.com/justestif/go-spotify-year-tracks/internal/web"
)

// app builds the root command.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:   "spotify-year-tracks",
		Usage:  "Fetch Spotify tracks released across a span of years",
		Writer: r.output,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
		},
		Before:   r.loadConfig,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		fetchCommand, serveCommand, logoutCommand,
	} {
		commands = append(commands, fn(r))
	}
	return commands
}

// loadConfig reads the config file named by --config (if present) and
// applies environment and --log-level overrides.
func (r *Runner) loadConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return ctx, err
	}
	if level := cmd.String("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return ctx, err
	}

	r.config = cfg
	if r.ownLogger {
		r.logger = logging.New(r.logs, cfg.Log.Level)
	}
	return ctx, nil
}

func fetchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Search one page of tracks per year and print them",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "start",
				Usage: "First year to query (default from config)",
			},
			&cli.IntFlag{
				Name:  "end",
				Usage: "Last year to query, inclusive (default from config)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Tracks requested per year (default from config)",
			},
			&cli.StringFlag{
				Name:  "credentials",
				Usage: "Two-line file holding the client ID and secret",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: table, csv or json",
			},
			&cli.IntFlag{
				Name:  "head",
				Usage: "Print only the first N rows (0 prints all)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the dataset to a file instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "summary",
				Usage: "Print per-year counts after the dataset",
			},
			&cli.IntFlag{
				Name:  "eras",
				Usage: "Group tracks into N eras by release year and popularity (0 disables)",
			},
			&cli.IntFlag{
				Name:  "min-era-size",
				Usage: "Smallest group reported as an era",
				Value: clustering.DefaultConfig().MinClusterSize,
			},
		},
		Action: r.Fetch,
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve search, playlist and year-range lookups over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default from config)",
			},
			&cli.StringFlag{
				Name:  "credentials",
				Usage: "Two-line file holding the client ID and secret",
			},
		},
		Action: r.Serve,
	}
}

func logoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Delete the cached app token",
		Action: r.Logout,
	}
}

// Fetch runs a year-range fetch and renders the resulting dataset.
func (r *Runner) Fetch(ctx context.Context, cmd *cli.Command) error {
	fc := r.config.Fetch
	if cmd.IsSet("start") {
		fc.StartYear = int(cmd.Int("start"))
	}
	if cmd.IsSet("end") {
		fc.EndYear = int(cmd.Int("end"))
	}
	if cmd.IsSet("limit") {
		fc.Limit = int(cmd.Int("limit"))
	}

	format, err := dataset.ParseFormat(r.config.Output.Format)
	if cmd.IsSet("format") {
		format, err = dataset.ParseFormat(cmd.String("format"))
	}
	if err != nil {
		return err
	}

	outputPath := cmd.String("output")
	head := r.config.Output.Head
	if outputPath != "" {
		head = 0
	}
	if cmd.IsSet("head") {
		head = int(cmd.Int("head"))
	}

	if err := catalog.ValidateArgs(fc.StartYear, fc.EndYear, fc.Limit, spotifyclient.MaxSearchLimit); err != nil {
		return err
	}

	client, err := r.spotifyClient(ctx, r.credentialsPath(cmd))
	if err != nil {
		return err
	}
	fetcher, err := r.fetcher(client)
	if err != nil {
		return err
	}

	records, err := fetcher.FetchTracksByYear(ctx, fc.StartYear, fc.EndYear, fc.Limit)
	if err != nil {
		return fmt.Errorf("fetching tracks: %w", err)
	}

	ds := dataset.New(records).Head(head)
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		if err := renderAndClose(f, ds, format); err != nil {
			return err
		}
	} else if err := ds.Render(r.output, format); err != nil {
		return fmt.Errorf("rendering dataset: %w", err)
	}

	if cmd.Bool("summary") {
		if _, err := io.WriteString(r.output, "\n"+dataset.FormatYearSummary(records)); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}

	if n := int(cmd.Int("eras")); n > 0 {
		eras, outliers, err := clustering.DetectEras(records, clustering.Config{
			NumClusters:    n,
			MinClusterSize: int(cmd.Int("min-era-size")),
		})
		if err != nil {
			return fmt.Errorf("detecting eras: %w", err)
		}
		if _, err := io.WriteString(r.output, "\n"+clustering.FormatEraSummary(eras, outliers)); err != nil {
			return fmt.Errorf("writing eras: %w", err)
		}
	}

	if outputPath != "" {
		r.logger.Info("dataset written", "path", outputPath)
	}
	return nil
}

// Serve starts the HTTP server and blocks until it is interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	addr := r.config.Server.Addr
	if cmd.IsSet("addr") {
		addr = cmd.String("addr")
	}

	client, err := r.spotifyClient(ctx, r.credentialsPath(cmd))
	if err != nil {
		return err
	}
	fetcher, err := r.fetcher(client)
	if err != nil {
		return err
	}

	server, err := web.NewServer(web.ServerConfig{
		Addr:    addr,
		Catalog: client,
		Fetcher: fetcher,
		Logger:  r.logger,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run()
}

// Logout deletes the cached app token, whether or not caching is enabled.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	cache, err := r.resolveTokenCache()
	if err != nil {
		return fmt.Errorf("locating token cache: %w", err)
	}
	logout := auth.New(credentials.Credentials{}, auth.WithTokenCache(cache), auth.WithLogger(r.logger))
	if err := logout.Logout(); err != nil {
		return err
	}

	r.logger.Info("removed cached token", "path", cache.Path())
	return nil
}

// renderAndClose writes ds to wc and closes it, reporting the first error.
func renderAndClose(wc io.WriteCloser, ds *dataset.Dataset, format dataset.Format) error {
	renderErr := ds.Render(wc, format)
	closeErr := wc.Close()
	if renderErr != nil {
		return fmt.Errorf("rendering dataset: %w", renderErr)
	}
	if closeErr != nil {
		return fmt.Errorf("closing output file: %w", closeErr)
	}
	return nil
}

func (r *Runner) credentialsPath(cmd *cli.Command) string {
	if path := cmd.String("credentials"); path != "" {
		return path
	}
	return r.config.Credentials.Path
}
