package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/justestif/go-spotify-year-tracks/internal/auth"
	"github.com/justestif/go-spotify-year-tracks/internal/catalog"
	"github.com/justestif/go-spotify-year-tracks/internal/config"
	"github.com/justestif/go-spotify-year-tracks/internal/credentials"
	"github.com/justestif/go-spotify-year-tracks/internal/logging"
	spotifyclient "github.com/justestif/go-spotify-year-tracks/internal/spotify"
)

// Connector turns loaded credentials into an authorized Spotify API client.
type Connector func(ctx context.Context, creds credentials.Credentials, cache *auth.TokenCache, logger *log.Logger) (spotifyclient.Searcher, error)

// Runner holds the dependencies shared by every command action.
type Runner struct {
	config  *config.Config
	logger  *log.Logger
	output  io.Writer
	logs    io.Writer
	connect Connector

	// ownLogger is set when the logger was built here and may be rebuilt
	// once the config file and --log-level are known.
	ownLogger bool
}

// RunnerOpts configures a Runner. Zero values fall back to defaults.
type RunnerOpts struct {
	Config  *config.Config
	Logger  *log.Logger
	Output  io.Writer
	Logs    io.Writer
	Connect Connector
}

// NewRunner creates a Runner from opts.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Logs == nil {
		opts.Logs = os.Stderr
	}
	ownLogger := opts.Logger == nil
	if ownLogger {
		opts.Logger = logging.New(opts.Logs, opts.Config.Log.Level)
	}
	if opts.Connect == nil {
		opts.Connect = authenticate
	}

	return &Runner{
		config:  opts.Config,
		logger:  opts.Logger,
		output:  opts.Output,
		logs:    opts.Logs,
		connect: opts.Connect,

		ownLogger: ownLogger,
	}
}

// authenticate runs the client-credentials flow against the Spotify accounts service.
func authenticate(ctx context.Context, creds credentials.Credentials, cache *auth.TokenCache, logger *log.Logger) (spotifyclient.Searcher, error) {
	opts := []auth.Option{auth.WithLogger(logger)}
	if cache != nil {
		opts = append(opts, auth.WithTokenCache(cache))
	}

	client, err := auth.New(creds, opts...).Authenticate(ctx)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// tokenCache returns the configured app-token cache, or nil when caching is off.
func (r *Runner) tokenCache() (*auth.TokenCache, error) {
	if !r.config.Auth.TokenCache {
		return nil, nil
	}
	return r.resolveTokenCache()
}

// resolveTokenCache returns the cache at the configured path, or the default location.
func (r *Runner) resolveTokenCache() (*auth.TokenCache, error) {
	path := r.config.Auth.TokenCachePath
	if path == "" {
		var err error
		if path, err = auth.DefaultTokenCachePath(); err != nil {
			return nil, err
		}
	}
	return auth.NewTokenCache(path), nil
}

// spotifyClient loads credentials and returns an authorized client wrapper.
// Credential problems are reported before any network activity.
func (r *Runner) spotifyClient(ctx context.Context, credentialsPath string) (*spotifyclient.Client, error) {
	creds, err := credentials.Load(credentialsPath)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("loaded credentials", "path", credentialsPath)

	cache, err := r.tokenCache()
	if err != nil {
		return nil, fmt.Errorf("locating token cache: %w", err)
	}

	api, err := r.connect(ctx, creds, cache, r.logger)
	if err != nil {
		return nil, err
	}
	return spotifyclient.New(api, spotifyclient.WithLogger(r.logger)), nil
}

// fetcher builds a year fetcher over client using the configured request timeout.
func (r *Runner) fetcher(client *spotifyclient.Client) (*catalog.Fetcher, error) {
	timeout, err := r.config.Fetch.Timeout()
	if err != nil {
		return nil, err
	}
	return catalog.New(client,
		catalog.WithLogger(r.logger),
		catalog.WithRequestTimeout(timeout),
	), nil
}
