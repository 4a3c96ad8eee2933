package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/justestif/go-spotify-year-tracks/internal/credentials"
	"github.com/justestif/go-spotify-year-tracks/internal/logging"
)

// ErrAuthentication is returned when Spotify rejects the client ID or secret.
var ErrAuthentication = errors.New("spotify authentication failed")

// Authenticator obtains app tokens with the client-credentials grant.
type Authenticator struct {
	config clientcredentials.Config
	cache  *TokenCache
	logger *log.Logger
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithTokenURL overrides the Spotify accounts token endpoint.
func WithTokenURL(url string) Option {
	return func(a *Authenticator) {
		a.config.TokenURL = url
	}
}

// WithTokenCache reuses still-valid tokens stored in cache.
func WithTokenCache(cache *TokenCache) Option {
	return func(a *Authenticator) {
		a.cache = cache
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(a *Authenticator) {
		a.logger = l
	}
}

// New creates an Authenticator for the given application credentials.
func New(creds credentials.Credentials, opts ...Option) *Authenticator {
	a := &Authenticator{
		config: clientcredentials.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			TokenURL:     spotifyauth.TokenURL,
		},
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authenticate returns a Spotify client authorized with an app token.
// A cached token is used while it is still valid; otherwise a new one is requested.
// Expired tokens are never refreshed in place.
func (a *Authenticator) Authenticate(ctx context.Context) (*spotify.Client, error) {
	token, err := a.Token(ctx)
	if err != nil {
		return nil, err
	}

	httpClient := spotifyauth.New().Client(ctx, token)
	return spotify.New(httpClient), nil
}

// Token returns a valid app token, from the cache when possible.
func (a *Authenticator) Token(ctx context.Context) (*oauth2.Token, error) {
	if a.cache != nil {
		cached, err := a.cache.LoadValid()
		if err != nil {
			a.logger.Warn("ignoring unreadable token cache", "path", a.cache.Path(), "err", err)
		} else if cached != nil {
			a.logger.Debug("using cached token", "expiry", cached.Expiry)
			return cached, nil
		}
	}

	token, err := a.config.Token(ctx)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, fmt.Errorf("%w: %w", ErrAuthentication, err)
		}
		return nil, fmt.Errorf("requesting token: %w", err)
	}
	a.logger.Debug("obtained app token", "expiry", token.Expiry)

	if a.cache != nil {
		if err := a.cache.Save(token); err != nil {
			// Log but don't fail; the token is usable.
			a.logger.Warn("failed to cache token", "err", err)
		}
	}

	return token, nil
}

// Logout removes the cached token, if a cache is configured.
func (a *Authenticator) Logout() error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Delete()
}
