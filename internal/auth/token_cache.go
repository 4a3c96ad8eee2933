// Package auth authenticates against Spotify with the client-credentials grant
// and optionally caches the resulting app token on disk.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
)

const (
	configDirName = "spotify-year-tracks"
	tokenFileName = "app-token.json"
)

// TokenCache keeps the client-credentials app token between runs. The grant
// issues no refresh token, so an expired entry is only ever replaced.
type TokenCache struct {
	path string
}

// appToken is the on-disk form. Only the fields a bearer app token carries are
// kept.
type appToken struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type,omitempty"`
	Expiry      time.Time `json:"expiry"`
}

// DefaultTokenCachePath returns ~/.config/spotify-year-tracks/app-token.json.
func DefaultTokenCachePath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("getting user config dir: %w", err)
	}
	return filepath.Join(configDir, configDirName, tokenFileName), nil
}

func NewTokenCache(path string) *TokenCache {
	return &TokenCache{path: path}
}

// Path is the cache file location, also reported by logout.
func (c *TokenCache) Path() string {
	return c.path
}

// Load returns the stored app token whether or not it has expired.
// A missing file yields (nil, nil).
func (c *TokenCache) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}

	var stored appToken
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("parsing token file: %w", err)
	}
	return &oauth2.Token{
		AccessToken: stored.AccessToken,
		TokenType:   stored.TokenType,
		Expiry:      stored.Expiry,
	}, nil
}

// LoadValid returns the stored token only while it is still usable. An
// expired token is deleted and (nil, nil) is returned so the caller requests
// a new one from the token endpoint.
func (c *TokenCache) LoadValid() (*oauth2.Token, error) {
	token, err := c.Load()
	if err != nil || token == nil {
		return nil, err
	}
	if token.Valid() {
		return token, nil
	}
	if err := c.Delete(); err != nil {
		return nil, err
	}
	return nil, nil
}

// Save stores token with owner-only permissions. Any refresh token is dropped.
func (c *TokenCache) Save(token *oauth2.Token) error {
	if token == nil {
		return errors.New("cannot save nil token")
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(appToken{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		Expiry:      token.Expiry,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}

// Delete removes the cache file. Deleting an absent cache is not an error.
func (c *TokenCache) Delete() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}
