// Package config loads application settings from TOML, environment variables and defaults.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override file settings.
const (
	EnvCredentialsFile = "SPOTIFY_CREDENTIALS_FILE"
	EnvServerAddr      = "SPOTIFY_YEAR_TRACKS_ADDR"
	EnvLogLevel        = "LOG_LEVEL"
)

// ErrInvalidConfig is returned when settings fail validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the application configuration.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Fetch       FetchConfig       `toml:"fetch"`
	Output      OutputConfig      `toml:"output"`
	Server      ServerConfig      `toml:"server"`
	Auth        AuthConfig        `toml:"auth"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig locates the client credentials file.
type CredentialsConfig struct {
	Path string `toml:"path"`
}

// FetchConfig holds the default year range and request settings.
type FetchConfig struct {
	StartYear      int    `toml:"start_year"`
	EndYear        int    `toml:"end_year"`
	Limit          int    `toml:"limit"`
	RequestTimeout string `toml:"request_timeout"`
}

// OutputConfig controls how fetched tracks are printed.
type OutputConfig struct {
	Format string `toml:"format"`
	Head   int    `toml:"head"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// AuthConfig controls app-token caching.
type AuthConfig struct {
	TokenCache     bool   `toml:"token_cache"`
	TokenCachePath string `toml:"token_cache_path"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns the configuration embedded in config.example.toml.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// LoadConfig reads a TOML file over the defaults, so omitted keys keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// Load returns the file at path if it exists, the defaults otherwise,
// with environment overrides applied in both cases.
func Load(path string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = loaded
		}
	}

	config.ApplyEnv()
	return config, nil
}

// ApplyEnv overrides settings from environment variables that are set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvCredentialsFile); v != "" {
		c.Credentials.Path = v
	}
	if v := os.Getenv(EnvServerAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// Timeout parses the per-request timeout. An empty value means none.
func (f FetchConfig) Timeout() (time.Duration, error) {
	if f.RequestTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(f.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("%w: request_timeout %q: %w", ErrInvalidConfig, f.RequestTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: request_timeout must not be negative", ErrInvalidConfig)
	}
	return d, nil
}

// Validate checks the settings used by every command.
func (c *Config) Validate() error {
	if c.Credentials.Path == "" {
		return fmt.Errorf("%w: credentials path is empty", ErrInvalidConfig)
	}
	if c.Fetch.StartYear > c.Fetch.EndYear {
		return fmt.Errorf("%w: start_year %d after end_year %d", ErrInvalidConfig, c.Fetch.StartYear, c.Fetch.EndYear)
	}
	if c.Fetch.Limit < 1 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidConfig, c.Fetch.Limit)
	}
	if _, err := c.Fetch.Timeout(); err != nil {
		return err
	}
	return nil
}
