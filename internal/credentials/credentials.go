// Package credentials loads Spotify client credentials from a two-line file.
package credentials

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrMissingCredentialsFile is returned when the credentials file does not exist or cannot be read.
	ErrMissingCredentialsFile = errors.New("credentials file missing or unreadable")

	// ErrMalformedCredentials is returned when the file does not hold a client ID and secret on two lines.
	ErrMalformedCredentials = errors.New("malformed credentials file")
)

// Credentials holds a Spotify application's client ID and secret.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// String redacts the secret so credentials never end up in logs.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{ClientID: %q, ClientSecret: [redacted]}", c.ClientID)
}

// GoString keeps %#v from printing the secret.
func (c Credentials) GoString() string {
	return c.String()
}

// Load reads the credentials file at path.
// Line 1 is the client ID and line 2 the client secret; anything after is ignored.
// Returns ErrMissingCredentialsFile if the file cannot be opened or read,
// and ErrMalformedCredentials if fewer than two non-empty lines are present.
func Load(path string) (Credentials, error) {
	f, err := os.Open(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %s: %w", ErrMissingCredentialsFile, path, err)
	}
	defer f.Close()

	// bufio.ScanLines drops "\n" and a trailing "\r".
	scanner := bufio.NewScanner(f)
	lines := make([]string, 0, 2)
	for len(lines) < 2 && scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return Credentials{}, fmt.Errorf("%w: reading %s: %w", ErrMissingCredentialsFile, path, err)
	}

	if len(lines) < 2 {
		return Credentials{}, fmt.Errorf("%w: expected 2 lines, found %d", ErrMalformedCredentials, len(lines))
	}

	creds := Credentials{
		ClientID:     strings.TrimRight(lines[0], "\r\n"),
		ClientSecret: strings.TrimRight(lines[1], "\r\n"),
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return Credentials{}, fmt.Errorf("%w: client ID and secret must not be empty", ErrMalformedCredentials)
	}

	return creds, nil
}
