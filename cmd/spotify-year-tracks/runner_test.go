package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-spotify-year-tracks/internal/auth"
	"github.com/justestif/go-spotify-year-tracks/internal/catalog"
	"github.com/justestif/go-spotify-year-tracks/internal/config"
	"github.com/justestif/go-spotify-year-tracks/internal/credentials"
	"github.com/justestif/go-spotify-year-tracks/internal/dataset"
	"github.com/justestif/go-spotify-year-tracks/internal/logging"
	spotifyclient "github.com/justestif/go-spotify-year-tracks/internal/spotify"
)

// fakeSpotify serves /search with two tracks per year, failing the years in failYears.
func fakeSpotify(t *testing.T, failYears ...string) (*httptest.Server, *[]string) {
	t.Helper()
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		queries = append(queries, q)
		year := strings.TrimPrefix(q, "year:")
		for _, fy := range failYears {
			if fy == year {
				http.Error(w, `{"error":{"status":500,"message":"boom"}}`, http.StatusInternalServerError)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"tracks":{"items":[
			{"name":"A%[1]s","uri":"spotify:track:a%[1]s","popularity":40,
			 "artists":[{"name":"Lead"},{"name":"Feat"}],
			 "album":{"name":"LP%[1]s","release_date":"%[1]s-01-01"}},
			{"name":"B%[1]s","uri":"spotify:track:b%[1]s","popularity":60,
			 "artists":[{"name":"Solo"}],
			 "album":{"name":"LP%[1]s","release_date":"%[1]s"}}
		],"limit":2,"offset":0,"total":2}}`, year)
	}))
	t.Cleanup(srv.Close)
	return srv, &queries
}

// connectTo returns a Connector that talks to srv and records whether it was called.
func connectTo(srv *httptest.Server, called *bool) Connector {
	return func(_ context.Context, _ credentials.Credentials, _ *auth.TokenCache, _ *log.Logger) (spotifyclient.Searcher, error) {
		*called = true
		return spotify.New(srv.Client(), spotify.WithBaseURL(srv.URL+"/")), nil
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func runApp(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	missingConfig := filepath.Join(t.TempDir(), "none.toml")
	argv := append([]string{"spotify-year-tracks", "--config", missingConfig}, args...)
	return r.app().Run(context.Background(), argv)
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner with nil options uses defaults", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})

		if runner.config == nil {
			t.Error("expected default config to be set")
		}
		if runner.logger == nil {
			t.Error("expected default logger to be set")
		}
		if runner.output != os.Stdout {
			t.Error("expected stdout output")
		}
		if runner.connect == nil {
			t.Error("expected default connector")
		}
		if !runner.ownLogger {
			t.Error("expected runner to own its logger")
		}
	})

	t.Run("NewRunner keeps provided logger", func(t *testing.T) {
		logger := logging.Discard()
		runner := NewRunner(RunnerOpts{Logger: logger})

		if runner.logger != logger {
			t.Error("expected logger to be set")
		}
		if runner.ownLogger {
			t.Error("provided logger must not be replaced")
		}
	})

	t.Run("register lists every command", func(t *testing.T) {
		var names []string
		for _, c := range NewRunner(RunnerOpts{}).register() {
			names = append(names, c.Name)
		}
		if diff := cmp.Diff([]string{"fetch", "serve", "logout"}, names); diff != "" {
			t.Errorf("commands mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestFetch(t *testing.T) {
	srv, queries := fakeSpotify(t)
	creds := writeFile(t, "creds.txt", "abc123\nSECRETXYZ\n")
	var called bool
	out := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Output: out, Logger: logging.Discard(), Connect: connectTo(srv, &called)})

	err := runApp(t, runner, "fetch",
		"--start", "2000", "--end", "2001", "--limit", "2",
		"--credentials", creds, "--format", "csv", "--head", "0",
	)
	if err != nil {
		t.Fatalf("fetch error = %v", err)
	}

	if diff := cmp.Diff([]string{"year:2000", "year:2001"}, *queries); diff != "" {
		t.Errorf("queries mismatch (-want +got):\n%s", diff)
	}

	want := strings.Join([]string{
		"name,uri,artist_name,album_name,release_date,popularity,query_year",
		"A2000,spotify:track:a2000,Lead,LP2000,2000-01-01,40,2000",
		"B2000,spotify:track:b2000,Solo,LP2000,2000,60,2000",
		"A2001,spotify:track:a2001,Lead,LP2001,2001-01-01,40,2001",
		"B2001,spotify:track:b2001,Solo,LP2001,2001,60,2001",
	}, "\n") + "\n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("csv output mismatch (-want +got):\n%s", diff)
	}
}

func TestFetch_HeadAndSummary(t *testing.T) {
	srv, _ := fakeSpotify(t)
	creds := writeFile(t, "creds.txt", "abc123\nSECRETXYZ\n")
	var called bool
	out := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Output: out, Logger: logging.Discard(), Connect: connectTo(srv, &called)})

	err := runApp(t, runner, "fetch",
		"--start", "2000", "--end", "2001", "--limit", "2",
		"--credentials", creds, "--format", "json", "--head", "1", "--summary",
	)
	if err != nil {
		t.Fatalf("fetch error = %v", err)
	}

	got := out.String()
	if strings.Count(got, `"name"`) != 1 {
		t.Errorf("expected one JSON record with --head 1, got:\n%s", got)
	}
	for _, line := range []string{
		"Fetched 4 tracks across 2 years",
		"2000: 2 tracks, mean popularity 50.0",
		"2001: 2 tracks, mean popularity 50.0",
	} {
		if !strings.Contains(got, line) {
			t.Errorf("summary missing %q in:\n%s", line, got)
		}
	}
}

func TestFetch_OutputFile(t *testing.T) {
	srv, _ := fakeSpotify(t)
	creds := writeFile(t, "creds.txt", "abc123\nSECRETXYZ\n")
	dest := filepath.Join(t.TempDir(), "tracks.csv")
	var called bool
	out := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Output: out, Logger: logging.Discard(), Connect: connectTo(srv, &called)})

	err := runApp(t, runner, "fetch",
		"--start", "1999", "--end", "1999", "--limit", "2",
		"--credentials", creds, "--format", "csv", "--output", dest,
	)
	if err != nil {
		t.Fatalf("fetch error = %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	// Files get every row unless --head is given.
	if lines := strings.Count(string(data), "\n"); lines != 3 {
		t.Errorf("got %d lines, want header + 2 rows:\n%s", lines, data)
	}
	if out.Len() != 0 {
		t.Errorf("stdout should be empty, got %q", out.String())
	}
}

func TestFetch_CredentialErrorsStopBeforeNetwork(t *testing.T) {
	tests := []struct {
		name    string
		creds   func(t *testing.T) string
		wantErr error
	}{
		{
			name:    "missing file",
			creds:   func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.txt") },
			wantErr: credentials.ErrMissingCredentialsFile,
		},
		{
			name:    "one line",
			creds:   func(t *testing.T) string { return writeFile(t, "creds.txt", "abc123\n") },
			wantErr: credentials.ErrMalformedCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, queries := fakeSpotify(t)
			var called bool
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: logging.Discard(), Connect: connectTo(srv, &called)})

			err := runApp(t, runner, "fetch", "--credentials", tt.creds(t))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if called || len(*queries) != 0 {
				t.Error("no network activity expected after a credential error")
			}
		})
	}
}

func TestFetch_InvalidArgsStopBeforeNetwork(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"limit above search cap", []string{"--limit", "51"}, catalog.ErrInvalidLimit},
		{"zero limit", []string{"--limit", "0"}, catalog.ErrInvalidLimit},
		{"start after end", []string{"--start", "2001", "--end", "2000"}, catalog.ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, queries := fakeSpotify(t)
			creds := writeFile(t, "creds.txt", "abc123\nSECRETXYZ\n")
			var called bool
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: logging.Discard(), Connect: connectTo(srv, &called)})

			args := append([]string{"fetch", "--credentials", creds}, tt.args...)
			err := runApp(t, runner, args...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if called || len(*queries) != 0 {
				t.Error("no network activity expected after an argument error")
			}
		})
	}
}

func TestFetch_YearFailureAborts(t *testing.T) {
	srv, queries := fakeSpotify(t, "2001")
	creds := writeFile(t, "creds.txt", "abc123\nSECRETXYZ\n")
	var called bool
	out := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Output: out, Logger: logging.Discard(), Connect: connectTo(srv, &called)})

	err := runApp(t, runner, "fetch",
		"--start", "2000", "--end", "2002", "--limit", "2", "--credentials", creds,
	)

	var yearErr *catalog.YearError
	if !errors.As(err, &yearErr) {
		t.Fatalf("error = %v, want *catalog.YearError", err)
	}
	if yearErr.Year != 2001 || !errors.Is(err, catalog.ErrRemoteRequest) {
		t.Errorf("error = %v, want remote failure for 2001", err)
	}
	if len(*queries) != 2 {
		t.Errorf("made %d requests, want 2 (stop after failing year)", len(*queries))
	}
	if out.Len() != 0 {
		t.Errorf("nothing should be rendered on failure, got %q", out.String())
	}
}

func TestFetch_InvalidFormat(t *testing.T) {
	srv, _ := fakeSpotify(t)
	var called bool
	runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: logging.Discard(), Connect: connectTo(srv, &called)})

	err := runApp(t, runner, "fetch", "--format", "xml")
	if err == nil || called {
		t.Errorf("error = %v, called = %v; want format error before connecting", err, called)
	}
}

func TestLogout(t *testing.T) {
	dir := t.TempDir()
	tokenPath := filepath.Join(dir, "token.json")
	if err := os.WriteFile(tokenPath, []byte(`{"access_token":"x"}`), 0600); err != nil {
		t.Fatalf("writing token: %v", err)
	}
	configPath := writeFile(t, "config.toml", fmt.Sprintf("[auth]\ntoken_cache_path = %q\n", tokenPath))

	runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: logging.Discard()})
	err := runner.app().Run(context.Background(), []string{"spotify-year-tracks", "--config", configPath, "logout"})
	if err != nil {
		t.Fatalf("logout error = %v", err)
	}

	if _, err := os.Stat(tokenPath); !os.IsNotExist(err) {
		t.Errorf("token file still present: %v", err)
	}
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	configPath := writeFile(t, "config.toml", "[fetch]\nlimit = 0\n")
	runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: logging.Discard()})

	err := runner.app().Run(context.Background(), []string{"spotify-year-tracks", "--config", configPath, "logout"})
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("error = %v, want ErrInvalidConfig", err)
	}
}

func TestFetch_Eras(t *testing.T) {
	srv, _ := fakeSpotify(t)
	creds := writeFile(t, "creds.txt", "abc123\nSECRETXYZ\n")
	var called bool
	out := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Output: out, Logger: logging.Discard(), Connect: connectTo(srv, &called)})

	err := runApp(t, runner, "fetch",
		"--start", "2000", "--end", "2001", "--limit", "2",
		"--credentials", creds, "--format", "csv", "--eras", "1", "--min-era-size", "1",
	)
	if err != nil {
		t.Fatalf("fetch error = %v", err)
	}

	for _, want := range []string{"Found 1 era from 4 tracks", "Era 1: 2000 to 2001 (4 tracks, popularity ~50)"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("missing %q in:\n%s", want, out.String())
		}
	}
}

type failingCloser struct {
	bytes.Buffer
	closed bool
}

func (f *failingCloser) Close() error {
	f.closed = true
	return errors.New("disk full")
}

func TestRenderAndClose_ReportsCloseError(t *testing.T) {
	wc := &failingCloser{}
	ds := dataset.New([]catalog.Record{{Name: "A", QueryYear: 2000}})

	err := renderAndClose(wc, ds, dataset.FormatCSV)
	if err == nil || !strings.Contains(err.Error(), "closing output file") {
		t.Fatalf("error = %v, want close error", err)
	}
	if !wc.closed {
		t.Error("writer was not closed")
	}
	if wc.Len() == 0 {
		t.Error("dataset was not rendered before closing")
	}
}
