package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "creds.txt")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantID     string
		wantSecret string
		wantErr    error
	}{
		{
			name:       "two lines with trailing newline",
			content:    "abc123\nSECRETXYZ\n",
			wantID:     "abc123",
			wantSecret: "SECRETXYZ",
		},
		{
			name:       "second line without newline",
			content:    "abc123\nSECRETXYZ",
			wantID:     "abc123",
			wantSecret: "SECRETXYZ",
		},
		{
			name:       "windows line endings",
			content:    "abc123\r\nSECRETXYZ\r\n",
			wantID:     "abc123",
			wantSecret: "SECRETXYZ",
		},
		{
			name:       "extra lines ignored",
			content:    "abc123\nSECRETXYZ\nnotes\n",
			wantID:     "abc123",
			wantSecret: "SECRETXYZ",
		},
		{
			name:    "single line",
			content: "abc123\n",
			wantErr: ErrMalformedCredentials,
		},
		{
			name:    "empty file",
			content: "",
			wantErr: ErrMalformedCredentials,
		},
		{
			name:    "blank secret",
			content: "abc123\n\n",
			wantErr: ErrMalformedCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(writeFile(t, tt.content))

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Load() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if got != (Credentials{}) {
					t.Errorf("Load() = %v, want zero value on error", got)
				}
				return
			}

			if got.ClientID != tt.wantID {
				t.Errorf("ClientID = %q, want %q", got.ClientID, tt.wantID)
			}
			if got.ClientSecret != tt.wantSecret {
				t.Errorf("ClientSecret = %q, want %q", got.ClientSecret, tt.wantSecret)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "creds.txt")

	_, err := Load(path)
	if !errors.Is(err, ErrMissingCredentialsFile) {
		t.Errorf("Load() error = %v, want ErrMissingCredentialsFile", err)
	}
}

func TestLoad_Directory(t *testing.T) {
	_, err := Load(t.TempDir())
	if !errors.Is(err, ErrMissingCredentialsFile) {
		t.Errorf("Load() error = %v, want ErrMissingCredentialsFile", err)
	}
}

func TestCredentials_StringRedactsSecret(t *testing.T) {
	creds := Credentials{ClientID: "abc123", ClientSecret: "SECRETXYZ"}

	for _, format := range []string{"%v", "%+v", "%s", "%#v"} {
		out := fmt.Sprintf(format, creds)
		if strings.Contains(out, "SECRETXYZ") {
			t.Errorf("Sprintf(%q) = %q, leaks secret", format, out)
		}
		if !strings.Contains(out, "abc123") {
			t.Errorf("Sprintf(%q) = %q, want client ID", format, out)
		}
	}
}
