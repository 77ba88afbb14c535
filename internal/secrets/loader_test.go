package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "key")
	if err := os.WriteFile(keyFile, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}

	t.Setenv("GUNGHAB_TEST_KEY", " from-env ")

	tests := []struct {
		name   string
		src    Source
		expect string
	}{
		{
			name:   "file wins over value and env",
			src:    Source{Name: "openai api key", Value: "inline", File: keyFile, Env: "GUNGHAB_TEST_KEY"},
			expect: "from-file",
		},
		{
			name:   "value wins over env",
			src:    Source{Name: "openai api key", Value: " inline ", Env: "GUNGHAB_TEST_KEY"},
			expect: "inline",
		},
		{
			name:   "env used last",
			src:    Source{Name: "openai api key", Env: "GUNGHAB_TEST_KEY"},
			expect: "from-env",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, []byte("   \n"), 0o600); err != nil {
		t.Fatalf("write empty file: %v", err)
	}

	if _, err := Load(Source{Name: "gemini api key"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	if _, err := Load(Source{File: empty}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured for empty file, got %v", err)
	}

	_, err := Load(Source{File: filepath.Join(dir, "missing")})
	if err == nil || errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected read error for missing file, got %v", err)
	}

	if _, err := Load(Source{Env: "GUNGHAB_TEST_UNSET_VARIABLE"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured for unset env, got %v", err)
	}
}
