package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig tests the default configuration values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default query targets the control panels", func(t *testing.T) {
		t.Parallel()
		if cfg.Query != DefaultQuery {
			t.Errorf("got %q, expected default query", cfg.Query)
		}
	})

	t.Run("default titles", func(t *testing.T) {
		t.Parallel()
		if len(cfg.Titles) != 2 {
			t.Fatalf("got %d titles, expected 2", len(cfg.Titles))
		}
		if cfg.Titles[0] != "Moltbot Control" || cfg.Titles[1] != "clawdbot Control" {
			t.Errorf("unexpected default titles: %v", cfg.Titles)
		}
	})

	t.Run("default paging", func(t *testing.T) {
		t.Parallel()
		if cfg.PerPage != 100 {
			t.Errorf("got per-page %d, expected 100", cfg.PerPage)
		}
		if cfg.MaxPages != 0 {
			t.Errorf("got max pages %d, expected 0 (unlimited)", cfg.MaxPages)
		}
		if cfg.PageDelay != 200*time.Millisecond {
			t.Errorf("got delay %v, expected 200ms", cfg.PageDelay)
		}
	})

	t.Run("valid by default", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

// TestConfigValidate tests validation sentinels.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"empty query", func(c *Config) { c.Query = "" }, ErrEmptyQuery},
		{"no titles", func(c *Config) { c.Titles = nil }, ErrNoTitles},
		{"zero per-page", func(c *Config) { c.PerPage = 0 }, ErrInvalidPerPage},
		{"negative max pages", func(c *Config) { c.MaxPages = -1 }, ErrInvalidMaxPages},
		{"negative delay", func(c *Config) { c.PageDelay = -time.Second }, ErrInvalidPageDelay},
		{"conflicting formats", func(c *Config) { c.JSONSummary = true; c.MarkdownSummary = true }, ErrConflictingSummaryFormats},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, expected %v", err, tt.wantErr)
			}
		})
	}
}

// TestLoadCredentials tests environment credential loading.
// Not parallel: manipulates process environment.
func TestLoadCredentials(t *testing.T) {
	t.Run("both variables set", func(t *testing.T) {
		t.Setenv(EnvAPIID, "test-id")
		t.Setenv(EnvAPISecret, "test-secret")

		creds, err := LoadCredentials()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if creds.APIID != "test-id" || creds.APISecret != "test-secret" {
			t.Errorf("got %+v, expected loaded credentials", creds)
		}
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Setenv(EnvAPIID, "test-id")
		t.Setenv(EnvAPISecret, "")

		_, err := LoadCredentials()
		if !errors.Is(err, ErrMissingCredentials) {
			t.Errorf("got %v, expected ErrMissingCredentials", err)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		t.Setenv(EnvAPIID, "")
		t.Setenv(EnvAPISecret, "test-secret")

		_, err := LoadCredentials()
		if !errors.Is(err, ErrMissingCredentials) {
			t.Errorf("got %v, expected ErrMissingCredentials", err)
		}
	})
}

// TestLoadConfigFile tests YAML file loading and merging.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads and applies values", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, DefaultConfigFile)
		content := `
query: 'host.services.port = 8080'
titles:
  - "Custom Panel"
label: custom
perPage: 50
maxPages: 3
pageDelay: 1s
outDir: results
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg := NewConfig()
		cf.Apply(cfg)

		if cfg.Query != "host.services.port = 8080" {
			t.Errorf("got query %q", cfg.Query)
		}
		if len(cfg.Titles) != 1 || cfg.Titles[0] != "Custom Panel" {
			t.Errorf("got titles %v", cfg.Titles)
		}
		if cfg.PerPage != 50 || cfg.MaxPages != 3 {
			t.Errorf("got per-page %d max-pages %d", cfg.PerPage, cfg.MaxPages)
		}
		if cfg.PageDelay != time.Second {
			t.Errorf("got delay %v", cfg.PageDelay)
		}
		if cfg.OutDir != "results" {
			t.Errorf("got out dir %q", cfg.OutDir)
		}
	})

	t.Run("explicit zero maxPages applies", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, DefaultConfigFile)
		if err := os.WriteFile(path, []byte("maxPages: 0\n"), 0600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg := NewConfig()
		cfg.MaxPages = 5
		cf.Apply(cfg)
		if cfg.MaxPages != 0 {
			t.Errorf("got max pages %d, expected explicit 0 to apply", cfg.MaxPages)
		}
	})

	t.Run("missing file returns sentinel", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("got %v, expected ErrConfigNotFound", err)
		}
	})

	t.Run("malformed yaml returns error", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, DefaultConfigFile)
		if err := os.WriteFile(path, []byte("titles: [unclosed"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for malformed yaml")
		}
	})
}

// TestFindConfigFile tests the config file search order.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit path found", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "custom.yaml")
		if err := os.WriteFile(path, []byte("label: x\n"), 0600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("got %q, expected %q", got, path)
		}
	})

	t.Run("explicit path missing returns empty", func(t *testing.T) {
		t.Parallel()
		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); got != "" {
			t.Errorf("got %q, expected empty", got)
		}
	})
}
