package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These mirror the Censys SDK defaults where applicable and conservative
// politeness settings elsewhere.
const (
	// DefaultQuery targets Moltbot / clawdbot control panels located in
	// Japan. It is the fingerprint this tool was built to track; any CenQL
	// query can be substituted via the --query flag.
	DefaultQuery = `(host.services.endpoints.http.html_title:{"Moltbot Control", "clawdbot Control"}) and host.location.country = "Japan"`

	// DefaultLabel is the short name embedded in output file names.
	DefaultLabel = "moltbot_clawdbot"

	// DefaultPerPage is the page size requested from the search API.
	// 100 is the API's own default and its usual maximum.
	DefaultPerPage = 100

	// DefaultMaxPages of 0 means unlimited: collection continues until the
	// API signals exhaustion or an error (rate limit, quota) stops it.
	DefaultMaxPages = 0

	// DefaultPageDelay is the pause between page fetches. The API enforces
	// its own rate limits; this self-throttling keeps well under them.
	DefaultPageDelay = 200 * time.Millisecond

	// DefaultOutDir is where the JSONL and CSV artifacts are written.
	DefaultOutDir = "out"

	// DefaultTimeout is the per-request HTTP timeout against the API.
	DefaultTimeout = 30 * time.Second

	// AppName is the application name used for XDG directory paths.
	AppName = "censyscollect"
)

// DefaultTitles is the HTML title allow-list used to select which
// endpoints produce flattened rows. Matching is exact and case-sensitive.
func DefaultTitles() []string {
	return []string{"Moltbot Control", "clawdbot Control"}
}

// Config holds all options for a collection run. It is populated from
// defaults, the optional YAML file, and CLI flags, then passed into the
// pipeline by dependency injection rather than read from global state.
type Config struct {
	// Query is the CenQL search query to execute.
	Query string

	// Titles is the HTML title allow-list. Only endpoints whose
	// http.html_title exactly matches an entry produce CSV rows.
	Titles []string

	// Label is the short name embedded in output file names:
	// censys_hosts_jp_<label>_<date>.{jsonl,csv}.
	Label string

	// PerPage is the number of results requested per API page.
	PerPage int

	// MaxPages caps the number of pages fetched. 0 means unlimited.
	MaxPages int

	// PageDelay is the pause between page fetches. Zero disables it.
	PageDelay time.Duration

	// OutDir is the directory for output artifacts. Created if missing.
	OutDir string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// Verbose enables slog.LevelDebug output. When false, only warnings
	// and errors are logged.
	Verbose bool

	// ConfigFilePath is an explicit config file path. When empty, the
	// tool searches for .censyscollect in the current and home directories.
	ConfigFilePath string

	// JSONSummary and MarkdownSummary select the run-summary output
	// format. Both false means the human-readable text summary.
	// They are mutually exclusive.
	JSONSummary     bool
	MarkdownSummary bool

	// SummaryFile is an optional file path for the run summary.
	// Empty means stdout.
	SummaryFile string

	// DBDir is the directory for the run-history SQLite database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to record the run in the history database.
	SaveToDB bool
}

// NewConfig creates a Config with default values. Many defaults are
// non-zero, so relying on zero values would be wrong; the constructor
// also documents what the defaults are.
func NewConfig() *Config {
	return &Config{
		Query:     DefaultQuery,
		Titles:    DefaultTitles(),
		Label:     DefaultLabel,
		PerPage:   DefaultPerPage,
		MaxPages:  DefaultMaxPages,
		PageDelay: DefaultPageDelay,
		OutDir:    DefaultOutDir,
		Timeout:   DefaultTimeout,
	}
}

// XDGDataDir returns the XDG data directory for censyscollect.
// On Linux: ~/.local/share/censyscollect.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It runs once after flag parsing, before any network call, so a bad
// configuration never produces partial output.
func (c *Config) Validate() error {
	if c.Query == "" {
		return ErrEmptyQuery
	}
	if len(c.Titles) == 0 {
		return ErrNoTitles
	}
	if c.PerPage <= 0 {
		return ErrInvalidPerPage
	}
	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}
	if c.PageDelay < 0 {
		return ErrInvalidPageDelay
	}
	if c.JSONSummary && c.MarkdownSummary {
		return ErrConflictingSummaryFormats
	}
	return nil
}
