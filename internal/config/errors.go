package config

import "errors"

// Configuration validation errors. Package-level sentinels allow callers
// to use errors.Is for programmatic handling while keeping human-readable
// messages.
var (
	// ErrEmptyQuery is returned when no search query is configured.
	ErrEmptyQuery = errors.New("empty query: provide a CenQL search query")

	// ErrNoTitles is returned when the title allow-list is empty.
	// With no titles nothing could ever match, which is almost certainly
	// a mistake rather than an intent.
	ErrNoTitles = errors.New("empty title allow-list: provide at least one HTML title")

	// ErrInvalidPerPage is returned when the page size is not positive.
	ErrInvalidPerPage = errors.New("invalid per-page: must be positive")

	// ErrInvalidMaxPages is returned when the page cap is negative.
	// Use 0 for unlimited pages.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative (0 = unlimited)")

	// ErrInvalidPageDelay is returned when the inter-page delay is negative.
	ErrInvalidPageDelay = errors.New("invalid page delay: must be non-negative")

	// ErrConflictingSummaryFormats is returned when both --json and
	// --markdown are specified. Only one summary format can be used.
	ErrConflictingSummaryFormats = errors.New("conflicting summary formats: --json and --markdown cannot be used together")

	// ErrMissingCredentials is returned when CENSYS_API_ID or
	// CENSYS_API_SECRET is absent or empty. This is fatal before any work.
	ErrMissingCredentials = errors.New("missing credentials: set CENSYS_API_ID and CENSYS_API_SECRET")
)
