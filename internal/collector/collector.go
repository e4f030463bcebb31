package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/moltwatch/censyscollect/internal/censys"
	"github.com/moltwatch/censyscollect/internal/config"
	"github.com/moltwatch/censyscollect/internal/model"
)

// Collector paginates through search results and accumulates host
// documents. One instance performs one collection run at a time; it keeps
// no state between runs.
type Collector struct {
	// client fetches one page per call.
	client censys.SearchClient

	// perPage is the page size requested from the API.
	perPage int

	// maxPages caps the number of pages fetched. 0 means unlimited:
	// collection continues until the API signals exhaustion or errors.
	maxPages int

	// delay is the cooperative self-throttling pause between page fetches.
	delay time.Duration

	// fields is the projection requested from the API.
	fields []string

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithPerPage sets the page size requested from the API.
func WithPerPage(perPage int) Option {
	return func(c *Collector) {
		c.perPage = perPage
	}
}

// WithMaxPages caps the number of pages fetched. 0 means unlimited.
func WithMaxPages(maxPages int) Option {
	return func(c *Collector) {
		c.maxPages = maxPages
	}
}

// WithPageDelay sets the pause between page fetches.
func WithPageDelay(delay time.Duration) Option {
	return func(c *Collector) {
		c.delay = delay
	}
}

// WithFields sets the field projection requested from the API.
func WithFields(fields []string) Option {
	return func(c *Collector) {
		c.fields = fields
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		c.logger = logger
	}
}

// New creates a Collector over the given search client.
func New(client censys.SearchClient, opts ...Option) *Collector {
	c := &Collector{
		client:  client,
		perPage: config.DefaultPerPage,
		delay:   config.DefaultPageDelay,
		fields:  censys.DefaultFields(),
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Result holds the outcome of one collection run.
type Result struct {
	// Documents are all host documents accumulated, in API order.
	Documents []model.HostDocument

	// Pages is the number of pages fetched.
	Pages int

	// Hosts is the number of host documents accumulated.
	Hosts int

	// ErrorNote is non-empty when collection stopped early because of an
	// error or cancellation. Documents accumulated before the stop are
	// still present and valid output.
	ErrorNote string
}

// Collect paginates through the query's result set and accumulates every
// host document. It never fails from the run's perspective: any page-fetch
// error terminates the loop with a warning and whatever was collected so
// far is returned as valid partial output.
//
// The loop terminates when:
//   - the page cap is reached (maxPages > 0),
//   - the API returns an empty page or no continuation cursor,
//   - the context is cancelled, or
//   - a page fetch fails.
func (c *Collector) Collect(ctx context.Context, query string) *Result {
	result := &Result{}
	cursor := ""

	for {
		page, err := c.client.SearchPage(ctx, censys.SearchRequest{
			Query:   query,
			PerPage: c.perPage,
			Cursor:  cursor,
			Fields:  c.fields,
		})
		if err != nil {
			c.logger.Warn("collection stopped by error",
				"pagesCompleted", result.Pages,
				"error", err,
			)
			result.ErrorNote = fmt.Sprintf("stopped after %d pages: %v", result.Pages, err)
			return result
		}

		if len(page.Hits) == 0 {
			return result
		}

		result.Pages++
		result.Hosts += len(page.Hits)
		result.Documents = append(result.Documents, page.Hits...)

		c.logger.Debug("page collected",
			"page", result.Pages,
			"hosts", len(page.Hits),
			"total", result.Hosts,
		)

		if c.maxPages > 0 && result.Pages >= c.maxPages {
			return result
		}
		if page.NextCursor == "" {
			return result
		}
		cursor = page.NextCursor

		// Cooperative self-throttling between requests
		if c.delay > 0 {
			select {
			case <-ctx.Done():
				result.ErrorNote = fmt.Sprintf("stopped after %d pages: %v", result.Pages, ctx.Err())
				return result
			case <-time.After(c.delay):
			}
		} else {
			select {
			case <-ctx.Done():
				result.ErrorNote = fmt.Sprintf("stopped after %d pages: %v", result.Pages, ctx.Err())
				return result
			default:
			}
		}
	}
}
