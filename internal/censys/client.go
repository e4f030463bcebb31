package censys

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/moltwatch/censyscollect/internal/config"
	"github.com/moltwatch/censyscollect/internal/model"
)

const (
	// DefaultBaseURL is the Censys search API base URL.
	DefaultBaseURL = "https://search.censys.io"

	// hostsSearchPath is the v2 hosts search endpoint.
	hostsSearchPath = "/api/v2/hosts/search"

	// defaultUserAgent identifies censyscollect in API requests.
	defaultUserAgent = "censyscollect/1.0 (+https://github.com/moltwatch/censyscollect)"
)

// DefaultFields is the field projection requested from the API.
// Restricting the response to the fields the flatten transform consumes
// keeps pages small and quota consumption low.
func DefaultFields() []string {
	return []string{
		"ip",
		"location.country",
		"location.province",
		"location.city",
		"location.postal_code",
		"location.latitude",
		"location.longitude",
		"autonomous_system.asn",
		"autonomous_system.name",
		"services.port",
		"services.service_name",
		"services.transport_protocol",
		"services.software.product",
		"services.software.vendor",
		"services.software.version",
		"services.endpoints.http.html_title",
		"services.endpoints.http.status_code",
		"services.endpoints.http.host",
		"services.endpoints.http.path",
		"services.endpoints.http.scheme",
	}
}

// SearchRequest describes one page request against the hosts search API.
type SearchRequest struct {
	// Query is the CenQL query string.
	Query string

	// PerPage is the requested page size.
	PerPage int

	// Cursor continues a previous page's result set. Empty for the first page.
	Cursor string

	// Fields is the field projection. Empty means the API's default view.
	Fields []string
}

// SearchPage is one page of search results.
type SearchPage struct {
	// Hits are the host documents in this page.
	Hits []model.HostDocument

	// NextCursor continues the result set. Empty when the set is exhausted.
	NextCursor string

	// Total is the API's estimate of the full result-set size.
	Total int64
}

// SearchClient is the capability the collector consumes: fetch one page of
// host documents. The concrete Client implements it; tests substitute fakes.
type SearchClient interface {
	SearchPage(ctx context.Context, req SearchRequest) (*SearchPage, error)
}

// Client is a hosts-search API client built on resty.
//
// A single shared resty client gives consistent auth/transport
// configuration and connection reuse across page fetches.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests to point the
// client at a local server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.http.SetBaseURL(baseURL)
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.http.SetHeader("User-Agent", ua)
	}
}

// WithLogger sets a custom logger for request debugging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a hosts-search client authenticated with the given
// credential pair.
func NewClient(creds config.Credentials, opts ...Option) *Client {
	httpClient := resty.New()
	httpClient.SetBaseURL(DefaultBaseURL)
	httpClient.SetBasicAuth(creds.APIID, creds.APISecret)
	httpClient.SetHeader("User-Agent", defaultUserAgent)
	httpClient.SetHeader("Accept", "application/json")
	httpClient.SetTimeout(config.DefaultTimeout)

	c := &Client{
		http:   httpClient,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// searchEnvelope is the API's response wrapper for hosts search.
type searchEnvelope struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Result struct {
		Query string         `json:"query"`
		Total int64          `json:"total"`
		Hits  []model.HostDocument `json:"hits"`
		Links struct {
			Next string `json:"next"`
			Prev string `json:"prev"`
		} `json:"links"`
	} `json:"result"`
}

// SearchPage fetches one page of results for the request.
// A non-2xx response maps to an *APIError carrying the HTTP status and the
// API's own code/message, so callers can classify rate-limit and quota
// conditions without string matching.
func (c *Client) SearchPage(ctx context.Context, req SearchRequest) (*SearchPage, error) {
	r := c.http.R().
		SetContext(ctx).
		SetQueryParam("q", req.Query).
		SetQueryParam("per_page", strconv.Itoa(req.PerPage))

	if req.Cursor != "" {
		r.SetQueryParam("cursor", req.Cursor)
	}
	if len(req.Fields) > 0 {
		r.SetQueryParam("fields", strings.Join(req.Fields, ","))
	}

	resp, err := r.Get(hostsSearchPath)
	if err != nil {
		return nil, fmt.Errorf("hosts search request failed: %w", err)
	}

	if resp.IsError() {
		return nil, newAPIError(resp.StatusCode(), resp.Body())
	}

	var envelope searchEnvelope
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode hosts search response: %w", err)
	}

	c.logger.Debug("fetched search page",
		"hits", len(envelope.Result.Hits),
		"total", envelope.Result.Total,
		"hasNext", envelope.Result.Links.Next != "",
	)

	return &SearchPage{
		Hits:       envelope.Result.Hits,
		NextCursor: envelope.Result.Links.Next,
		Total:      envelope.Result.Total,
	}, nil
}
