// Package censys provides a client for the Censys hosts-search API (v2).
//
// The client handles authentication (HTTP basic auth from the API
// credential pair), transport configuration, and error mapping. It exposes
// one page per call through SearchPage; the collector package drives the
// cursor-based pagination on top of it.
//
// The client does not retry: rate-limit and quota responses are surfaced
// as typed API errors so the caller can stop collecting and keep whatever
// it already accumulated.
package censys
