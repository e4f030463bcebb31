// Package collector drives cursor-based pagination against the hosts
// search API and accumulates every returned host document.
//
// The loop is uniform: request a page, append its hits, follow the next
// cursor, optionally sleep, repeat until the page cap is reached, the
// API signals exhaustion, or an error occurs. Errors never discard work:
// the collector logs a warning with the number of completed pages and
// returns everything accumulated so far, recording why it stopped.
package collector
