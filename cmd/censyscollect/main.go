// Package main provides the entry point for the censyscollect CLI.
//
// censyscollect queries the Censys hosts search API for a textual
// service fingerprint, flattens the matching hosts into per-endpoint
// rows, and writes JSONL and CSV artifacts for later analysis.
//
// Usage:
//
//	censyscollect collect
//	censyscollect collect --query '<CenQL>' --max-pages 5
//
// See --help for all available options.
package main

// main is the entry point for censyscollect.
func main() {
	Execute()
}
