// Package flatten transforms host documents into per-endpoint CSV rows.
//
// Flatten is a pure function: it never errors and never mutates its input.
// Missing or wrong-typed nested fields are already absent after the
// model's tolerant decoding, so they simply carry through as empty cells.
package flatten
