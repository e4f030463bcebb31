// Package model defines the core data structures shared across censyscollect.
//
// The central type is HostDocument, a tolerantly-decoded view of one record
// returned by the Censys hosts-search API. Decoding is shape-checked per
// field: a missing or wrong-typed field degrades to an absent value (nil
// pointer / empty slice) instead of failing the whole document. This mirrors
// the loosely-typed responses the API actually returns in practice.
//
// FlattenedRow is the ephemeral per-endpoint row derived from a
// HostDocument by the flatten package, and CollectionRun carries the
// accumulated state and counters of one collection run through the
// pipeline and into storage.
package model
