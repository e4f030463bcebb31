// Package export writes collection results to disk. It produces two
// artifacts per run: a JSONL file with one raw host document per line,
// and a CSV file with the flattened per-endpoint rows. File names embed
// the run label and the current date in Japan Standard Time so repeated
// runs on the same day overwrite each other while runs on different
// days accumulate.
package export
