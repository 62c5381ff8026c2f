// Package loader reads one per-channel CSV into timestamped records.
//
// A channel file has a header row naming at least the "timestamp" and
// "values" columns. Each data row is one acquisition batch: a date-time
// and a semicolon-separated list of samples taken together, for example
//
//	timestamp,values
//	2024-01-01T00:00:00,1;2;3
//
// Files without the required columns are rejected with [ErrUnsupported] so
// callers can skip them. Rows whose timestamp cannot be parsed are dropped
// and counted. A malformed sample is a [*ParseError]; unlike a bad
// timestamp it is not recoverable at the row level.
package loader
