// Package pipeline runs one batch: discover the channel CSVs in a
// directory, load each one, rebuild its time axis, smooth it, and draw every
// channel on a single chart.
//
// Files are processed sequentially in sorted name order. A file missing a
// required column is skipped; a malformed value aborts the whole run so a
// partially plotted chart is never written. [Analyze] shares the same
// loading path but prints a per-channel report instead of rendering.
package pipeline
