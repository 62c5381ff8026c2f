package pipeline

import (
	"time"

	"github.com/backmassage/labplot/internal/metrics"
)

// RunStats tracks aggregate counters across a batch run.
type RunStats struct {
	Total       int // Files discovered.
	Current     int // 1-based index of the file being processed.
	Plotted     int
	Skipped     int // Files missing a required column.
	RowsRead    int
	RowsDropped int // Rows with an unparseable timestamp.
	Samples     int // Values read across all plotted files.
	Points      int // Points drawn across all lines.
	Smoothed    int // Lines that went through the smoother.
	Output      string
	Elapsed     time.Duration
}

// PointsPerSecond returns the drawing throughput for the summary line.
func (s *RunStats) PointsPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Points) / s.Elapsed.Seconds()
}

// Metrics converts the stats into the exported metrics snapshot.
func (s *RunStats) Metrics(success bool, finished time.Time) metrics.Run {
	return metrics.Run{
		FilesFound:   s.Total,
		FilesPlotted: s.Plotted,
		FilesSkipped: s.Skipped,
		RowsDropped:  s.RowsDropped,
		Points:       s.Points,
		Duration:     s.Elapsed,
		Success:      success,
		Finished:     finished,
	}
}
