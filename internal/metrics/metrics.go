// Package metrics exports a run's counters in the Prometheus text format,
// for pickup by node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "labplot"

const lastSuccessName = namespace + "_last_success_timestamp_seconds"

// Run is the outcome of one batch run.
type Run struct {
	FilesFound   int
	FilesPlotted int
	FilesSkipped int
	RowsDropped  int
	Points       int
	Duration     time.Duration
	Success      bool
	Finished     time.Time

	// LastSuccess is when the most recent successful run finished. Zero
	// when no run has succeeded yet; the gauge is then omitted.
	LastSuccess time.Time
}

// Registry builds a registry holding the gauges for r. Series carry no
// labels so that every run overwrites the same series.
func Registry(r Run) *prometheus.Registry {
	reg := prometheus.NewRegistry()

	gauge := func(name, help string, v float64) {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
		g.Set(v)
		reg.MustRegister(g)
	}

	gauge("files_found", "Channel CSV files matching the input pattern.", float64(r.FilesFound))
	gauge("files_plotted", "Channel files drawn on the chart.", float64(r.FilesPlotted))
	gauge("files_skipped", "Channel files skipped for missing columns.", float64(r.FilesSkipped))
	gauge("rows_dropped", "Rows dropped for unparseable timestamps or missing fields.", float64(r.RowsDropped))
	gauge("points_plotted", "Points drawn across all lines.", float64(r.Points))
	gauge("run_duration_seconds", "Wall time of the run.", r.Duration.Seconds())

	success := 0.0
	if r.Success {
		success = 1
	}
	gauge("run_success", "1 if the run wrote its image, 0 otherwise.", success)
	if !r.LastSuccess.IsZero() {
		gauge("last_success_timestamp_seconds", "Unix time the last successful run finished.",
			float64(r.LastSuccess.UnixNano())/1e9)
	}
	return reg
}

// WriteTextfile writes r to path atomically. A successful run records its
// finish time as the last success; a failed run carries over the value
// already in the file.
func WriteTextfile(path string, r Run) error {
	if r.Success {
		r.LastSuccess = r.Finished
	} else if r.LastSuccess.IsZero() {
		r.LastSuccess = readLastSuccess(path)
	}
	if err := prometheus.WriteToTextfile(path, Registry(r)); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}

// readLastSuccess returns the last-success time in an earlier textfile, or
// the zero time when the file is missing, unparseable or lacks the gauge.
func readLastSuccess(path string) time.Time {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}
	}
	defer f.Close()

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(f)
	if err != nil {
		return time.Time{}
	}
	mf, ok := families[lastSuccessName]
	if !ok || len(mf.GetMetric()) == 0 {
		return time.Time{}
	}
	sec := mf.GetMetric()[0].GetGauge().GetValue()
	if sec <= 0 || math.IsNaN(sec) || math.IsInf(sec, 0) {
		return time.Time{}
	}
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(math.Round(frac*1e9)))
}
