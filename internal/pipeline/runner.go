package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/backmassage/labplot/internal/config"
	"github.com/backmassage/labplot/internal/display"
	"github.com/backmassage/labplot/internal/export"
	"github.com/backmassage/labplot/internal/loader"
	"github.com/backmassage/labplot/internal/logging"
	"github.com/backmassage/labplot/internal/metrics"
	"github.com/backmassage/labplot/internal/naming"
	"github.com/backmassage/labplot/internal/reconstruct"
	"github.com/backmassage/labplot/internal/render"
	"github.com/backmassage/labplot/internal/smooth"
)

// Run is the top-level batch entry point. It discovers the channel files,
// draws each one onto a single figure and saves it to cfg.OutputPath().
//
// The returned error is non-nil when no input files exist, a value token is
// malformed, a file cannot be read, the image cannot be written, or ctx is
// cancelled. Stats are returned in every case.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger) (RunStats, error) {
	var stats RunStats
	start := time.Now()

	err := run(ctx, cfg, log, &stats)

	stats.Elapsed = time.Since(start)
	if cfg.MetricsFile != "" {
		m := stats.Metrics(err == nil, time.Now())
		if merr := metrics.WriteTextfile(cfg.MetricsFile, m); merr != nil {
			log.Warn("%v", merr)
		} else {
			log.Debug(cfg.Verbose, "Metrics written: %s", cfg.MetricsFile)
		}
	}
	if err == nil {
		logSummary(log, &stats)
	}
	return stats, err
}

func run(ctx context.Context, cfg *config.Config, log *logging.Logger, stats *RunStats) error {
	files, err := Discover(cfg.DataDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", ErrNoInputFiles, cfg.DataDir)
	}
	stats.Total = len(files)

	strategy := reconstruct.NewStrategy(cfg.Mode, cfg.RateHz)
	filter := newFilter(cfg, log)
	logBatchHeader(cfg, log, stats, strategy, filter)

	opts := render.DefaultOptions()
	opts.LegendColumns = cfg.LegendColumns
	fig := render.NewFigure(opts)
	defer fig.Close()

	labels := naming.NewLabelResolver()
	var sheets []export.Sheet
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("interrupted after %d of %d files: %w", i, stats.Total, err)
		}
		stats.Current = i + 1

		ch, err := loadChannel(path, strategy, filter)
		if errors.Is(err, loader.ErrUnsupported) {
			stats.Skipped++
			if cfg.LogSkips {
				log.Warn("Skipping %s: missing required columns.", path)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}

		if err := fig.AddLine(ch.name.Label, ch.series.Times, ch.series.Values); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		recordChannel(cfg, log, stats, ch)

		if cfg.XLSXFile != "" {
			sheets = append(sheets, export.Sheet{
				Name:   labels.Resolve(path, ch.name),
				Times:  ch.series.Times,
				Values: ch.series.Values,
			})
		}
	}

	out := cfg.OutputPath()
	log.Render("Rendering %d lines at %d DPI", fig.Lines(), opts.DPI)
	if err := fig.Save(out); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	stats.Output = out
	stats.Points = fig.Points()
	log.Success("Saved combined plot: %s", out)
	if fi, err := os.Stat(out); err == nil {
		log.Debug(cfg.Verbose, "  %s, %d lines", display.FormatBytes(fi.Size()), fig.Lines())
	}

	if len(sheets) > 0 {
		if err := export.WriteXLSX(cfg.XLSXFile, sheets); err != nil {
			return err
		}
		log.Info("Exported %d series: %s", len(sheets), cfg.XLSXFile)
	}
	return nil
}

// newFilter designs the smoother once for the run. A window or order the
// filter cannot use disables smoothing with a warning.
func newFilter(cfg *config.Config, log *logging.Logger) *smooth.Filter {
	if !cfg.Smooth {
		return nil
	}
	f := smooth.New(cfg.SmoothWindow, cfg.SmoothPoly)
	if !f.Available() {
		log.Warn("Smoothing disabled: %v", f.Err())
		return nil
	}
	return f
}

func recordChannel(cfg *config.Config, log *logging.Logger, stats *RunStats, ch *channel) {
	stats.Plotted++
	stats.RowsRead += ch.file.Rows
	stats.RowsDropped += ch.file.Dropped
	stats.Samples += ch.file.Samples()
	if ch.smoothed {
		stats.Smoothed++
	}

	log.Debug(cfg.Verbose, "[%d/%d] %s: %d rows, %d points",
		stats.Current, stats.Total, ch.name.Label, ch.file.Rows, ch.series.Len())
	if ch.file.Dropped > 0 {
		log.Debug(cfg.Verbose, "  dropped %d rows with unreadable timestamps", ch.file.Dropped)
	}
}

// --- Logging helpers ---

func logBatchHeader(cfg *config.Config, log *logging.Logger, stats *RunStats, s reconstruct.Strategy, f *smooth.Filter) {
	log.Info("Found %d files in %s", stats.Total, cfg.DataDir)
	if e, ok := s.(reconstruct.Expand); ok {
		log.Info("Mode: expand at %s", display.FormatRate(e.Rate))
	} else {
		log.Info("Mode: mean per batch")
	}
	if cfg.Mode == config.ModeExpand && cfg.RateHz <= 0 {
		log.Debug(cfg.Verbose, "Expand mode needs RATE_HZ > 0, using mean")
	}
	if f.Available() {
		log.Info("Smoothing: Savitzky-Golay (window %d, order %d)", f.Window(), f.Poly())
	} else {
		log.Info("Smoothing: off")
	}
	log.Debug(cfg.Verbose, "Output: %s", cfg.OutputPath())
}

func logSummary(log *logging.Logger, stats *RunStats) {
	log.Info("==============================")
	log.Info("Done: %d plotted, %d skipped", stats.Plotted, stats.Skipped)
	log.Info("Summary report:")
	log.Info("  Rows read: %s (%s dropped)",
		display.FormatCount(int64(stats.RowsRead)), display.FormatCount(int64(stats.RowsDropped)))
	log.Info("  Points plotted: %s", display.FormatCount(int64(stats.Points)))
	log.Info("  Elapsed: %s (%s points/s)",
		display.FormatDuration(stats.Elapsed), display.FormatCount(int64(stats.PointsPerSecond())))
	if stats.Plotted == 0 {
		log.Warn("  No channel had the required columns; the chart is empty")
	}
}
