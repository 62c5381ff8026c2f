package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/backmassage/labplot/internal/config"
	"github.com/backmassage/labplot/internal/display"
	"github.com/backmassage/labplot/internal/loader"
	"github.com/backmassage/labplot/internal/logging"
	"github.com/backmassage/labplot/internal/naming"
	"github.com/backmassage/labplot/internal/reconstruct"
	"github.com/backmassage/labplot/internal/term"
)

// channelRow holds the per-channel figures for the analysis table.
type channelRow struct {
	Label   string
	Rows    int
	Dropped int
	Samples int
	Points  int
	Mean    float64
	Min     float64
	Max     float64
	StdDev  float64
}

// Analyze discovers the channel files, loads and reconstructs each one the
// way Run would, and prints a per-channel table with statistical outlier
// highlighting of the channel means. No image is written.
func Analyze(ctx context.Context, cfg *config.Config, log *logging.Logger) error {
	return analyze(ctx, cfg, log, os.Stdout)
}

func analyze(ctx context.Context, cfg *config.Config, log *logging.Logger, w io.Writer) error {
	files, err := Discover(cfg.DataDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", ErrNoInputFiles, cfg.DataDir)
	}

	total := len(files)
	log.Info("Analyzing %d files in %s …", total, cfg.DataDir)

	strategy := reconstruct.NewStrategy(cfg.Mode, cfg.RateHz)
	labels := naming.NewLabelResolver()
	var rows []channelRow
	var skipped, failed int

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			log.Warn("Interrupted")
			return err
		}

		ch, err := loadChannel(path, strategy, nil)
		switch {
		case errors.Is(err, loader.ErrUnsupported):
			skipped++
			if cfg.LogSkips {
				log.Warn("Skip (missing columns): %s", filepath.Base(path))
			}
			continue
		case err != nil:
			failed++
			log.Error("%s: %v", filepath.Base(path), err)
			continue
		}
		row := summarize(ch)
		row.Label = labels.Resolve(path, ch.name)
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		log.Warn("No channel could be loaded")
		return nil
	}

	var means []float64
	for _, r := range rows {
		if !math.IsNaN(r.Mean) {
			means = append(means, r.Mean)
		}
	}
	bounds := computeStats(means)

	fmt.Fprintln(w)
	printAnalysisTable(w, rows, bounds)
	printAnalysisSummary(log, rows, bounds, skipped, failed)
	return nil
}

// summarize computes the table row for one channel over its finite values.
func summarize(ch *channel) channelRow {
	row := channelRow{
		Label:   ch.name.Label,
		Rows:    ch.file.Rows,
		Dropped: ch.file.Dropped,
		Samples: ch.file.Samples(),
		Points:  ch.series.Len(),
		Mean:    math.NaN(),
		Min:     math.NaN(),
		Max:     math.NaN(),
		StdDev:  math.NaN(),
	}
	vals := make([]float64, 0, len(ch.series.Values))
	for _, v := range ch.series.Values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return row
	}
	row.Mean, row.StdDev = stat.MeanStdDev(vals, nil)
	row.Min, row.Max = floats.Min(vals), floats.Max(vals)
	if len(vals) == 1 {
		row.StdDev = 0
	}
	return row
}

// iqrBounds holds the IQR-based thresholds for outlier classification.
type iqrBounds struct {
	q1, q3    float64
	outlierLo float64 // Q1 - 1.5*IQR
	outlierHi float64 // Q3 + 1.5*IQR
	extremeLo float64 // Q1 - 3.0*IQR
	extremeHi float64 // Q3 + 3.0*IQR
	valid     bool
}

func computeStats(vals []float64) iqrBounds {
	if len(vals) < 4 {
		return iqrBounds{}
	}

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	q1 := stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	q3 := stat.Quantile(0.75, stat.LinInterp, sorted, nil)
	iqr := q3 - q1

	return iqrBounds{
		q1:        q1,
		q3:        q3,
		outlierLo: q1 - 1.5*iqr,
		outlierHi: q3 + 1.5*iqr,
		extremeLo: q1 - 3.0*iqr,
		extremeHi: q3 + 3.0*iqr,
		valid:     iqr > 0,
	}
}

// classify returns "" (normal), "outlier", or "extreme" for a value.
func (b *iqrBounds) classify(v float64) string {
	if !b.valid || math.IsNaN(v) {
		return ""
	}
	if v < b.extremeLo || v > b.extremeHi {
		return "extreme"
	}
	if v < b.outlierLo || v > b.outlierHi {
		return "outlier"
	}
	return ""
}

func printAnalysisTable(w io.Writer, rows []channelRow, bounds iqrBounds) {
	headers := []string{"Channel", "Rows", "Dropped", "Samples", "Mean", "Min", "Max", "Std Dev"}
	cells := make([][]string, len(rows))
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for i, r := range rows {
		cells[i] = []string{
			r.Label,
			display.FormatCount(int64(r.Rows)),
			display.FormatCount(int64(r.Dropped)),
			display.FormatCount(int64(r.Samples)),
			fmtValue(r.Mean),
			fmtValue(r.Min),
			fmtValue(r.Max),
			fmtValue(r.StdDev),
		}
		for j, c := range cells[i] {
			if len(c) > widths[j] {
				widths[j] = len(c)
			}
		}
	}

	var hb strings.Builder
	for j, h := range headers {
		if j == 0 {
			fmt.Fprintf(&hb, "  %-*s", widths[j], h)
		} else {
			fmt.Fprintf(&hb, "  %*s", widths[j], h)
		}
	}
	header := hb.String()
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, term.Paint(term.Dim, "  "+strings.Repeat("─", len(header)-2)))

	for i, r := range rows {
		class := bounds.classify(r.Mean)
		var lb strings.Builder
		for j, c := range cells[i] {
			switch {
			case j == 0:
				fmt.Fprintf(&lb, "  %-*s", widths[j], c)
			case j == 4:
				// Pad the plain text first, then wrap in ANSI color, so
				// escape bytes do not count toward the column width.
				lb.WriteString("  " + colorPad(c, widths[j], class))
			default:
				fmt.Fprintf(&lb, "  %*s", widths[j], c)
			}
		}
		if flag := formatFlag(class); flag != "" {
			lb.WriteString("  " + flag)
		}
		fmt.Fprintln(w, lb.String())
	}
	fmt.Fprintln(w)
}

func printAnalysisSummary(log *logging.Logger, rows []channelRow, bounds iqrBounds, skipped, failed int) {
	var outliers, extremes int
	for _, r := range rows {
		switch bounds.classify(r.Mean) {
		case "extreme":
			extremes++
		case "outlier":
			outliers++
		}
	}

	log.Info("Analyzed %d channels (%d skipped, %d unreadable)", len(rows), skipped, failed)
	if bounds.valid {
		log.Info("  Channel mean IQR: %.4g – %.4g (outlier < %.4g or > %.4g)",
			bounds.q1, bounds.q3, bounds.outlierLo, bounds.outlierHi)
	}
	if outliers > 0 {
		log.Outlier("  %d outlier(s) flagged [*]", outliers)
	}
	if extremes > 0 {
		log.Error("  %d extreme outlier(s) flagged [!]", extremes)
	}
	if outliers == 0 && extremes == 0 {
		log.Success("  No outliers detected")
	}
}

func fmtValue(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.4g", v)
}

func formatFlag(class string) string {
	switch class {
	case "extreme":
		return term.Paint(term.Red, "[!]")
	case "outlier":
		return term.Paint(term.Orange, "[*]")
	default:
		return ""
	}
}

// colorPad right-aligns s to width, then wraps it in the class color.
func colorPad(s string, width int, class string) string {
	padded := fmt.Sprintf("%*s", width, s)
	switch class {
	case "extreme":
		return term.Paint(term.Red, padded)
	case "outlier":
		return term.Paint(term.Orange, padded)
	default:
		return padded
	}
}
