package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into reconstruction, smoothing, output, display and utility.
// Negated flags (e.g. --no-smooth) are applied after Parse so Config values hold unless set.

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

// ErrHelpShown and ErrVersionShown are returned by [ParseFlags] after it has
// printed the help text or the version. Callers should exit successfully.
var (
	ErrHelpShown    = errors.New("help requested")
	ErrVersionShown = errors.New("version requested")
)

// usageOut is where help text goes; tests swap it out.
var usageOut io.Writer = os.Stderr

// ParseFlags parses args (without the program name) into cfg.
// On error it returns non-nil (e.g. unknown flag, too many positional args).
func ParseFlags(cfg *Config, args []string, version string) error {
	fs := pflag.NewFlagSet("labplot", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	// Negated/override flags: we capture bools then apply to cfg after Parse,
	// so that values from defaults, file and env hold unless the user passes the flag.
	var negated negatedFlags

	defineReconstructionFlags(fs, cfg)
	defineSmoothingFlags(fs, cfg, &negated)
	defineOutputFlags(fs, cfg, &negated)
	defineDisplayFlags(fs, cfg, &negated)
	defineUtilityFlags(fs, cfg, &negated)

	if err := fs.Parse(args); err != nil {
		return err
	}

	if negated.showHelp {
		printUsage(usageOut, version)
		return ErrHelpShown
	}
	if negated.showVersion {
		fmt.Fprintln(os.Stdout, "labplot v"+version)
		return ErrVersionShown
	}

	applyNegatedFlags(cfg, &negated)
	return parsePositionalArgs(fs, cfg)
}

// negatedFlags holds boolean flags that are applied after Parse.
// These either invert a setting (e.g. noSmooth -> Smooth=false) or trigger exit (showHelp, showVersion).
type negatedFlags struct {
	noSmooth    bool
	cwdOutput   bool
	quietSkips  bool
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

// defineReconstructionFlags registers -m/--mode and -r/--rate.
func defineReconstructionFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.VarP(&cfg.Mode, "mode", "m", "Axis reconstruction: mean | expand")
	fs.Float64VarP(&cfg.RateHz, "rate", "r", cfg.RateHz, "Sampling rate in Hz for expand mode")
}

// defineSmoothingFlags registers -w/--smooth-window, -p/--smooth-poly and --no-smooth.
func defineSmoothingFlags(fs *pflag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.IntVarP(&cfg.SmoothWindow, "smooth-window", "w", cfg.SmoothWindow, "Savitzky-Golay window length (odd)")
	fs.IntVarP(&cfg.SmoothPoly, "smooth-poly", "p", cfg.SmoothPoly, "Savitzky-Golay polynomial order (< window)")
	fs.BoolVar(&n.noSmooth, "no-smooth", false, "Disable smoothing")
}

// defineOutputFlags registers the image path, its location variant, the legend and exports.
func defineOutputFlags(fs *pflag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.StringVarP(&cfg.OutputFile, "output", "o", cfg.OutputFile, "Output image filename (.png, .jpg, .tif)")
	fs.BoolVar(&n.cwdOutput, "cwd-output", false, "Write the image to the current directory instead of the data directory")
	fs.IntVar(&cfg.LegendColumns, "legend-columns", cfg.LegendColumns, "Legend column count")
	fs.StringVar(&cfg.XLSXFile, "xlsx", cfg.XLSXFile, "Also export the plotted series to an XLSX workbook")
	fs.StringVar(&cfg.MetricsFile, "metrics", cfg.MetricsFile, "Write Prometheus textfile metrics to this path")
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "YAML config file")
}

// defineDisplayFlags registers --color, --no-color, verbose, skip logging and --log.
func defineDisplayFlags(fs *pflag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")
	fs.BoolVar(&n.quietSkips, "quiet-skips", false, "Do not log files skipped for missing columns")
	fs.StringVarP(&cfg.LogFile, "log", "l", cfg.LogFile, "Append logs to file")
}

// defineUtilityFlags registers --analyze, --check, --version and --help.
func defineUtilityFlags(fs *pflag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVarP(&cfg.AnalyzeOnly, "analyze", "a", false, "Print a per-channel report and exit")
	fs.BoolVarP(&cfg.CheckOnly, "check", "c", false, "Run diagnostics and exit")
	fs.BoolVarP(&n.showVersion, "version", "V", false, "Print version and exit")
	fs.BoolVarP(&n.showHelp, "help", "h", false, "Show this help and exit")
}

// applyNegatedFlags copies negated and override flag values into cfg.
func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.noSmooth {
		cfg.Smooth = false
	}
	if n.cwdOutput {
		cfg.OutputInDir = false
	}
	if n.quietSkips {
		cfg.LogSkips = false
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// parsePositionalArgs sets DataDir from the optional positional argument.
func parsePositionalArgs(fs *pflag.FlagSet, cfg *Config) error {
	args := fs.Args()
	switch len(args) {
	case 0:
		return nil
	case 1:
		cfg.DataDir = NormalizeDirArg(args[0])
		return nil
	default:
		return fmt.Errorf("expected at most one data directory, got %d arguments", len(args))
	}
}

// printUsage writes the help text. Column-aligned for readability.
func printUsage(w io.Writer, version string) {
	const col1 = 30 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "labplot v" + version + " - combined plot of per-channel logger CSVs"},
		{"", ""},
		{"  labplot [OPTIONS] [data_dir]", ""},
		{"", ""},
		{"Reconstruction", ""},
		{"  -m, --mode <mean|expand>", "One point per batch, or one per sample (default: mean)"},
		{"  -r, --rate <hz>", "Sampling rate for expand mode (default: 0 = mean)"},
		{"", ""},
		{"Smoothing", ""},
		{"  -w, --smooth-window <n>", "Savitzky-Golay window, odd (default: 11)"},
		{"  -p, --smooth-poly <n>", "Polynomial order, < window (default: 3)"},
		{"  --no-smooth", "Disable smoothing"},
		{"", ""},
		{"Output", ""},
		{"  -o, --output <file>", "Image filename (default: sample.png)"},
		{"  --cwd-output", "Write the image to the current directory"},
		{"  --legend-columns <n>", "Legend columns (default: 4)"},
		{"  --xlsx <path>", "Export plotted series to a workbook"},
		{"  --metrics <path>", "Write Prometheus textfile metrics"},
		{"  --config <path>", "YAML config file"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  --quiet-skips", "Do not log skipped files"},
		{"  -v, --verbose", "Verbose output"},
		{"", ""},
		{"Utility", ""},
		{"  -l, --log <path>", "Append logs to file"},
		{"  -a, --analyze", "Per-channel report, no image"},
		{"  -c, --check", "Diagnostics (data dir, inputs, smoothing, output)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
		{"", ""},
		{"Environment: OUTPUT_DIR, OUTPUT_FILE, PLOT_MODE, RATE_HZ, SMOOTH_WINDOW, SMOOTH_POLY", ""},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(w)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(w, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(w, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(w, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}
