// Package config holds runtime configuration: defaults, the optional YAML
// file, environment overrides, CLI flag parsing, and validation. Defaults
// match the logger's plot script so existing deployments keep working.
package config

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// --- Enum types for validated string fields ---

// Mode selects how a channel's batched records become a scalar series.
type Mode string

const (
	ModeMean   Mode = "mean"   // One point per batch: the batch mean (default).
	ModeExpand Mode = "expand" // One point per sample, spaced by 1/RateHz.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// then by [Load] (YAML file, environment, flags) before being passed by
// pointer to the packages that need it.
//
// The envconfig tags keep the variable names the acquisition pipeline
// already exports; OUTPUT_DIR is the logger's output directory, which is
// where the per-channel CSVs live.
type Config struct {
	// Paths.
	DataDir     string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	OutputFile  string `yaml:"output_file" envconfig:"OUTPUT_FILE" validate:"required"`
	OutputInDir bool   `yaml:"output_in_dir" envconfig:"PLOT_OUTPUT_IN_DIR"` // Default: true.
	ConfigFile  string `yaml:"-" envconfig:"PLOT_CONFIG"`

	// Axis reconstruction.
	Mode   Mode    `yaml:"plot_mode" envconfig:"PLOT_MODE" validate:"oneof=mean expand"`
	RateHz float64 `yaml:"rate_hz" envconfig:"RATE_HZ"` // <= 0 falls back to mean mode.

	// Smoothing. Invalid combinations disable smoothing rather than fail.
	Smooth       bool `yaml:"smooth" envconfig:"PLOT_SMOOTH"` // Default: true.
	SmoothWindow int  `yaml:"smooth_window" envconfig:"SMOOTH_WINDOW"`
	SmoothPoly   int  `yaml:"smooth_poly" envconfig:"SMOOTH_POLY"`

	// Rendering.
	LegendColumns int `yaml:"legend_columns" envconfig:"PLOT_LEGEND_COLUMNS" validate:"min=1,max=16"`

	// Optional exports.
	XLSXFile    string `yaml:"xlsx_file" envconfig:"PLOT_XLSX"`
	MetricsFile string `yaml:"metrics_file" envconfig:"PLOT_METRICS_FILE"`

	// Display and logging.
	LogSkips    bool      `yaml:"log_skips" envconfig:"PLOT_LOG_SKIPS"` // Default: true.
	Verbose     bool      `yaml:"verbose" envconfig:"PLOT_VERBOSE"`
	ColorMode   ColorMode `yaml:"color" envconfig:"PLOT_COLOR" validate:"oneof=auto always never"`
	LogFile     string    `yaml:"log_file" envconfig:"PLOT_LOG_FILE"`
	RunID       string    `yaml:"-" ignored:"true"` // Set per invocation; logged with the run header.
	CheckOnly   bool      `yaml:"-" ignored:"true"` // Run --check diagnostics and exit.
	AnalyzeOnly bool      `yaml:"-" ignored:"true"` // Print the channel report, no image.
}

// DefaultConfig returns a Config with the plot script's defaults.
func DefaultConfig() Config {
	return Config{
		DataDir:       "outputs",
		OutputFile:    "sample.png",
		OutputInDir:   true,
		Mode:          ModeMean,
		RateHz:        0,
		Smooth:        true,
		SmoothWindow:  11,
		SmoothPoly:    3,
		LegendColumns: 4,
		LogSkips:      true,
		ColorMode:     ColorAuto,
	}
}

// OutputPath returns where the combined image is written: inside DataDir
// by default, or relative to the working directory when OutputInDir is off.
func (c *Config) OutputPath() string {
	if c.OutputInDir {
		return filepath.Join(c.DataDir, c.OutputFile)
	}
	return filepath.Join(".", c.OutputFile)
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

var validate = newValidator()

// newValidator reports fields by their environment variable name, which is
// what users actually set.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("envconfig"); name != "" {
			return name
		}
		return fld.Name
	})
	return v
}

// Validate checks enum fields, required paths and the legend layout.
// Smoothing parameters are deliberately not validated: a window or order
// the filter cannot use only disables smoothing.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return describe(verrs[0])
		}
		return err
	}
	if math.IsNaN(c.RateHz) || math.IsInf(c.RateHz, 0) {
		return errors.New("RATE_HZ must be a finite number")
	}
	return nil
}

// describe turns the first validation failure into a user-facing message.
func describe(fe validator.FieldError) error {
	switch fe.Field() {
	case "PLOT_MODE":
		return fmt.Errorf("invalid mode %q (use 'mean' or 'expand')", fe.Value())
	case "PLOT_COLOR":
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", fe.Value())
	}
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s must not be empty", fe.Field())
	case "min", "max":
		return fmt.Errorf("%s must be between 1 and 16 (got %v)", fe.Field(), fe.Value())
	default:
		return fmt.Errorf("%s: failed %q check", fe.Field(), fe.Tag())
	}
}

// --- Text adapters shared by envconfig, yaml and pflag ---

// Set parses a mode name case-insensitively.
func (m *Mode) Set(s string) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mean":
		*m = ModeMean
	case "expand":
		*m = ModeExpand
	default:
		return fmt.Errorf("invalid mode %q (use 'mean' or 'expand')", s)
	}
	return nil
}

func (m *Mode) String() string                 { return string(*m) }
func (m *Mode) Type() string                   { return "mode" }
func (m *Mode) UnmarshalText(text []byte) error { return m.Set(string(text)) }

// Set parses a color mode name case-insensitively.
func (c *ColorMode) Set(s string) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto":
		*c = ColorAuto
	case "always":
		*c = ColorAlways
	case "never":
		*c = ColorNever
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", s)
	}
	return nil
}

func (c *ColorMode) String() string                 { return string(*c) }
func (c *ColorMode) Type() string                   { return "color" }
func (c *ColorMode) UnmarshalText(text []byte) error { return c.Set(string(text)) }
