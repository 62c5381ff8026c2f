// Package render draws the combined channel chart with gonum/plot.
//
// A [Figure] collects one line per channel and writes a single raster image.
// The caller owns the figure for one run and releases it with Close.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var (
	// ErrUnsupportedFormat is returned by Save for output extensions that
	// have no raster encoder.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrClosed is returned when a closed figure is used.
	ErrClosed = errors.New("figure is closed")
)

// Options controls the chart layout.
type Options struct {
	Title  string
	XLabel string
	YLabel string

	Width  vg.Length
	Height vg.Length
	DPI    int

	LegendColumns  int
	LegendFontSize vg.Length
	TimeFormat     string // Go reference layout for X tick labels.

	Background color.Color
}

// DefaultOptions returns the standard 14x7 inch, 140 DPI layout.
func DefaultOptions() Options {
	return Options{
		Title:          "All Channels",
		XLabel:         "Time",
		YLabel:         "Value",
		Width:          14 * vg.Inch,
		Height:         7 * vg.Inch,
		DPI:            140,
		LegendColumns:  4,
		LegendFontSize: vg.Points(9),
		TimeFormat:     "15:04:05",
		Background:     colornames.White,
	}
}

// Figure is one chart under construction.
type Figure struct {
	opts    Options
	plot    *plot.Plot
	entries []legendEntry
	points  int
	closed  bool
}

type legendEntry struct {
	label string
	thumb plot.Thumbnailer
}

// NewFigure creates an empty figure. Zero-valued options fall back to
// [DefaultOptions].
func NewFigure(opts Options) *Figure {
	opts = withDefaults(opts)

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel
	p.BackgroundColor = opts.Background
	p.Add(plotter.NewGrid())

	p.X.Tick.Marker = plot.TimeTicks{Format: opts.TimeFormat}
	p.X.Tick.Label.Rotation = math.Pi / 6
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	return &Figure{opts: opts, plot: p}
}

func withDefaults(o Options) Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.DPI <= 0 {
		o.DPI = d.DPI
	}
	if o.LegendColumns <= 0 {
		o.LegendColumns = d.LegendColumns
	}
	if o.LegendFontSize <= 0 {
		o.LegendFontSize = d.LegendFontSize
	}
	if o.TimeFormat == "" {
		o.TimeFormat = d.TimeFormat
	}
	if o.Background == nil {
		o.Background = d.Background
	}
	return o
}

// AddLine adds one labeled line. NaN values break the line into separate
// segments. A series with no finite values still gets a legend entry.
func (f *Figure) AddLine(label string, times []time.Time, values []float64) error {
	if f.closed {
		return ErrClosed
	}
	if len(times) != len(values) {
		return fmt.Errorf("line %q: %d timestamps for %d values", label, len(times), len(values))
	}

	c := plotutil.Color(len(f.entries))
	var thumb plot.Thumbnailer
	for _, seg := range segments(times, values) {
		line, err := plotter.NewLine(seg)
		if err != nil {
			return fmt.Errorf("line %q: %w", label, err)
		}
		line.Color = c
		line.Width = vg.Points(1.5)
		f.plot.Add(line)
		f.points += len(seg)
		if thumb == nil {
			thumb = line
		}
	}
	if thumb == nil {
		thumb = &plotter.Line{LineStyle: draw.LineStyle{Color: c, Width: vg.Points(1.5)}}
	}
	f.entries = append(f.entries, legendEntry{label: label, thumb: thumb})
	return nil
}

// segments splits a series into runs of finite values with X in Unix seconds.
func segments(times []time.Time, values []float64) []plotter.XYs {
	var out []plotter.XYs
	var cur plotter.XYs
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: unixSeconds(times[i]), Y: v})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func unixSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}

// Lines returns the number of lines added.
func (f *Figure) Lines() int { return len(f.entries) }

// Points returns the number of drawn points across all lines.
func (f *Figure) Points() int { return f.points }

// Save renders the figure and writes it to path. The raster format is
// chosen from the extension: .png (or none), .jpg/.jpeg, .tif/.tiff.
func (f *Figure) Save(path string) error {
	if f.closed {
		return ErrClosed
	}
	enc, err := encoderFor(path)
	if err != nil {
		return err
	}

	img := vgimg.NewWith(
		vgimg.UseWH(f.opts.Width, f.opts.Height),
		vgimg.UseDPI(f.opts.DPI),
		vgimg.UseBackgroundColor(f.opts.Background),
	)
	dc := draw.New(img)
	f.plot.Draw(dc)
	f.drawLegend(f.plot.DataCanvas(dc))

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	if _, err := enc(img).WriteTo(out); err != nil {
		out.Close()
		return fmt.Errorf("write image %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close image %s: %w", path, err)
	}
	return nil
}

// Close releases the figure. Further use returns [ErrClosed].
func (f *Figure) Close() error {
	f.closed = true
	f.plot = nil
	f.entries = nil
	return nil
}

// CheckFormat reports whether Save can encode to path's extension.
func CheckFormat(path string) error {
	_, err := encoderFor(path)
	return err
}

func encoderFor(path string) (func(*vgimg.Canvas) io.WriterTo, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case "", ".png":
		return func(c *vgimg.Canvas) io.WriterTo { return vgimg.PngCanvas{Canvas: c} }, nil
	case ".jpg", ".jpeg":
		return func(c *vgimg.Canvas) io.WriterTo { return vgimg.JpegCanvas{Canvas: c} }, nil
	case ".tif", ".tiff":
		return func(c *vgimg.Canvas) io.WriterTo { return vgimg.TiffCanvas{Canvas: c} }, nil
	default:
		return nil, fmt.Errorf("%w: %q (use .png, .jpg or .tif)", ErrUnsupportedFormat, ext)
	}
}
