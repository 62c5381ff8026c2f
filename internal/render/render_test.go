package render

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func series(n int) ([]time.Time, []float64) {
	times := make([]time.Time, n)
	values := make([]float64, n)
	for i := range times {
		times[i] = t0.Add(time.Duration(i) * 250 * time.Millisecond)
		values[i] = math.Sin(float64(i) / 5)
	}
	return times, values
}

func decodeConfig(t *testing.T, path string) (image.Config, string) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	return cfg, format
}

func TestSave_PNGAt140DPI(t *testing.T) {
	fig := NewFigure(DefaultOptions())
	defer fig.Close()

	for _, label := range []string{"ch01", "ch02", "ch03", "ch04", "ch05"} {
		times, values := series(40)
		require.NoError(t, fig.AddLine(label, times, values))
	}

	path := filepath.Join(t.TempDir(), "sample.png")
	require.NoError(t, fig.Save(path))

	cfg, format := decodeConfig(t, path)
	assert.Equal(t, "png", format)
	assert.Equal(t, 1960, cfg.Width)
	assert.Equal(t, 980, cfg.Height)
	assert.Equal(t, 5, fig.Lines())
	assert.Equal(t, 200, fig.Points())
}

func TestSave_JPEG(t *testing.T) {
	fig := NewFigure(Options{})
	defer fig.Close()
	times, values := series(10)
	require.NoError(t, fig.AddLine("ch01", times, values))

	path := filepath.Join(t.TempDir(), "plot.JPG")
	require.NoError(t, fig.Save(path))
	_, format := decodeConfig(t, path)
	assert.Equal(t, "jpeg", format)
}

func TestSave_EmptyFigure(t *testing.T) {
	fig := NewFigure(DefaultOptions())
	defer fig.Close()
	path := filepath.Join(t.TempDir(), "empty.png")
	require.NoError(t, fig.Save(path))
	assert.FileExists(t, path)
}

func TestSave_UnsupportedFormat(t *testing.T) {
	fig := NewFigure(DefaultOptions())
	defer fig.Close()
	path := filepath.Join(t.TempDir(), "plot.svg")
	err := fig.Save(path)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.NoFileExists(t, path)
}

func TestSave_MissingDirectory(t *testing.T) {
	fig := NewFigure(DefaultOptions())
	defer fig.Close()
	err := fig.Save(filepath.Join(t.TempDir(), "no", "such", "dir", "plot.png"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFigure_Closed(t *testing.T) {
	fig := NewFigure(DefaultOptions())
	require.NoError(t, fig.Close())

	times, values := series(3)
	assert.ErrorIs(t, fig.AddLine("ch01", times, values), ErrClosed)
	assert.ErrorIs(t, fig.Save(filepath.Join(t.TempDir(), "x.png")), ErrClosed)
}

func TestAddLine_LengthMismatch(t *testing.T) {
	fig := NewFigure(DefaultOptions())
	defer fig.Close()
	times, values := series(3)
	assert.Error(t, fig.AddLine("ch01", times, values[:2]))
	assert.Zero(t, fig.Lines())
}

func TestAddLine_NaNSplitsSegments(t *testing.T) {
	fig := NewFigure(DefaultOptions())
	defer fig.Close()
	times, values := series(6)
	values[2] = math.NaN()
	require.NoError(t, fig.AddLine("ch01", times, values))
	assert.Equal(t, 5, fig.Points())

	nan := []float64{math.NaN(), math.NaN()}
	require.NoError(t, fig.AddLine("ch02", times[:2], nan))
	assert.Equal(t, 2, fig.Lines())

	require.NoError(t, fig.Save(filepath.Join(t.TempDir(), "gaps.png")))
}

func TestSegments(t *testing.T) {
	times, _ := series(7)
	values := []float64{1, 2, math.NaN(), math.NaN(), 5, math.Inf(1), 7}
	segs := segments(times, values)
	require.Len(t, segs, 3)
	assert.Len(t, segs[0], 2)
	assert.Len(t, segs[1], 1)
	assert.Len(t, segs[2], 1)
	assert.Equal(t, float64(t0.Unix()), segs[0][0].X)
	assert.InDelta(t, float64(t0.Unix())+0.25, segs[0][1].X, 1e-6)
}

func TestColumns(t *testing.T) {
	tests := []struct {
		n, ncol int
		want    []span
	}{
		{0, 4, nil},
		{1, 4, []span{{0, 1}}},
		{4, 4, []span{{0, 1}, {1, 2}, {2, 3}, {3, 4}}},
		{5, 4, []span{{0, 2}, {2, 4}, {4, 5}}},
		{8, 4, []span{{0, 2}, {2, 4}, {4, 6}, {6, 8}}},
		{3, 0, []span{{0, 3}}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, columns(tt.n, tt.ncol), "n=%d ncol=%d", tt.n, tt.ncol)
	}
}
