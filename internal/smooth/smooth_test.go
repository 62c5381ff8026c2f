package smooth

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestNew_Availability(t *testing.T) {
	tests := []struct {
		name   string
		window int
		poly   int
		want   bool
		target error
	}{
		{"default", 11, 3, true, nil},
		{"window one", 1, 0, true, nil},
		{"poly zero", 5, 0, true, nil},
		{"poly one below window", 7, 6, true, nil},
		{"even window", 10, 3, false, ErrEvenWindow},
		{"zero window", 0, 0, false, ErrEvenWindow},
		{"negative window", -3, 1, false, ErrEvenWindow},
		{"poly equals window", 5, 5, false, ErrPolyOrder},
		{"negative poly", 5, -1, false, ErrPolyOrder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.window, tt.poly)
			assert.Equal(t, tt.want, f.Available())
			if tt.target != nil {
				assert.ErrorIs(t, f.Err(), tt.target)
			} else {
				assert.NoError(t, f.Err())
			}
		})
	}
}

func TestCoefficients_KnownValues(t *testing.T) {
	// Classic 5-point quadratic smoother: (-3, 12, 17, 12, -3) / 35.
	got := New(5, 2).Coefficients()
	want := []float64{-3, 12, 17, 12, -3}
	require.Len(t, got, 5)
	for i := range want {
		assert.InDelta(t, want[i]/35, got[i], 1e-12)
	}
}

func TestApply_ShorterThanWindowIsIdentity(t *testing.T) {
	f := New(11, 3)
	for n := 0; n < 11; n++ {
		y := make([]float64, n)
		for i := range y {
			y[i] = float64(i * i)
		}
		assert.Equal(t, y, f.Apply(y))
	}
}

func TestApply_UnavailableIsIdentity(t *testing.T) {
	y := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5, 8, 9, 7, 9}
	assert.Equal(t, y, New(10, 3).Apply(y))
	assert.Equal(t, y, New(5, 7).Apply(y))

	var zero Filter
	assert.Equal(t, y, zero.Apply(y))
}

func TestApply_NaNIsIdentity(t *testing.T) {
	y := []float64{1, 2, 3, math.NaN(), 5, 6, 7}
	out := New(5, 2).Apply(y)
	require.Len(t, out, len(y))
	assert.True(t, math.IsNaN(out[3]))
	assert.Equal(t, 7.0, out[6])
}

func TestApply_PreservesPolynomials(t *testing.T) {
	// A polynomial of degree <= poly passes through unchanged, edges included.
	cubic := func(x float64) float64 { return 0.01*x*x*x - 0.2*x*x + x + 3 }
	y := make([]float64, 40)
	for i := range y {
		y[i] = cubic(float64(i))
	}

	out := New(11, 3).Apply(y)
	require.Len(t, out, len(y))
	for i := range y {
		assert.InDelta(t, y[i], out[i], 1e-7, "index %d", i)
	}
}

func TestApply_InterpEdges(t *testing.T) {
	// Edges take the quadratic fitted to the first and last five points;
	// the interior uses the (-3,12,17,12,-3)/35 weights.
	y := []float64{0, 5, 0, 5, 0, 5, 0, 5, 0}
	want := []float64{4.0 / 7, 19.0 / 7, 24.0 / 7, 11.0 / 7, 24.0 / 7, 11.0 / 7, 24.0 / 7, 19.0 / 7, 4.0 / 7}

	out := New(5, 2).Apply(y)
	require.Len(t, out, len(y))
	for i := range want {
		assert.InDelta(t, want[i], out[i], 1e-9, "index %d", i)
	}
}

func TestSmooth_ReportsWhetherFiltered(t *testing.T) {
	f := New(5, 2)
	long := []float64{0, 5, 0, 5, 0, 5, 0}

	out, ok := f.Smooth(long)
	assert.True(t, ok)
	assert.NotEqual(t, long, out)

	tests := []struct {
		name string
		f    *Filter
		y    []float64
	}{
		{"shorter than window", f, []float64{1, 2, 3}},
		{"contains NaN", f, []float64{1, 2, math.NaN(), 4, 5, 6}},
		{"unavailable filter", New(4, 2), long},
		{"nil filter", nil, long},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ok := tt.f.Smooth(tt.y)
			assert.False(t, ok)
			require.Len(t, out, len(tt.y))
			assert.Same(t, &tt.y[0], &out[0])
		})
	}
}

func TestApply_WindowEqualsLength(t *testing.T) {
	y := []float64{2, 2, 2, 2, 2}
	out := New(5, 1).Apply(y)
	for i := range out {
		assert.InDelta(t, 2.0, out[i], 1e-12)
	}
}

func TestApply_ReducesNoise(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	n := 500
	truth := make([]float64, n)
	noisy := make([]float64, n)
	for i := range truth {
		truth[i] = math.Sin(float64(i) / 40)
		noisy[i] = truth[i] + rng.NormFloat64()*0.2
	}

	out := New(11, 3).Apply(noisy)

	before := make([]float64, n)
	after := make([]float64, n)
	for i := range truth {
		before[i] = noisy[i] - truth[i]
		after[i] = out[i] - truth[i]
	}
	assert.Less(t, stat.StdDev(after, nil), stat.StdDev(before, nil)*0.7)
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	y := []float64{0, 5, 0, 5, 0, 5, 0, 5, 0}
	orig := append([]float64(nil), y...)
	_ = New(5, 2).Apply(y)
	assert.Equal(t, orig, y)
}
