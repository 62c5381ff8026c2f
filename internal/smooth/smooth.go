// Package smooth implements Savitzky-Golay smoothing.
//
// The filter is designed once by least squares and then applied to any
// number of series. Edges follow the "interp" convention: the first and last
// window/2 outputs are read off a polynomial fitted to the first and last
// full window, so the output has the same length as the input and no
// padding is invented.
package smooth

import (
	"errors"
	"fmt"

	vecmath "github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrEvenWindow is reported when the window length is not a positive odd number.
	ErrEvenWindow = errors.New("smoothing window must be a positive odd number")
	// ErrPolyOrder is reported when the polynomial order is negative or not below the window.
	ErrPolyOrder = errors.New("polynomial order must be in [0, window)")
)

// Filter is a designed Savitzky-Golay filter. The zero value is unavailable.
// Apply reuses a scratch buffer, so a Filter is not safe for concurrent use.
type Filter struct {
	window int
	poly   int
	err    error

	center []float64  // convolution weights for interior points
	left   *mat.Dense // (window/2) x window: fit of first window evaluated at its head
	right  *mat.Dense // (window/2) x window: fit of last window evaluated at its tail
	buf    []float64
}

// New designs a filter for the given window and polynomial order. It never
// fails; check [Filter.Available] (and [Filter.Err] for the reason).
func New(window, poly int) *Filter {
	f := &Filter{window: window, poly: poly}
	f.err = f.design()
	return f
}

// Available reports whether the filter was designed and will smooth.
func (f *Filter) Available() bool { return f != nil && f.err == nil && f.center != nil }

// Err returns why the filter is unavailable, or nil.
func (f *Filter) Err() error {
	if f == nil {
		return errors.New("nil filter")
	}
	return f.err
}

// Window returns the window length.
func (f *Filter) Window() int { return f.window }

// Poly returns the polynomial order.
func (f *Filter) Poly() int { return f.poly }

// Coefficients returns a copy of the interior convolution weights.
func (f *Filter) Coefficients() []float64 {
	if !f.Available() {
		return nil
	}
	out := make([]float64, len(f.center))
	copy(out, f.center)
	return out
}

func (f *Filter) design() (err error) {
	if f.window < 1 || f.window%2 == 0 {
		return fmt.Errorf("%w (got %d)", ErrEvenWindow, f.window)
	}
	if f.poly < 0 || f.poly >= f.window {
		return fmt.Errorf("%w (window %d, order %d)", ErrPolyOrder, f.window, f.poly)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("filter design failed: %v", r)
		}
	}()

	w, h, cols := f.window, f.window/2, f.poly+1

	// Vandermonde matrix over positions -h..h.
	a := mat.NewDense(w, cols, nil)
	for i := 0; i < w; i++ {
		x := float64(i - h)
		v := 1.0
		for k := 0; k < cols; k++ {
			a.Set(i, k, v)
			v *= x
		}
	}

	// Least-squares pseudo-inverse: pinv * window = polynomial coefficients.
	var pinv mat.Dense
	if err := pinv.Solve(a, eye(w)); err != nil {
		return fmt.Errorf("filter design failed: %w", err)
	}

	center := make([]float64, w)
	mat.Row(center, 0, &pinv)

	var left, right mat.Dense
	if h > 0 {
		left.Mul(a.Slice(0, h, 0, cols), &pinv)
		right.Mul(a.Slice(h+1, w, 0, cols), &pinv)
		f.left, f.right = &left, &right
	}
	f.center = center
	f.buf = make([]float64, w)
	return nil
}

func eye(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// Apply returns the smoothed series. y is returned unchanged when the
// filter is unavailable, when y is shorter than the window, when y contains
// NaN, or if filtering fails for any other reason.
func (f *Filter) Apply(y []float64) []float64 {
	out, _ := f.Smooth(y)
	return out
}

// Smooth is Apply that also reports whether y was actually filtered.
func (f *Filter) Smooth(y []float64) (out []float64, ok bool) {
	if !f.Available() || len(y) < f.window || floats.HasNaN(y) {
		return y, false
	}
	defer func() {
		if r := recover(); r != nil {
			out, ok = y, false
		}
	}()

	n, w, h := len(y), f.window, f.window/2
	out = make([]float64, n)

	for i := h; i < n-h; i++ {
		vecmath.MulBlock(f.buf, f.center, y[i-h:i+h+1])
		out[i] = floats.Sum(f.buf)
	}

	if h > 0 {
		var head, tail mat.VecDense
		head.MulVec(f.left, mat.NewVecDense(w, y[:w]))
		tail.MulVec(f.right, mat.NewVecDense(w, y[n-w:]))
		for j := 0; j < h; j++ {
			out[j] = head.AtVec(j)
			out[n-h+j] = tail.AtVec(j)
		}
	}
	return out, true
}
