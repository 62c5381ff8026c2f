// Package reconstruct turns a channel's batched records into a flat
// (time, value) series.
//
// Two strategies exist. [Mean] reduces every batch to its average and keeps
// the batch timestamp. [Expand] treats each batch as consecutive samples
// taken at a fixed rate starting at the batch timestamp; it assumes batches
// are contiguous and gapless and does not check that.
package reconstruct

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/backmassage/labplot/internal/config"
	"github.com/backmassage/labplot/internal/loader"
)

// Series is an ordered scalar series. Times and Values have equal length.
type Series struct {
	Times  []time.Time
	Values []float64
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.Values) }

// Strategy is the reconstruction selected once per run.
type Strategy interface {
	// Name is the short label used in logs ("mean", "expand@3 Hz").
	Name() string
	apply(records []loader.Record) Series
}

// Mean emits one point per record: the arithmetic mean of its values.
type Mean struct{}

// Expand emits one point per value, spaced 1/Rate seconds apart.
// Rate must be positive; use [NewStrategy] to get the mean fallback.
type Expand struct {
	Rate float64
}

// NewStrategy maps the configured mode and rate to a strategy. Expand
// with a non-positive rate falls back to Mean.
func NewStrategy(mode config.Mode, rate float64) Strategy {
	if mode == config.ModeExpand && rate > 0 {
		return Expand{Rate: rate}
	}
	return Mean{}
}

// Reconstruct applies s to records. Records are used in the order given;
// nothing is re-sorted.
func Reconstruct(records []loader.Record, s Strategy) Series {
	return s.apply(records)
}

func (Mean) Name() string { return "mean" }

func (Mean) apply(records []loader.Record) Series {
	out := Series{
		Times:  make([]time.Time, len(records)),
		Values: make([]float64, len(records)),
	}
	for i, r := range records {
		out.Times[i] = r.Time
		if len(r.Values) == 0 {
			// Keep the point so lengths line up with the records; NaN
			// renders as a gap.
			out.Values[i] = math.NaN()
			continue
		}
		out.Values[i] = stat.Mean(r.Values, nil)
	}
	return out
}

func (e Expand) Name() string { return fmt.Sprintf("expand@%g Hz", e.Rate) }

func (e Expand) apply(records []loader.Record) Series {
	n := 0
	for _, r := range records {
		n += len(r.Values)
	}
	out := Series{
		Times:  make([]time.Time, 0, n),
		Values: make([]float64, 0, n),
	}
	for _, r := range records {
		for i, v := range r.Values {
			out.Times = append(out.Times, r.Time.Add(e.Offset(i)))
			out.Values = append(out.Values, v)
		}
	}
	return out
}

// Offset returns the time of sample i relative to its batch start,
// rounded to the nearest nanosecond.
func (e Expand) Offset(i int) time.Duration {
	return time.Duration(math.Round(float64(i) / e.Rate * float64(time.Second)))
}
