package render

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// legendGap separates adjacent legend columns.
const legendGap = 8 // points

// drawLegend lays the entries out in columns, filled top to bottom and then
// left to right, anchored in the top-left corner of the data area.
// plot.Legend has a single column, so each column is its own legend.
func (f *Figure) drawLegend(c draw.Canvas) {
	cols := columns(len(f.entries), f.opts.LegendColumns)
	var offs vg.Length
	for _, col := range cols {
		leg := plot.NewLegend()
		leg.Top = true
		leg.Left = true
		leg.XOffs = offs
		leg.TextStyle.Font.Size = f.opts.LegendFontSize
		leg.ThumbnailWidth = vg.Points(18)
		for _, e := range f.entries[col.start:col.end] {
			leg.Add(e.label, e.thumb)
		}
		leg.Draw(c)
		offs += leg.Rectangle(c).Size().X + vg.Points(legendGap)
	}
}

type span struct{ start, end int }

// columns splits n entries into at most ncol column spans of equal height.
func columns(n, ncol int) []span {
	if n == 0 {
		return nil
	}
	if ncol < 1 {
		ncol = 1
	}
	rows := (n + ncol - 1) / ncol
	var out []span
	for start := 0; start < n; start += rows {
		end := start + rows
		if end > n {
			end = n
		}
		out = append(out, span{start, end})
	}
	return out
}
