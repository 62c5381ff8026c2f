// Package export writes the plotted series to a spreadsheet so the exact
// values behind the chart can be inspected without re-running the tool.
package export

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is Excel's sheet name length limit.
const maxSheetName = 31

// maxDataRows is how many values fit on one worksheet below the header.
var maxDataRows = excelize.TotalRows - 1

// ErrNoSheets is returned when there is nothing to write.
var ErrNoSheets = errors.New("no series to export")

// Sheet is one channel's final series.
type Sheet struct {
	Name   string
	Times  []time.Time
	Values []float64
}

// WriteXLSX writes one worksheet per series with a timestamp column
// (RFC 3339, nanosecond precision) and a value column. A series longer
// than a worksheet continues on sheets suffixed _2, _3 and so on.
func WriteXLSX(path string, sheets []Sheet) (err error) {
	if len(sheets) == 0 {
		return ErrNoSheets
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	// The default sheet is dropped at the end, so its name is never reused.
	used := map[string]bool{"sheet1": true}
	var first string
	for _, s := range sheets {
		if len(s.Times) != len(s.Values) {
			return fmt.Errorf("sheet %q: %d timestamps for %d values", s.Name, len(s.Times), len(s.Values))
		}
		parts := max(1, (len(s.Values)+maxDataRows-1)/maxDataRows)
		for p := range parts {
			name := s.Name
			if p > 0 {
				name = s.Name + "_" + strconv.Itoa(p+1)
			}
			name = uniqueSheetName(name, used)
			if first == "" {
				first = name
			}
			lo := p * maxDataRows
			hi := min(lo+maxDataRows, len(s.Values))
			if err := writeSheet(f, name, s.Times[lo:hi], s.Values[lo:hi]); err != nil {
				return err
			}
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("remove default sheet: %w", err)
	}
	if idx, err := f.GetSheetIndex(first); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, times []time.Time, values []float64) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %q: %w", name, err)
	}
	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return fmt.Errorf("sheet %q: %w", name, err)
	}
	if err := sw.SetRow("A1", []any{"timestamp", "value"}); err != nil {
		return fmt.Errorf("sheet %q header: %w", name, err)
	}
	for i := range values {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{times[i].Format(time.RFC3339Nano), cellValue(values[i])}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("sheet %q row %d: %w", name, i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("sheet %q: %w", name, err)
	}
	return nil
}

// cellValue leaves gaps as empty cells; spreadsheets have no NaN.
func cellValue(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return v
}

// uniqueSheetName makes a valid sheet name that has not been used yet.
func uniqueSheetName(name string, used map[string]bool) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, strings.Trim(name, "'"))
	if name == "" {
		name = "series"
	}
	name = truncate(name, maxSheetName)

	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := "_" + strconv.Itoa(n)
		candidate = truncate(name, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
