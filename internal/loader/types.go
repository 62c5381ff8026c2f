package loader

import (
	"errors"
	"fmt"
	"time"
)

// Column names every channel file must carry.
const (
	ColumnTimestamp = "timestamp"
	ColumnValues    = "values"
)

// ErrUnsupported marks a CSV that lacks a required column.
var ErrUnsupported = errors.New("unsupported file: missing required columns")

// Record is one CSV row: a batch of samples sharing a timestamp.
type Record struct {
	Time   time.Time
	Values []float64
}

// File is the loaded content of one channel CSV.
type File struct {
	Path    string
	Records []Record
	Rows    int // Data rows read, including dropped ones.
	Dropped int // Rows dropped for an unparseable timestamp.
}

// Samples returns the total number of values across all records.
func (f *File) Samples() int {
	n := 0
	for _, r := range f.Records {
		n += len(r.Values)
	}
	return n
}

// ParseError reports a value token that is not a floating-point number.
type ParseError struct {
	Token string
	Index int   // Position of the token among the non-empty tokens.
	Row   int   // 1-based data row, 0 when parsed outside a file.
	Err   error // Underlying strconv error.
}

func (e *ParseError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: invalid value %q at position %d: %v", e.Row, e.Token, e.Index, e.Err)
	}
	return fmt.Sprintf("invalid value %q at position %d: %v", e.Token, e.Index, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
