package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Load opens path and reads it as a channel CSV.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	file, err := Read(f)
	if err != nil {
		return nil, err
	}
	file.Path = path
	return file, nil
}

// Read parses a channel CSV from r. It returns ErrUnsupported (wrapped)
// when the header lacks a required column, and a *ParseError when a
// values field holds a non-numeric token.
func Read(r io.Reader) (*File, error) {
	reader := newReader(r)
	tsIdx, valIdx, err := readHeader(reader)
	if err != nil {
		return nil, err
	}
	need := max(tsIdx, valIdx) + 1

	file := &File{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		file.Rows++

		if len(row) < need {
			file.Dropped++
			continue
		}
		ts, err := ParseTimestamp(row[tsIdx])
		if err != nil {
			file.Dropped++
			continue
		}
		vals, err := ParseValues(row[valIdx])
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Row = file.Rows
			}
			return nil, err
		}
		file.Records = append(file.Records, Record{Time: ts, Values: vals})
	}
	return file, nil
}

// CheckHeader reads only the header row from r and reports whether both
// required columns are present.
func CheckHeader(r io.Reader) error {
	_, _, err := readHeader(newReader(r))
	return err
}

func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.ReuseRecord = true
	return reader
}

func readHeader(reader *csv.Reader) (tsIdx, valIdx int, err error) {
	header, err := reader.Read()
	if err == io.EOF {
		return -1, -1, fmt.Errorf("%w: empty file", ErrUnsupported)
	}
	if err != nil {
		return -1, -1, err
	}
	tsIdx, valIdx = columnIndex(header)
	if tsIdx < 0 || valIdx < 0 {
		return -1, -1, fmt.Errorf("%w: %s", ErrUnsupported, missingColumns(tsIdx, valIdx))
	}
	return tsIdx, valIdx, nil
}

// columnIndex finds the required columns, ignoring quotes, spaces and a
// UTF-8 byte order mark on the first header cell.
func columnIndex(header []string) (tsIdx, valIdx int) {
	tsIdx, valIdx = -1, -1
	for i, h := range header {
		h = strings.TrimSpace(strings.Trim(strings.TrimPrefix(h, "\ufeff"), "\""))
		switch h {
		case ColumnTimestamp:
			if tsIdx < 0 {
				tsIdx = i
			}
		case ColumnValues:
			if valIdx < 0 {
				valIdx = i
			}
		}
	}
	return tsIdx, valIdx
}

func missingColumns(tsIdx, valIdx int) string {
	var missing []string
	if tsIdx < 0 {
		missing = append(missing, ColumnTimestamp)
	}
	if valIdx < 0 {
		missing = append(missing, ColumnValues)
	}
	return strings.Join(missing, ", ")
}
