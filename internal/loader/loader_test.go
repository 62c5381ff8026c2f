package loader

import (
	"errors"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValues(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []float64
	}{
		{"three values", "1;2;3", []float64{1, 2, 3}},
		{"empty tokens skipped", ";1;;2;", []float64{1, 2}},
		{"whitespace", " 1.5 ; -2e3 ", []float64{1.5, -2000}},
		{"single", "42", []float64{42}},
		{"empty field", "", []float64{}},
		{"only separators", ";;;", []float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseValues(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseValues_Malformed(t *testing.T) {
	_, err := ParseValues("1;abc;3")
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "abc", pe.Token)
	assert.Equal(t, 1, pe.Index)
}

func TestParseValues_Rejected(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		token string
		index int
	}{
		{"blank token", "1; ;2", " ", 1},
		{"tab token", "1;\t", "\t", 1},
		{"hex float", "0x1p3", "0x1p3", 0},
		{"signed hex", "1;-0X10", "-0X10", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseValues(tt.in)
			require.Error(t, err)
			assert.Nil(t, got)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.token, pe.Token)
			assert.Equal(t, tt.index, pe.Index)
			assert.ErrorIs(t, err, strconv.ErrSyntax)
		})
	}
}

func TestParseValues_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		n := rng.Intn(20)
		vals := make([]float64, n)
		for j := range vals {
			vals[j] = (rng.Float64() - 0.5) * math.Pow(10, float64(rng.Intn(12)-6))
		}
		got, err := ParseValues(FormatValues(vals))
		require.NoError(t, err)
		assert.Equal(t, vals, got)
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC)
	for _, in := range []string{
		"2024-01-01T00:00:01",
		"2024-01-01 00:00:01",
		"2024-01-01T00:00:01Z",
		"2024-01-01T01:00:01+01:00",
		"2024/01/01 00:00:01",
		"1704067201",
	} {
		got, err := ParseTimestamp(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s -> %v", in, got)
	}

	frac, err := ParseTimestamp("2024-01-01T00:00:01.250")
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, frac.Sub(want))

	for _, bad := range []string{"", "yesterday", "2024-13-01T00:00:00", "NaN"} {
		_, err := ParseTimestamp(bad)
		assert.Error(t, err, bad)
	}
}

func TestRead_ScenarioFile(t *testing.T) {
	f, err := Read(strings.NewReader(
		"timestamp,values\n" +
			"2024-01-01T00:00:00,1;2;3\n" +
			"2024-01-01T00:00:01,4;5;6\n"))
	require.NoError(t, err)

	require.Len(t, f.Records, 2)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), f.Records[0].Time)
	assert.Equal(t, []float64{1, 2, 3}, f.Records[0].Values)
	assert.Equal(t, []float64{4, 5, 6}, f.Records[1].Values)
	assert.Equal(t, 2, f.Rows)
	assert.Zero(t, f.Dropped)
	assert.Equal(t, 6, f.Samples())
}

func TestRead_DropsBadTimestamps(t *testing.T) {
	f, err := Read(strings.NewReader(
		"values,timestamp,extra\n" +
			"1;2,2024-01-01T00:00:00,x\n" +
			"3;4,not-a-time,x\n" +
			"5,,x\n" +
			"short\n" +
			"\"6;7\",2024-01-01T00:00:02,x\n"))
	require.NoError(t, err)

	require.Len(t, f.Records, 2)
	assert.Equal(t, 5, f.Rows)
	assert.Equal(t, 3, f.Dropped)
	assert.Equal(t, []float64{6, 7}, f.Records[1].Values)
}

func TestRead_MissingColumns(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		missing string
	}{
		{"no values", "timestamp,value\n2024-01-01,1\n", "values"},
		{"no timestamp", "time,values\n2024-01-01,1\n", "timestamp"},
		{"neither", "a,b\n1,2\n", "timestamp, values"},
		{"empty file", "", "empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.csv))
			require.ErrorIs(t, err, ErrUnsupported)
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}

func TestRead_QuotedHeaderWithBOM(t *testing.T) {
	f, err := Read(strings.NewReader("\ufeff\"timestamp\",\"values\"\n2024-01-01T00:00:00,1\n"))
	require.NoError(t, err)
	assert.Len(t, f.Records, 1)
}

func TestRead_MalformedValueIsFatal(t *testing.T) {
	_, err := Read(strings.NewReader(
		"timestamp,values\n" +
			"2024-01-01T00:00:00,1;2\n" +
			"2024-01-01T00:00:01,3;oops\n"))

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Row)
	assert.Equal(t, "oops", pe.Token)
	assert.Contains(t, err.Error(), "row 2")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labjack_001_ch01.csv")
	require.NoError(t, os.WriteFile(path, []byte("timestamp,values\n2024-01-01T00:00:00,1;2\n"), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, f.Path)
	assert.Len(t, f.Records, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCheckHeader(t *testing.T) {
	assert.NoError(t, CheckHeader(strings.NewReader("values,timestamp\nnot,parsed\n")))
	assert.ErrorIs(t, CheckHeader(strings.NewReader("timestamp,reading\n")), ErrUnsupported)
	assert.ErrorIs(t, CheckHeader(strings.NewReader("")), ErrUnsupported)
}
