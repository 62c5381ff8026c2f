package loader

import (
	"strconv"
	"strings"
)

// ParseValues splits a values field on ';', discards empty tokens and
// parses the rest as decimal float64. Whitespace around a number is
// ignored, but a token holding only whitespace is an error. Hex floats
// are rejected.
func ParseValues(s string) ([]float64, error) {
	tokens := strings.Split(s, ";")
	out := make([]float64, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		v, err := parseDecimal(strings.TrimSpace(tok))
		if err != nil {
			return nil, &ParseError{Token: tok, Index: len(out), Err: err}
		}
		out = append(out, v)
	}
	return out, nil
}

// parseDecimal is strconv.ParseFloat without the hexadecimal form.
func parseDecimal(tok string) (float64, error) {
	digits := strings.TrimLeft(tok, "+-")
	if tok == "" || strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		return 0, &strconv.NumError{Func: "ParseFloat", Num: tok, Err: strconv.ErrSyntax}
	}
	return strconv.ParseFloat(tok, 64)
}

// FormatValues is the inverse of ParseValues, using the shortest
// representation that round-trips.
func FormatValues(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ";")
}
