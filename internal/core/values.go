package core

// values.go holds the cell-level rules shared by the reader, the cleaner and
// the writer: which tokens count as missing, how numeric kinds are inferred,
// and how numbers are written back out.
//
// Floats are written in their shortest round-trip form and always keep a
// fractional part, so a filled integer column reads back as float.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// missingTokens are the exact cell values read as missing.
var missingTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// numericRegex matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// infinityRegex matches signed inf and infinity in any case.
var infinityRegex = regexp.MustCompile(`(?i)^[+-]?inf(inity)?$`)

// integerRegex matches plain base-10 integers.
var integerRegex = regexp.MustCompile(`^[+-]?\d+$`)

// IsMissing reports whether a raw cell value is a missing marker.
func IsMissing(raw string) bool {
	_, ok := missingTokens[raw]
	return ok
}

// parseInteger parses raw as an int64. Surrounding whitespace is ignored.
func parseInteger(raw string) (int64, bool) {
	s := strings.TrimSpace(raw)
	if !integerRegex.MatchString(s) {
		return 0, false
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}

// parseFloat parses raw as a float64. Surrounding whitespace is ignored.
func parseFloat(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if !numericRegex.MatchString(s) && !infinityRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Out of range values still parse to ±Inf with ErrRange.
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f, true
		}
		return 0, false
	}
	return f, true
}

// inferKind decides the kind of a column from its raw values.
//
// A column is integer only when every value is an integer and nothing is
// missing; integer-like columns with gaps become float. A column with no
// present values at all is float, so it takes part in (and is skipped by)
// mean imputation like any other numeric column.
func inferKind(raw []string) Kind {
	present := 0
	missing := 0
	allInt := true

	for _, v := range raw {
		if IsMissing(v) {
			missing++
			continue
		}
		present++
		if _, ok := parseFloat(v); !ok {
			return KindText
		}
		if allInt {
			if _, ok := parseInteger(v); !ok {
				allInt = false
			}
		}
	}

	if present > 0 && allInt && missing == 0 {
		return KindInteger
	}
	return KindFloat
}

// makeCell converts a raw value to a cell of the given kind.
// The kind must come from inferKind over the same column.
func makeCell(raw string, kind Kind) Cell {
	if IsMissing(raw) {
		return Cell{Missing: true}
	}
	switch kind {
	case KindInteger:
		i, _ := parseInteger(raw)
		return Cell{Int: i}
	case KindFloat:
		f, _ := parseFloat(raw)
		return Cell{Float: f}
	default:
		return Cell{Text: raw}
	}
}

// FormatCell renders a cell for CSV output. Missing cells render empty.
func FormatCell(c Cell, kind Kind) string {
	if c.Missing {
		return ""
	}
	switch kind {
	case KindInteger:
		return strconv.FormatInt(c.Int, 10)
	case KindFloat:
		return formatFloat(c.Float)
	default:
		return c.Text
	}
}

// formatFloat writes f in the shortest form that round-trips, always with a
// fractional part or an exponent so the value reads back as a float.
// Exponent form is used below 1e-4 and from 1e16 up.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return ""
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// cellKey renders a cell for row comparison. Distinct values always yield
// distinct keys; missing cells compare equal to each other.
func cellKey(c Cell, kind Kind) string {
	if c.Missing {
		return "\x00"
	}
	switch kind {
	case KindInteger:
		return strconv.FormatInt(c.Int, 10)
	case KindFloat:
		f := c.Float
		if f == 0 {
			f = 0 // fold -0 into 0
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	default:
		return "\x01" + c.Text
	}
}
