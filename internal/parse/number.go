// Package parse turns raw spreadsheet rows into towers.
package parse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)`)

// Number converts a raw cell into a float64, returning def when the cell is
// empty or holds no number. Plain numerals ("1234.5") are used as-is; other
// text is treated as Brazilian currency ("R$ 1.234,56").
func Number(raw string, def float64) float64 {
	if v, ok := NumberOK(raw); ok {
		return v
	}
	return def
}

// NumberOK is Number without a default: ok is false when raw holds no number.
func NumberOK(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}

	cleaned := strings.Map(func(r rune) rune {
		if r == '.' || r == 'R' || r == '$' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	cleaned = strings.Replace(cleaned, ",", ".", 1)

	m := leadingNumber.FindString(cleaned)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Int is Number truncated toward zero.
func Int(raw string, def int) int {
	if v, ok := NumberOK(raw); ok {
		return int(v)
	}
	return def
}
