package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// NRMarker is the textual "not recordable" marker.
const NRMarker = "NR"

var leadingNumberRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseField turns raw text from a form or file into a Field.
// "NR" (any case) is NotRecordable. The first decimal comma is read as a point and the
// longest leading number is used, so "4,5 ms" is 4.5. Text with no leading number, zero
// and negative values are Missing.
func ParseField(raw string) Field {
	s := strings.TrimSpace(raw)
	if strings.EqualFold(s, NRMarker) {
		return NotRecordable()
	}
	v, ok := leadingNumber(s)
	if !ok {
		return Missing()
	}
	return Measured(v)
}

// leadingNumber reads the longest leading number of s, taking the first comma as a
// decimal point.
func leadingNumber(s string) (float64, bool) {
	s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	m := leadingNumberRe.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
