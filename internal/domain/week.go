package domain

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// integralDecimal matches plain decimal integers, optionally written with a
// zero fraction the way spreadsheet tools export numeric cells ("5.0").
var integralDecimal = regexp.MustCompile(`^([+-]?[0-9]+)(\.0*)?$`)

// Week is the reporting week of a turbine group after best-effort integer
// coercion: either an integer or the original value, unchanged.
type Week struct {
	n     int
	raw   string
	isInt bool
}

// CoerceWeek parses raw as an integer ("5", " 5 ", "5.0"). Anything else,
// exponent notation included, is kept verbatim. It never fails.
func CoerceWeek(raw string) Week {
	m := integralDecimal.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return Week{raw: raw}
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return Week{raw: raw}
	}
	return Week{n: n, raw: raw, isInt: true}
}

// Int returns the coerced integer and whether coercion succeeded.
func (w Week) Int() (int, bool) {
	return w.n, w.isInt
}

// String renders the integer form when coercion succeeded, otherwise the original.
func (w Week) String() string {
	if w.isInt {
		return strconv.Itoa(w.n)
	}
	return w.raw
}

// MarshalJSON encodes integer weeks as JSON numbers and others as strings.
func (w Week) MarshalJSON() ([]byte, error) {
	if w.isInt {
		return json.Marshal(w.n)
	}
	return json.Marshal(w.raw)
}
