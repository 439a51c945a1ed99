package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Plain decimal notation: optional sign, digits with an optional fraction,
// optional exponent. Hex floats, underscores, "Inf" and "NaN" are excluded.
const decimalSyntax = `[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?`

var (
	decimalExact  = regexp.MustCompile(`^` + decimalSyntax + `$`)
	decimalLeader = regexp.MustCompile(`^` + decimalSyntax)
)

// ParseDecimal parses s (surrounding whitespace ignored) as a finite decimal
// number. Anything else, including "0x1p3" and "1_000", is rejected.
func ParseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !decimalExact.MatchString(s) {
		return 0, false
	}
	return finite(s)
}

// LeadingDecimal parses the decimal number at the start of s, ignoring any
// trailing text: "5 kW" yields 5. ok is false when s does not start with one.
func LeadingDecimal(s string) (float64, bool) {
	m := decimalLeader.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	return finite(m)
}

func finite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
