// Package amount parses and rounds monetary cells from the exports.
package amount

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Parse converts an export cell to a float. Blank, non-numeric, NaN and
// infinite cells report ok=false: they are the absence of a fact, not zero.
// The exports use a comma as decimal separator; workbooks render a dot.
func Parse(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// IsFact reports whether a parsed cell should be stored as a fact.
func IsFact(v float64, ok bool) bool {
	return ok && v != 0
}

// Round2 rounds to the two decimals used for reporting. NaN and infinities
// collapse to 0 so documents never carry non-finite numbers.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Ratio returns diff/base, or 0 when base is zero.
func Ratio(diff, base float64) float64 {
	if base == 0 {
		return 0
	}
	return diff / base
}
