// Package reconcile joins facts onto geometry and cross-checks totals that
// were computed along independent aggregation paths.
package reconcile

import (
	"math"
	"sort"
)

// Tolerances holds one absolute tolerance per comparison class.
type Tolerances struct {
	Detail          float64 `mapstructure:"detail" json:"detail"`
	Domain          float64 `mapstructure:"domain" json:"domain"`
	Province        float64 `mapstructure:"province" json:"province"`
	SmallDifference float64 `mapstructure:"small_difference" json:"small_difference"`
	Outlier         float64 `mapstructure:"outlier" json:"outlier"`
}

// DefaultTolerances returns the tolerances used by the published reports.
func DefaultTolerances() Tolerances {
	return Tolerances{
		Detail:          0.01,
		Domain:          1.0,
		Province:        0.01,
		SmallDifference: 1.0,
		Outlier:         10.0,
	}
}

// Matches reports whether a and b differ by less than tol.
func Matches(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

// SumYears adds per-year totals in ascending year order. Callers sum
// within a year first so the result reproduces the published aggregates.
func SumYears(byYear map[int]float64) float64 {
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)
	var sum float64
	for _, y := range years {
		sum += byYear[y]
	}
	return sum
}
