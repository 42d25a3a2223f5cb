package reconcile

import (
	"math"
	"sort"

	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/amount"
)

// Status classifies one reconciliation record.
type Status string

// Record statuses.
const (
	StatusMatch    Status = "MATCH"
	StatusMismatch Status = "MISMATCH"
	StatusMissing  Status = "MISSING"
)

// Path is one independent aggregation route: a total per entity plus the
// tolerance of its comparison class.
type Path struct {
	Name      string
	Tolerance float64
	Totals    map[string]float64
}

// Comparison is the pairwise check of two paths for one entity.
type Comparison struct {
	Left       string  `json:"left"`
	Right      string  `json:"right"`
	Difference float64 `json:"difference"`
	Ratio      float64 `json:"ratio"`
	Tolerance  float64 `json:"tolerance"`
	Match      bool    `json:"match"`
}

// Record is the reconciliation of one entity.
type Record struct {
	Entity        string             `json:"entity"`
	Name          string             `json:"name"`
	Totals        map[string]float64 `json:"totals"`
	Missing       []string           `json:"missing,omitempty"`
	Comparisons   []Comparison       `json:"comparisons"`
	MaxDifference float64            `json:"max_difference"`
	Status        Status             `json:"status"`
}

// Summary counts statuses and difference buckets. Buckets only consider
// entities with at least one comparison.
type Summary struct {
	Entities   int `json:"entities"`
	Matches    int `json:"matches"`
	Mismatches int `json:"mismatches"`
	Missing    int `json:"missing"`
	Perfect    int `json:"perfect"`
	Small      int `json:"small"`
	Large      int `json:"large"`
}

// Report is the flat reconciliation document.
type Report struct {
	Paths    []string `json:"paths"`
	Records  []Record `json:"records"`
	Outliers []string `json:"outliers"`
	Summary  Summary  `json:"summary"`
}

// Reconcile compares every pair of paths for every entity in the union of
// their keys. A pair matches when its difference is below the larger of the
// two path tolerances. An entity absent from some path is MISSING; the
// pairs it does have are still compared.
func Reconcile(paths []Path, name func(string) string, tol Tolerances) Report {
	rep := Report{Outliers: []string{}}
	keys := make(map[string]bool)
	for _, p := range paths {
		rep.Paths = append(rep.Paths, p.Name)
		for k := range p.Totals {
			keys[k] = true
		}
	}
	entities := make([]string, 0, len(keys))
	for k := range keys {
		entities = append(entities, k)
	}
	sort.Strings(entities)

	type outlier struct {
		key  string
		diff float64
	}
	var outliers []outlier

	for _, e := range entities {
		rec := Record{Entity: e, Name: e, Totals: make(map[string]float64), Comparisons: []Comparison{}}
		if name != nil {
			rec.Name = name(e)
		}
		for _, p := range paths {
			if v, ok := p.Totals[e]; ok {
				rec.Totals[p.Name] = amount.Round2(v)
			} else {
				rec.Missing = append(rec.Missing, p.Name)
			}
		}

		allMatch := true
		for i := 0; i < len(paths); i++ {
			a, ok := paths[i].Totals[e]
			if !ok {
				continue
			}
			for j := i + 1; j < len(paths); j++ {
				b, ok := paths[j].Totals[e]
				if !ok {
					continue
				}
				t := math.Max(paths[i].Tolerance, paths[j].Tolerance)
				diff := a - b
				c := Comparison{
					Left:       paths[i].Name,
					Right:      paths[j].Name,
					Difference: amount.Round2(diff),
					Ratio:      amount.Ratio(diff, b),
					Tolerance:  t,
					Match:      Matches(a, b, t),
				}
				allMatch = allMatch && c.Match
				rec.MaxDifference = math.Max(rec.MaxDifference, math.Abs(diff))
				rec.Comparisons = append(rec.Comparisons, c)
			}
		}
		rec.MaxDifference = amount.Round2(rec.MaxDifference)

		switch {
		case len(rec.Missing) > 0:
			rec.Status = StatusMissing
			rep.Summary.Missing++
		case allMatch:
			rec.Status = StatusMatch
			rep.Summary.Matches++
		default:
			rec.Status = StatusMismatch
			rep.Summary.Mismatches++
		}

		if len(rec.Comparisons) > 0 {
			switch {
			case rec.MaxDifference < tol.Detail:
				rep.Summary.Perfect++
			case rec.MaxDifference < tol.SmallDifference:
				rep.Summary.Small++
			default:
				rep.Summary.Large++
			}
			if rec.MaxDifference > tol.Outlier {
				outliers = append(outliers, outlier{key: e, diff: rec.MaxDifference})
			}
		}
		rep.Records = append(rep.Records, rec)
	}

	sort.SliceStable(outliers, func(i, j int) bool { return outliers[i].diff > outliers[j].diff })
	for _, o := range outliers {
		rep.Outliers = append(rep.Outliers, o.key)
	}
	rep.Summary.Entities = len(rep.Records)
	return rep
}

// Mismatches returns the MISMATCH records ordered by largest difference.
func (r Report) Mismatches() []Record {
	var out []Record
	for _, rec := range r.Records {
		if rec.Status == StatusMismatch {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MaxDifference > out[j].MaxDifference })
	return out
}
