package reconcile

import (
	"math"
	"sort"
	"strings"

	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/amount"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/geo"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/hierarchy"
)

// Top is one line of a per-entity breakdown.
type Top struct {
	Code   string  `json:"code"`
	Label  string  `json:"naam"`
	Full   string  `json:"volledig,omitempty"`
	Amount float64 `json:"bedrag"`
}

// DetailSummary is the account breakdown attached to a feature.
type DetailSummary struct {
	TotalDetails        float64 `json:"total_details"`
	AccountCount        int     `json:"account_count"`
	DifferenceWithTotal float64 `json:"difference_with_total"`
	TopAccounts         []Top   `json:"top_accounts"`
}

// DomainSummary is the policy-domain breakdown attached to a feature.
type DomainSummary struct {
	TotalDomains        float64 `json:"total_domains"`
	DomainCount         int     `json:"domain_count"`
	DifferenceWithTotal float64 `json:"difference_with_total"`
	TopDomains          []Top   `json:"top_domains"`
}

// Join reports both sides of one inner join.
type Join struct {
	Matched           int      `json:"matched"`
	UnmatchedGeometry []string `json:"unmatched_geometry"`
	UnmatchedData     []string `json:"unmatched_data"`
}

// Feature is a dissolved geometry with its joined attributes. Detail and
// Domain are nil when the entity has no data in that source.
type Feature struct {
	geo.Record
	Headline map[int]float64
	Detail   *DetailSummary
	Domain   *DomainSummary
}

// EnrichInput carries the per-entity data joined onto the geometry, all
// keyed by canonical entity key.
type EnrichInput struct {
	Year         int
	TopN         int
	Headline     map[string]map[int]float64
	Details      map[string][]Top
	Domains      map[string][]Top
	DomainTotals map[string]float64 // reported domain totals; summed from Domains when absent
}

// EnrichResult is the enriched collection with one join report per source.
type EnrichResult struct {
	Features []Feature `json:"-"`
	Headline Join      `json:"headline"`
	Detail   Join      `json:"detail"`
	Domain   Join      `json:"domain"`
}

// Enrich joins every source onto the geometry records by entity key.
func Enrich(records []geo.Record, in EnrichInput) EnrichResult {
	var res EnrichResult
	geoKeys := make(map[string]bool, len(records))
	for _, r := range records {
		geoKeys[r.Key] = true
	}

	for _, r := range records {
		f := Feature{Record: r, Headline: in.Headline[r.Key]}
		reported := f.Headline[in.Year]

		if items, ok := in.Details[r.Key]; ok {
			total := sumTops(items)
			f.Detail = &DetailSummary{
				TotalDetails:        amount.Round2(total),
				AccountCount:        len(items),
				DifferenceWithTotal: amount.Round2(total - reported),
				TopAccounts:         topN(items, in.TopN),
			}
		}
		if items, ok := in.Domains[r.Key]; ok {
			total, ok := in.DomainTotals[r.Key]
			if !ok {
				total = sumTops(items)
			}
			f.Domain = &DomainSummary{
				TotalDomains:        amount.Round2(total),
				DomainCount:         len(items),
				DifferenceWithTotal: amount.Round2(total - reported),
				TopDomains:          topN(items, in.TopN),
			}
		}
		res.Features = append(res.Features, f)
	}

	res.Headline = join(geoKeys, keysOf(in.Headline))
	res.Detail = join(geoKeys, keysOf(in.Details))
	res.Domain = join(geoKeys, keysOf(in.Domains))
	return res
}

func join(geoKeys map[string]bool, dataKeys map[string]bool) Join {
	j := Join{UnmatchedGeometry: []string{}, UnmatchedData: []string{}}
	for k := range geoKeys {
		if dataKeys[k] {
			j.Matched++
		} else {
			j.UnmatchedGeometry = append(j.UnmatchedGeometry, k)
		}
	}
	for k := range dataKeys {
		if !geoKeys[k] {
			j.UnmatchedData = append(j.UnmatchedData, k)
		}
	}
	sort.Strings(j.UnmatchedGeometry)
	sort.Strings(j.UnmatchedData)
	return j
}

func keysOf[V any](m map[string]V) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

func sumTops(items []Top) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Amount
	}
	return sum
}

// topN returns the n items with the largest absolute amount.
func topN(items []Top, n int) []Top {
	sorted := append([]Top{}, items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return math.Abs(sorted[i].Amount) > math.Abs(sorted[j].Amount)
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// TopsFromTree lists the detail facts of every entity in tree for the slots
// accepted by keep. Codes come from the node; when the label starts with
// the code, Label holds the remainder and Full the original label.
func TopsFromTree(tree *hierarchy.Tree, keep func(hierarchy.Slot) bool) map[string][]Top {
	out := make(map[string][]Top)
	if tree == nil {
		return out
	}
	for _, e := range tree.Entities() {
		for _, it := range tree.DetailItems(e, keep) {
			t := Top{Code: it.Code, Label: it.Label, Amount: it.Amount}
			if rest := trimCode(it.Label, it.Code); rest != it.Label {
				t.Label, t.Full = rest, it.Label
			}
			out[e] = append(out[e], t)
		}
	}
	return out
}

// ReportedTotals returns, per entity, the sum of the root total nodes
// labelled label for the slots accepted by keep.
func ReportedTotals(tree *hierarchy.Tree, label string, keep func(hierarchy.Slot) bool) map[string]float64 {
	out := make(map[string]float64)
	if tree == nil {
		return out
	}
	_, totals := tree.Partition()
	for _, n := range totals {
		if len(n.Path) > 0 || n.Label != label {
			continue
		}
		for _, e := range n.Entities() {
			byYear := make(map[int]float64)
			values := n.Values(e)
			for _, s := range slotYears(values) {
				if keep == nil || keep(s) {
					byYear[s.Year] += values[s]
				}
			}
			if len(byYear) > 0 {
				out[e] += SumYears(byYear)
			}
		}
	}
	return out
}

func trimCode(label, code string) string {
	rest := strings.TrimSpace(strings.TrimPrefix(label, code))
	if code == "" || rest == "" || !strings.HasPrefix(label, code+" ") {
		return label
	}
	return rest
}
