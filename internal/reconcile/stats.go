package reconcile

import (
	"sort"

	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/amount"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/geo"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/hierarchy"
)

// Averages holds the arithmetic means of the headline figures per year for
// the whole region and per province.
type Averages struct {
	Region    map[int]float64            `json:"Vlaanderen"`
	Provinces map[string]map[int]float64 `json:"Provincies"`
}

// ComputeAverages averages the headline figure of every entity per year.
// Only entities with a value for that year count towards the mean.
func ComputeAverages(records []geo.Record, headline map[string]map[int]float64) Averages {
	type acc struct {
		sum float64
		n   int
	}
	region := make(map[int]*acc)
	provinces := make(map[string]map[int]*acc)

	sorted := append([]geo.Record{}, records...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	add := func(m map[int]*acc, year int, v float64) {
		a := m[year]
		if a == nil {
			a = &acc{}
			m[year] = a
		}
		a.sum += v
		a.n++
	}

	for _, r := range sorted {
		values := headline[r.Key]
		if len(values) == 0 {
			continue
		}
		prov := provinces[r.Province.Name]
		if prov == nil {
			prov = make(map[int]*acc)
			provinces[r.Province.Name] = prov
		}
		for _, y := range sortedYears(values) {
			add(region, y, values[y])
			add(prov, y, values[y])
		}
	}

	mean := func(m map[int]*acc) map[int]float64 {
		out := make(map[int]float64, len(m))
		for y, a := range m {
			out[y] = amount.Round2(a.sum / float64(a.n))
		}
		return out
	}
	avg := Averages{Region: mean(region), Provinces: make(map[string]map[int]float64, len(provinces))}
	for name, m := range provinces {
		avg.Provinces[name] = mean(m)
	}
	return avg
}

// DomainTotals sums every detail node of tree over all entities, per node
// label and book year.
func DomainTotals(tree *hierarchy.Tree) map[string]map[int]float64 {
	out := make(map[string]map[int]float64)
	if tree == nil {
		return out
	}
	details, _ := tree.Partition()
	for _, n := range details {
		byYear := out[n.Label]
		if byYear == nil {
			byYear = make(map[int]float64)
		}
		for _, e := range n.Entities() {
			values := n.Values(e)
			for _, y := range slotYears(values) {
				byYear[y.Year] += values[y]
			}
		}
		if len(byYear) > 0 {
			out[n.Label] = byYear
		}
	}
	for _, byYear := range out {
		for y, v := range byYear {
			byYear[y] = amount.Round2(v)
		}
	}
	return out
}

func sortedYears(m map[int]float64) []int {
	out := make([]int, 0, len(m))
	for y := range m {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

func slotYears(m map[hierarchy.Slot]float64) []hierarchy.Slot {
	out := make([]hierarchy.Slot, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Period < out[j].Period
	})
	return out
}
