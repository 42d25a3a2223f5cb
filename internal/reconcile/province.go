package reconcile

import (
	"math"
	"sort"

	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/amount"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/hierarchy"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/resolve"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/source"
)

// ProvinceInput carries the three independently parsed province sources.
// Entity keys in every tree are province keys.
type ProvinceInput struct {
	Provinces   []resolve.Province
	Plans       source.Plans
	Correct     *hierarchy.Tree // published totals per year
	Domains     *hierarchy.Tree // per policy field
	Accounts    *hierarchy.Tree // per account
	TotalMarker string          // label of the reported total rows, default "Total"
	Tolerance   float64
}

// DomainBreakdown is the per-domain split of one province and plan.
type DomainBreakdown struct {
	Total     float64   `json:"total"`
	PerDomain Breakdown `json:"per_domain"`
}

// AccountBreakdown is the per-account split of one province and plan.
type AccountBreakdown struct {
	Total      float64   `json:"total"`
	PerAccount Breakdown `json:"per_account"`
}

// PlanStats summarizes the province totals of one plan.
type PlanStats struct {
	Total     float64 `json:"total_all_provinces"`
	Mean      float64 `json:"mean"`
	Minimum   float64 `json:"minimum"`
	Maximum   float64 `json:"maximum"`
	Provinces int     `json:"province_count"`
	WithData  int     `json:"with_data"`
}

// ProvinceComparison compares the published total against both derived
// totals. Percentages are relative to the published total.
type ProvinceComparison struct {
	Correct         float64 `json:"correct"`
	Domains         float64 `json:"domains"`
	Accounts        float64 `json:"accounts"`
	DiffDomains     float64 `json:"diff_domains"`
	DiffAccounts    float64 `json:"diff_accounts"`
	PctDiffDomains  float64 `json:"pct_diff_domains"`
	PctDiffAccounts float64 `json:"pct_diff_accounts"`
	DomainsMatch    bool    `json:"domains_match"`
	AccountsMatch   bool    `json:"accounts_match"`
}

// ValidationMismatch is one failed accounts-versus-domains check.
type ValidationMismatch struct {
	Province   string  `json:"province"`
	Period     string  `json:"period"`
	Accounts   float64 `json:"accounts"`
	Domains    float64 `json:"domains"`
	Difference float64 `json:"difference"` // absolute
}

// ValidationSummary counts the checks.
type ValidationSummary struct {
	TotalComparisons int `json:"total_comparisons"`
	Matches          int `json:"matches"`
	Mismatches       int `json:"mismatches"`
}

// Validation is the accounts-versus-domains report.
type Validation struct {
	AllMatch   bool                 `json:"all_match"`
	Mismatches []ValidationMismatch `json:"mismatches"`
	Summary    ValidationSummary    `json:"summary"`
}

// ProvinceReport holds every province document, keyed by province name
// and plan name.
type ProvinceReport struct {
	Totals     map[string]map[string]float64            `json:"totals"`
	Detailed   map[string]map[string]DomainBreakdown    `json:"detailed"`
	Accounts   map[string]map[string]AccountBreakdown   `json:"accounts"`
	Stats      map[string]PlanStats                     `json:"stats"`
	Comparison map[string]map[string]ProvinceComparison `json:"comparison"`
	Validation Validation                               `json:"validation"`
}

// PlanTotal sums the facts of entity in period over the nodes accepted by
// include, within each book year first and then across years.
func PlanTotal(tree *hierarchy.Tree, entity, period string, include func(*hierarchy.Node) bool) float64 {
	if tree == nil {
		return 0
	}
	return SumYears(tree.YearTotals(entity, period, include))
}

// ReconcileProvinces builds the province documents. Every province and
// plan appears, with zeros where a source has no data.
func ReconcileProvinces(in ProvinceInput) ProvinceReport {
	if in.TotalMarker == "" {
		in.TotalMarker = "Total"
	}
	rep := ProvinceReport{
		Totals:     make(map[string]map[string]float64),
		Detailed:   make(map[string]map[string]DomainBreakdown),
		Accounts:   make(map[string]map[string]AccountBreakdown),
		Stats:      make(map[string]PlanStats),
		Comparison: make(map[string]map[string]ProvinceComparison),
		Validation: Validation{AllMatch: true, Mismatches: []ValidationMismatch{}},
	}
	all := func(*hierarchy.Node) bool { return true }
	reportedTotal := func(n *hierarchy.Node) bool {
		return !n.Detail() && len(n.Path) == 0 && n.Label == in.TotalMarker
	}

	for _, p := range in.Provinces {
		rep.Totals[p.Name] = make(map[string]float64)
		rep.Detailed[p.Name] = make(map[string]DomainBreakdown)
		rep.Accounts[p.Name] = make(map[string]AccountBreakdown)
		rep.Comparison[p.Name] = make(map[string]ProvinceComparison)

		for _, plan := range in.Plans {
			correct := PlanTotal(in.Correct, p.Key, plan.Name, all)
			domains := PlanTotal(in.Domains, p.Key, plan.Name, (*hierarchy.Node).Detail)
			accounts := PlanTotal(in.Accounts, p.Key, plan.Name, (*hierarchy.Node).Detail)

			rep.Totals[p.Name][plan.Name] = amount.Round2(correct)

			reported := PlanTotal(in.Domains, p.Key, plan.Name, reportedTotal)
			if reported == 0 {
				reported = domains
			}
			rep.Detailed[p.Name][plan.Name] = DomainBreakdown{
				Total:     amount.Round2(reported),
				PerDomain: NewBreakdown(groupByRoot(in.Domains, p.Key, plan.Name)),
			}
			rep.Accounts[p.Name][plan.Name] = AccountBreakdown{
				Total:      amount.Round2(accounts),
				PerAccount: NewBreakdown(groupByLabel(in.Accounts, p.Key, plan.Name)),
			}

			dd, da := domains-correct, accounts-correct
			rep.Comparison[p.Name][plan.Name] = ProvinceComparison{
				Correct:         amount.Round2(correct),
				Domains:         amount.Round2(domains),
				Accounts:        amount.Round2(accounts),
				DiffDomains:     amount.Round2(dd),
				DiffAccounts:    amount.Round2(da),
				PctDiffDomains:  amount.Round2(pct(dd, correct)),
				PctDiffAccounts: amount.Round2(pct(da, correct)),
				DomainsMatch:    Matches(domains, correct, in.Tolerance),
				AccountsMatch:   Matches(accounts, correct, in.Tolerance),
			}

			rep.Validation.Summary.TotalComparisons++
			ra, rd := amount.Round2(accounts), amount.Round2(domains)
			if !Matches(ra, rd, in.Tolerance) && (ra > 0 || rd > 0) {
				rep.Validation.AllMatch = false
				rep.Validation.Mismatches = append(rep.Validation.Mismatches, ValidationMismatch{
					Province:   p.Name,
					Period:     plan.Name,
					Accounts:   ra,
					Domains:    rd,
					Difference: amount.Round2(math.Abs(ra - rd)),
				})
			}
		}
	}
	rep.Validation.Summary.Mismatches = len(rep.Validation.Mismatches)
	rep.Validation.Summary.Matches = rep.Validation.Summary.TotalComparisons - rep.Validation.Summary.Mismatches

	for _, plan := range in.Plans {
		rep.Stats[plan.Name] = planStats(rep.Totals, plan.Name)
	}
	return rep
}

func planStats(totals map[string]map[string]float64, plan string) PlanStats {
	st := PlanStats{Provinces: len(totals)}
	var sum float64
	for _, name := range sortedKeys(totals) {
		v := totals[name][plan]
		sum += v
		if v <= 0 {
			continue
		}
		if st.WithData == 0 || v < st.Minimum {
			st.Minimum = v
		}
		if st.WithData == 0 || v > st.Maximum {
			st.Maximum = v
		}
		st.WithData++
	}
	if st.WithData == 0 {
		return PlanStats{Provinces: len(totals)}
	}
	st.Total = amount.Round2(sum)
	st.Mean = amount.Round2(sum / float64(st.Provinces))
	return st
}

// groupByRoot sums detail facts per outermost level label (the policy
// domain), falling back to the node label for root nodes.
func groupByRoot(tree *hierarchy.Tree, entity, period string) map[string]float64 {
	return groupDetails(tree, entity, period, func(n *hierarchy.Node) string {
		if len(n.Path) > 0 {
			return n.Path[0]
		}
		return n.Label
	})
}

func groupByLabel(tree *hierarchy.Tree, entity, period string) map[string]float64 {
	return groupDetails(tree, entity, period, func(n *hierarchy.Node) string { return n.Label })
}

func groupDetails(tree *hierarchy.Tree, entity, period string, group func(*hierarchy.Node) string) map[string]float64 {
	out := make(map[string]float64)
	if tree == nil {
		return out
	}
	byGroup := make(map[string]map[int]float64)
	details, _ := tree.Partition()
	for _, n := range details {
		values := n.Values(entity)
		for _, s := range slotYears(values) {
			if s.Period != period {
				continue
			}
			g := group(n)
			if byGroup[g] == nil {
				byGroup[g] = make(map[int]float64)
			}
			byGroup[g][s.Year] += values[s]
		}
	}
	for g, byYear := range byGroup {
		out[g] = SumYears(byYear)
	}
	return out
}

func pct(diff, base float64) float64 {
	if base <= 0 {
		return 0
	}
	return diff / base * 100
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
