package source

import (
	"strconv"
	"strings"
)

// Plan is a multi-year plan window: columns reported in ReportYear for book
// years From..To (inclusive) belong to the period Name.
type Plan struct {
	Name       string `mapstructure:"name" yaml:"name" json:"name"`
	ReportYear int    `mapstructure:"report_year" yaml:"report_year" json:"report_year"`
	From       int    `mapstructure:"from" yaml:"from" json:"from"`
	To         int    `mapstructure:"to" yaml:"to" json:"to"`
}

// Plans is an ordered set of plan windows.
type Plans []Plan

// DefaultPlans returns the three plan windows of the reporting cycle.
func DefaultPlans() Plans {
	return Plans{
		{Name: "2014-2019", ReportYear: 2014, From: 2014, To: 2019},
		{Name: "2020-2025", ReportYear: 2020, From: 2020, To: 2025},
		{Name: "2026-2031", ReportYear: 2026, From: 2026, To: 2031},
	}
}

// Period returns the plan containing year. When reportYear is non-zero the
// plan's report year must match as well: book year 2026 reported in the 2020
// plan does not belong to the 2026-2031 window.
func (ps Plans) Period(reportYear, year int) (string, bool) {
	for _, p := range ps {
		if year < p.From || year > p.To {
			continue
		}
		if reportYear != 0 && p.ReportYear != reportYear {
			continue
		}
		return p.Name, true
	}
	return "", false
}

// Names returns the plan names in order.
func (ps Plans) Names() []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

// parseYear parses "2014" or a workbook rendering like "2014.0".
func parseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}
