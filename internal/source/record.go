// Package source parses the three export layouts into a common record shape.
package source

import (
	"strings"
)

// Kind distinguishes concrete leaf facts from derived aggregates.
type Kind int

const (
	// KindDetail is a leaf with a concrete account/domain code.
	KindDetail Kind = iota
	// KindTotal is a subtotal or grand total; never part of a bottom-up sum.
	KindTotal
)

func (k Kind) String() string {
	if k == KindTotal {
		return "total"
	}
	return "detail"
}

// MarshalText renders the kind as "detail" or "total".
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Record is one parsed fact. Records with an empty Entity carry node
// metadata only (a hierarchy row without any amount).
type Record struct {
	Entity     string   // normalized pre-fusion entity key
	EntityName string   // entity label without prefix, original casing
	Code       string   // account/domain code; empty for totals
	Label      string   // full label as found in the source
	Amount     float64  // never zero for fact records
	Kind       Kind     // detail or total
	Depth      int      // number of ancestor levels
	Path       []string // ancestor labels, root first
	Year       int      // 0 when the source has no year dimension
	Period     string   // reporting period name, "" when not applicable
}

// HasFact reports whether the record carries a monetary fact.
func (r Record) HasFact() bool {
	return r.Entity != "" && r.Amount != 0
}

// NodeKey identifies the account node a record belongs to: the code for
// detail records, the labelled path for totals.
func (r Record) NodeKey() string {
	if r.Kind == KindDetail && r.Code != "" {
		return r.Code
	}
	parts := make([]string, 0, len(r.Path)+1)
	parts = append(parts, r.Path...)
	parts = append(parts, r.Label)
	return "total:" + strings.Join(parts, " > ")
}

// Result is the output of one parser run.
type Result struct {
	Source            string
	Records           []Record
	InvalidCells      int // non-blank cells that failed numeric parsing
	SkippedColumns    int // columns whose header could not be interpreted
	DuplicateEntities int // entity rows dropped because the key was already seen
}

// Facts counts records that carry an amount.
func (r *Result) Facts() int {
	n := 0
	for _, rec := range r.Records {
		if rec.HasFact() {
			n++
		}
	}
	return n
}

// Entities returns the distinct entity keys in first-seen order.
func (r *Result) Entities() []string {
	seen := make(map[string]bool)
	var out []string
	for _, rec := range r.Records {
		if rec.Entity == "" || seen[rec.Entity] {
			continue
		}
		seen[rec.Entity] = true
		out = append(out, rec.Entity)
	}
	return out
}

// splitCodeLabel splits a "CODE label" header into its code and the label
// remainder. A header without whitespace is its own code.
func splitCodeLabel(header string) (code, label string) {
	header = strings.TrimSpace(header)
	fields := strings.Fields(header)
	if len(fields) == 0 {
		return "", ""
	}
	code = fields[0]
	label = strings.TrimSpace(strings.TrimPrefix(header, code))
	return code, label
}
