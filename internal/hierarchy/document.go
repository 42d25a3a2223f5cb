package hierarchy

import (
	"strings"

	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/amount"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/source"
)

// NodeDoc is the exported form of a node: metadata once, facts per entity.
type NodeDoc struct {
	Label    string             `json:"label"`
	Category string             `json:"category,omitempty"`
	Levels   []string           `json:"levels"`
	Depth    int                `json:"depth"`
	Path     string             `json:"path"`
	Kind     source.Kind        `json:"kind"`
	Entities map[string]float64 `json:"entities"`
}

// Metadata summarizes a document.
type Metadata struct {
	AccountCount int    `json:"account_count"`
	EntityCount  int    `json:"entity_count"`
	FactCount    int    `json:"fact_count"`
	Description  string `json:"description,omitempty"`
}

// Document is the grouped account document for one book year.
type Document struct {
	Year     int                `json:"boekjaar"`
	Accounts map[string]NodeDoc `json:"rekeningen"`
	Metadata Metadata           `json:"metadata"`
}

// Document exports every node with its facts for year.
func (t *Tree) Document(year int) Document {
	return t.document(year, func(*Node) bool { return true }, "accounts grouped with metadata")
}

// DetailDocument exports the detail nodes only.
func (t *Tree) DetailDocument(year int) Document {
	return t.document(year, (*Node).Detail, "detail accounts")
}

// TotalDocument exports the total nodes only.
func (t *Tree) TotalDocument(year int) Document {
	return t.document(year, func(n *Node) bool { return !n.Detail() }, "reported subtotals")
}

func (t *Tree) document(year int, include func(*Node) bool, desc string) Document {
	doc := Document{
		Year:     year,
		Accounts: make(map[string]NodeDoc),
	}
	keep := InYear(year)
	entities := make(map[string]bool)
	for _, k := range t.sortedKeys() {
		n := t.nodes[k]
		if !include(n) {
			continue
		}
		nd := NodeDoc{
			Label:    n.Label,
			Category: n.Category(),
			Levels:   append([]string{}, n.Path...),
			Depth:    n.Depth,
			Path:     strings.Join(append(append([]string{}, n.Path...), n.Label), " > "),
			Kind:     n.Kind,
			Entities: make(map[string]float64),
		}
		for _, e := range n.Entities() {
			var sum float64
			for _, s := range sortedSlots(n.values[e]) {
				if keep(s) {
					sum += n.values[e][s]
				}
			}
			if sum == 0 {
				continue
			}
			nd.Entities[e] = amount.Round2(sum)
			entities[e] = true
			doc.Metadata.FactCount++
		}
		doc.Accounts[k] = nd
	}
	doc.Metadata.AccountCount = len(doc.Accounts)
	doc.Metadata.EntityCount = len(entities)
	doc.Metadata.Description = desc
	return doc
}
