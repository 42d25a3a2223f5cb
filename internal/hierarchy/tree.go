// Package hierarchy rebuilds the account tree from parsed records and holds
// the per-entity facts of every node.
package hierarchy

import (
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/resolve"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/source"
)

// Slot is the reporting coordinate of a fact.
type Slot struct {
	Period string
	Year   int
}

// Node is one line of the chart of accounts. Its metadata is fixed by the
// first record that mentions it.
type Node struct {
	Key   string
	Code  string
	Label string
	Kind  source.Kind
	Depth int
	Path  []string

	values map[string]map[Slot]float64
}

// Detail reports whether the node contributes to bottom-up sums.
func (n *Node) Detail() bool { return n.Kind == source.KindDetail }

// Value returns the fact for entity in slot, or 0 when absent.
func (n *Node) Value(entity string, s Slot) float64 {
	return n.values[entity][s]
}

// Values returns the facts of entity keyed by slot.
func (n *Node) Values(entity string) map[Slot]float64 {
	return n.values[entity]
}

// Entities returns the sorted keys of entities with at least one fact.
func (n *Node) Entities() []string {
	out := make([]string, 0, len(n.values))
	for e := range n.values {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// Category is the label of the nearest ancestor, or "" for root nodes.
func (n *Node) Category() string {
	if len(n.Path) == 0 {
		return ""
	}
	return n.Path[len(n.Path)-1]
}

// Conflict records a duplicate node whose metadata disagrees with the first
// occurrence. The first occurrence is kept.
type Conflict struct {
	Node  string
	Field string
	First string
	Other string
}

// Tree is the account table of one source. Entity keys are resolved through
// the fusion resolver before facts are accumulated, so pre-merger facts sum
// into their canonical entity.
type Tree struct {
	resolver  *resolve.Resolver
	nodes     map[string]*Node
	order     []string
	names     map[string]string
	conflicts []Conflict
	facts     int
}

// New creates an empty tree. A nil resolver leaves entity keys unchanged.
func New(resolver *resolve.Resolver) *Tree {
	return &Tree{
		resolver: resolver,
		nodes:    make(map[string]*Node),
		names:    make(map[string]string),
	}
}

// Build creates a tree from one or more parser results.
func Build(resolver *resolve.Resolver, results ...*source.Result) *Tree {
	t := New(resolver)
	for _, res := range results {
		t.Add(res.Records...)
	}
	return t
}

// Add inserts records. Zero amounts are never stored.
func (t *Tree) Add(records ...source.Record) {
	for _, rec := range records {
		n := t.node(rec)
		if !rec.HasFact() {
			continue
		}
		entity := t.resolver.Resolve(rec.Entity)
		if _, ok := t.names[entity]; !ok {
			name, merged := t.resolver.Name(entity)
			if !merged {
				name = rec.EntityName
			}
			t.names[entity] = name
		}
		if n.values == nil {
			n.values = make(map[string]map[Slot]float64)
		}
		slots := n.values[entity]
		if slots == nil {
			slots = make(map[Slot]float64)
			n.values[entity] = slots
		}
		s := Slot{Period: rec.Period, Year: rec.Year}
		if _, seen := slots[s]; !seen {
			t.facts++
		}
		slots[s] += rec.Amount
		if slots[s] == 0 {
			// Offsetting facts cancel out to an absent fact.
			delete(slots, s)
			t.facts--
		}
	}
}

func (t *Tree) node(rec source.Record) *Node {
	key := rec.NodeKey()
	n, ok := t.nodes[key]
	if !ok {
		n = &Node{
			Key:   key,
			Code:  rec.Code,
			Label: rec.Label,
			Kind:  rec.Kind,
			Depth: rec.Depth,
			Path:  slices.Clone(rec.Path),
		}
		t.nodes[key] = n
		t.order = append(t.order, key)
		return n
	}
	t.check(n, rec)
	return n
}

func (t *Tree) check(n *Node, rec source.Record) {
	add := func(field, first, other string) {
		if first != other {
			t.conflicts = append(t.conflicts, Conflict{Node: n.Key, Field: field, First: first, Other: other})
		}
	}
	add("label", n.Label, rec.Label)
	add("kind", n.Kind.String(), rec.Kind.String())
	add("path", strings.Join(n.Path, " > "), strings.Join(rec.Path, " > "))
	if n.Depth != rec.Depth {
		add("depth", strconv.Itoa(n.Depth), strconv.Itoa(rec.Depth))
	}
}

// Node returns the node with the given key.
func (t *Tree) Node(key string) (*Node, bool) {
	n, ok := t.nodes[key]
	return n, ok
}

// Nodes returns every node in first-seen order.
func (t *Tree) Nodes() []*Node {
	out := make([]*Node, len(t.order))
	for i, k := range t.order {
		out[i] = t.nodes[k]
	}
	return out
}

// Partition splits the nodes into detail and total nodes, each sorted by key.
func (t *Tree) Partition() (details, totals []*Node) {
	for _, k := range t.sortedKeys() {
		n := t.nodes[k]
		if n.Detail() {
			details = append(details, n)
		} else {
			totals = append(totals, n)
		}
	}
	return details, totals
}

// Entities returns the sorted canonical keys with at least one fact.
func (t *Tree) Entities() []string {
	out := make([]string, 0, len(t.names))
	for e := range t.names {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// EntityName returns the display name of a canonical entity key.
func (t *Tree) EntityName(key string) string {
	if n, ok := t.names[key]; ok {
		return n
	}
	return key
}

// Conflicts returns the metadata disagreements found while building.
func (t *Tree) Conflicts() []Conflict { return t.conflicts }

// FactCount returns the number of stored facts.
func (t *Tree) FactCount() int { return t.facts }

// Item is one contribution of a node to an entity.
type Item struct {
	Code   string  `json:"code"`
	Label  string  `json:"naam"`
	Amount float64 `json:"bedrag"`
}

// DetailItems returns the detail facts of entity for the slots accepted by
// keep, one item per node, in node key order.
func (t *Tree) DetailItems(entity string, keep func(Slot) bool) []Item {
	var out []Item
	for _, k := range t.sortedKeys() {
		n := t.nodes[k]
		if !n.Detail() {
			continue
		}
		var sum float64
		found := false
		for _, s := range sortedSlots(n.values[entity]) {
			if keep == nil || keep(s) {
				sum += n.values[entity][s]
				found = true
			}
		}
		if found && sum != 0 {
			out = append(out, Item{Code: n.Code, Label: n.Label, Amount: sum})
		}
	}
	return out
}

// DetailSum sums the detail facts of entity for the slots accepted by keep.
// Total nodes never contribute.
func (t *Tree) DetailSum(entity string, keep func(Slot) bool) float64 {
	var sum float64
	for _, it := range t.DetailItems(entity, keep) {
		sum += it.Amount
	}
	return sum
}

// DetailByYear sums the detail facts of entity per book year, restricted to
// period when it is non-empty.
func (t *Tree) DetailByYear(entity, period string) map[int]float64 {
	return t.YearTotals(entity, period, (*Node).Detail)
}

// YearTotals sums the facts of entity per book year over the nodes accepted
// by include, restricted to period when it is non-empty.
func (t *Tree) YearTotals(entity, period string, include func(*Node) bool) map[int]float64 {
	out := make(map[int]float64)
	for _, k := range t.sortedKeys() {
		n := t.nodes[k]
		if !include(n) {
			continue
		}
		for _, s := range sortedSlots(n.values[entity]) {
			if period != "" && s.Period != period {
				continue
			}
			out[s.Year] += n.values[entity][s]
		}
	}
	return out
}

// Slots returns every slot that carries at least one fact, sorted.
func (t *Tree) Slots() []Slot {
	set := make(map[Slot]bool)
	for _, n := range t.nodes {
		for _, slots := range n.values {
			for s := range slots {
				set[s] = true
			}
		}
	}
	out := make([]Slot, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sortSlots(out)
	return out
}

// InYear keeps facts of year; facts without a year dimension are kept too.
func InYear(year int) func(Slot) bool {
	return func(s Slot) bool { return s.Year == year || s.Year == 0 }
}

func (t *Tree) sortedKeys() []string {
	keys := slices.Clone(t.order)
	sort.Strings(keys)
	return keys
}

func sortedSlots(m map[Slot]float64) []Slot {
	out := make([]Slot, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	sortSlots(out)
	return out
}

func sortSlots(s []Slot) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Period != s[j].Period {
			return s[i].Period < s[j].Period
		}
		return s[i].Year < s[j].Year
	})
}
