package reconcile

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/amount"
)

// Entry is one labelled amount.
type Entry struct {
	Key   string
	Value float64
}

// Breakdown is an ordered set of amounts that marshals to a JSON object
// whose keys keep the slice order.
type Breakdown []Entry

// MarshalJSON renders the breakdown as an object in slice order.
func (b Breakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// NewBreakdown keeps the strictly positive amounts of m, rounded to two
// decimals, sorted by amount descending (ties by key).
func NewBreakdown(m map[string]float64) Breakdown {
	out := make(Breakdown, 0, len(m))
	for k, v := range m {
		if v > 0 {
			out = append(out, Entry{Key: k, Value: amount.Round2(v)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Key < out[j].Key
	})
	return out
}
