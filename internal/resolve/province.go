package resolve

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// Province is one of the five Flemish provinces.
type Province struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type provinceRange struct {
	prefix   string
	province Province
}

// Provinces maps structured boundary identifiers and provincial
// administration labels to provinces. Immutable once built.
type Provinces struct {
	country string
	all     []Province
	ranges  []provinceRange
	byKey   map[string]Province
}

// NewProvinces builds the table from NIS prefix ranges.
func NewProvinces(country string, ranges []ProvinceRange) (*Provinces, error) {
	if country == "" {
		return nil, eris.New("resolve: province table without country")
	}
	p := &Provinces{
		country: strings.ToUpper(country),
		byKey:   make(map[string]Province),
	}
	for _, r := range ranges {
		prov := Province{Key: ProvinceNames.Key(r.Name), Name: ProvinceNames.Display(r.Name)}
		if _, dup := p.byKey[prov.Key]; dup {
			return nil, eris.Errorf("resolve: province %q declared twice", r.Name)
		}
		p.byKey[prov.Key] = prov
		p.all = append(p.all, prov)
		for _, pre := range r.Prefixes {
			if pre == "" || !isDigits(pre) {
				return nil, eris.Errorf("resolve: province %q has invalid prefix %q", r.Name, pre)
			}
			p.ranges = append(p.ranges, provinceRange{prefix: pre, province: prov})
		}
	}

	// Longest prefix first so "23" wins over a hypothetical "2".
	sort.SliceStable(p.ranges, func(i, j int) bool {
		return len(p.ranges[i].prefix) > len(p.ranges[j].prefix)
	})
	sort.Slice(p.all, func(i, j int) bool { return p.all[i].Key < p.all[j].Key })
	return p, nil
}

// DefaultProvinces builds the embedded Flemish province table.
func DefaultProvinces() (*Provinces, error) {
	f, err := loadProvinceFile()
	if err != nil {
		return nil, err
	}
	return NewProvinces(f.Country, f.Provinces)
}

// ParseStructuredID splits an identifier like "BE_11001" into its country
// prefix and numeric code.
func ParseStructuredID(id string) (country, code string, err error) {
	id = strings.TrimSpace(id)
	idx := strings.IndexAny(id, "_-")
	if idx <= 0 || idx == len(id)-1 {
		return "", "", eris.Errorf("resolve: malformed structured id %q", id)
	}
	country, code = strings.ToUpper(id[:idx]), id[idx+1:]
	if !isDigits(code) {
		return "", "", eris.Errorf("resolve: non-numeric code in structured id %q", id)
	}
	return country, code, nil
}

// ProvinceOf returns the province of a structured identifier. Out-of-region
// codes (Brussels, Wallonia, Walloon Brabant) and other countries report
// false; that is an expected outcome, not an error.
func (p *Provinces) ProvinceOf(id string) (Province, bool) {
	country, code, err := ParseStructuredID(id)
	if err != nil || country != p.country {
		return Province{}, false
	}
	for _, r := range p.ranges {
		if strings.HasPrefix(code, r.prefix) {
			return r.province, true
		}
	}
	return Province{}, false
}

// ByLabel resolves a provincial administration label ("Provincie Limburg")
// or bare name to a province.
func (p *Provinces) ByLabel(label string) (Province, bool) {
	prov, ok := p.byKey[ProvinceNames.Key(label)]
	return prov, ok
}

// ByKey returns the province with the given key.
func (p *Provinces) ByKey(key string) (Province, bool) {
	prov, ok := p.byKey[key]
	return prov, ok
}

// All returns the provinces sorted by key.
func (p *Provinces) All() []Province {
	out := make([]Province, len(p.all))
	copy(out, p.all)
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
