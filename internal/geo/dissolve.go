package geo

import (
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/resolve"
)

// ErrProvinceConflict is matched by errors.Is when members of one fusion
// group carry different provinces.
var ErrProvinceConflict = eris.New("geo: province conflict within fusion group")

// ProvinceConflictError names the group and the two disagreeing provinces.
type ProvinceConflictError struct {
	Key    string
	First  resolve.Province
	Member string
	Other  resolve.Province
}

func (e *ProvinceConflictError) Error() string {
	return fmt.Sprintf("geo: %s: member %s is in %s, group is in %s", e.Key, e.Member, e.Other.Name, e.First.Name)
}

// Is matches ErrProvinceConflict.
func (e *ProvinceConflictError) Is(target error) bool { return target == ErrProvinceConflict }

// Dissolve groups records by canonical key and unions their geometries.
// The union is the multipolygon of every member polygon; administrative
// units do not overlap, so area is preserved. It is not topologically
// dissolved: borders shared between members remain as polygon edges.
// Output is sorted by key.
func Dissolve(records []Record, resolver *resolve.Resolver) ([]Record, error) {
	groups := make(map[string]*Record)
	var keys []string

	for _, rec := range records {
		key := resolver.Resolve(rec.Key)
		g, ok := groups[key]
		if !ok {
			g = &Record{
				ID:       rec.ID,
				Key:      key,
				Name:     rec.Name,
				Province: rec.Province,
			}
			if name, merged := resolver.Name(key); merged {
				g.Name = name
			}
			groups[key] = g
			keys = append(keys, key)
		} else if g.Province != rec.Province {
			return nil, &ProvinceConflictError{Key: key, First: g.Province, Member: rec.Key, Other: rec.Province}
		}
		if rec.Key == key {
			g.ID = rec.ID
		}
		g.Members = append(g.Members, rec.Key)
		if err := appendPolygons(g, rec.Geometry); err != nil {
			return nil, err
		}
	}

	sort.Strings(keys)
	out := make([]Record, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		sort.Strings(g.Members)
		out = append(out, *g)
	}
	return out, nil
}

func appendPolygons(g *Record, mp *geom.MultiPolygon) error {
	if mp == nil {
		return nil
	}
	if g.Geometry == nil {
		g.Geometry = geom.NewMultiPolygon(mp.Layout()).SetSRID(mp.SRID())
	}
	for i := 0; i < mp.NumPolygons(); i++ {
		if err := g.Geometry.Push(mp.Polygon(i)); err != nil {
			return eris.Wrapf(err, "geo: dissolve %s", g.Key)
		}
	}
	return nil
}
