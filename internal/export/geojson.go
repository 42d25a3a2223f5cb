package export

import (
	"strconv"

	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/reconcile"
)

// FeatureCollection converts enriched features into a GeoJSON collection.
// Each feature carries its identity, the headline figure per year keyed by
// the year as a string, and the detail_<year> and domain_<year> breakdowns,
// which are null when the entity had no data in that source.
func FeatureCollection(features []reconcile.Feature, year int) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(features))}
	suffix := strconv.Itoa(year)

	for _, f := range features {
		props := map[string]any{
			"municipality": f.Name,
			"key":          f.Key,
			"id":           f.ID,
			"province":     f.Province.Name,
			"members":      f.Members,
		}
		for y, v := range f.Headline {
			props[strconv.Itoa(y)] = v
		}
		if f.Detail != nil {
			props["detail_"+suffix] = f.Detail
		} else {
			props["detail_"+suffix] = nil
		}
		if f.Domain != nil {
			props["domain_"+suffix] = f.Domain
		} else {
			props["domain_"+suffix] = nil
		}

		gf := &geojson.Feature{ID: f.ID, Properties: props}
		if f.Geometry != nil {
			gf.Geometry = f.Geometry
		}
		fc.Features = append(fc.Features, gf)
	}
	return fc
}

// WriteFeatures writes the enriched collection to path.
func WriteFeatures(path string, features []reconcile.Feature, year int) error {
	return WriteJSON(path, FeatureCollection(features, year))
}
