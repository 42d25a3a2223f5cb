// Package geo loads municipality polygons and dissolves them onto their
// post-merger identity.
package geo

import (
	"github.com/twpayne/go-geom"

	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/resolve"
)

// Record is one administrative unit with its polygon and province.
type Record struct {
	ID       string // structured id, e.g. "BE_11002"
	Key      string // normalized entity key
	Name     string
	Province resolve.Province
	Members  []string // pre-merger keys; set by Dissolve
	Geometry *geom.MultiPolygon
}

// Area returns the planar area of the record's geometry in squared
// coordinate units.
func (r Record) Area() float64 {
	if r.Geometry == nil {
		return 0
	}
	return r.Geometry.Area()
}

// LayerOptions selects the layer and attribute columns of a geometry source.
type LayerOptions struct {
	Layer          string // GeoPackage table; empty selects the first feature table
	IDColumn       string // structured id, default "GISCO_ID"
	NameColumn     string // default "LAU_NAME"
	CountryColumn  string // optional; rows of other countries are dropped
	Country        string // default "BE"
	ProvinceColumn string // optional label column overriding the id-derived province
}

func (o LayerOptions) withDefaults() LayerOptions {
	if o.IDColumn == "" {
		o.IDColumn = "GISCO_ID"
	}
	if o.NameColumn == "" {
		o.NameColumn = "LAU_NAME"
	}
	if o.Country == "" {
		o.Country = "BE"
	}
	return o
}

// toMultiPolygon normalizes polygonal geometries. Other types yield nil.
func toMultiPolygon(g geom.T) *geom.MultiPolygon {
	switch v := g.(type) {
	case *geom.MultiPolygon:
		if v.NumPolygons() == 0 {
			return nil
		}
		return v
	case *geom.Polygon:
		mp := geom.NewMultiPolygon(v.Layout())
		if err := mp.Push(v); err != nil {
			return nil
		}
		return mp
	default:
		return nil
	}
}
