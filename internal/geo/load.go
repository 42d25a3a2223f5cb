package geo

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/resolve"
)

// Load reads a GeoJSON, Shapefile or GeoPackage layer and keeps the polygons
// that fall inside one of the provinces. Units outside the region are
// counted and dropped.
func Load(ctx context.Context, path string, opts LayerOptions, provinces *resolve.Provinces, norm resolve.Normalizer) ([]Record, error) {
	opts = opts.withDefaults()
	log := zap.L().With(zap.String("component", "geo.load"), zap.String("path", path))

	var (
		features []feature
		err      error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		features, err = readGeoJSON(path)
	case ".shp":
		features, err = readShapefile(path)
	case ".gpkg":
		features, err = readGeoPackage(ctx, path, opts)
	default:
		return nil, eris.Errorf("geo: unsupported geometry format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	var (
		out                       []Record
		foreign, outside, invalid int
	)
	for _, f := range features {
		if opts.CountryColumn != "" && f.props[opts.CountryColumn] != opts.Country {
			foreign++
			continue
		}

		id := f.props[opts.IDColumn]
		if id != "" && !strings.ContainsAny(id, "_-") {
			id = opts.Country + "_" + id
		}

		var (
			prov resolve.Province
			ok   bool
		)
		if opts.ProvinceColumn != "" {
			prov, ok = provinces.ByLabel(f.props[opts.ProvinceColumn])
		} else {
			prov, ok = provinces.ProvinceOf(id)
		}
		if !ok {
			outside++
			continue
		}

		name := f.props[opts.NameColumn]
		mp := toMultiPolygon(f.geom)
		if name == "" || mp == nil {
			invalid++
			continue
		}
		out = append(out, Record{
			ID:       id,
			Key:      norm.Key(name),
			Name:     norm.Display(name),
			Province: prov,
			Geometry: mp,
		})
	}

	log.Info("geo: loaded layer",
		zap.Int("features", len(features)),
		zap.Int("kept", len(out)),
		zap.Int("foreign", foreign),
		zap.Int("outside_region", outside),
		zap.Int("invalid", invalid),
	)
	return out, nil
}
