package geo

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

func readShapefile(path string) ([]feature, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
	}

	var out []feature
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		mp := polygonToMultiPolygon(poly)
		if mp == nil {
			skipped++
			continue
		}

		props := make(map[string]string, len(names))
		for i, name := range names {
			props[name] = strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
		}
		out = append(out, feature{props: props, geom: mp})
	}

	if skipped > 0 {
		zap.L().Debug("geo: skipped non-polygon shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return out, nil
}

// polygonToMultiPolygon converts a shapefile polygon. Clockwise rings start
// a new polygon; counter-clockwise rings are holes of the preceding one.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	var current *geom.Polygon
	flush := func() {
		if current != nil {
			if err := mp.Push(current); err != nil {
				zap.L().Debug("geo: skipping malformed polygon", zap.Error(err))
			}
		}
	}

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if start < 0 || start >= end || end > int32(len(p.Points)) {
			continue
		}

		flat := make([]float64, 0, 2*(end-start))
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		ring := geom.NewLinearRingFlat(geom.XY, flat)

		if current == nil || signedArea(flat) < 0 {
			flush()
			current = geom.NewPolygon(geom.XY)
		}
		if err := current.Push(ring); err != nil {
			zap.L().Debug("geo: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
		}
	}
	flush()

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// signedArea is positive for counter-clockwise rings.
func signedArea(flat []float64) float64 {
	var sum float64
	n := len(flat) / 2
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += flat[2*i]*flat[2*j+1] - flat[2*j]*flat[2*i+1]
	}
	return sum / 2
}
