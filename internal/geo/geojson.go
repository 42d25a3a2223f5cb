package geo

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// feature is a geometry with its attributes rendered as strings.
type feature struct {
	props map[string]string
	geom  geom.T
}

func readGeoJSON(path string) ([]feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: read %s", path)
	}
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "geo: decode feature collection %s", path)
	}

	out := make([]feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		out = append(out, feature{props: stringProps(f.Properties), geom: f.Geometry})
	}
	return out, nil
}

func stringProps(m map[string]any) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		switch x := v.(type) {
		case nil:
		case string:
			out[k] = x
		case float64:
			out[k] = strconv.FormatFloat(x, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(x)
		default:
			if b, err := json.Marshal(x); err == nil {
				out[k] = string(b)
			}
		}
	}
	return out
}
