package geo

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
	_ "modernc.org/sqlite"
)

func readGeoPackage(ctx context.Context, path string, opts LayerOptions) ([]feature, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, eris.Wrapf(err, "geo: open geopackage %s", path)
	}
	defer func() { _ = db.Close() }()

	table, geomCol, err := geometryColumn(ctx, db, opts.Layer)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: %s", path)
	}

	cols := []string{opts.IDColumn, opts.NameColumn}
	for _, c := range []string{opts.CountryColumn, opts.ProvinceColumn} {
		if c != "" {
			cols = append(cols, c)
		}
	}
	quoted := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		quoted = append(quoted, quoteIdent(c))
	}
	quoted = append(quoted, quoteIdent(geomCol))

	q := fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), quoteIdent(table))
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: query layer %s", table)
	}
	defer func() { _ = rows.Close() }()

	var out []feature
	for rows.Next() {
		attrs := make([]sql.NullString, len(cols))
		var blob []byte
		dest := make([]any, 0, len(cols)+1)
		for i := range attrs {
			dest = append(dest, &attrs[i])
		}
		dest = append(dest, &blob)
		if err := rows.Scan(dest...); err != nil {
			return nil, eris.Wrapf(err, "geo: scan layer %s", table)
		}

		g, err := decodeGPKG(blob)
		if err != nil {
			return nil, eris.Wrapf(err, "geo: layer %s", table)
		}
		props := make(map[string]string, len(cols))
		for i, c := range cols {
			props[c] = strings.TrimSpace(attrs[i].String)
		}
		out = append(out, feature{props: props, geom: g})
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrapf(err, "geo: iterate layer %s", table)
	}
	return out, nil
}

func geometryColumn(ctx context.Context, db *sql.DB, layer string) (table, column string, err error) {
	q := "SELECT table_name, column_name FROM gpkg_geometry_columns"
	var args []any
	if layer != "" {
		q += " WHERE table_name = ?"
		args = append(args, layer)
	}
	q += " ORDER BY table_name LIMIT 1"
	if err := db.QueryRowContext(ctx, q, args...).Scan(&table, &column); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", eris.Errorf("geo: no geometry layer %q", layer)
		}
		return "", "", eris.Wrap(err, "geo: read gpkg_geometry_columns")
	}
	return table, column, nil
}

// envelopeSizes maps the envelope indicator (flag bits 1-3) to its byte length.
var envelopeSizes = map[byte]int{0: 0, 1: 32, 2: 48, 3: 48, 4: 64}

// decodeGPKG decodes a GeoPackage geometry blob: the "GP" header, version,
// flags, srs id and optional envelope, followed by standard WKB.
func decodeGPKG(blob []byte) (geom.T, error) {
	if len(blob) < 8 || blob[0] != 'G' || blob[1] != 'P' {
		return nil, eris.New("geo: not a geopackage geometry")
	}
	flags := blob[3]
	envLen, ok := envelopeSizes[(flags>>1)&0x07]
	if !ok {
		return nil, eris.Errorf("geo: invalid envelope indicator in flags %#x", flags)
	}
	if flags&0x10 != 0 {
		return nil, nil
	}

	var order binary.ByteOrder = binary.BigEndian
	if flags&0x01 != 0 {
		order = binary.LittleEndian
	}
	srid := int(int32(order.Uint32(blob[4:8])))

	start := 8 + envLen
	if len(blob) < start {
		return nil, eris.New("geo: truncated geopackage header")
	}
	g, err := wkb.Unmarshal(blob[start:])
	if err != nil {
		return nil, eris.Wrap(err, "geo: decode wkb")
	}
	if mp := toMultiPolygon(g); mp != nil {
		mp.SetSRID(srid)
		return mp, nil
	}
	return g, nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
