package source

import (
	"strings"

	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/amount"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/resolve"
)

// MatrixOptions describes a wide export: one row per entity, one column
// per account, domain or year.
type MatrixOptions struct {
	Name            string
	EntityHeader    string // header of the entity column, default "Grondgebied"
	AttributeHeader string // optional attribute column (e.g. "Bestuur"); only TotalMarker rows are kept
	TotalMarker     string // default "Total"
	YearColumns     bool   // numeric headers are book years rather than codes
	SkipEntities    []string
	Entities        resolve.Normalizer
	MaxHeaderScan   int
}

func (o MatrixOptions) withDefaults() MatrixOptions {
	if o.EntityHeader == "" {
		o.EntityHeader = "Grondgebied"
	}
	if o.TotalMarker == "" {
		o.TotalMarker = "Total"
	}
	if o.SkipEntities == nil {
		o.SkipEntities = []string{"Total", "Totaal"}
	}
	if o.MaxHeaderScan == 0 {
		o.MaxHeaderScan = 20
	}
	return o
}

type matrixColumn struct {
	idx   int
	code  string
	label string
	kind  Kind
	year  int
}

// ParseMatrix reads a wide-matrix export. The header row is the first row
// containing EntityHeader. The first occurrence of each entity wins; later
// rows for the same normalized key are counted as duplicates and ignored.
func ParseMatrix(rows [][]string, opts MatrixOptions) (*Result, error) {
	opts = opts.withDefaults()
	hr := findRowContaining(rows, opts.EntityHeader, opts.MaxHeaderScan)
	if hr < 0 {
		return nil, structural(opts.Name, -1, "header %q not found", opts.EntityHeader)
	}
	header := rows[hr]
	entityCol := columnIndex(header, opts.EntityHeader)
	attrCol := columnIndex(header, opts.AttributeHeader)
	if opts.AttributeHeader != "" && attrCol < 0 {
		return nil, structural(opts.Name, hr, "column %q not found", opts.AttributeHeader)
	}

	res := &Result{Source: opts.Name}
	first := max(entityCol, attrCol) + 1
	var cols []matrixColumn
	for c := first; c < len(header); c++ {
		h := cell(header, c)
		if h == "" {
			res.SkippedColumns++
			continue
		}
		col := matrixColumn{idx: c, label: h}
		switch {
		case h == opts.TotalMarker:
			col.kind = KindTotal
		case opts.YearColumns:
			y, ok := parseYear(h)
			if !ok {
				res.SkippedColumns++
				continue
			}
			col.year = y
			col.kind = KindTotal
		default:
			col.code, _ = splitCodeLabel(h)
		}
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		return nil, structural(opts.Name, hr, "no value columns")
	}

	seen := make(map[string]bool)
	for i := hr + 1; i < len(rows); i++ {
		row := rows[i]
		raw := cell(row, entityCol)
		if raw == "" || skipEntity(raw, opts.SkipEntities) {
			continue
		}
		if attrCol >= 0 && cell(row, attrCol) != opts.TotalMarker {
			continue
		}
		key := opts.Entities.Key(raw)
		if seen[key] {
			res.DuplicateEntities++
			continue
		}
		seen[key] = true

		for _, col := range cols {
			s := cell(row, col.idx)
			v, ok := amount.Parse(s)
			if !ok {
				if s != "" && s != "-" {
					res.InvalidCells++
				}
				continue
			}
			if !amount.IsFact(v, ok) {
				continue
			}
			res.Records = append(res.Records, Record{
				Entity:     key,
				EntityName: opts.Entities.Display(raw),
				Code:       col.code,
				Label:      col.label,
				Amount:     v,
				Kind:       col.kind,
				Year:       col.year,
			})
		}
	}
	return res, nil
}

func skipEntity(label string, skip []string) bool {
	for _, s := range skip {
		if strings.EqualFold(label, s) {
			return true
		}
	}
	return false
}
