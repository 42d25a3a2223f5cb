package source

import (
	"strings"

	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/amount"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/resolve"
)

// MultiHeaderOptions describes an export whose column identity is spread
// over several header rows (report year, book year, domain) above a label
// row. Row indices are absolute; -1 means the row is absent.
type MultiHeaderOptions struct {
	Name            string
	EntityHeader    string // first cell of the label row, e.g. "Grondgebied"
	LeadColumns     int    // columns before the first value column
	AttributeColumn int    // optional attribute column; 0 when absent (column 0 is the entity)
	ReportYearRow   int
	YearRow         int
	DomainRow       int
	MinYear         int
	MaxYear         int
	Kind            Kind // kind of every non-total column
	TotalMarker     string
	SkipEntities    []string
	Entities        resolve.Normalizer
	Plans           Plans
}

func (o MultiHeaderOptions) withDefaults() MultiHeaderOptions {
	if o.EntityHeader == "" {
		o.EntityHeader = "Grondgebied"
	}
	if o.TotalMarker == "" {
		o.TotalMarker = "Total"
	}
	if o.LeadColumns == 0 {
		o.LeadColumns = 1
	}
	if o.SkipEntities == nil {
		o.SkipEntities = []string{"Total", "Totaal"}
	}
	return o
}

type headerColumn struct {
	idx        int
	year       int
	reportYear int
	code       string
	label      string
	kind       Kind
	period     string
}

// ParseMultiHeader reads a multi-header export. Blank report-year and year
// cells inherit the value to their left. A label-row cell containing a line
// break is a composite "year\ndomain" header and overrides the header rows.
// Columns with a year outside MinYear..MaxYear, without a domain, or outside
// every plan are skipped.
func ParseMultiHeader(rows [][]string, opts MultiHeaderOptions) (*Result, error) {
	opts = opts.withDefaults()
	labelRow := findRow(rows, 0, opts.EntityHeader, len(rows))
	if labelRow < 0 {
		return nil, structural(opts.Name, -1, "label row %q not found", opts.EntityHeader)
	}
	for _, r := range []int{opts.ReportYearRow, opts.YearRow, opts.DomainRow} {
		if r >= labelRow {
			return nil, structural(opts.Name, r, "header row must precede label row %d", labelRow)
		}
	}

	res := &Result{Source: opts.Name}
	cols := opts.columns(rows, labelRow, res)
	if len(cols) == 0 {
		return nil, structural(opts.Name, labelRow, "no interpretable value columns")
	}

	seen := make(map[string]bool)
	for i := labelRow + 1; i < len(rows); i++ {
		row := rows[i]
		raw := cell(row, 0)
		if raw == "" || skipEntity(raw, opts.SkipEntities) {
			continue
		}
		if opts.AttributeColumn > 0 {
			if attr := cell(row, opts.AttributeColumn); attr != "" && attr != opts.TotalMarker {
				continue
			}
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
				Period:     col.period,
			})
		}
	}
	return res, nil
}

func (o MultiHeaderOptions) columns(rows [][]string, labelRow int, res *Result) []headerColumn {
	width := 0
	for i := 0; i <= labelRow; i++ {
		width = max(width, len(rows[i]))
	}
	headerCell := func(r, c int) string {
		if r < 0 {
			return ""
		}
		return cell(rows[r], c)
	}

	var cols []headerColumn
	var lastYear, lastReport string
	for c := o.LeadColumns; c < width; c++ {
		if v := headerCell(o.YearRow, c); v != "" {
			lastYear = v
		}
		if v := headerCell(o.ReportYearRow, c); v != "" {
			lastReport = v
		}
		yearText, domain := lastYear, headerCell(o.DomainRow, c)
		if composite := rowsCell(rows, labelRow, c); strings.Contains(composite, "\n") {
			parts := strings.SplitN(composite, "\n", 2)
			yearText, domain = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		}

		col := headerColumn{idx: c, kind: o.Kind}
		year, ok := parseYear(yearText)
		if !ok || (o.MinYear != 0 && year < o.MinYear) || (o.MaxYear != 0 && year > o.MaxYear) {
			res.SkippedColumns++
			continue
		}
		col.year = year
		col.reportYear, _ = parseYear(lastReport)

		if o.DomainRow >= 0 || domain != "" {
			if domain == "" {
				res.SkippedColumns++
				continue
			}
			col.label = domain
			if domain == o.TotalMarker {
				col.kind = KindTotal
			} else {
				col.code, _ = splitCodeLabel(domain)
			}
		}

		if len(o.Plans) > 0 {
			p, ok := o.Plans.Period(col.reportYear, col.year)
			if !ok {
				res.SkippedColumns++
				continue
			}
			col.period = p
		}
		cols = append(cols, col)
	}
	return cols
}

// rowsCell returns the raw (untrimmed) cell so embedded line breaks survive.
func rowsCell(rows [][]string, r, c int) string {
	if r < 0 || r >= len(rows) || c >= len(rows[r]) {
		return ""
	}
	return rows[r][c]
}
