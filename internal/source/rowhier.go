package source

import (
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/amount"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/resolve"
)

// RowHierarchyOptions describes a pivot export where each row is one node of
// the account tree and each entity is a value column.
type RowHierarchyOptions struct {
	Name             string // source name used in errors
	AccountHeader    string // header of the leaf column, e.g. "Alg. rekening"
	FirstLevelHeader string // header of the outermost level column
	YearHeader       string // optional book-year dimension column
	ReportYearHeader string // optional report-year dimension column
	FilterHeader     string // optional column that must equal FilterValue
	FilterValue      string
	TotalMarker      string // label of total rows/columns, default "Total"
	Entities         resolve.Normalizer
	Plans            Plans // when set with ReportYearHeader, rows outside a plan are dropped
	MaxHeaderScan    int
}

func (o RowHierarchyOptions) withDefaults() RowHierarchyOptions {
	if o.TotalMarker == "" {
		o.TotalMarker = "Total"
	}
	if o.AccountHeader == "" {
		o.AccountHeader = "Alg. rekening"
	}
	if o.MaxHeaderScan == 0 {
		o.MaxHeaderScan = 20
	}
	return o
}

type rowLayout struct {
	headerRow  int
	firstLevel int
	account    int
	year       int
	reportYear int
	filter     int
	entities   []int
}

func (o RowHierarchyOptions) layout(rows [][]string) (rowLayout, error) {
	l := rowLayout{headerRow: findRowContaining(rows, o.AccountHeader, o.MaxHeaderScan)}
	if l.headerRow < 0 {
		return l, structural(o.Name, -1, "header %q not found", o.AccountHeader)
	}
	header := rows[l.headerRow]
	l.account = columnIndex(header, o.AccountHeader)
	l.firstLevel = l.account
	if o.FirstLevelHeader != "" {
		l.firstLevel = columnIndex(header, o.FirstLevelHeader)
		if l.firstLevel < 0 || l.firstLevel > l.account {
			return l, structural(o.Name, l.headerRow, "level column %q not found before %q", o.FirstLevelHeader, o.AccountHeader)
		}
	}

	l.year = columnIndex(header, o.YearHeader)
	l.reportYear = columnIndex(header, o.ReportYearHeader)
	l.filter = columnIndex(header, o.FilterHeader)
	dims := []struct {
		name string
		idx  int
	}{{o.YearHeader, l.year}, {o.ReportYearHeader, l.reportYear}, {o.FilterHeader, l.filter}}
	for _, d := range dims {
		if d.name != "" && d.idx < 0 {
			return l, structural(o.Name, l.headerRow, "column %q not found", d.name)
		}
	}

	for c := l.account + 1; c < len(header); c++ {
		h := cell(header, c)
		if h == o.TotalMarker {
			break
		}
		if h == "" {
			continue
		}
		l.entities = append(l.entities, c)
	}
	if len(l.entities) == 0 {
		return l, structural(o.Name, l.headerRow, "no entity columns after %q", o.AccountHeader)
	}
	return l, nil
}

// ParseRowHierarchy reads a row-hierarchy export. Leading blank level cells
// inherit the label of the row above; the deepest non-blank level cell is
// the node of the row and its depth is the number of ancestors. Only nodes in the account column with a label other
// than the total marker are detail records.
func ParseRowHierarchy(rows [][]string, opts RowHierarchyOptions) (*Result, error) {
	opts = opts.withDefaults()
	l, err := opts.layout(rows)
	if err != nil {
		return nil, err
	}

	res := &Result{Source: opts.Name}
	header := rows[l.headerRow]
	levels := make([]string, l.account-l.firstLevel+1)
	var lastYear, lastReport, lastFilter string

	for i := l.headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}

		// Dimension cells are carried forward like level cells.
		lastYear = carry(row, l.year, lastYear)
		lastReport = carry(row, l.reportYear, lastReport)
		lastFilter = carry(row, l.filter, lastFilter)

		first := -1
		for d := range levels {
			if cell(row, l.firstLevel+d) != "" {
				first = d
				break
			}
		}
		if first < 0 {
			continue
		}
		// Only leading blanks inherit; from the first filled cell on the
		// row spells out its own levels.
		deepest := first
		for d := first; d < len(levels); d++ {
			levels[d] = cell(row, l.firstLevel+d)
			if levels[d] != "" {
				deepest = d
			}
		}
		label := levels[deepest]
		path := nonBlank(levels[:deepest])
		if label == opts.TotalMarker {
			// A total row closes its group; it is never an ancestor.
			levels[deepest] = ""
		}

		if l.filter >= 0 && lastFilter != opts.FilterValue {
			continue
		}
		if lastYear == opts.TotalMarker || lastReport == opts.TotalMarker {
			continue
		}

		year, _ := parseYear(lastYear)
		reportYear, _ := parseYear(lastReport)
		period := ""
		if len(opts.Plans) > 0 && year != 0 {
			p, ok := opts.Plans.Period(reportYear, year)
			if !ok {
				continue
			}
			period = p
		}

		base := Record{
			Label:  label,
			Kind:   KindTotal,
			Depth:  len(path),
			Path:   path,
			Year:   year,
			Period: period,
		}
		if deepest == len(levels)-1 && label != opts.TotalMarker {
			base.Kind = KindDetail
			base.Code, _ = splitCodeLabel(label)
		}

		facts := 0
		for _, c := range l.entities {
			raw := cell(row, c)
			v, ok := amount.Parse(raw)
			if !ok {
				if raw != "" && raw != "-" {
					res.InvalidCells++
				}
				continue
			}
			if !amount.IsFact(v, ok) {
				continue
			}
			rec := base
			rec.Entity = opts.Entities.Key(header[c])
			rec.EntityName = opts.Entities.Display(header[c])
			rec.Amount = v
			res.Records = append(res.Records, rec)
			facts++
		}
		if facts == 0 {
			res.Records = append(res.Records, base)
		}
	}
	return res, nil
}

func carry(row []string, idx int, last string) string {
	if idx < 0 {
		return last
	}
	if v := cell(row, idx); v != "" {
		return v
	}
	return last
}

func nonBlank(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, s := range labels {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
