package fetcher

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// XLSXOptions configures the XLSX reader.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	SkipRows   int    // number of leading rows to drop
}

// ReadXLSX reads an XLSX file and returns all rows as string slices.
func ReadXLSX(path string, opts XLSXOptions) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: open file %s", path)
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for i, row := range sheet.Rows {
		if i < opts.SkipRows {
			continue
		}
		rows = append(rows, rowToStrings(row))
	}

	return rows, nil
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	if row == nil {
		return nil
	}
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		if cell == nil {
			continue
		}
		cells[j] = cellValue(cell)
	}
	return cells
}

// cellValue returns numeric cells at full precision rather than through
// their display format.
func cellValue(cell *xlsx.Cell) string {
	if cell.Type() == xlsx.CellTypeNumeric {
		if v, err := cell.Float(); err == nil {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return cell.String()
}

// ReadRows reads a tabular source, dispatching on the file extension:
// .xlsx workbooks go through ReadXLSX, everything else is treated as
// delimited text.
func ReadRows(ctx context.Context, path string, csvOpts CSVOptions, xlsxOpts XLSXOptions) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(path, xlsxOpts)
	default:
		return ReadCSV(ctx, path, csvOpts)
	}
}
