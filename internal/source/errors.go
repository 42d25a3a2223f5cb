package source

import (
	"fmt"
	"strings"
)

// StructuralError reports an export whose layout cannot be interpreted,
// such as a missing header row or column. It aborts parsing of that source.
type StructuralError struct {
	Source string
	Row    int // zero-based row index, -1 when not row-specific
	Msg    string
}

func (e *StructuralError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("source %s: row %d: %s", e.Source, e.Row, e.Msg)
	}
	return fmt.Sprintf("source %s: %s", e.Source, e.Msg)
}

func structural(src string, row int, format string, args ...any) error {
	return &StructuralError{Source: src, Row: row, Msg: fmt.Sprintf(format, args...)}
}

// findRow returns the index of the first row (within maxScan rows) whose
// cell at col equals want, compared case-insensitively after trimming.
func findRow(rows [][]string, col int, want string, maxScan int) int {
	if maxScan <= 0 || maxScan > len(rows) {
		maxScan = len(rows)
	}
	for i := 0; i < maxScan; i++ {
		if col < len(rows[i]) && strings.EqualFold(strings.TrimSpace(rows[i][col]), want) {
			return i
		}
	}
	return -1
}

// findRowContaining returns the first row with any cell equal to want.
func findRowContaining(rows [][]string, want string, maxScan int) int {
	if maxScan <= 0 || maxScan > len(rows) {
		maxScan = len(rows)
	}
	for i := 0; i < maxScan; i++ {
		if columnIndex(rows[i], want) >= 0 {
			return i
		}
	}
	return -1
}

// columnIndex returns the index of the header equal to name, or -1.
func columnIndex(header []string, name string) int {
	if name == "" {
		return -1
	}
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
