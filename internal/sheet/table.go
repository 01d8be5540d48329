package sheet

import "strings"

// Table is a raw sheet: a header row plus data rows aligned to it. Rows are
// padded to the header width on load, so Cell never goes out of range for a
// valid column index.
type Table struct {
	Source  string
	Headers []string
	Rows    [][]string
}

// Empty returns a table with no headers and no rows for source.
func Empty(source string) *Table {
	return &Table{Source: source}
}

// Len is the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// IsEmpty reports whether the table carries no data rows.
func (t *Table) IsEmpty() bool {
	return t.Len() == 0
}

// Cell returns the trimmed value at row/col, "" for a negative column.
func (t *Table) Cell(row, col int) string {
	if col < 0 || row < 0 || row >= len(t.Rows) || col >= len(t.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][col])
}

// Record returns row as a header -> value map.
func (t *Table) Record(row int) map[string]any {
	rec := make(map[string]any, len(t.Headers))
	for col, h := range t.Headers {
		v := t.Cell(row, col)
		if v == "" {
			rec[h] = nil
			continue
		}
		rec[h] = v
	}
	return rec
}

// Select returns a new table holding only the given rows, in the given
// order.
func (t *Table) Select(rows []int) *Table {
	out := &Table{Source: t.Source, Headers: t.Headers, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		out.Rows = append(out.Rows, t.Rows[r])
	}
	return out
}

// Key normalizes a ticket identifier cell. Spreadsheet exports sometimes
// render integer codes as floats ("1001.0"); those collapse to "1001".
func Key(v string) string {
	v = strings.TrimSpace(v)
	if whole, ok := strings.CutSuffix(v, ".0"); ok && whole != "" && strings.Trim(whole, "0123456789") == "" {
		return whole
	}
	return v
}
