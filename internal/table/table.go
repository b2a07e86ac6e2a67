// Package table models the structured grid handed over by the upstream
// OCR/table-detection service, classifies its layout, and rebuilds booking
// records from it.
package table

import "strings"

// Kind is the detected layout of a table.
type Kind string

const (
	KindUnclassified    Kind = "unclassified"
	KindHorizontalMulti Kind = "horizontal_multi"
	KindVerticalMulti   Kind = "vertical_multi"
	KindFormKV          Kind = "form_kv"
)

// Cell is the atomic unit from the OCR boundary. Immutable once produced.
type Cell struct {
	Row        int     `json:"row"`
	Col        int     `json:"col"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Table is an ordered grid of cell text plus a declared layout kind. Every
// row has exactly ColumnCount() entries; short rows are padded with the
// empty string, never truncated.
type Table struct {
	Kind    Kind       `json:"kind"`
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"rows"`
}

// New builds a Table from headers and rows, padding short rows to the widest
// row (or the header width, whichever is larger).
func New(headers []string, rows [][]string) Table {
	width := len(headers)
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	padded := make([][]string, len(rows))
	for i, r := range rows {
		row := make([]string, width)
		copy(row, r)
		padded[i] = row
	}
	return Table{Kind: KindUnclassified, Headers: headers, Rows: padded}
}

// FromCells assembles a Table from OCR cells. Cell positions may be sparse;
// gaps become empty strings.
func FromCells(cells []Cell) Table {
	maxRow, maxCol := -1, -1
	for _, c := range cells {
		if c.Row > maxRow {
			maxRow = c.Row
		}
		if c.Col > maxCol {
			maxCol = c.Col
		}
	}
	if maxRow < 0 || maxCol < 0 {
		return Table{Kind: KindUnclassified}
	}
	rows := make([][]string, maxRow+1)
	for i := range rows {
		rows[i] = make([]string, maxCol+1)
	}
	for _, c := range cells {
		rows[c.Row][c.Col] = c.Text
	}
	return Table{Kind: KindUnclassified, Rows: rows}
}

// ColumnCount returns the table width.
func (t *Table) ColumnCount() int {
	if len(t.Headers) > 0 {
		return len(t.Headers)
	}
	if len(t.Rows) > 0 {
		return len(t.Rows[0])
	}
	return 0
}

// RowCount returns the number of data rows (headers excluded).
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// Empty reports whether the table carries no usable content.
func (t *Table) Empty() bool {
	if len(t.Rows) == 0 {
		return len(t.Headers) == 0
	}
	for _, row := range t.Rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return false
			}
		}
	}
	return true
}

// noise values that stand for "blank" in scanned sheets.
var noiseValues = map[string]struct{}{
	"": {}, "na": {}, "n/a": {}, "-": {}, "--": {}, "nil": {}, "none": {},
}

// IsNoise reports whether a cell value should be skipped rather than written
// into a record.
func IsNoise(v string) bool {
	_, ok := noiseValues[strings.ToLower(strings.TrimSpace(v))]
	return ok
}
