package dataprocessing

import (
	"strings"

	"rfdestaques/pkg/contracts/domain"
)

// Table is one sheet after header detection. Every row has len(Headers) cells.
type Table struct {
	Sheet   string
	Headers []string
	Rows    [][]domain.Cell
	// SourceRows holds the 1-based worksheet row of each entry in Rows
	SourceRows []int
}

// RawRow gives header-addressable access to one table row
type RawRow struct {
	table *Table
	index int
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Row returns the i-th data row
func (t *Table) Row(i int) RawRow {
	return RawRow{table: t, index: i}
}

// Cell returns the cell at column col; out of range columns are empty
func (r RawRow) Cell(col int) domain.Cell {
	cells := r.table.Rows[r.index]
	if col < 0 || col >= len(cells) {
		return domain.Cell{}
	}
	return cells[col]
}

// Get looks a cell up by exact header text
func (r RawRow) Get(header string) domain.Cell {
	for i, h := range r.table.Headers {
		if h == header {
			return r.Cell(i)
		}
	}
	return domain.Cell{}
}

// SourceRow returns the worksheet row number the data came from
func (r RawRow) SourceRow() int {
	if r.index < len(r.table.SourceRows) {
		return r.table.SourceRows[r.index]
	}
	return r.index + 1
}

// NormalizeHeader trims a header cell and flattens embedded line breaks
func NormalizeHeader(h string) string {
	h = strings.ReplaceAll(h, "\r", " ")
	h = strings.ReplaceAll(h, "\n", " ")
	return strings.Join(strings.Fields(h), " ")
}

// dropEmptyColumns removes columns with no header and no data
func (t *Table) dropEmptyColumns() {
	keep := make([]int, 0, len(t.Headers))
	for col, h := range t.Headers {
		if h != "" {
			keep = append(keep, col)
			continue
		}
		for _, row := range t.Rows {
			if !row[col].IsEmpty() {
				keep = append(keep, col)
				break
			}
		}
	}
	if len(keep) == len(t.Headers) {
		return
	}

	headers := make([]string, len(keep))
	for i, col := range keep {
		headers[i] = t.Headers[col]
	}
	for r, row := range t.Rows {
		cells := make([]domain.Cell, len(keep))
		for i, col := range keep {
			cells[i] = row[col]
		}
		t.Rows[r] = cells
	}
	t.Headers = headers
}
