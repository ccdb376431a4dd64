package model

import (
	"strings"
)

// Table is a ragged grid of cells reconstructed from token positions. Rows
// are in top-to-bottom reading order and cells within a row are left to
// right. Rows may hold different numbers of cells.
type Table struct {
	Rows [][]Cell
}

// Cell is the space-joined text of consecutive tokens judged to belong to
// one column, together with the union of their boxes.
type Cell struct {
	Text string
	BBox BBox
}

// NewTable creates an empty table with capacity for the given row count
func NewTable(rows int) *Table {
	return &Table{Rows: make([][]Cell, 0, rows)}
}

// AddRow appends a row of cells
func (t *Table) AddRow(cells []Cell) {
	t.Rows = append(t.Rows, cells)
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColCount returns the number of cells in the given row, or 0 when the row
// index is out of range.
func (t *Table) ColCount(row int) int {
	if row < 0 || row >= len(t.Rows) {
		return 0
	}
	return len(t.Rows[row])
}

// MaxCols returns the widest row's cell count
func (t *Table) MaxCols() int {
	n := 0
	for _, row := range t.Rows {
		n = max(n, len(row))
	}
	return n
}

// GetCell returns the cell at the given row and column (0-indexed)
func (t *Table) GetCell(row, col int) *Cell {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	if col < 0 || col >= len(t.Rows[row]) {
		return nil
	}
	return &t.Rows[row][col]
}

// Strings returns the cell texts as a plain 2-D string slice.
func (t *Table) Strings() [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = make([]string, len(row))
		for j, cell := range row {
			out[i][j] = cell.Text
		}
	}
	return out
}

// ToMarkdown converts the table to markdown format. Short rows are padded
// with empty cells so every row has MaxCols columns.
func (t *Table) ToMarkdown() string {
	if len(t.Rows) == 0 {
		return ""
	}

	cols := t.MaxCols()
	var sb strings.Builder

	writeRow := func(row []Cell) {
		for j := 0; j < cols; j++ {
			sb.WriteString("| ")
			if j < len(row) {
				sb.WriteString(strings.ReplaceAll(row[j].Text, "|", "\\|"))
			}
			sb.WriteString(" ")
		}
		sb.WriteString("|\n")
	}

	// Header row
	writeRow(t.Rows[0])

	// Separator
	for j := 0; j < cols; j++ {
		sb.WriteString("|---")
	}
	sb.WriteString("|\n")

	// Data rows
	for _, row := range t.Rows[1:] {
		writeRow(row)
	}

	return sb.String()
}

// ToCSV converts the table to delimited text using the given separator.
// Rows keep their own length; nothing is padded.
func (t *Table) ToCSV(delim rune) string {
	sep := string(delim)
	var sb strings.Builder
	for _, row := range t.Rows {
		for j, cell := range row {
			// Escape quotes and wrap in quotes if necessary
			text := cell.Text
			if strings.Contains(text, sep) || strings.Contains(text, "\"") || strings.Contains(text, "\n") {
				text = "\"" + strings.ReplaceAll(text, "\"", "\"\"") + "\""
			}
			sb.WriteString(text)
			if j < len(row)-1 {
				sb.WriteString(sep)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
