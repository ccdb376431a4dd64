package tables

import (
	"sort"
	"strings"

	"github.com/tsawler/ledger/model"
)

// Clusterer rebuilds a table from unordered OCR tokens using two fixed
// distance thresholds: one for rows, one for columns.
type Clusterer struct {
	config Config
}

// NewClusterer creates a new clusterer with default configuration.
func NewClusterer() *Clusterer {
	return &Clusterer{
		config: DefaultConfig(),
	}
}

// NewClustererWithConfig creates a clusterer with custom configuration.
func NewClustererWithConfig(config Config) *Clusterer {
	return &Clusterer{config: config}
}

// Name returns the clusterer's identifier ("chain").
func (c *Clusterer) Name() string {
	return "chain"
}

// Configure sets the clusterer configuration.
func (c *Clusterer) Configure(config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	c.config = config
	return nil
}

// Config returns the active configuration.
func (c *Clusterer) Config() Config {
	return c.config
}

// Cluster groups tokens into rows, then splits each row into cells.
//
// The caller must already have removed any full-page summary token the OCR
// service emits. An empty token list returns ErrEmptyInput; a non-empty list
// never yields an empty table. Every token ends up in exactly one cell.
func (c *Clusterer) Cluster(tokens []model.Token) (*model.Table, error) {
	if len(tokens) == 0 {
		return nil, ErrEmptyInput
	}

	// Step 1: Group tokens into rows by vertical position
	rows := c.GroupRows(tokens)

	// Step 2: Split each row into cells by horizontal gaps
	table := model.NewTable(len(rows))
	for _, row := range rows {
		table.AddRow(c.SplitColumns(row))
	}

	return table, nil
}

// GroupRows sorts tokens by the Y of their top-left corner and starts a new
// row whenever a token sits more than RowTolerance below its immediate
// predecessor.
//
// Each token is compared only with the one before it, not with a row
// centroid. A run of tokens that drifts downward in small steps therefore
// stays on one row even when the total drift exceeds the tolerance.
func (c *Clusterer) GroupRows(tokens []model.Token) [][]model.Token {
	if len(tokens) == 0 {
		return nil
	}

	sorted := make([]model.Token, len(tokens))
	copy(sorted, tokens)

	// Sort by Y position (top to bottom); ties keep input order
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Top() < sorted[j].Top()
	})

	var rows [][]model.Token
	current := []model.Token{sorted[0]}

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Top()-sorted[i-1].Top() > c.config.RowTolerance {
			rows = append(rows, current)
			current = []model.Token{sorted[i]}
		} else {
			current = append(current, sorted[i])
		}
	}

	rows = append(rows, current)

	return rows
}

// SplitColumns sorts a row's tokens left to right and merges neighbours into
// one cell while the gap between a token's left edge and the previous token's
// right edge stays within ColumnGap.
func (c *Clusterer) SplitColumns(row []model.Token) []model.Cell {
	if len(row) == 0 {
		return nil
	}

	sorted := make([]model.Token, len(row))
	copy(sorted, row)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Left() < sorted[j].Left()
	})

	var cells []model.Cell

	text := sorted[0].Text
	box := sorted[0].Box.Bounds()
	prevRight := sorted[0].Right()

	for _, tok := range sorted[1:] {
		if tok.Left()-prevRight > c.config.ColumnGap {
			cells = append(cells, model.Cell{Text: strings.TrimSpace(text), BBox: box})
			text = tok.Text
			box = tok.Box.Bounds()
		} else {
			text += " " + tok.Text
			box = box.Union(tok.Box.Bounds())
		}
		prevRight = tok.Right()
	}

	cells = append(cells, model.Cell{Text: strings.TrimSpace(text), BBox: box})

	return cells
}

// CellTokens turns a row of cells back into tokens, one per cell, so a
// reconstructed row can be fed through SplitColumns again.
func CellTokens(cells []model.Cell) []model.Token {
	tokens := make([]model.Token, len(cells))
	for i, cell := range cells {
		tokens[i] = model.Token{Text: cell.Text, Box: cell.BBox.Quad()}
	}
	return tokens
}
