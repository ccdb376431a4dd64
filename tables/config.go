package tables

import "fmt"

// Config holds clusterer configuration. Both thresholds are absolute pixel
// distances; they do not scale with image resolution.
type Config struct {
	// Maximum difference between the top-left Y of consecutive tokens (sorted
	// by Y) for them to stay on the same row
	RowTolerance int

	// Maximum horizontal gap between a token's left edge and the previous
	// token's right edge for them to stay in the same cell
	ColumnGap int
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		RowTolerance: 10,
		ColumnGap:    40,
	}
}

// Validate checks that both thresholds are non-negative.
func (c Config) Validate() error {
	if c.RowTolerance < 0 {
		return fmt.Errorf("row tolerance must be non-negative, got %d", c.RowTolerance)
	}
	if c.ColumnGap < 0 {
		return fmt.Errorf("column gap must be non-negative, got %d", c.ColumnGap)
	}
	return nil
}
