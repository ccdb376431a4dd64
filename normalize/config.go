package normalize

import (
	"fmt"

	"github.com/tsawler/ledger/model"
)

// Config controls the field rules.
type Config struct {
	// Literal a clerk wrote for an unreadable value
	UnknownMarker string

	// Inclusive year range
	MinYear int
	MaxYear int

	// Row number reported for the first raw row. The default of 2 accounts
	// for a header line in 1-based numbering.
	FirstRow int

	// Substrings that mark a "same as above" value
	Placeholders []string
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		UnknownMarker: model.UnknownMarker,
		MinYear:       1700,
		MaxYear:       1904,
		FirstRow:      2,
		Placeholders:  []string{"Idem", "ldem"},
	}
}

// Validate reports configuration that would make every row fail.
func (c Config) Validate() error {
	if c.UnknownMarker == "" {
		return fmt.Errorf("unknown marker must not be empty")
	}
	if c.MinYear > c.MaxYear {
		return fmt.Errorf("year range is empty: [%d, %d]", c.MinYear, c.MaxYear)
	}
	for _, p := range c.Placeholders {
		if p == "" {
			return fmt.Errorf("placeholders must not be empty")
		}
	}
	return nil
}
