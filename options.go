package ledger

import (
	"log/slog"

	"github.com/tsawler/ledger/mapping"
	"github.com/tsawler/ledger/normalize"
	"github.com/tsawler/ledger/ocr"
	"github.com/tsawler/ledger/preprocess"
	"github.com/tsawler/ledger/tables"
)

// PipelineOptions holds configuration for a Pipeline.
type PipelineOptions struct {
	// Image stages
	recognizer ocr.Recognizer
	preprocess *preprocess.Config // nil skips enhancement

	// Table reconstruction
	cluster tables.Config

	// Row extraction
	columns      *mapping.Mapping // nil passes cells through unchanged
	detectHeader bool             // infer columns from the first row
	skipRows     int
	delimiter    rune
	sheet        string

	// Normalization
	normalize normalize.Config
	source    string // overrides the file name in diagnostics

	logger *slog.Logger
}

// defaultOptions returns the default pipeline options.
func defaultOptions() PipelineOptions {
	pre := preprocess.DefaultConfig()
	return PipelineOptions{
		preprocess: &pre,
		cluster:    tables.DefaultConfig(),
		skipRows:   1, // header line
		delimiter:  ';',
		normalize:  normalize.DefaultConfig(),
		logger:     slog.New(slog.DiscardHandler),
	}
}

// clone creates a deep copy of PipelineOptions.
func (o PipelineOptions) clone() PipelineOptions {
	newOpts := o

	if o.preprocess != nil {
		pre := *o.preprocess
		newOpts.preprocess = &pre
	}
	if o.columns != nil {
		m := *o.columns
		newOpts.columns = &m
	}

	// Deep copy placeholders slice
	if o.normalize.Placeholders != nil {
		newOpts.normalize.Placeholders = append([]string(nil), o.normalize.Placeholders...)
	}

	return newOpts
}
