// Package ledger provides a fluent API for turning scanned ledger pages into
// clean records.
//
// A Pipeline runs up to four stages: OCR of an image into positioned tokens,
// clustering of tokens into a table, mapping of table cells onto the ten
// ledger fields, and normalization of those fields into typed records with
// diagnostics. Each entry point starts at a different stage.
//
// Basic usage:
//
//	records, diags, err := ledger.Open("page-014.png").
//	    WithRecognizer(tess).
//	    Records(ctx)
//	if err != nil {
//	    // handle error
//	}
//	if len(diags) > 0 {
//	    log.Println(model.FormatDiagnostics(diags))
//	}
//
// Transcriptions that are already tabular skip the OCR stages:
//
//	records, diags, err := ledger.Open("transcription.csv").Records(ctx)
//
// The lower-level packages (tables, normalize, ocr, dataset) are also
// available for callers that need a single stage.
package ledger

import (
	"path/filepath"

	"github.com/tsawler/ledger/model"
)

// Open returns a Pipeline reading from a file. The file kind is detected
// from its content and extension when a terminal operation runs: images go
// through preprocessing and OCR, token JSON and hOCR start at clustering,
// and CSV or XLSX transcriptions start at normalization.
//
// Example:
//
//	table, err := ledger.Open("tokens.json").Table(ctx)
func Open(filename string) *Pipeline {
	opts := defaultOptions()
	opts.source = filepath.Base(filename)
	return &Pipeline{
		filename: filename,
		options:  opts,
	}
}

// FromImage returns a Pipeline over an encoded image held in memory.
//
// Example:
//
//	tokens, err := ledger.FromImage(png).WithRecognizer(vision).Tokens(ctx)
func FromImage(data []byte) *Pipeline {
	return &Pipeline{
		image:   data,
		options: defaultOptions(),
	}
}

// FromTokens returns a Pipeline over tokens produced elsewhere. Any
// full-page summary token must already be removed.
//
// Example:
//
//	records, diags, err := ledger.FromTokens(tokens).Records(ctx)
func FromTokens(tokens []model.Token) *Pipeline {
	return &Pipeline{
		tokens:    append([]model.Token(nil), tokens...),
		hasTokens: true,
		options:   defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	table := ledger.Must(ledger.Open("tokens.json").Table(ctx))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustRecords is a helper that wraps a call to Records() and panics if the
// error is non-nil. It discards diagnostics and returns just the records.
//
// Example:
//
//	records := ledger.MustRecords(ledger.Open("ledger.csv").Records(ctx))
func MustRecords(records []model.Record, _ []model.Diagnostic, err error) []model.Record {
	if err != nil {
		panic(err)
	}
	return records
}
