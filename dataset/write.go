package dataset

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/tsawler/ledger/model"
)

// Delimiter separates fields in the merged CSV.
const Delimiter = ';'

func newWriter(w io.Writer) *gocsv.SafeCSVWriter {
	cw := csv.NewWriter(w)
	cw.Comma = Delimiter
	return gocsv.NewSafeCSVWriter(cw)
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	if err := gocsv.MarshalCSV(&rows, newWriter(w)); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// ReadRecords reads a merged CSV written by WriteCSV.
func ReadRecords(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.Comma = Delimiter

	var rows []Row
	if err := gocsv.UnmarshalCSV(cr, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return rows, nil
}

// WriteDiagnostics writes diagnostics as CSV with a header line.
func WriteDiagnostics(w io.Writer, diags []model.Diagnostic) error {
	if err := gocsv.MarshalCSV(&diags, newWriter(w)); err != nil {
		return fmt.Errorf("failed to write diagnostics: %w", err)
	}
	return nil
}

// ReadDiagnostics reads a report written by WriteDiagnostics.
func ReadDiagnostics(r io.Reader) ([]model.Diagnostic, error) {
	cr := csv.NewReader(r)
	cr.Comma = Delimiter

	var diags []model.Diagnostic
	if err := gocsv.UnmarshalCSV(cr, &diags); err != nil {
		return nil, fmt.Errorf("failed to parse diagnostics: %w", err)
	}
	return diags, nil
}

const (
	recordsSheet     = "Records"
	diagnosticsSheet = "Diagnostics"
)

// WriteXLSX writes a workbook with a Records sheet and, when there are any,
// a Diagnostics sheet.
func WriteXLSX(w io.Writer, rows []Row, diags []model.Diagnostic) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", recordsSheet); err != nil {
		return err
	}
	if err := writeSheet(f, recordsSheet, Header(), len(rows), func(i int) []string {
		return rows[i].Values()
	}); err != nil {
		return err
	}

	if len(diags) > 0 {
		if _, err := f.NewSheet(diagnosticsSheet); err != nil {
			return err
		}
		header := []string{"source", "row", "field", "raw", "message"}
		if err := writeSheet(f, diagnosticsSheet, header, len(diags), func(i int) []string {
			d := diags[i]
			return []string{d.Source, fmt.Sprint(d.Row), d.Field, d.Raw, d.Message}
		}); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, n int, row func(int) []string) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := setRow(f, sheet, i+2, row(i)); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(sheet, cell, &cells)
}
