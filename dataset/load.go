package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tsawler/ledger/format"
	"github.com/tsawler/ledger/mapping"
)

// Source is the raw content of one input file.
type Source struct {
	ID   string
	Rows [][]string

	// FirstRow is the file line number of Rows[0]. Zero keeps the
	// normalizer's own setting.
	FirstRow int
}

// LoadOptions controls how a transcription file is read.
type LoadOptions struct {
	// CSV field separator
	Delimiter rune

	// Leading rows to drop, usually the header
	SkipRows int

	// Worksheet to read from XLSX files; empty means the first one
	Sheet string

	// Column assignment; nil keeps cells in file order
	Columns *mapping.Mapping
}

// DefaultLoadOptions returns default options: ';' separated, one header row.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{Delimiter: ';', SkipRows: 1}
}

// LoadCSV reads delimited rows verbatim. Rows may be ragged.
func LoadCSV(r io.Reader, delimiter rune, skipRows int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return skip(records, skipRows), nil
}

// LoadXLSX reads one worksheet. Excel drops trailing empty cells, so rows
// are padded to the widest row of the sheet.
func LoadXLSX(r io.Reader, sheet string, skipRows int) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("no worksheet found")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	for i, row := range rows {
		for len(row) < width {
			row = append(row, "")
		}
		rows[i] = row
	}

	return skip(rows, skipRows), nil
}

func skip(rows [][]string, n int) [][]string {
	if n <= 0 {
		return rows
	}
	if n >= len(rows) {
		return [][]string{}
	}
	return rows[n:]
}

// LoadFile reads a CSV or XLSX transcription. The source ID is the file's
// base name.
func LoadFile(path string, opts LoadOptions) (Source, error) {
	src := Source{ID: filepath.Base(path), FirstRow: max(opts.SkipRows, 0) + 1}

	kind, err := format.DetectFile(path)
	if err != nil {
		return src, fmt.Errorf("%s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return src, err
	}
	defer f.Close()

	switch kind {
	case format.CSV:
		src.Rows, err = LoadCSV(f, opts.Delimiter, opts.SkipRows)
	case format.XLSX:
		src.Rows, err = LoadXLSX(f, opts.Sheet, opts.SkipRows)
	default:
		return src, fmt.Errorf("%s: %s is not a table: %w", path, kind, format.ErrUnsupported)
	}
	if err != nil {
		return src, fmt.Errorf("%s: %w", path, err)
	}

	if opts.Columns != nil {
		for i, row := range src.Rows {
			src.Rows[i] = opts.Columns.ApplyRow(row)
		}
	}
	return src, nil
}

// Discover lists files under dir whose extension maps to one of kinds,
// sorted by path. With no kinds, every table format is accepted.
func Discover(dir string, kinds ...format.Format) ([]string, error) {
	accept := func(f format.Format) bool {
		if len(kinds) == 0 {
			return f.IsTable()
		}
		for _, k := range kinds {
			if k == f {
				return true
			}
		}
		return false
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if accept(format.Detect(path)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoFiles)
	}

	sort.Strings(paths)
	return paths, nil
}

// ErrNoFiles is returned by Discover when nothing matches.
var ErrNoFiles = errors.New("no input files found")
