package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/tsawler/ledger/dataset"
	"github.com/tsawler/ledger/format"
	"github.com/tsawler/ledger/mapping"
	"github.com/tsawler/ledger/model"
	"github.com/tsawler/ledger/normalize"
	"github.com/tsawler/ledger/ocr"
	"github.com/tsawler/ledger/preprocess"
	"github.com/tsawler/ledger/tables"
)

// ErrNoRecognizer is returned when an image reaches the OCR stage and no
// recognizer was configured.
var ErrNoRecognizer = errors.New("image input requires a recognizer")

// Pipeline provides a fluent interface for turning ledger scans, OCR output
// and transcriptions into records. Each configuration method returns a new
// Pipeline instance, making it safe for concurrent use and allowing method
// chaining.
type Pipeline struct {
	// Source (exactly one is set)
	filename  string
	image     []byte
	tokens    []model.Token
	hasTokens bool

	// Configuration
	options PipelineOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Pipeline with a deep copy of options.
// Source data is shared; no stage modifies it.
func (p *Pipeline) clone() *Pipeline {
	return &Pipeline{
		filename:  p.filename,
		image:     p.image,
		tokens:    p.tokens,
		hasTokens: p.hasTokens,
		options:   p.options.clone(),
		err:       p.err,
	}
}

// fail returns a copy carrying err unless an earlier error is already set.
func (p *Pipeline) fail(err error) *Pipeline {
	newP := p.clone()
	if newP.err == nil {
		newP.err = err
	}
	return newP
}

// ============================================================================
// Configuration Methods (return new Pipeline instance)
// ============================================================================

// WithRecognizer sets the OCR backend used for image input.
//
// Example:
//
//	tess, _ := ocr.NewTesseract()
//	defer tess.Close()
//	tokens, err := ledger.Open("page.tiff").WithRecognizer(tess).Tokens(ctx)
func (p *Pipeline) WithRecognizer(r ocr.Recognizer) *Pipeline {
	newP := p.clone()
	newP.options.recognizer = r
	return newP
}

// Preprocess replaces the image enhancement settings applied before OCR.
func (p *Pipeline) Preprocess(config preprocess.Config) *Pipeline {
	if err := config.Validate(); err != nil {
		return p.fail(fmt.Errorf("preprocess: %w", err))
	}
	newP := p.clone()
	newP.options.preprocess = &config
	return newP
}

// NoPreprocess sends images to the recognizer unchanged.
func (p *Pipeline) NoPreprocess() *Pipeline {
	newP := p.clone()
	newP.options.preprocess = nil
	return newP
}

// ClusterConfig sets the row and column thresholds used to rebuild the table.
//
// Example:
//
//	table, err := ledger.Open("tokens.json").
//	    ClusterConfig(tables.Config{RowTolerance: 14, ColumnGap: 60}).
//	    Table(ctx)
func (p *Pipeline) ClusterConfig(config tables.Config) *Pipeline {
	if err := config.Validate(); err != nil {
		return p.fail(fmt.Errorf("cluster: %w", err))
	}
	newP := p.clone()
	newP.options.cluster = config
	return newP
}

// Columns assigns table columns to ledger fields. Without it, each table
// row must already hold the ten fields in order.
func (p *Pipeline) Columns(m mapping.Mapping) *Pipeline {
	if err := m.Validate(); err != nil {
		return p.fail(fmt.Errorf("columns: %w", err))
	}
	newP := p.clone()
	newP.options.columns = &m
	newP.options.detectHeader = false
	return newP
}

// DetectHeader infers the column mapping from the first table row. The
// header row is always skipped.
func (p *Pipeline) DetectHeader() *Pipeline {
	newP := p.clone()
	newP.options.columns = nil
	newP.options.detectHeader = true
	newP.options.skipRows = max(newP.options.skipRows, 1)
	return newP
}

// HeaderRows sets how many leading table rows are dropped before
// normalization (default 1). Reported row numbers shift to match.
func (p *Pipeline) HeaderRows(n int) *Pipeline {
	if n < 0 {
		return p.fail(fmt.Errorf("header rows must be non-negative, got %d", n))
	}
	newP := p.clone()
	newP.options.skipRows = n
	return newP
}

// Delimiter sets the field separator for CSV input (default ';').
func (p *Pipeline) Delimiter(r rune) *Pipeline {
	newP := p.clone()
	newP.options.delimiter = r
	return newP
}

// Sheet selects the worksheet read from XLSX input.
func (p *Pipeline) Sheet(name string) *Pipeline {
	newP := p.clone()
	newP.options.sheet = name
	return newP
}

// NormalizeConfig replaces the field rules. FirstRow is ignored: reported
// row numbers always follow HeaderRows.
func (p *Pipeline) NormalizeConfig(config normalize.Config) *Pipeline {
	if err := config.Validate(); err != nil {
		return p.fail(fmt.Errorf("normalize: %w", err))
	}
	newP := p.clone()
	newP.options.normalize = config
	newP.options.normalize.Placeholders = append([]string(nil), config.Placeholders...)
	return newP
}

// SourceID sets the source name recorded on diagnostics. Open defaults it
// to the file's base name.
func (p *Pipeline) SourceID(id string) *Pipeline {
	newP := p.clone()
	newP.options.source = id
	return newP
}

// Logger sets the logger that receives stage progress at debug level.
// A nil logger discards output.
func (p *Pipeline) Logger(l *slog.Logger) *Pipeline {
	newP := p.clone()
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	newP.options.logger = l
	return newP
}

// Kind reports the detected format of the input file. In-memory images
// report Unknown and token input reports Tokens.
func (p *Pipeline) Kind() (format.Format, error) {
	if p.err != nil {
		return format.Unknown, p.err
	}
	switch {
	case p.hasTokens:
		return format.Tokens, nil
	case p.image != nil:
		return format.Unknown, nil
	case p.filename == "":
		return format.Unknown, errors.New("no input specified")
	}
	return format.DetectFile(p.filename)
}

// ============================================================================
// Terminal Operations (execute the pipeline and return results)
// ============================================================================

// Tokens returns the positioned words of the input. Images are
// preprocessed and sent to the recognizer; token JSON and hOCR files are
// parsed. Tabular input has no tokens and returns format.ErrUnsupported.
func (p *Pipeline) Tokens(ctx context.Context) ([]model.Token, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.hasTokens {
		return append([]model.Token(nil), p.tokens...), nil
	}
	if p.image != nil {
		return p.recognize(ctx, p.image)
	}

	kind, err := p.Kind()
	if err != nil {
		return nil, err
	}

	switch {
	case kind.IsImage():
		data, err := os.ReadFile(p.filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read image: %w", err)
		}
		return p.recognize(ctx, data)

	case kind == format.Tokens || kind == format.HOCR:
		f, err := os.Open(p.filename)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		var tokens []model.Token
		if kind == format.Tokens {
			tokens, err = ocr.ReadTokens(f)
		} else {
			tokens, err = ocr.ParseHOCR(f)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.filename, err)
		}
		p.options.logger.Debug("loaded tokens",
			slog.String("source", p.options.source),
			slog.String("format", kind.String()),
			slog.Int("tokens", len(tokens)))
		return tokens, nil

	default:
		return nil, fmt.Errorf("%s: %s input has no tokens: %w", p.filename, kind, format.ErrUnsupported)
	}
}

// Table rebuilds the table from the input tokens. CSV and XLSX input is
// read as a table directly; its cells carry no boxes.
//
// Example:
//
//	table, err := ledger.Open("tokens.json").Table(ctx)
//	fmt.Println(table.ToMarkdown())
func (p *Pipeline) Table(ctx context.Context) (*model.Table, error) {
	if p.err != nil {
		return nil, p.err
	}

	if p.filename != "" && !p.hasTokens {
		kind, err := p.Kind()
		if err != nil {
			return nil, err
		}
		if kind.IsTable() {
			return p.loadTable(kind)
		}
	}

	tokens, err := p.Tokens(ctx)
	if err != nil {
		return nil, err
	}

	table, err := tables.NewClustererWithConfig(p.options.cluster).Cluster(tokens)
	if err != nil {
		return nil, err
	}
	p.options.logger.Debug("clustered tokens",
		slog.String("source", p.options.source),
		slog.Int("tokens", len(tokens)),
		slog.Int("rows", table.RowCount()),
		slog.Int("max_cols", table.MaxCols()))
	return table, nil
}

// Rows returns the raw ten-field rows handed to normalization: the table
// minus its header rows, with columns assigned to fields when a mapping is
// configured or detected.
func (p *Pipeline) Rows(ctx context.Context) ([][]string, error) {
	table, err := p.Table(ctx)
	if err != nil {
		return nil, err
	}
	return p.extractRows(table)
}

// Source returns the raw rows labelled with the source ID, ready for
// dataset.Merge.
func (p *Pipeline) Source(ctx context.Context) (dataset.Source, error) {
	rows, err := p.Rows(ctx)
	if err != nil {
		return dataset.Source{}, err
	}
	return dataset.Source{ID: p.options.source, Rows: rows, FirstRow: p.options.skipRows + 1}, nil
}

// Records runs every stage and returns one record per data row together
// with the diagnostics collected while cleaning them. Diagnostics never
// make the call fail; a row with the wrong number of fields does.
//
// Example:
//
//	records, diags, err := ledger.Open("ledger.csv").Records(ctx)
//	for _, d := range diags {
//	    log.Println(d)
//	}
func (p *Pipeline) Records(ctx context.Context) ([]model.Record, []model.Diagnostic, error) {
	rows, err := p.Rows(ctx)
	if err != nil {
		return nil, nil, err
	}

	result, err := normalize.NewNormalizerWithConfig(p.normalizeConfig()).Normalize(rows, p.options.source)
	if err != nil {
		return nil, nil, err
	}
	p.options.logger.Debug("normalized rows",
		slog.String("source", p.options.source),
		slog.Int("records", len(result.Records)),
		slog.Int("diagnostics", len(result.Diagnostics)))
	return result.Records, result.Diagnostics, nil
}

// ============================================================================
// Internal Helpers
// ============================================================================

// normalizeConfig numbers rows from the first line after the skipped
// header rows.
func (p *Pipeline) normalizeConfig() normalize.Config {
	config := p.options.normalize
	config.FirstRow = p.options.skipRows + 1
	return config
}

func (p *Pipeline) recognize(ctx context.Context, data []byte) ([]model.Token, error) {
	if p.options.recognizer == nil {
		return nil, ErrNoRecognizer
	}

	if p.options.preprocess != nil {
		enhanced, err := preprocess.Prepare(data, *p.options.preprocess)
		if err != nil {
			return nil, fmt.Errorf("failed to preprocess image: %w", err)
		}
		data = enhanced
	}

	tokens, err := p.options.recognizer.Recognize(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("failed to recognize text: %w", err)
	}
	p.options.logger.Debug("recognized image",
		slog.String("source", p.options.source),
		slog.Int("tokens", len(tokens)))
	return tokens, nil
}

func (p *Pipeline) loadTable(kind format.Format) (*model.Table, error) {
	f, err := os.Open(p.filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows [][]string
	if kind == format.XLSX {
		rows, err = dataset.LoadXLSX(f, p.options.sheet, 0)
	} else {
		rows, err = dataset.LoadCSV(f, p.options.delimiter, 0)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.filename, err)
	}

	table := model.NewTable(len(rows))
	for _, row := range rows {
		cells := make([]model.Cell, len(row))
		for i, text := range row {
			cells[i] = model.Cell{Text: text}
		}
		table.AddRow(cells)
	}
	return table, nil
}

func (p *Pipeline) extractRows(table *model.Table) ([][]string, error) {
	skip := p.options.skipRows
	columns := p.options.columns

	if p.options.detectHeader {
		if table.RowCount() == 0 {
			return nil, errors.New("no header row to detect columns from")
		}
		m, err := mapping.FromHeader(table.Strings()[0])
		if err != nil {
			return nil, fmt.Errorf("failed to detect columns: %w", err)
		}
		p.options.logger.Debug("detected columns",
			slog.String("source", p.options.source),
			slog.Any("missing", m.Missing()))
		columns = &m
		skip = max(skip, 1)
	}

	if columns != nil {
		return columns.Apply(table, skip), nil
	}

	rows := table.Strings()
	if skip >= len(rows) {
		return [][]string{}, nil
	}
	return rows[skip:], nil
}
