package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tsawler/ledger/model"
)

// Normalizer applies the ledger field rules to raw rows. It holds no per-run
// state and is safe for concurrent use.
type Normalizer struct {
	config Config
}

// Result is the output of one normalization run. Records always has one
// entry per input row.
type Result struct {
	Records     []model.Record
	Diagnostics []model.Diagnostic
}

// NewNormalizer creates a normalizer with default configuration.
func NewNormalizer() *Normalizer {
	return &Normalizer{config: DefaultConfig()}
}

// NewNormalizerWithConfig creates a normalizer with custom configuration.
func NewNormalizerWithConfig(config Config) *Normalizer {
	return &Normalizer{config: config}
}

// Configure sets the normalizer configuration.
func (n *Normalizer) Configure(config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	n.config = config
	return nil
}

// Config returns the active configuration.
func (n *Normalizer) Config() Config {
	return n.config
}

// Normalize cleans every row of one source. Rows are checked for arity up
// front; a malformed row fails the call with a *RowArityError and no output.
func (n *Normalizer) Normalize(rows [][]string, source string) (*Result, error) {
	for i, row := range rows {
		if len(row) != model.FieldCount {
			return nil, &RowArityError{Row: i + n.config.FirstRow, Got: len(row), Want: model.FieldCount}
		}
	}

	s := n.NewSession(source)
	records := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := s.Row(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return &Result{Records: records, Diagnostics: s.Diagnostics()}, nil
}

// Session is the mutable state of one normalization run: the object and
// place back-reference chains, the row counter and the diagnostics collected
// so far. A session must not be shared between goroutines.
type Session struct {
	config      Config
	source      string
	row         int // index of the next row
	objects     chain
	places      chain
	diagnostics []model.Diagnostic
}

// NewSession starts an independent run for one source.
func (n *Normalizer) NewSession(source string) *Session {
	return &Session{config: n.config, source: source}
}

// Diagnostics returns the diagnostics collected so far.
func (s *Session) Diagnostics() []model.Diagnostic {
	return s.diagnostics
}

// Row cleans the next raw row in sequence.
func (s *Session) Row(raw []string) (model.Record, error) {
	rowNum := s.row + s.config.FirstRow
	if len(raw) != model.FieldCount {
		return model.Record{}, &RowArityError{Row: rowNum, Got: len(raw), Want: model.FieldCount}
	}
	first := s.row == 0
	s.row++

	rec := model.Record{
		Name:   s.name(rowNum, raw[model.FieldName]),
		Year:   s.year(rowNum, raw[model.FieldYear]),
		Object: s.backRef(rowNum, model.FieldObject, raw[model.FieldObject], first),
		Place:  s.backRef(rowNum, model.FieldPlace, raw[model.FieldPlace], first),
		State:  s.state(rowNum, raw[model.FieldState]),
	}
	for i := range rec.Counts {
		f := model.FieldCount1 + model.Field(i)
		rec.Counts[i] = s.count(rowNum, f, raw[f])
	}
	s.checkSum(rowNum, rec, raw[model.FieldTotal])

	return rec, nil
}

func (s *Session) report(row int, field model.Field, raw, format string, args ...any) {
	s.diagnostics = append(s.diagnostics, model.Diagnostic{
		Source:  s.source,
		Row:     row,
		Field:   field.String(),
		Raw:     raw,
		Message: fmt.Sprintf(format, args...),
	})
}

func (s *Session) name(row int, raw string) string {
	if strings.TrimSpace(raw) == "" {
		s.report(row, model.FieldName, raw, "Missing value")
		return raw
	}
	return NameAlphabet.Filter(raw)
}

func (s *Session) year(row int, raw string) model.Year {
	v := strings.TrimSpace(raw)
	if v == s.config.UnknownMarker {
		return model.Year{Unknown: true}
	}
	if v == "" {
		s.report(row, model.FieldYear, raw, "Missing value")
		return model.Year{}
	}

	y, err := strconv.Atoi(v)
	if err != nil {
		s.report(row, model.FieldYear, raw, "Invalid year %s", v)
		return model.Year{}
	}
	if y < s.config.MinYear || y > s.config.MaxYear {
		s.report(row, model.FieldYear, raw, "Year out of range %d", y)
		return model.Year{}
	}
	return model.Year{Value: y}
}

// backRef cleans object and place. Each field keeps its own chain of
// resolved values; placeholders resolve to the last entry of that chain.
func (s *Session) backRef(row int, field model.Field, raw string, first bool) string {
	alphabet, ch := NameAlphabet, &s.objects
	if field == model.FieldPlace {
		alphabet, ch = PlaceAlphabet, &s.places
	}

	if strings.TrimSpace(raw) == "" {
		s.report(row, field, raw, "Missing value")
		return raw
	}

	v := alphabet.Filter(raw)
	if IsPlaceholder(v, s.config.Placeholders) {
		prev, ok := ch.last()
		if first || !ok {
			s.report(row, field, raw, "Placeholder with no previous value")
			return v
		}
		return prev
	}

	if field == model.FieldPlace {
		v = TitleWords(v)
	}
	ch.push(v)
	return v
}

// state is validated, never corrected.
func (s *Session) state(row int, raw string) string {
	if strings.TrimSpace(raw) == "" {
		s.report(row, model.FieldState, raw, "Missing value")
		return raw
	}
	if !IsUpperText(raw) {
		s.report(row, model.FieldState, raw, "State must be uppercase")
	}
	return raw
}

func (s *Session) count(row int, field model.Field, raw string) model.Count {
	v := strings.TrimSpace(raw)
	if v == s.config.UnknownMarker {
		return model.Count{State: model.CountUnknown}
	}

	v = strings.NewReplacer(".", "", ",", "").Replace(v)
	if v == "" || strings.EqualFold(v, "nan") {
		return model.Known(0)
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		s.report(row, field, raw, "Invalid count %s", strings.TrimSpace(raw))
		return model.Count{State: model.CountInvalid}
	}
	if n < 0 {
		s.report(row, field, raw, "Negative count %d", n)
		return model.Count{State: model.CountInvalid}
	}
	return model.Known(n)
}

// checkSum compares the first four counts against the declared total. Rows
// with an unknown count are exempt; rows with an invalid count already carry
// a diagnostic for it and are skipped too.
func (s *Session) checkSum(row int, rec model.Record, rawTotal string) {
	sum := 0
	for _, c := range rec.Counts {
		if c.State != model.CountKnown {
			return
		}
	}
	for _, c := range rec.Counts[:4] {
		sum += c.Value
	}
	if total := rec.Total().Value; sum != total {
		s.report(row, model.FieldTotal, rawTotal, "Sum mismatch on row %d: counts add up to %d, declared total %d", row, sum, total)
	}
}
