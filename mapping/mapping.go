package mapping

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/tsawler/ledger/model"
)

// Absent marks a field that has no source column. Applying the mapping
// yields an empty string for it.
const Absent = -1

// Mapping holds the source column index of each field, indexed by
// model.Field.
type Mapping [model.FieldCount]int

// Default returns the identity mapping: column i is field i.
func Default() Mapping {
	var m Mapping
	for i := range m {
		m[i] = i
	}
	return m
}

// FromMap builds a mapping from field names to column indexes. Fields not
// named are Absent.
func FromMap(columns map[string]int) (Mapping, error) {
	var m Mapping
	for i := range m {
		m[i] = Absent
	}
	for name, col := range columns {
		f, err := model.ParseField(name)
		if err != nil {
			return m, err
		}
		m[f] = col
	}
	return m, m.Validate()
}

// Validate checks that indexes are non-negative or Absent, that no column
// feeds two fields, and that at least one field is mapped.
func (m Mapping) Validate() error {
	seen := make(map[int]model.Field)
	for i, col := range m {
		f := model.Field(i)
		if col == Absent {
			continue
		}
		if col < 0 {
			return fmt.Errorf("field %s: invalid column %d", f, col)
		}
		if other, ok := seen[col]; ok {
			return fmt.Errorf("column %d mapped to both %s and %s", col, other, f)
		}
		seen[col] = f
	}
	if len(seen) == 0 {
		return fmt.Errorf("mapping has no columns")
	}
	return nil
}

// Column returns the source column of f, or Absent.
func (m Mapping) Column(f model.Field) int {
	return m[f]
}

// ApplyRow picks the ten fields out of one row of cells. Missing columns
// yield empty strings.
func (m Mapping) ApplyRow(cells []string) []string {
	out := make([]string, model.FieldCount)
	for i, col := range m {
		if col >= 0 && col < len(cells) {
			out[i] = cells[col]
		}
	}
	return out
}

// Apply turns a table into raw ten-field rows, dropping the first skipRows
// rows (typically the header).
func (m Mapping) Apply(table *model.Table, skipRows int) [][]string {
	if table == nil {
		return nil
	}
	rows := table.Strings()
	if skipRows >= len(rows) {
		return nil
	}
	out := make([][]string, 0, len(rows)-skipRows)
	for _, cells := range rows[skipRows:] {
		out = append(out, m.ApplyRow(cells))
	}
	return out
}

// aliases lists header spellings per field. Matching folds case and accents.
var aliases = [model.FieldCount][]string{
	model.FieldName:   {"nombre", "nombres", "name"},
	model.FieldYear:   {"año", "fecha", "year"},
	model.FieldObject: {"objeto", "oficio", "object"},
	model.FieldPlace:  {"lugar", "naturaleza", "place"},
	model.FieldState:  {"estado", "state"},
	model.FieldCount1: {"count_1", "count 1", "c1"},
	model.FieldCount2: {"count_2", "count 2", "c2"},
	model.FieldCount3: {"count_3", "count 3", "c3"},
	model.FieldCount4: {"count_4", "count 4", "c4"},
	model.FieldTotal:  {"total", "suma"},
}

type candidate struct {
	field    model.Field
	column   int
	distance int
}

// FromHeader infers a mapping from a header row. Each field takes the
// header cell closest to one of its aliases; ties go to the earlier field.
// Fields with no matching cell are Absent. An error is returned when no
// cell matches at all.
func FromHeader(cells []string) (Mapping, error) {
	targets := make([]string, len(cells))
	for i, c := range cells {
		targets[i] = strings.TrimSpace(c)
	}

	var candidates []candidate
	for i, names := range aliases {
		for _, alias := range names {
			for _, r := range fuzzy.RankFindNormalizedFold(alias, targets) {
				candidates = append(candidates, candidate{
					field:    model.Field(i),
					column:   r.OriginalIndex,
					distance: r.Distance,
				})
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].field < candidates[j].field
	})

	var m Mapping
	for i := range m {
		m[i] = Absent
	}
	fieldDone := make(map[model.Field]bool)
	colDone := make(map[int]bool)
	for _, c := range candidates {
		if fieldDone[c.field] || colDone[c.column] {
			continue
		}
		m[c.field] = c.column
		fieldDone[c.field] = true
		colDone[c.column] = true
	}

	if len(fieldDone) == 0 {
		return m, fmt.Errorf("header %q matches no known column", cells)
	}
	return m, nil
}

// Missing lists the fields that have no source column.
func (m Mapping) Missing() []model.Field {
	var out []model.Field
	for i, col := range m {
		if col == Absent {
			out = append(out, model.Field(i))
		}
	}
	return out
}
