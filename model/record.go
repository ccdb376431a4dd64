package model

import (
	"fmt"
	"strconv"
	"strings"
)

// UnknownMarker is the literal written in a source ledger when a value could
// not be read by the original clerk. It is carried through normalization
// untouched.
const UnknownMarker = "unknown"

// InvalidMarker is how an invalid membership count is rendered. It is kept
// distinct from a legitimate zero.
const InvalidMarker = "invalid"

// Field identifies one of the ten positional columns of a ledger row.
type Field int

const (
	FieldName Field = iota
	FieldYear
	FieldObject
	FieldPlace
	FieldState
	FieldCount1
	FieldCount2
	FieldCount3
	FieldCount4
	FieldTotal
)

// FieldCount is the arity of a raw ledger row.
const FieldCount = 10

var fieldNames = [FieldCount]string{
	"name", "year", "object", "place", "state",
	"count_1", "count_2", "count_3", "count_4", "total",
}

// Fields returns all fields in positional order.
func Fields() []Field {
	out := make([]Field, FieldCount)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// String returns the column name of the field
func (f Field) String() string {
	if f < 0 || int(f) >= FieldCount {
		return "unknown"
	}
	return fieldNames[f]
}

// ParseField resolves a column name back to its Field.
func ParseField(name string) (Field, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range fieldNames {
		if n == name {
			return Field(i), nil
		}
	}
	return 0, fmt.Errorf("unknown field %q", name)
}

// Year is a ledger year. The zero value doubles as the sentinel for a year
// that failed validation.
type Year struct {
	Value   int
	Unknown bool
}

// String returns the marker for unknown years and the decimal value otherwise
func (y Year) String() string {
	if y.Unknown {
		return UnknownMarker
	}
	return strconv.Itoa(y.Value)
}

// MarshalCSV implements gocsv.TypeMarshaller.
func (y Year) MarshalCSV() (string, error) {
	return y.String(), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (y *Year) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == UnknownMarker {
		*y = Year{Unknown: true}
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("year %q: %w", s, err)
	}
	*y = Year{Value: v}
	return nil
}

// CountState distinguishes real counts from the two sentinels.
type CountState int

const (
	CountKnown CountState = iota
	CountUnknown
	CountInvalid
)

// Count is one membership count column.
type Count struct {
	Value int
	State CountState
}

// Known returns a count holding a real value.
func Known(v int) Count { return Count{Value: v} }

// IsUnknown reports whether the count carries the unknown marker.
func (c Count) IsUnknown() bool { return c.State == CountUnknown }

// IsInvalid reports whether the count failed to parse.
func (c Count) IsInvalid() bool { return c.State == CountInvalid }

func (c Count) String() string {
	switch c.State {
	case CountUnknown:
		return UnknownMarker
	case CountInvalid:
		return InvalidMarker
	default:
		return strconv.Itoa(c.Value)
	}
}

// MarshalCSV implements gocsv.TypeMarshaller.
func (c Count) MarshalCSV() (string, error) {
	return c.String(), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (c *Count) UnmarshalCSV(s string) error {
	switch s = strings.TrimSpace(s); s {
	case UnknownMarker:
		*c = Count{State: CountUnknown}
	case InvalidMarker:
		*c = Count{State: CountInvalid}
	default:
		v, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("count %q: %w", s, err)
		}
		*c = Known(v)
	}
	return nil
}

// Record is one normalized ledger row.
type Record struct {
	Name   string
	Year   Year
	Object string
	Place  string
	State  string
	Counts [5]Count
}

// Total returns the declared total, the fifth count.
func (r Record) Total() Count {
	return r.Counts[4]
}

// Values renders the record back into ten positional strings.
func (r Record) Values() []string {
	out := []string{r.Name, r.Year.String(), r.Object, r.Place, r.State}
	for _, c := range r.Counts {
		out = append(out, c.String())
	}
	return out
}
