package model

import (
	"encoding/json"
	"strings"
	"testing"
)

// ============================================================================
// Quad / BBox Tests
// ============================================================================

func TestNewQuadFromRect(t *testing.T) {
	q := NewQuadFromRect(10, 20, 110, 45)

	if q.TopLeft() != (Point{10, 20}) {
		t.Errorf("TopLeft() = %+v, want {10 20}", q.TopLeft())
	}
	if q.TopRight() != (Point{110, 20}) {
		t.Errorf("TopRight() = %+v, want {110 20}", q.TopRight())
	}
	if q[2] != (Point{110, 45}) || q[3] != (Point{10, 45}) {
		t.Errorf("bottom corners = %+v %+v, want {110 45} {10 45}", q[2], q[3])
	}
}

func TestQuadBounds(t *testing.T) {
	tests := []struct {
		name string
		q    Quad
		want BBox
	}{
		{"axis aligned", NewQuadFromRect(0, 0, 10, 5), BBox{0, 0, 10, 5}},
		{"skewed", Quad{{2, 1}, {12, 3}, {11, 9}, {0, 7}}, BBox{0, 1, 12, 8}},
		{"degenerate", Quad{{4, 4}, {4, 4}, {4, 4}, {4, 4}}, BBox{4, 4, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.Bounds(); got != tt.want {
				t.Errorf("Bounds() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBBoxEdges(t *testing.T) {
	b := NewBBox(10, 20, 100, 50)

	if b.Left() != 10 {
		t.Errorf("Left() = %d, want 10", b.Left())
	}
	if b.Right() != 110 {
		t.Errorf("Right() = %d, want 110", b.Right())
	}
	if b.Top() != 20 {
		t.Errorf("Top() = %d, want 20", b.Top())
	}
	if b.Bottom() != 70 {
		t.Errorf("Bottom() = %d, want 70", b.Bottom())
	}
}

func TestBBoxUnion(t *testing.T) {
	a := BBox{0, 0, 10, 10}
	b := BBox{20, 5, 10, 20}

	got := a.Union(b)
	want := BBox{0, 0, 30, 25}
	if got != want {
		t.Errorf("Union() = %+v, want %+v", got, want)
	}

	if got := b.Union(a); got != want {
		t.Errorf("Union() reversed = %+v, want %+v", got, want)
	}
}

func TestBBoxUnion_ZeroBoxKeepsPosition(t *testing.T) {
	b := BBox{20, 5, 10, 20}
	want := BBox{0, 0, 30, 25}

	if got := (BBox{}).Union(b); got != want {
		t.Errorf("zero.Union() = %+v, want %+v", got, want)
	}
	if got := b.Union(BBox{}); got != want {
		t.Errorf("Union(zero) = %+v, want %+v", got, want)
	}
}

func TestBBoxQuadRoundTrip(t *testing.T) {
	b := NewBBox(3, 4, 30, 12)
	if got := b.Quad().Bounds(); got != b {
		t.Errorf("Quad().Bounds() = %+v, want %+v", got, b)
	}
}

// ============================================================================
// Token Tests
// ============================================================================

func TestTokenAccessors(t *testing.T) {
	tok := NewToken("María", 100, 200, 160, 220)

	if tok.Top() != 200 {
		t.Errorf("Top() = %d, want 200", tok.Top())
	}
	if tok.Left() != 100 {
		t.Errorf("Left() = %d, want 100", tok.Left())
	}
	if tok.Right() != 160 {
		t.Errorf("Right() = %d, want 160", tok.Right())
	}
}

func TestTokenJSON(t *testing.T) {
	tok := NewToken("Madrid", 1, 2, 3, 4)

	data, err := json.Marshal(tok)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	want := `{"text":"Madrid","box":[[1,2],[3,2],[3,4],[1,4]]}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	var back Token
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if back != tok {
		t.Errorf("Unmarshal() = %+v, want %+v", back, tok)
	}
}

func TestPointUnmarshalJSON_BadArity(t *testing.T) {
	var p Point
	if err := json.Unmarshal([]byte(`[1,2,3]`), &p); err == nil {
		t.Error("expected error for 3 coordinates")
	}
}

// ============================================================================
// Table Tests
// ============================================================================

func sampleTable() *Table {
	table := NewTable(2)
	table.AddRow([]Cell{{Text: "Nombre"}, {Text: "Año"}, {Text: "Lugar"}})
	table.AddRow([]Cell{{Text: "María"}, {Text: "1850"}})
	return table
}

func TestTableCounts(t *testing.T) {
	table := sampleTable()

	if table.RowCount() != 2 {
		t.Errorf("RowCount() = %d, want 2", table.RowCount())
	}
	if table.ColCount(0) != 3 {
		t.Errorf("ColCount(0) = %d, want 3", table.ColCount(0))
	}
	if table.ColCount(1) != 2 {
		t.Errorf("ColCount(1) = %d, want 2", table.ColCount(1))
	}
	if table.ColCount(5) != 0 {
		t.Errorf("ColCount(5) = %d, want 0", table.ColCount(5))
	}
	if table.MaxCols() != 3 {
		t.Errorf("MaxCols() = %d, want 3", table.MaxCols())
	}
}

func TestTableGetCell(t *testing.T) {
	table := sampleTable()

	if c := table.GetCell(1, 0); c == nil || c.Text != "María" {
		t.Errorf("GetCell(1, 0) = %+v, want María", c)
	}
	if c := table.GetCell(1, 2); c != nil {
		t.Errorf("GetCell(1, 2) = %+v, want nil for ragged row", c)
	}
	if c := table.GetCell(-1, 0); c != nil {
		t.Error("GetCell(-1, 0) should be nil")
	}
}

func TestTableStrings(t *testing.T) {
	got := sampleTable().Strings()
	if len(got) != 2 || len(got[0]) != 3 || len(got[1]) != 2 {
		t.Fatalf("Strings() shape = %v", got)
	}
	if got[1][1] != "1850" {
		t.Errorf("Strings()[1][1] = %q, want 1850", got[1][1])
	}
}

func TestTableToCSV(t *testing.T) {
	table := NewTable(1)
	table.AddRow([]Cell{{Text: "a;b"}, {Text: `say "hi"`}, {Text: "plain"}})

	got := table.ToCSV(';')
	want := "\"a;b\";\"say \"\"hi\"\"\";plain\n"
	if got != want {
		t.Errorf("ToCSV() = %q, want %q", got, want)
	}
}

func TestTableToMarkdown(t *testing.T) {
	md := sampleTable().ToMarkdown()

	if !strings.Contains(md, "| Nombre | Año | Lugar |") {
		t.Errorf("missing header row:\n%s", md)
	}
	if !strings.Contains(md, "|---|---|---|") {
		t.Errorf("missing separator:\n%s", md)
	}
	if !strings.Contains(md, "| María | 1850 |  |") {
		t.Errorf("short row not padded:\n%s", md)
	}

	if (&Table{}).ToMarkdown() != "" {
		t.Error("empty table should render empty markdown")
	}
}

// ============================================================================
// Record Tests
// ============================================================================

func TestFieldString(t *testing.T) {
	tests := []struct {
		field Field
		want  string
	}{
		{FieldName, "name"},
		{FieldState, "state"},
		{FieldCount1, "count_1"},
		{FieldTotal, "total"},
		{Field(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.field.String(); got != tt.want {
			t.Errorf("Field(%d).String() = %q, want %q", tt.field, got, tt.want)
		}
	}
}

func TestParseField(t *testing.T) {
	f, err := ParseField(" Place ")
	if err != nil || f != FieldPlace {
		t.Errorf("ParseField(Place) = %v, %v", f, err)
	}
	if _, err := ParseField("colour"); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestYearString(t *testing.T) {
	if got := (Year{Value: 1850}).String(); got != "1850" {
		t.Errorf("String() = %q, want 1850", got)
	}
	if got := (Year{Unknown: true}).String(); got != UnknownMarker {
		t.Errorf("String() = %q, want %q", got, UnknownMarker)
	}
	if got := (Year{}).String(); got != "0" {
		t.Errorf("zero Year String() = %q, want 0", got)
	}
}

func TestYearUnmarshalCSV(t *testing.T) {
	var y Year
	if err := y.UnmarshalCSV("1799"); err != nil || y.Value != 1799 {
		t.Errorf("UnmarshalCSV(1799) = %+v, %v", y, err)
	}
	if err := y.UnmarshalCSV(UnknownMarker); err != nil || !y.Unknown {
		t.Errorf("UnmarshalCSV(unknown) = %+v, %v", y, err)
	}
	if err := y.UnmarshalCSV("abc"); err == nil {
		t.Error("expected error for non-numeric year")
	}
}

func TestCountSentinelsAreDistinct(t *testing.T) {
	zero := Known(0)
	invalid := Count{State: CountInvalid}
	unknown := Count{State: CountUnknown}

	if zero == invalid || zero == unknown || invalid == unknown {
		t.Error("count sentinels must be distinguishable from zero and each other")
	}
	if zero.String() != "0" || invalid.String() != InvalidMarker || unknown.String() != UnknownMarker {
		t.Errorf("String() = %q, %q, %q", zero, invalid, unknown)
	}
}

func TestCountUnmarshalCSV(t *testing.T) {
	tests := []struct {
		in   string
		want Count
	}{
		{"12", Known(12)},
		{UnknownMarker, Count{State: CountUnknown}},
		{InvalidMarker, Count{State: CountInvalid}},
	}

	for _, tt := range tests {
		var c Count
		if err := c.UnmarshalCSV(tt.in); err != nil {
			t.Errorf("UnmarshalCSV(%q) error: %v", tt.in, err)
			continue
		}
		if c != tt.want {
			t.Errorf("UnmarshalCSV(%q) = %+v, want %+v", tt.in, c, tt.want)
		}
	}
}

func TestRecordValues(t *testing.T) {
	r := Record{
		Name:   "María",
		Year:   Year{Value: 1850},
		Object: "Labrador",
		Place:  "Madrid",
		State:  "CASADA",
		Counts: [5]Count{Known(1), Known(2), Known(0), {State: CountUnknown}, Known(3)},
	}

	got := r.Values()
	want := []string{"María", "1850", "Labrador", "Madrid", "CASADA", "1", "2", "0", "unknown", "3"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Values() = %v, want %v", got, want)
	}
	if r.Total() != Known(3) {
		t.Errorf("Total() = %v, want 3", r.Total())
	}
}

// ============================================================================
// Diagnostic Tests
// ============================================================================

func TestFormatDiagnostics(t *testing.T) {
	diags := []Diagnostic{
		{Source: "a.csv", Row: 2, Field: "year", Raw: "1699", Message: "Year out of range 1699"},
		{Source: "a.csv", Row: 3, Field: "state", Raw: "casada", Message: "State must be uppercase"},
	}

	out := FormatDiagnostics(diags)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != `a.csv:2: year "1699": Year out of range 1699` {
		t.Errorf("line 0 = %q", lines[0])
	}
}
