package normalize

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/ledger/model"
)

// row builds a raw row from the five text fields and five counts.
func row(name, year, object, place, state string, counts ...string) []string {
	out := []string{name, year, object, place, state}
	out = append(out, counts...)
	for len(out) < model.FieldCount {
		out = append(out, "0")
	}
	return out
}

func messages(diags []model.Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Message
	}
	return out
}

func TestNewNormalizer(t *testing.T) {
	n := NewNormalizer()
	require.NotNil(t, n)
	assert.Equal(t, 1700, n.Config().MinYear)
	assert.Equal(t, 1904, n.Config().MaxYear)
	assert.Equal(t, 2, n.Config().FirstRow)
	assert.Equal(t, []string{"Idem", "ldem"}, n.Config().Placeholders)
}

func TestConfigure(t *testing.T) {
	n := NewNormalizer()

	require.Error(t, n.Configure(Config{UnknownMarker: ""}))
	require.Error(t, n.Configure(Config{UnknownMarker: "?", MinYear: 1900, MaxYear: 1800}))
	require.Error(t, n.Configure(Config{UnknownMarker: "?", Placeholders: []string{""}}))

	cfg := DefaultConfig()
	cfg.UnknownMarker = "?"
	require.NoError(t, n.Configure(cfg))
	assert.Equal(t, "?", n.Config().UnknownMarker)
}

func TestNormalize_BackReference(t *testing.T) {
	n := NewNormalizer()

	rows := [][]string{
		row("Juan", "1849", "Labrador", "madrid", "SOLTERO", "1", "1", "0", "0", "2"),
		row("María", "1850", "Idem", "Idem", "CASADA", "1", "2", "0", "0", "3"),
	}

	res, err := n.Normalize(rows, "page1.csv")
	require.NoError(t, err)
	require.Len(t, res.Records, 2)

	rec := res.Records[1]
	assert.Equal(t, "María", rec.Name)
	assert.Equal(t, model.Year{Value: 1850}, rec.Year)
	assert.Equal(t, "Labrador", rec.Object)
	assert.Equal(t, "Madrid", rec.Place)
	assert.Equal(t, "CASADA", rec.State)
	assert.Equal(t, model.Known(3), rec.Total())
	assert.Empty(t, res.Diagnostics)
}

func TestNormalize_BackReferenceChain(t *testing.T) {
	n := NewNormalizer()

	rows := [][]string{
		row("A", "1850", "Labrador", "San juan", "X"),
		row("B", "1850", "Idem", "ldem", "X"),
		row("C", "1850", "ldem.", "Idem", "X"),
		row("D", "1850", "Herrero", "(Toledo)", "X"),
		row("E", "1850", "Idem", "Idem", "X"),
	}

	res, err := n.Normalize(rows, "chain")
	require.NoError(t, err)

	objects := []string{}
	places := []string{}
	for _, r := range res.Records {
		objects = append(objects, r.Object)
		places = append(places, r.Place)
	}

	assert.Equal(t, []string{"Labrador", "Labrador", "Labrador", "Herrero", "Herrero"}, objects)
	assert.Equal(t, []string{"San Juan", "San Juan", "San Juan", "(Toledo)", "(Toledo)"}, places)
	assert.Empty(t, res.Diagnostics)
}

func TestNormalize_IndependentChains(t *testing.T) {
	n := NewNormalizer()

	rows := [][]string{
		row("A", "1850", "Labrador", "Idem", "X"),
		row("B", "1850", "Idem", "Madrid", "X"),
		row("C", "1850", "Sastre", "Idem", "X"),
	}

	res, err := n.Normalize(rows, "s")
	require.NoError(t, err)

	// First row's place placeholder has nothing to resolve against
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "place", res.Diagnostics[0].Field)
	assert.Equal(t, 2, res.Diagnostics[0].Row)
	assert.Equal(t, "Idem", res.Records[0].Place)

	assert.Equal(t, "Labrador", res.Records[1].Object)
	assert.Equal(t, "Madrid", res.Records[2].Place)
	assert.Equal(t, "Sastre", res.Records[2].Object)
}

func TestNormalize_PlaceholderOnFirstRow(t *testing.T) {
	n := NewNormalizer()

	res, err := n.Normalize([][]string{row("Ana", "1850", "Idem", "Madrid", "CASADA")}, "s")
	require.NoError(t, err)

	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, "object", d.Field)
	assert.Equal(t, "Idem", d.Raw)
	assert.Equal(t, "Idem", res.Records[0].Object)
}

func TestNormalize_Year(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    model.Year
		message string
	}{
		{"lower bound", "1700", model.Year{Value: 1700}, ""},
		{"upper bound", "1904", model.Year{Value: 1904}, ""},
		{"padded", " 1850 ", model.Year{Value: 1850}, ""},
		{"unknown marker", "unknown", model.Year{Unknown: true}, ""},
		{"below range", "1699", model.Year{}, "Year out of range 1699"},
		{"above range", "1905", model.Year{}, "Year out of range 1905"},
		{"not a number", "18S0", model.Year{}, "Invalid year 18S0"},
		{"blank", "", model.Year{}, "Missing value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewNormalizer().Normalize([][]string{row("Ana", tt.raw, "Sastre", "Madrid", "CASADA")}, "s")
			require.NoError(t, err)

			assert.Equal(t, tt.want, res.Records[0].Year)
			if tt.message == "" {
				assert.Empty(t, res.Diagnostics)
				return
			}
			require.Len(t, res.Diagnostics, 1)
			assert.Equal(t, "year", res.Diagnostics[0].Field)
			assert.Equal(t, tt.message, res.Diagnostics[0].Message)
		})
	}
}

func TestNormalize_NameAlphabet(t *testing.T) {
	res, err := NewNormalizer().Normalize([][]string{
		row(" José  Núñez3* ", "1850", "Labrador,", "san-juan (norte)", "VIUDO"),
		row("", "1850", "Labrador", "Madrid", "VIUDO"),
	}, "s")
	require.NoError(t, err)

	assert.Equal(t, "José  Núñez", res.Records[0].Name)
	assert.Equal(t, "Labrador", res.Records[0].Object)
	assert.Equal(t, "Sanjuan (Norte)", res.Records[0].Place)

	assert.Equal(t, "", res.Records[1].Name)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "name", res.Diagnostics[0].Field)
	assert.Equal(t, "Missing value", res.Diagnostics[0].Message)
	assert.Equal(t, 3, res.Diagnostics[0].Row)
}

func TestNormalize_StateIsNotCorrected(t *testing.T) {
	tests := []struct {
		raw   string
		valid bool
	}{
		{"CASADA", true},
		{"VIUDA DE", true},
		{"SOLTERÍA", true},
		{"casada", false},
		{"Casada", false},
		{"CASADA1", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.raw), func(t *testing.T) {
			res, err := NewNormalizer().Normalize([][]string{row("Ana", "1850", "Sastre", "Madrid", tt.raw)}, "s")
			require.NoError(t, err)

			assert.Equal(t, tt.raw, res.Records[0].State)
			if tt.valid {
				assert.Empty(t, res.Diagnostics)
			} else {
				require.Len(t, res.Diagnostics, 1)
				assert.Equal(t, "state", res.Diagnostics[0].Field)
			}
		})
	}
}

func TestNormalize_Counts(t *testing.T) {
	tests := []struct {
		raw   string
		want  model.Count
		diags int
	}{
		{"12", model.Known(12), 0},
		{"1.234", model.Known(1234), 0},
		{"1,234", model.Known(1234), 0},
		{"", model.Known(0), 0},
		{"NaN", model.Known(0), 0},
		{"nan", model.Known(0), 0},
		{"unknown", model.Count{State: model.CountUnknown}, 0},
		{"x", model.Count{State: model.CountInvalid}, 1},
		{"-3", model.Count{State: model.CountInvalid}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			// Only the first count varies; the total is unknown so no sum check runs
			raw := row("Ana", "1850", "Sastre", "Madrid", "CASADA", tt.raw, "0", "0", "0", "unknown")
			res, err := NewNormalizer().Normalize([][]string{raw}, "s")
			require.NoError(t, err)

			assert.Equal(t, tt.want, res.Records[0].Counts[0])
			assert.Len(t, res.Diagnostics, tt.diags)
		})
	}
}

func TestNormalize_InvalidIsNotZero(t *testing.T) {
	res, err := NewNormalizer().Normalize([][]string{
		row("Ana", "1850", "Sastre", "Madrid", "CASADA", "abc", "", "0", "0", "0"),
	}, "s")
	require.NoError(t, err)

	counts := res.Records[0].Counts
	assert.True(t, counts[0].IsInvalid())
	assert.False(t, counts[1].IsInvalid())
	assert.NotEqual(t, counts[0], counts[1])
	assert.Equal(t, "invalid", counts[0].String())
	assert.Equal(t, "0", counts[1].String())

	// The invalid count is reported once and suppresses the sum check
	assert.Equal(t, []string{"Invalid count abc"}, messages(res.Diagnostics))
}

func TestNormalize_SumValidation(t *testing.T) {
	res, err := NewNormalizer().Normalize([][]string{
		row("Ana", "1850", "Sastre", "Madrid", "CASADA", "1", "2", "0", "0", "3"),
		row("Eva", "1850", "Sastre", "Madrid", "CASADA", "1", "2", "3", "4", "9"),
		row("Luz", "1850", "Sastre", "Madrid", "CASADA", "1", "unknown", "3", "4", "9"),
	}, "s")
	require.NoError(t, err)

	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, 3, d.Row)
	assert.Equal(t, "total", d.Field)
	assert.Equal(t, "9", d.Raw)
	assert.Contains(t, d.Message, "row 3")
	assert.Contains(t, d.Message, "10")
	assert.Contains(t, d.Message, "9")

	// Values are left untouched
	assert.Equal(t, model.Known(9), res.Records[1].Total())
	assert.Equal(t, model.Known(4), res.Records[1].Counts[3])
}

func TestNormalize_RowArity(t *testing.T) {
	rows := [][]string{
		row("Ana", "1850", "Sastre", "Madrid", "CASADA"),
		{"too", "short"},
	}

	res, err := NewNormalizer().Normalize(rows, "s")
	require.Error(t, err)
	assert.Nil(t, res)

	var arity *RowArityError
	require.True(t, errors.As(err, &arity))
	assert.Equal(t, 3, arity.Row)
	assert.Equal(t, 2, arity.Got)
	assert.Equal(t, model.FieldCount, arity.Want)
	assert.Equal(t, "row 3: expected 10 fields, got 2", err.Error())
}

func TestNormalize_EveryFieldFails(t *testing.T) {
	res, err := NewNormalizer().Normalize([][]string{
		{"", "abc", "", "", "bad", "x", "y", "z", "w", "v"},
	}, "broken.csv")
	require.NoError(t, err)

	// Output keeps full shape, one diagnostic per degraded field
	require.Len(t, res.Records, 1)
	assert.Len(t, res.Diagnostics, 10)
	for _, d := range res.Diagnostics {
		assert.Equal(t, "broken.csv", d.Source)
		assert.Equal(t, 2, d.Row)
	}
}

func TestNormalize_Empty(t *testing.T) {
	res, err := NewNormalizer().Normalize(nil, "s")
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Empty(t, res.Diagnostics)
}

func TestNormalize_FirstRowOffset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FirstRow = 1
	n := NewNormalizerWithConfig(cfg)

	res, err := n.Normalize([][]string{row("Ana", "1600", "Sastre", "Madrid", "CASADA")}, "s")
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, 1, res.Diagnostics[0].Row)
}

func TestNormalize_ConcurrentRunsAreIndependent(t *testing.T) {
	n := NewNormalizer()

	var wg sync.WaitGroup
	results := make([]*Result, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			object := fmt.Sprintf("Oficio%c", 'A'+i)
			rows := [][]string{
				row("Ana", "1850", object, "Madrid", "CASADA"),
				row("Eva", "1850", "Idem", "Idem", "CASADA"),
			}
			res, err := n.Normalize(rows, fmt.Sprintf("file%d", i))
			if err == nil {
				results[i] = res
			}
		}(i)
	}
	wg.Wait()

	for i, res := range results {
		require.NotNil(t, res)
		assert.Equal(t, fmt.Sprintf("Oficio%c", 'A'+i), res.Records[1].Object)
		assert.Empty(t, res.Diagnostics)
	}
}

func TestSession_Streaming(t *testing.T) {
	s := NewNormalizer().NewSession("stream")

	_, err := s.Row(row("Ana", "1850", "Sastre", "Madrid", "CASADA"))
	require.NoError(t, err)
	rec, err := s.Row(row("Eva", "1999", "Idem", "Idem", "CASADA"))
	require.NoError(t, err)

	assert.Equal(t, "Sastre", rec.Object)
	require.Len(t, s.Diagnostics(), 1)
	assert.Equal(t, 3, s.Diagnostics()[0].Row)

	_, err = s.Row([]string{"x"})
	var arity *RowArityError
	assert.ErrorAs(t, err, &arity)
}
