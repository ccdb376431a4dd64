package dataset

import "github.com/tsawler/ledger/model"

// Row is one line of the merged dataset: a normalized record plus the
// source it came from.
type Row struct {
	Name   string      `csv:"name"`
	Year   model.Year  `csv:"year"`
	Object string      `csv:"object"`
	Place  string      `csv:"place"`
	State  string      `csv:"state"`
	Count1 model.Count `csv:"count_1"`
	Count2 model.Count `csv:"count_2"`
	Count3 model.Count `csv:"count_3"`
	Count4 model.Count `csv:"count_4"`
	Total  model.Count `csv:"total"`
	Source string      `csv:"source"`
}

// NewRow flattens a record.
func NewRow(source string, rec model.Record) Row {
	return Row{
		Name:   rec.Name,
		Year:   rec.Year,
		Object: rec.Object,
		Place:  rec.Place,
		State:  rec.State,
		Count1: rec.Counts[0],
		Count2: rec.Counts[1],
		Count3: rec.Counts[2],
		Count4: rec.Counts[3],
		Total:  rec.Counts[4],
		Source: source,
	}
}

// Record returns the typed record.
func (r Row) Record() model.Record {
	return model.Record{
		Name:   r.Name,
		Year:   r.Year,
		Object: r.Object,
		Place:  r.Place,
		State:  r.State,
		Counts: [5]model.Count{r.Count1, r.Count2, r.Count3, r.Count4, r.Total},
	}
}

// Header returns the column names in write order.
func Header() []string {
	out := make([]string, 0, model.FieldCount+1)
	for _, f := range model.Fields() {
		out = append(out, f.String())
	}
	return append(out, "source")
}

// Values returns the row's cells in Header order.
func (r Row) Values() []string {
	return append(r.Record().Values(), r.Source)
}
