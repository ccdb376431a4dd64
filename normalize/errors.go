package normalize

import "fmt"

// RowArityError reports a raw row that does not have exactly
// model.FieldCount fields. It aborts the whole normalization call.
type RowArityError struct {
	Row  int // header-adjusted row number
	Got  int
	Want int
}

func (e *RowArityError) Error() string {
	return fmt.Sprintf("row %d: expected %d fields, got %d", e.Row, e.Want, e.Got)
}
