// Package mapping assigns the columns of a reconstructed table to the ten
// named ledger fields.
//
// Source pages differ in column order and count, so the assignment is an
// explicit [Mapping] rather than a positional assumption. A mapping comes
// from configuration, from [Default] (identity), or from [FromHeader], which
// fuzzy-matches a header row against Spanish and English column names.
package mapping
