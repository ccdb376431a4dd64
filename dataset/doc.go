// Package dataset loads raw ledger rows from transcribed files, normalizes
// many sources into one merged dataset and writes it back out.
//
// Loading is positional: [LoadCSV] and [LoadXLSX] return rows of cells
// exactly as stored, optionally reordered by a [mapping.Mapping], so that
// arity problems reach the normalizer instead of being papered over.
//
// [Merge] normalizes every [Source] in parallel. Each source gets its own
// normalization session, so back-references never cross file boundaries.
// Output keeps source order.
//
// The merged dataset is written as ';'-delimited CSV ([WriteCSV]) or as an
// XLSX workbook ([WriteXLSX]); diagnostics go to [WriteDiagnostics].
package dataset
