// Package store persists merged ledger runs in a SQLite database.
//
// Each call to [Store.SaveRun] records one run under a time-ordered UUID:
// the merged rows, the diagnostics and the list of sources. Runs can be
// listed and read back later for comparison or export.
//
// The schema is created by embedded, versioned migrations applied on
// [Open].
package store
