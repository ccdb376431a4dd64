// Package normalize cleans and validates raw ledger rows.
//
// A raw row has ten positional string fields: name, year, object, place,
// state and five membership counts, the last of which is the declared total.
// [Normalizer.Normalize] turns a batch of raw rows into typed
// [model.Record] values and a list of [model.Diagnostic] entries.
//
// # Field rules
//
//   - name: accented Latin letters, ñ/ü and spaces only.
//   - year: the unknown marker, or an integer within [MinYear, MaxYear].
//   - object: name alphabet; "Idem" and its misread "ldem" resolve to the
//     nearest earlier object that was not itself a placeholder.
//   - place: name alphabet plus parentheses, title-cased per word, with its
//     own placeholder chain.
//   - state: must already be uppercase letters and spaces. Failures are
//     reported, never corrected.
//   - counts: the unknown marker, or a non-negative integer with thousands
//     separators stripped. Blank and NaN become zero; anything else becomes
//     the invalid sentinel.
//
// When all five counts are known, the first four must add up to the total.
//
// # Errors and diagnostics
//
// Field failures never abort a run. Each one degrades the field to a
// sentinel or passes it through, and records exactly one diagnostic. The only
// fatal condition is a row whose arity is not ten, reported as a
// [*RowArityError] before any row is processed.
//
// # State
//
// The placeholder chains and the diagnostics list live in a [Session]. Each
// call to Normalize uses a fresh session, so one Normalizer can serve many
// goroutines.
package normalize
