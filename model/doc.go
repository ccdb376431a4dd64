// Package model provides the data types shared by every stage of the ledger
// pipeline.
//
// # Geometry
//
// OCR engines report each recognised word with a four-corner box:
//
//   - [Point] - integer pixel coordinate, origin top-left
//   - [Quad] - four corners ordered top-left, top-right, bottom-right, bottom-left
//   - [BBox] - axis-aligned rectangle with union and intersection helpers
//
// # Tokens and Tables
//
// A [Token] pairs recognised text with its [Quad]. The clusterer in package
// tables turns a flat token list into a ragged [Table] of [Cell] values:
//
//	table, err := tables.NewClusterer().Cluster(tokens)
//	fmt.Print(table.ToCSV(';'))
//
// # Records
//
// After a column mapping assigns table columns to named fields, package
// normalize produces [Record] values. Year and the five membership counts use
// typed sentinels so an unreadable value is never confused with zero:
//
//   - [Year] - zero value marks a year that failed validation; Unknown marks the ledger's own marker
//   - [Count] - [CountKnown], [CountUnknown] or [CountInvalid]
//
// Every cleaning failure is reported as a [Diagnostic] rather than an error.
package model
