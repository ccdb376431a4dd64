// Package tables rebuilds the row/column structure of a scanned ledger page
// from the positioned tokens an OCR engine returns.
//
// # Clustering
//
// The [Clusterer] uses a two-step algorithm:
//
//  1. Row grouping: tokens are sorted by the Y of their top-left corner and a
//     new row starts whenever a token sits more than RowTolerance below its
//     immediate predecessor.
//  2. Column grouping: within each row, tokens are sorted by the X of their
//     top-left corner and merged into one cell while the gap to the previous
//     token's top-right X stays within ColumnGap.
//
// Row grouping compares each token with its predecessor only. Slowly drifting
// baselines therefore collapse into a single row; this is the behaviour the
// existing ledger transcriptions were produced with.
//
// # Configuration
//
// Clusterer behavior is controlled by [Config]:
//
//	config := tables.DefaultConfig()
//	config.RowTolerance = 14
//	config.ColumnGap = 55
//	clusterer := tables.NewClustererWithConfig(config)
//	table, err := clusterer.Cluster(tokens)
//
// Both thresholds are absolute pixel distances (defaults 10 and 40) and do not
// scale with image resolution.
package tables
