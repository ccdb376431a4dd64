package dataset

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tsawler/ledger/model"
	"github.com/tsawler/ledger/normalize"
)

// Merged is the combined output of many normalization runs.
type Merged struct {
	Rows        []Row
	Diagnostics []model.Diagnostic
	Sources     []SourceSummary
}

// SourceSummary counts what one source contributed.
type SourceSummary struct {
	ID          string
	Rows        int
	Diagnostics int
}

// Merge normalizes sources concurrently, at most workers at a time (0 means
// no limit), and concatenates the results in source order. A malformed row
// in any source fails the whole merge. A source with FirstRow set is numbered
// from it instead of the normalizer's FirstRow.
func Merge(ctx context.Context, n *normalize.Normalizer, sources []Source, workers int) (*Merged, error) {
	results := make([]*normalize.Result, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sn := n
			if src.FirstRow > 0 {
				config := n.Config()
				config.FirstRow = src.FirstRow
				sn = normalize.NewNormalizerWithConfig(config)
			}
			res, err := sn.Normalize(src.Rows, src.ID)
			if err != nil {
				return fmt.Errorf("%s: %w", src.ID, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := &Merged{Sources: make([]SourceSummary, 0, len(sources))}
	for i, res := range results {
		id := sources[i].ID
		for _, rec := range res.Records {
			merged.Rows = append(merged.Rows, NewRow(id, rec))
		}
		merged.Diagnostics = append(merged.Diagnostics, res.Diagnostics...)
		merged.Sources = append(merged.Sources, SourceSummary{
			ID:          id,
			Rows:        len(res.Records),
			Diagnostics: len(res.Diagnostics),
		})
	}
	return merged, nil
}
