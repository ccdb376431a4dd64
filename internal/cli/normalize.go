package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tsawler/ledger/dataset"
	"github.com/tsawler/ledger/format"
	"github.com/tsawler/ledger/model"
	"github.com/tsawler/ledger/normalize"
	"github.com/tsawler/ledger/ocr"
	"github.com/tsawler/ledger/store"
)

// Output flags shared by normalize and run
var (
	outputPath      string
	xlsxPath        string
	diagnosticsPath string
	dbPath          string
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize PATH...",
	Short: "Clean transcriptions into one merged dataset",
	Long: `Reads CSV or XLSX transcriptions, token JSON or hOCR files (directories are
searched for tables), cleans every row and writes one merged dataset. Each file
is an independent run: back-references never cross file boundaries.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNormalize,
}

func init() {
	addOutputFlags(normalizeCmd)
	rootCmd.AddCommand(normalizeCmd)
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputPath, "output", "o", "-", "merged CSV file (- for stdout)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write an XLSX workbook")
	cmd.Flags().StringVar(&diagnosticsPath, "diagnostics", "", "write diagnostics as CSV instead of to stderr")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database that records the run (default from config)")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	paths, err := expandInputs(args)
	if err != nil {
		return err
	}
	return mergeAndWrite(cmd, paths, nil)
}

// mergeAndWrite extracts, normalizes and merges paths, then writes every
// requested output.
func mergeAndWrite(cmd *cobra.Command, paths []string, rec ocr.Recognizer) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if len(paths) == 0 {
		return dataset.ErrNoFiles
	}

	sources, err := collectSources(ctx, paths, rec)
	if err != nil {
		return err
	}

	n := normalize.NewNormalizerWithConfig(cfg.Normalizer())
	merged, err := dataset.Merge(ctx, n, sources, cfg.Output.Workers)
	if err != nil {
		return err
	}
	for _, s := range merged.Sources {
		log.Info("source normalized",
			slog.String("source", s.ID),
			slog.Int("records", s.Rows),
			slog.Int("diagnostics", s.Diagnostics))
	}

	if err := writeTo(cmd.OutOrStdout(), outputPath, func(w io.Writer) error {
		return dataset.WriteCSV(w, merged.Rows)
	}); err != nil {
		return err
	}

	if xlsxPath != "" {
		if err := writeTo(nil, xlsxPath, func(w io.Writer) error {
			return dataset.WriteXLSX(w, merged.Rows, merged.Diagnostics)
		}); err != nil {
			return err
		}
	}

	if diagnosticsPath != "" {
		if err := writeTo(cmd.OutOrStdout(), diagnosticsPath, func(w io.Writer) error {
			return dataset.WriteDiagnostics(w, merged.Diagnostics)
		}); err != nil {
			return err
		}
	} else if len(merged.Diagnostics) > 0 {
		fmt.Fprint(cmd.ErrOrStderr(), model.FormatDiagnostics(merged.Diagnostics))
	}

	db := dbPath
	if db == "" {
		db = cfg.Output.Database
	}
	if db != "" {
		id, err := saveRun(ctx, db, merged)
		if err != nil {
			return err
		}
		log.Info("run stored", slog.String("db", db), slog.String("run_id", id.String()))
	}

	log.Info("merge complete",
		slog.Int("sources", len(merged.Sources)),
		slog.Int("records", len(merged.Rows)),
		slog.Int("diagnostics", len(merged.Diagnostics)))
	return nil
}

func saveRun(ctx context.Context, path string, merged *dataset.Merged) (uuid.UUID, error) {
	st, err := store.Open(path)
	if err != nil {
		return uuid.Nil, err
	}
	defer st.Close()

	ids := make([]string, len(merged.Sources))
	for i, s := range merged.Sources {
		ids[i] = s.ID
	}
	return st.SaveRun(ctx, store.Run{
		CreatedAt:   time.Now().UTC(),
		Sources:     ids,
		Rows:        merged.Rows,
		Diagnostics: merged.Diagnostics,
	})
}

// writeTo writes to path, or to stdout when path is "-".
func writeTo(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "-" && stdout != nil {
		return write(stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// imageInputs expands arguments for commands that accept scans.
func imageInputs(args []string) ([]string, error) {
	kinds := append([]format.Format{format.Tokens, format.HOCR}, imageFormats...)
	return expandInputs(args, kinds...)
}
