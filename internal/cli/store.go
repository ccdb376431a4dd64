package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tsawler/ledger/dataset"
	"github.com/tsawler/ledger/model"
	"github.com/tsawler/ledger/store"
)

var (
	storeDB          string
	importDiagnostic string
	exportOutput     string
	exportDiagnostic bool
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage runs archived in SQLite",
}

var storeImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Archive a merged CSV as a new run",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreImport,
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runStoreList,
}

var storeExportCmd = &cobra.Command{
	Use:   "export RUN_ID",
	Short: "Write the records or diagnostics of a run as CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreExport,
}

var storeDeleteCmd = &cobra.Command{
	Use:   "delete RUN_ID",
	Short: "Delete a run and everything it holds",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreDelete,
}

func init() {
	storeCmd.PersistentFlags().StringVar(&storeDB, "db", "", "SQLite database (default from config)")
	storeImportCmd.Flags().StringVar(&importDiagnostic, "diagnostics", "", "diagnostics CSV to archive with the records")
	storeExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "-", "CSV file (- for stdout)")
	storeExportCmd.Flags().BoolVar(&exportDiagnostic, "diagnostics", false, "export diagnostics instead of records")

	storeCmd.AddCommand(storeImportCmd, storeListCmd, storeExportCmd, storeDeleteCmd)
	rootCmd.AddCommand(storeCmd)
}

func openStore() (*store.Store, error) {
	path := storeDB
	if path == "" {
		path = cfg.Output.Database
	}
	if path == "" {
		return nil, errors.New("no database: pass --db or set output.database")
	}
	return store.Open(path)
}

func runStoreImport(cmd *cobra.Command, args []string) error {
	rows, err := readFile(args[0], dataset.ReadRecords)
	if err != nil {
		return err
	}

	var diags []model.Diagnostic
	if importDiagnostic != "" {
		if diags, err = readFile(importDiagnostic, dataset.ReadDiagnostics); err != nil {
			return err
		}
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := st.SaveRun(cmd.Context(), store.Run{
		CreatedAt:   time.Now().UTC(),
		Sources:     sourceIDs(rows),
		Rows:        rows,
		Diagnostics: diags,
	})
	if err != nil {
		return err
	}
	cmd.Println(id)
	return nil
}

func runStoreList(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.Runs(cmd.Context())
	if err != nil {
		return err
	}
	for _, r := range runs {
		cmd.Printf("%s  %s  %d records  %d diagnostics  %s\n",
			r.ID, r.CreatedAt.Format(time.RFC3339), r.RecordCount, r.DiagnosticCount, strings.Join(r.Sources, ","))
	}
	return nil
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid run ID: %w", err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if exportDiagnostic {
		diags, err := st.Diagnostics(cmd.Context(), id)
		if err != nil {
			return err
		}
		return writeTo(cmd.OutOrStdout(), exportOutput, func(w io.Writer) error {
			return dataset.WriteDiagnostics(w, diags)
		})
	}

	rows, err := st.Records(cmd.Context(), id)
	if err != nil {
		return err
	}
	return writeTo(cmd.OutOrStdout(), exportOutput, func(w io.Writer) error {
		return dataset.WriteCSV(w, rows)
	})
}

func runStoreDelete(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid run ID: %w", err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	return st.DeleteRun(cmd.Context(), id)
}

func readFile[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// sourceIDs lists the distinct sources of rows in first-seen order.
func sourceIDs(rows []dataset.Row) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, r := range rows {
		if !seen[r.Source] {
			seen[r.Source] = true
			ids = append(ids, r.Source)
		}
	}
	return ids
}
