package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tsawler/ledger/ocr"
)

var (
	tableOutput string
	markdown    bool
)

var clusterCmd = &cobra.Command{
	Use:   "cluster INPUT",
	Short: "Rebuild the table of one page",
	Long: `Groups the tokens of one page (token JSON, hOCR or a scan, which is sent
through OCR first) into rows and cells and prints the table as CSV or Markdown.`,
	Args: cobra.ExactArgs(1),
	RunE: runCluster,
}

func init() {
	clusterCmd.Flags().StringVarP(&tableOutput, "output", "o", "-", "table file (- for stdout)")
	clusterCmd.Flags().BoolVar(&markdown, "markdown", false, "print a Markdown table instead of CSV")
	rootCmd.AddCommand(clusterCmd)
}

func runCluster(cmd *cobra.Command, args []string) error {
	path := args[0]

	var rec ocr.Recognizer
	kind, err := newPipeline(path, nil).Kind()
	if err != nil {
		return err
	}
	if kind.IsImage() {
		r, release, err := newRecognizer(cmd.Context(), cfg.OCR)
		if err != nil {
			return err
		}
		defer release()
		rec = r
	}

	table, err := newPipeline(path, rec).Table(cmd.Context())
	if err != nil {
		return err
	}
	log.Info("table rebuilt",
		slog.String("input", path),
		slog.Int("rows", table.RowCount()),
		slog.Int("max_cols", table.MaxCols()))

	return writeTo(cmd.OutOrStdout(), tableOutput, func(w io.Writer) error {
		out := table.ToCSV(cfg.Delimiter())
		if markdown {
			out = table.ToMarkdown()
		}
		_, err := io.WriteString(w, out)
		return err
	})
}
