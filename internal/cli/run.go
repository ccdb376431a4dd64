package cli

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run IMAGE...",
	Short: "OCR, cluster and normalize scans into one merged dataset",
	Long: `Runs every stage on each scan (directories are searched for images, token
JSON and hOCR files) and writes one merged dataset, exactly like normalize.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	addOutputFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	paths, err := imageInputs(args)
	if err != nil {
		return err
	}

	rec, release, err := newRecognizer(cmd.Context(), cfg.OCR)
	if err != nil {
		return err
	}
	defer release()

	return mergeAndWrite(cmd, paths, rec)
}
