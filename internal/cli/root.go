// Package cli implements the ledger command.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tsawler/ledger/internal/config"
	"github.com/tsawler/ledger/internal/logger"
)

var (
	version = "dev"

	// Global flags
	configPath string
	verbose    bool
	jsonLogs   bool

	// Set by setup before any command runs
	cfg = config.Default()
	log = logger.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Turn scanned register pages into clean records",
	Long: `Ledger reads scanned pages of handwritten registers, rebuilds their tables
from OCR word boxes and cleans every row into a typed record. Problems found
while cleaning are reported as diagnostics; they never stop a run.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log stage details")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "log JSON lines instead of text")
}

func setup(cmd *cobra.Command, _ []string) error {
	log = logger.New(logger.Options{
		Verbose: verbose,
		JSON:    jsonLogs,
		Output:  cmd.ErrOrStderr(),
	})

	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = c

	log.Debug("configuration loaded",
		slog.String("path", configPath),
		slog.String("ocr_backend", cfg.OCR.Backend))
	return nil
}

// Execute runs the command line.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}
