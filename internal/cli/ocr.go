package cli

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsawler/ledger/ocr"
)

var tokensDir string

var ocrCmd = &cobra.Command{
	Use:   "ocr IMAGE...",
	Short: "Recognize scans into token JSON files",
	Long: `Sends each scan (directories are searched for images) through preprocessing
and the configured OCR backend, and writes its tokens next to it as NAME.json,
or into --output-dir. Token files can be clustered later without repeating OCR.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOCR,
}

func init() {
	ocrCmd.Flags().StringVarP(&tokensDir, "output-dir", "o", "", "directory for token files (default: next to each image)")
	rootCmd.AddCommand(ocrCmd)
}

func runOCR(cmd *cobra.Command, args []string) error {
	paths, err := expandInputs(args, imageFormats...)
	if err != nil {
		return err
	}

	if tokensDir != "" {
		if err := os.MkdirAll(tokensDir, 0o755); err != nil {
			return err
		}
	}

	rec, release, err := newRecognizer(cmd.Context(), cfg.OCR)
	if err != nil {
		return err
	}
	defer release()

	for _, path := range paths {
		tokens, err := newPipeline(path, rec).Tokens(cmd.Context())
		if err != nil {
			return err
		}

		out := tokensPath(path, tokensDir)
		if err := writeTo(nil, out, func(w io.Writer) error {
			return ocr.WriteTokens(w, tokens)
		}); err != nil {
			return err
		}
		log.Info("tokens written",
			slog.String("image", path),
			slog.String("output", out),
			slog.Int("tokens", len(tokens)))
		cmd.Println(out)
	}
	return nil
}

// tokensPath returns NAME.json for image NAME.ext, in dir when given.
func tokensPath(image, dir string) string {
	name := strings.TrimSuffix(filepath.Base(image), filepath.Ext(image)) + ".json"
	if dir == "" {
		dir = filepath.Dir(image)
	}
	return filepath.Join(dir, name)
}
