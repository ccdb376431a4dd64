package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/tsawler/ledger"
	"github.com/tsawler/ledger/dataset"
	"github.com/tsawler/ledger/format"
	"github.com/tsawler/ledger/internal/config"
	"github.com/tsawler/ledger/ocr"
)

var imageFormats = []format.Format{format.PNG, format.JPEG, format.TIFF, format.BMP, format.GIF}

// newRecognizer builds the configured OCR backend. The returned function
// releases it.
func newRecognizer(ctx context.Context, c config.OCRConfig) (ocr.Recognizer, func() error, error) {
	var rec ocr.Recognizer
	release := func() error { return nil }

	switch c.Backend {
	case config.BackendTesseract:
		t, err := ocr.NewTesseract()
		if err != nil {
			return nil, nil, err
		}
		lang := c.Language
		if lang == "" {
			lang = "spa"
		}
		if err := t.SetLanguage(lang); err != nil {
			t.Close()
			return nil, nil, err
		}
		if err := t.SetPageSegMode(ocr.PageSegMode(c.PageSegMode)); err != nil {
			t.Close()
			return nil, nil, err
		}
		t.SetMinConfidence(c.MinConfidence)
		rec, release = t, t.Close

	case config.BackendVision:
		var (
			v   *ocr.Vision
			err error
		)
		if c.Credentials != "" {
			data, rerr := os.ReadFile(c.Credentials)
			if rerr != nil {
				return nil, nil, fmt.Errorf("failed to read credentials: %w", rerr)
			}
			v, err = ocr.NewVisionFromCredentials(ctx, data)
		} else {
			v, err = ocr.NewVision(ctx)
		}
		if err != nil {
			return nil, nil, err
		}
		if c.Language != "" {
			v.SetLanguageHints(c.Language)
		}
		rec = v

	case config.BackendAzure:
		rec = ocr.NewAzure(c.Endpoint, c.Key, c.Language)

	case config.BackendHOCR:
		rec = ocr.HOCR{}

	default:
		return nil, nil, fmt.Errorf("unknown OCR backend %q", c.Backend)
	}

	if c.Rate > 0 {
		rec = ocr.NewRateLimited(rec, c.Rate, c.Burst)
	}
	log.Debug("recognizer ready",
		slog.String("backend", c.Backend),
		slog.Float64("rate", c.Rate))
	return rec, release, nil
}

// newPipeline applies the loaded configuration to a file pipeline.
func newPipeline(path string, rec ocr.Recognizer) *ledger.Pipeline {
	p := ledger.Open(path).
		Logger(log).
		ClusterConfig(cfg.Tables()).
		HeaderRows(cfg.Columns.Skip).
		NormalizeConfig(cfg.Normalizer()).
		Delimiter(cfg.Delimiter())

	if rec != nil {
		p = p.WithRecognizer(rec)
	}
	if cfg.Preprocess.Enabled {
		p = p.Preprocess(cfg.Enhancement())
	} else {
		p = p.NoPreprocess()
	}

	if m, err := cfg.Mapping(); err == nil && m != nil {
		p = p.Columns(*m)
	} else if cfg.Columns.Header {
		p = p.DetectHeader()
	}
	return p
}

// expandInputs replaces directories with the files of the given kinds
// beneath them.
func expandInputs(args []string, kinds ...format.Format) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		found, err := dataset.Discover(arg, kinds...)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}
	return paths, nil
}

// collectSources extracts the raw rows of every input in order.
func collectSources(ctx context.Context, paths []string, rec ocr.Recognizer) ([]dataset.Source, error) {
	sources := make([]dataset.Source, 0, len(paths))
	for _, path := range paths {
		src, err := newPipeline(path, rec).Source(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		log.Info("source loaded",
			slog.String("source", src.ID),
			slog.Int("rows", len(src.Rows)))
		sources = append(sources, src)
	}
	return sources, nil
}
