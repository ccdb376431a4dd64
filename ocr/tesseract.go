//go:build ocr

package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/tsawler/ledger/model"
)

// ErrClosed is returned by a Tesseract recognizer used after Close.
var ErrClosed = errors.New("ocr: tesseract client closed")

// Tesseract wraps a local Tesseract engine. A gosseract client is not safe
// for concurrent use, so calls are serialized.
type Tesseract struct {
	mu            sync.Mutex
	client        *gosseract.Client
	minConfidence float64
}

// NewTesseract creates a Tesseract recognizer.
// The recognizer should be closed when no longer needed to release resources.
func NewTesseract() (*Tesseract, error) {
	client := gosseract.NewClient()
	return &Tesseract{client: client}, nil
}

// Close releases OCR resources.
func (t *Tesseract) Close() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	return err
}

// SetLanguage sets the language(s) for OCR recognition.
// Multiple languages can be specified as a "+" separated string (e.g., "spa+eng").
func (t *Tesseract) SetLanguage(lang string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return ErrClosed
	}
	return t.client.SetLanguage(strings.Split(lang, "+")...)
}

// SetPageSegMode sets the page segmentation mode.
// Ledger pages usually work best with PSM_SPARSE_TEXT.
func (t *Tesseract) SetPageSegMode(mode PageSegMode) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return ErrClosed
	}
	return t.client.SetPageSegMode(gosseract.PageSegMode(mode))
}

// SetMinConfidence drops words Tesseract scored below c (0-100).
func (t *Tesseract) SetMinConfidence(c float64) {
	t.mu.Lock()
	t.minConfidence = c
	t.mu.Unlock()
}

// Recognize performs OCR on image data and returns one token per word.
func (t *Tesseract) Recognize(ctx context.Context, image []byte) ([]model.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return nil, ErrClosed
	}

	if err := t.client.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	tokens := make([]model.Token, 0, len(boxes))
	for _, b := range boxes {
		word := strings.TrimSpace(b.Word)
		if word == "" || b.Confidence < t.minConfidence {
			continue
		}
		tokens = append(tokens, model.NewToken(word, b.Box.Min.X, b.Box.Min.Y, b.Box.Max.X, b.Box.Max.Y))
	}

	if len(tokens) == 0 {
		return nil, ErrNoText
	}
	return tokens, nil
}
