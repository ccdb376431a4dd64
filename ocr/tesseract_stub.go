//go:build !ocr

package ocr

import (
	"context"
	"errors"

	"github.com/tsawler/ledger/model"
)

// ErrOCRNotEnabled is returned when Tesseract is used but support was not
// compiled in. Rebuild with -tags ocr to enable it.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Tesseract is a stub recognizer that returns errors for all operations.
type Tesseract struct{}

// NewTesseract returns an error indicating Tesseract support is not enabled.
// To enable it, rebuild with: go build -tags ocr
func NewTesseract() (*Tesseract, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op for the stub recognizer.
// It is safe to call on a nil recognizer.
func (t *Tesseract) Close() error {
	return nil
}

// SetLanguage returns an error indicating OCR support is not enabled.
func (t *Tesseract) SetLanguage(lang string) error {
	return ErrOCRNotEnabled
}

// SetPageSegMode returns an error indicating OCR support is not enabled.
func (t *Tesseract) SetPageSegMode(mode PageSegMode) error {
	return ErrOCRNotEnabled
}

// SetMinConfidence is a no-op for the stub recognizer.
func (t *Tesseract) SetMinConfidence(c float64) {}

// Recognize returns an error indicating OCR support is not enabled.
func (t *Tesseract) Recognize(ctx context.Context, image []byte) ([]model.Token, error) {
	return nil, ErrOCRNotEnabled
}
