package ocr

import (
	"context"
	"errors"

	"github.com/tsawler/ledger/model"
)

// ErrNoText is returned when a backend finds no words on the image.
var ErrNoText = errors.New("ocr: no text found")

// Recognizer extracts word tokens from encoded image data (PNG, JPEG, TIFF,
// etc.). Implementations must not include page-level summary annotations in
// the result.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) ([]model.Token, error)
}

// RecognizerFunc adapts a function to the Recognizer interface.
type RecognizerFunc func(ctx context.Context, image []byte) ([]model.Token, error)

// Recognize calls f.
func (f RecognizerFunc) Recognize(ctx context.Context, image []byte) ([]model.Token, error) {
	return f(ctx, image)
}
