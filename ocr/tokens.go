package ocr

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tsawler/ledger/model"
)

// WriteTokens stores tokens as an indented JSON array of
// {"text": ..., "box": [[x,y] x4]} objects.
func WriteTokens(w io.Writer, tokens []model.Token) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tokens); err != nil {
		return fmt.Errorf("encoding tokens: %w", err)
	}
	return nil
}

// ReadTokens loads tokens written by WriteTokens.
func ReadTokens(r io.Reader) ([]model.Token, error) {
	var tokens []model.Token
	if err := json.NewDecoder(r).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("decoding tokens: %w", err)
	}
	return tokens, nil
}
