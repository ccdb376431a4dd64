package model

// Token is one OCR-recognised text fragment with its four-corner bounding box.
// Tokens are immutable once produced by a recognizer.
type Token struct {
	Text string `json:"text"`
	Box  Quad   `json:"box"`
}

// NewToken creates a token from text and an axis-aligned rectangle.
func NewToken(text string, x0, y0, x1, y1 int) Token {
	return Token{Text: text, Box: NewQuadFromRect(x0, y0, x1, y1)}
}

// Top returns the Y coordinate of the top-left corner, the value used for
// row grouping.
func (t Token) Top() int {
	return t.Box.TopLeft().Y
}

// Left returns the X coordinate of the top-left corner, the value used for
// ordering tokens within a row.
func (t Token) Left() int {
	return t.Box.TopLeft().X
}

// Right returns the X coordinate of the top-right corner, the value used as
// the right edge when measuring gaps between tokens.
func (t Token) Right() int {
	return t.Box.TopRight().X
}
