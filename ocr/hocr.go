package ocr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/ledger/model"
)

// HOCR is a Recognizer over hOCR documents: the "image" it receives is the
// hOCR markup an engine produced offline (for example `tesseract page.png
// page hocr`).
type HOCR struct{}

// Recognize parses hOCR markup into tokens.
func (HOCR) Recognize(ctx context.Context, data []byte) ([]model.Token, error) {
	tokens, err := ParseHOCR(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, ErrNoText
	}
	return tokens, nil
}

// ParseHOCR reads every ocrx_word element and its bbox property.
// Words without a bbox or without text are skipped.
func ParseHOCR(r io.Reader) ([]model.Token, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing hOCR: %w", err)
	}

	var tokens []model.Token
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "ocrx_word") {
			text := textContent(n)
			if x0, y0, x1, y1, ok := parseBBoxTitle(attr(n, "title")); ok && text != "" {
				tokens = append(tokens, model.NewToken(text, x0, y0, x1, y1))
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return tokens, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

// parseBBoxTitle extracts "bbox x0 y0 x1 y1" from an hOCR title attribute,
// e.g. "bbox 36 92 96 116; x_wconf 93".
func parseBBoxTitle(title string) (x0, y0, x1, y1 int, ok bool) {
	for _, prop := range strings.Split(title, ";") {
		fields := strings.Fields(prop)
		if len(fields) != 5 || fields[0] != "bbox" {
			continue
		}
		var v [4]int
		for i, f := range fields[1:] {
			n, err := strconv.Atoi(f)
			if err != nil {
				return 0, 0, 0, 0, false
			}
			v[i] = n
		}
		return v[0], v[1], v[2], v[3], true
	}
	return 0, 0, 0, 0, false
}
