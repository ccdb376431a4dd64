package ocr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Azure/azure-sdk-for-go/services/cognitiveservices/v3.0/computervision"
	"github.com/Azure/go-autorest/autorest"

	"github.com/tsawler/ledger/model"
)

// Azure recognizes printed text with Azure Computer Vision.
type Azure struct {
	client   computervision.BaseClient
	language computervision.OcrLanguages
}

// NewAzure creates an Azure recognizer for the given resource endpoint and
// subscription key. An empty language lets the service detect it.
func NewAzure(endpoint, apiKey, language string) *Azure {
	client := computervision.New(endpoint)
	client.Authorizer = autorest.NewCognitiveServicesAuthorizer(apiKey)

	lang := computervision.OcrLanguagesUnk
	if language != "" {
		lang = computervision.OcrLanguages(language)
	}
	return &Azure{client: client, language: lang}
}

// Recognize sends one image and returns its word tokens.
func (a *Azure) Recognize(ctx context.Context, image []byte) ([]model.Token, error) {
	result, err := a.client.RecognizePrintedTextInStream(ctx, true, io.NopCloser(bytes.NewReader(image)), a.language)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}
	return azureTokens(result)
}

// azureTokens flattens regions, lines and words into tokens.
func azureTokens(result computervision.OcrResult) ([]model.Token, error) {
	var tokens []model.Token
	if result.Regions == nil {
		return nil, ErrNoText
	}
	for _, region := range *result.Regions {
		if region.Lines == nil {
			continue
		}
		for _, line := range *region.Lines {
			if line.Words == nil {
				continue
			}
			for _, word := range *line.Words {
				if word.Text == nil || word.BoundingBox == nil {
					continue
				}
				box, err := parseAzureBox(*word.BoundingBox)
				if err != nil {
					return nil, err
				}
				tokens = append(tokens, model.Token{Text: *word.Text, Box: box.Quad()})
			}
		}
	}

	if len(tokens) == 0 {
		return nil, ErrNoText
	}
	return tokens, nil
}

// parseAzureBox parses the service's "left,top,width,height" string.
func parseAzureBox(s string) (model.BBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return model.BBox{}, fmt.Errorf("invalid bounding box %q", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return model.BBox{}, fmt.Errorf("invalid bounding box %q: %w", s, err)
		}
		v[i] = n
	}
	return model.NewBBox(v[0], v[1], v[2], v[3]), nil
}
