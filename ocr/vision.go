package ocr

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"

	"github.com/tsawler/ledger/model"
)

// Vision recognizes text with the Google Cloud Vision TEXT_DETECTION feature.
type Vision struct {
	service       *vision.Service
	languageHints []string
	maxResults    int64
}

// NewVision creates a Vision recognizer. Authentication and endpoint are
// taken from opts; with none, Application Default Credentials are used.
func NewVision(ctx context.Context, opts ...option.ClientOption) (*Vision, error) {
	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create vision service: %w", err)
	}
	return &Vision{service: svc, maxResults: 5}, nil
}

// NewVisionFromCredentials creates a Vision recognizer authenticated with a
// service-account key file's JSON content.
func NewVisionFromCredentials(ctx context.Context, credentialsJSON []byte, opts ...option.ClientOption) (*Vision, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, vision.CloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	opts = append([]option.ClientOption{option.WithTokenSource(creds.TokenSource)}, opts...)
	return NewVision(ctx, opts...)
}

// SetLanguageHints passes BCP-47 language hints (e.g. "es") to the service.
func (v *Vision) SetLanguageHints(hints ...string) {
	v.languageHints = hints
}

// Recognize sends one image and returns its word tokens. The first text
// annotation, which covers the whole page, is dropped.
func (v *Vision) Recognize(ctx context.Context, image []byte) ([]model.Token, error) {
	req := &vision.AnnotateImageRequest{
		Image: &vision.Image{Content: base64.StdEncoding.EncodeToString(image)},
		Features: []*vision.Feature{
			{Type: "TEXT_DETECTION", MaxResults: v.maxResults},
		},
	}
	if len(v.languageHints) > 0 {
		req.ImageContext = &vision.ImageContext{LanguageHints: v.languageHints}
	}

	resp, err := v.service.Images.Annotate(&vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{req},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("annotate image: %w", err)
	}

	if len(resp.Responses) == 0 {
		return nil, ErrNoText
	}
	first := resp.Responses[0]
	if first.Error != nil {
		return nil, fmt.Errorf("vision: %s (code %d)", first.Error.Message, first.Error.Code)
	}

	return visionTokens(first.TextAnnotations)
}

// visionTokens converts word annotations to tokens, skipping element zero.
func visionTokens(annotations []*vision.EntityAnnotation) ([]model.Token, error) {
	if len(annotations) < 2 {
		return nil, ErrNoText
	}

	tokens := make([]model.Token, 0, len(annotations)-1)
	for _, a := range annotations[1:] {
		text := strings.TrimSpace(a.Description)
		if text == "" {
			continue
		}
		var vertices []*vision.Vertex
		if a.BoundingPoly != nil {
			vertices = a.BoundingPoly.Vertices
		}
		tokens = append(tokens, model.Token{Text: text, Box: quadFromVertices(vertices)})
	}

	if len(tokens) == 0 {
		return nil, ErrNoText
	}
	return tokens, nil
}

// quadFromVertices keeps the service's corner order when all four corners
// are present and falls back to the bounding rectangle otherwise. Vision
// omits zero coordinates from its JSON, which decode as 0.
func quadFromVertices(vs []*vision.Vertex) model.Quad {
	var q model.Quad
	if len(vs) == 4 {
		for i, v := range vs {
			if v != nil {
				q[i] = model.Point{X: int(v.X), Y: int(v.Y)}
			}
		}
		return q
	}

	first := true
	var x0, y0, x1, y1 int
	for _, v := range vs {
		if v == nil {
			continue
		}
		x, y := int(v.X), int(v.Y)
		if first {
			x0, y0, x1, y1 = x, y, x, y
			first = false
			continue
		}
		x0, y0 = min(x0, x), min(y0, y)
		x1, y1 = max(x1, x), max(y1, y)
	}
	return model.NewQuadFromRect(x0, y0, x1, y1)
}
