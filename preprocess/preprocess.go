package preprocess

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
)

// Config holds the enhancement chain settings.
type Config struct {
	// Convert to grayscale first
	Grayscale bool

	// Percentage in [-100, 100]
	Contrast float64

	// Gaussian sigma; 0 disables sharpening
	Sharpen float64

	// Percentage in [-100, 100]
	Brightness float64

	// Gamma correction; 1 or 0 leaves the image unchanged
	Gamma float64

	// Fraction of width/height trimmed from every edge, in [0, 0.25]
	Margin float64

	// Images shorter than this are upscaled to it; 0 disables
	MinHeight int
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Grayscale:  true,
		Contrast:   30,
		Sharpen:    1.5,
		Brightness: 10,
		Gamma:      1.2,
		MinHeight:  1500,
	}
}

// Validate checks that every amount is within its range.
func (c Config) Validate() error {
	if c.Contrast < -100 || c.Contrast > 100 {
		return fmt.Errorf("contrast must be within [-100, 100], got %v", c.Contrast)
	}
	if c.Brightness < -100 || c.Brightness > 100 {
		return fmt.Errorf("brightness must be within [-100, 100], got %v", c.Brightness)
	}
	if c.Sharpen < 0 || c.Gamma < 0 {
		return fmt.Errorf("sharpen and gamma must be non-negative")
	}
	if c.Margin < 0 || c.Margin > 0.25 {
		return fmt.Errorf("margin must be within [0, 0.25], got %v", c.Margin)
	}
	if c.MinHeight < 0 {
		return fmt.Errorf("min height must be non-negative, got %d", c.MinHeight)
	}
	return nil
}

// Enhance applies the configured chain to img.
func Enhance(img image.Image, config Config) image.Image {
	out := imaging.Clone(img)

	if config.Margin > 0 {
		b := out.Bounds()
		dx := int(float64(b.Dx()) * config.Margin)
		dy := int(float64(b.Dy()) * config.Margin)
		out = imaging.Crop(out, image.Rect(dx, dy, b.Dx()-dx, b.Dy()-dy))
	}

	if config.MinHeight > 0 && out.Bounds().Dy() < config.MinHeight {
		out = imaging.Resize(out, 0, config.MinHeight, imaging.Lanczos)
	}

	if config.Grayscale {
		out = imaging.Grayscale(out)
	}
	if config.Contrast != 0 {
		out = imaging.AdjustContrast(out, config.Contrast)
	}
	if config.Sharpen > 0 {
		out = imaging.Sharpen(out, config.Sharpen)
	}
	if config.Brightness != 0 {
		out = imaging.AdjustBrightness(out, config.Brightness)
	}
	if config.Gamma > 0 && config.Gamma != 1 {
		out = imaging.AdjustGamma(out, config.Gamma)
	}

	return out
}

// Decode reads any supported image format, applying EXIF orientation.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// Prepare decodes data, enhances it and returns PNG bytes.
func Prepare(data []byte, config Config) ([]byte, error) {
	img, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, Enhance(img, config), imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	return buf.Bytes(), nil
}
