// Package format detects the kind of input file a ledger run is given:
// scanned page images, cached OCR output (token JSON or hOCR), or already
// transcribed tables (CSV or XLSX).
package format

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupported is returned when a file's kind cannot be determined.
var ErrUnsupported = errors.New("format: unsupported file type")

// Format represents a supported input kind.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PNG indicates a PNG image.
	PNG
	// JPEG indicates a JPEG image.
	JPEG
	// TIFF indicates a TIFF image, the usual archive scan format.
	TIFF
	// BMP indicates a Windows bitmap.
	BMP
	// GIF indicates a GIF image.
	GIF
	// Tokens indicates a JSON token cache written by the ocr package.
	Tokens
	// HOCR indicates hOCR markup produced by an OCR engine.
	HOCR
	// CSV indicates a delimited transcription.
	CSV
	// XLSX indicates a Microsoft Excel (.xlsx) transcription.
	XLSX
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case PNG:
		return "PNG"
	case JPEG:
		return "JPEG"
	case TIFF:
		return "TIFF"
	case BMP:
		return "BMP"
	case GIF:
		return "GIF"
	case Tokens:
		return "Tokens"
	case HOCR:
		return "hOCR"
	case CSV:
		return "CSV"
	case XLSX:
		return "XLSX"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case PNG:
		return ".png"
	case JPEG:
		return ".jpg"
	case TIFF:
		return ".tif"
	case BMP:
		return ".bmp"
	case GIF:
		return ".gif"
	case Tokens:
		return ".json"
	case HOCR:
		return ".hocr"
	case CSV:
		return ".csv"
	case XLSX:
		return ".xlsx"
	default:
		return ""
	}
}

// IsImage reports whether the format is a raster image that needs OCR.
func (f Format) IsImage() bool {
	switch f {
	case PNG, JPEG, TIFF, BMP, GIF:
		return true
	}
	return false
}

// IsTable reports whether the format already holds rows of cells.
func (f Format) IsTable() bool {
	return f == CSV || f == XLSX
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png":
		return PNG
	case ".jpg", ".jpeg":
		return JPEG
	case ".tif", ".tiff":
		return TIFF
	case ".bmp":
		return BMP
	case ".gif":
		return GIF
	case ".json":
		return Tokens
	case ".hocr", ".html", ".htm":
		return HOCR
	case ".csv", ".txt":
		return CSV
	case ".xlsx":
		return XLSX
	default:
		return Unknown
	}
}

// DetectFromMagic checks file magic bytes to determine format.
// This provides more reliable detection than extension-based detection.
// Returns Unknown if the format cannot be determined from magic bytes alone;
// CSV never can.
func DetectFromMagic(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return PNG
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return JPEG
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return TIFF
	case bytes.HasPrefix(data, []byte("BM")) && len(data) >= 14 && bytes.Equal(data[6:10], []byte{0, 0, 0, 0}):
		// Bytes 6-9 of a bitmap file header are reserved zeros
		return BMP
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return GIF
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return Tokens
	}
	if detectHOCRMagic(trimmed) {
		return HOCR
	}

	return Unknown
}

// detectHOCRMagic checks for HTML or XHTML carrying hOCR class names.
func detectHOCRMagic(data []byte) bool {
	upper := strings.ToUpper(string(data[:min(4096, len(data))]))
	if !strings.HasPrefix(upper, "<!DOCTYPE HTML") && !strings.HasPrefix(upper, "<HTML") && !strings.HasPrefix(upper, "<?XML") {
		return false
	}
	return strings.Contains(upper, "OCR_PAGE") || strings.Contains(upper, "OCRX_WORD") || strings.Contains(upper, "OCR-SYSTEM")
}

// DetectFromReader inspects the content to determine format. ZIP archives
// are opened to tell XLSX apart from other containers.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, 4096)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	// ZIP magic: PK\x03\x04
	if bytes.HasPrefix(magic, []byte{0x50, 0x4B, 0x03, 0x04}) {
		return detectZIPFormat(r, size)
	}

	return DetectFromMagic(magic), nil
}

// detectZIPFormat reports XLSX when the archive has a workbook part.
func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}

	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "xl/") {
			return XLSX, nil
		}
	}

	return Unknown, nil
}

// DetectFile determines a file's format from its content, falling back to
// the extension. It returns ErrUnsupported when neither is conclusive.
func DetectFile(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return Unknown, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Unknown, err
	}

	format, err := DetectFromReader(f, info.Size())
	if err != nil {
		return Unknown, err
	}
	if format == Unknown {
		format = Detect(path)
	}
	if format == Unknown {
		return Unknown, ErrUnsupported
	}
	return format, nil
}
