package format

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFormat_String(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{PNG, "PNG"},
		{JPEG, "JPEG"},
		{TIFF, "TIFF"},
		{BMP, "BMP"},
		{GIF, "GIF"},
		{Tokens, "Tokens"},
		{HOCR, "hOCR"},
		{CSV, "CSV"},
		{XLSX, "XLSX"},
		{Unknown, "Unknown"},
		{Format(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.format.String(); got != tt.want {
			t.Errorf("Format(%d).String() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestFormat_Extension(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{PNG, ".png"},
		{JPEG, ".jpg"},
		{TIFF, ".tif"},
		{Tokens, ".json"},
		{HOCR, ".hocr"},
		{CSV, ".csv"},
		{XLSX, ".xlsx"},
		{Unknown, ""},
	}

	for _, tt := range tests {
		if got := tt.format.Extension(); got != tt.want {
			t.Errorf("Format(%d).Extension() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestFormat_Classes(t *testing.T) {
	for _, f := range []Format{PNG, JPEG, TIFF, BMP, GIF} {
		if !f.IsImage() || f.IsTable() {
			t.Errorf("%v should be an image", f)
		}
	}
	for _, f := range []Format{CSV, XLSX} {
		if f.IsImage() || !f.IsTable() {
			t.Errorf("%v should be a table", f)
		}
	}
	for _, f := range []Format{Tokens, HOCR, Unknown} {
		if f.IsImage() || f.IsTable() {
			t.Errorf("%v should be neither image nor table", f)
		}
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
	}{
		{"page.png", PNG},
		{"page.PNG", PNG},
		{"page.jpg", JPEG},
		{"page.JPEG", JPEG},
		{"page.tif", TIFF},
		{"page.Tiff", TIFF},
		{"page.bmp", BMP},
		{"page.gif", GIF},
		{"page.json", Tokens},
		{"page.hocr", HOCR},
		{"page.html", HOCR},
		{"ledger.csv", CSV},
		{"ledger.txt", CSV},
		{"ledger.XLSX", XLSX},
		{"ledger.pdf", Unknown},
		{"ledger", Unknown},
		{"", Unknown},
		{"/path/to/1850/page-003.tif", TIFF},
	}

	for _, tt := range tests {
		if got := Detect(tt.filename); got != tt.want {
			t.Errorf("Detect(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestDetectFromMagic(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{
			name: "PNG signature",
			data: []byte("\x89PNG\r\n\x1a\n\x00\x00"),
			want: PNG,
		},
		{
			name: "JPEG SOI",
			data: []byte{0xFF, 0xD8, 0xFF, 0xE0},
			want: JPEG,
		},
		{
			name: "TIFF little endian",
			data: []byte("II*\x00\x08\x00"),
			want: TIFF,
		},
		{
			name: "TIFF big endian",
			data: []byte("MM\x00*\x00\x00"),
			want: TIFF,
		},
		{
			name: "BMP header",
			data: []byte("BM\x36\x00\x00\x00\x00\x00\x00\x00\x36\x00\x00\x00"),
			want: BMP,
		},
		{
			name: "text starting with BM",
			data: []byte("BMW;1850;Idem;Madrid"),
			want: Unknown,
		},
		{
			name: "GIF",
			data: []byte("GIF89a"),
			want: GIF,
		},
		{
			name: "token JSON",
			data: []byte("\n  [{\"text\": \"a\"}]"),
			want: Tokens,
		},
		{
			name: "hOCR",
			data: []byte("<!DOCTYPE html>\n<html><body><div class='ocr_page'>"),
			want: HOCR,
		},
		{
			name: "plain HTML is not hOCR",
			data: []byte("<html><head>"),
			want: Unknown,
		},
		{
			name: "ZIP needs further inspection",
			data: []byte{0x50, 0x4B, 0x03, 0x04, 0x00, 0x00, 0x00, 0x00},
			want: Unknown,
		},
		{
			name: "CSV",
			data: []byte("nombre;año;oficio\n"),
			want: Unknown,
		},
		{
			name: "empty data",
			data: []byte{},
			want: Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFromMagic(tt.data); got != tt.want {
				t.Errorf("DetectFromMagic() = %v, want %v", got, tt.want)
			}
		})
	}
}

// createZip builds an in-memory archive containing the named empty files.
func createZip(t *testing.T, names ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		if _, err := zw.Create(name); err != nil {
			t.Fatalf("zip create: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func TestDetectFromReader_XLSX(t *testing.T) {
	data := createZip(t, "[Content_Types].xml", "xl/workbook.xml")

	format, err := DetectFromReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("DetectFromReader() error = %v", err)
	}
	if format != XLSX {
		t.Errorf("DetectFromReader() = %v, want XLSX", format)
	}
}

func TestDetectFromReader_OtherZip(t *testing.T) {
	data := createZip(t, "word/document.xml")

	format, err := DetectFromReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("DetectFromReader() error = %v", err)
	}
	if format != Unknown {
		t.Errorf("DetectFromReader() = %v, want Unknown", format)
	}
}

func TestDetectFromReader_PNG(t *testing.T) {
	data := []byte("\x89PNG\r\n\x1a\nrest")

	format, err := DetectFromReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("DetectFromReader() error = %v", err)
	}
	if format != PNG {
		t.Errorf("DetectFromReader() = %v, want PNG", format)
	}
}

func TestDetectFile(t *testing.T) {
	dir := t.TempDir()

	write := func(name string, data []byte) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}

	tests := []struct {
		path string
		want Format
	}{
		// Content wins over a misleading extension
		{write("scan.jpg", []byte("\x89PNG\r\n\x1a\n")), PNG},
		{write("ledger.csv", []byte("Ana;1850\n")), CSV},
		{write("tokens.dat", []byte("[]")), Tokens},
	}

	for _, tt := range tests {
		got, err := DetectFile(tt.path)
		if err != nil {
			t.Errorf("DetectFile(%q) error = %v", tt.path, err)
			continue
		}
		if got != tt.want {
			t.Errorf("DetectFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}

	if _, err := DetectFile(write("notes.pdf", []byte("%PDF-1.4"))); !errors.Is(err, ErrUnsupported) {
		t.Errorf("DetectFile(pdf) error = %v, want ErrUnsupported", err)
	}
	if _, err := DetectFile(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("DetectFile() should fail on a missing file")
	}
}
