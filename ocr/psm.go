package ocr

// PageSegMode represents page segmentation modes for Tesseract.
// These control how Tesseract analyzes the page layout.
type PageSegMode int

// Page segmentation modes (values match Tesseract's own).
const (
	PSM_AUTO            PageSegMode = 3  // Fully automatic (default)
	PSM_SINGLE_COLUMN   PageSegMode = 4  // Single column of variable sizes
	PSM_SINGLE_BLOCK    PageSegMode = 6  // Single uniform block of text
	PSM_SPARSE_TEXT     PageSegMode = 11 // Find as much text as possible
	PSM_SPARSE_TEXT_OSD PageSegMode = 12 // Sparse text with OSD
)
