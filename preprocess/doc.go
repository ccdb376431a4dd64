// Package preprocess prepares ledger scans for OCR.
//
// Old ledger pages are faded, yellowed and often photographed rather than
// scanned. [Enhance] runs a fixed chain of adjustments (grayscale, contrast,
// sharpen, brightness, gamma), optionally trimming a margin and upscaling
// small images. [Prepare] decodes PNG, JPEG, TIFF, BMP or GIF input, applies
// the chain and re-encodes the result as PNG for an OCR backend.
//
// Every step can be switched off through [Config]; a zero value for an
// amount skips that step.
package preprocess
