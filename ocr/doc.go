// Package ocr turns a scanned ledger image into positioned text tokens.
//
// Every backend implements [Recognizer] and returns one [model.Token] per
// recognized word, with its four-corner bounding box in image pixels:
//
//   - [Vision]: Google Cloud Vision TEXT_DETECTION.
//   - [Azure]: Azure Computer Vision printed-text OCR.
//   - [Tesseract]: a local Tesseract engine via gosseract. It requires the
//     "ocr" build tag and Tesseract installed on the system; without the tag
//     every call returns [ErrOCRNotEnabled].
//   - [HOCR]: reads hOCR output produced offline by any engine.
//
// Remote backends can be wrapped with [NewRateLimited]. Recognized tokens
// can be stored as JSON with [WriteTokens] and read back with [ReadTokens],
// so a page is only sent to a paid service once.
//
// To build with Tesseract on macOS:
//
//	brew install tesseract
//	go build -tags ocr ./...
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr libtesseract-dev
package ocr
