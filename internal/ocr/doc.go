// Package ocr answers "does this region contain text?" using Tesseract.
//
// TesseractOracle satisfies detection.TextOracle. It wraps the Tesseract OCR
// engine through gosseract/v2, which needs cgo and the native library.
// Builds without cgo get a stand-in whose calls all return ErrUnavailable,
// so detection falls back to its geometric heuristic.
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr libtesseract-dev
//   - macOS: brew install tesseract
//
// Language data files are required for each language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng (for English)
//
// # Text Presence
//
// A region has text when the recognized text is non-empty after trimming and
// the mean word confidence is above Config.MinConfidence (default 60 on
// Tesseract's 0-100 scale). Recognition is restricted to ASCII letters,
// digits and spaces.
//
// # Typography
//
// EstimateTypography turns word boxes from a whole screenshot into a font
// size scale. It falls back to a 16px base when nothing is read.
package ocr
