//go:build !cgo

package ocr

import (
	"context"
	"image"
)

// TesseractOracle is unavailable in builds without cgo.
type TesseractOracle struct {
	cfg Config
}

// NewTesseractOracle creates an oracle whose calls all fail.
func NewTesseractOracle(cfg Config) *TesseractOracle {
	return &TesseractOracle{cfg: cfg}
}

// HasText always returns ErrUnavailable.
func (o *TesseractOracle) HasText(context.Context, image.Image) (bool, error) {
	return false, ErrUnavailable
}

// Typography returns the default scale and ErrUnavailable.
func (o *TesseractOracle) Typography(context.Context, image.Image) (Typography, error) {
	return DefaultTypography(), ErrUnavailable
}

// Recognize always returns ErrUnavailable.
func (o *TesseractOracle) Recognize(context.Context, image.Image, bool) (Recognition, error) {
	return Recognition{}, ErrUnavailable
}

// GetInfo reports that OCR is not compiled in.
func GetInfo() Info {
	return Info{Available: false, Error: "built without cgo", Backend: "none"}
}
