//go:build cgo

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// TesseractOracle recognizes text with a fresh gosseract client per call,
// so one oracle can serve concurrent detections.
type TesseractOracle struct {
	cfg     Config
	limiter *limiter
}

// NewTesseractOracle creates an oracle. Nothing is loaded until first use.
func NewTesseractOracle(cfg Config) *TesseractOracle {
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	return &TesseractOracle{cfg: cfg, limiter: newLimiter(cfg.MaxConcurrent)}
}

// HasText implements detection.TextOracle.
func (o *TesseractOracle) HasText(ctx context.Context, img image.Image) (bool, error) {
	r, err := o.Recognize(ctx, img, true)
	if err != nil {
		return false, err
	}
	return r.HasText(o.cfg.MinConfidence), nil
}

// Typography estimates a font size scale from a whole screenshot.
func (o *TesseractOracle) Typography(ctx context.Context, img image.Image) (Typography, error) {
	r, err := o.Recognize(ctx, img, false)
	if err != nil {
		return DefaultTypography(), err
	}
	return EstimateTypography(r, o.cfg.MinConfidence), nil
}

// Recognize runs OCR on img. When whitelist is set, only ASCII letters,
// digits and spaces are recognized.
//
// Tesseract calls cannot be interrupted. If ctx ends first the call returns
// ctx.Err() immediately and the recognition finishes in the background,
// still counted against Config.MaxConcurrent.
func (o *TesseractOracle) Recognize(ctx context.Context, img image.Image, whitelist bool) (Recognition, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Recognition{}, fmt.Errorf("failed to encode image: %w", err)
	}
	return o.limiter.do(ctx, func() (Recognition, error) {
		return o.recognize(buf.Bytes(), whitelist)
	})
}

func (o *TesseractOracle) recognize(data []byte, whitelist bool) (Recognition, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if o.cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(o.cfg.TessdataPrefix); err != nil {
			return Recognition{}, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(o.cfg.Language); err != nil {
		return Recognition{}, fmt.Errorf("failed to set language: %w", err)
	}
	if whitelist {
		if err := client.SetWhitelist(charWhitelist); err != nil {
			return Recognition{}, fmt.Errorf("failed to set whitelist: %w", err)
		}
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return Recognition{}, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return Recognition{}, fmt.Errorf("OCR failed: %w", err)
	}

	// Word boxes are best effort; the text alone still answers HasText
	// with zero confidence.
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return Recognition{Text: text, Words: []Word{}}, nil
	}

	words := make([]Word, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		words = append(words, Word{Text: box.Word, Confidence: box.Confidence, Box: box.Box})
	}
	return Recognition{Text: text, Words: words}, nil
}

// GetInfo reports whether Tesseract can be used.
func GetInfo() Info {
	client := gosseract.NewClient()
	defer client.Close()

	version := client.Version()
	if version == "" {
		return Info{Available: false, Error: ErrUnavailable.Error(), Backend: "gosseract"}
	}
	return Info{Available: true, Version: version, Backend: "gosseract"}
}
