package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	"golang.org/x/sync/semaphore"
)

// ErrUnavailable is returned when the OCR engine cannot be used.
var ErrUnavailable = errors.New("ocr engine unavailable")

// charWhitelist limits recognition to the characters UI labels usually hold.
const charWhitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789 "

// Config controls the Tesseract client.
type Config struct {
	// Language is a Tesseract language code such as "eng".
	Language string `yaml:"language" json:"language" validate:"required"`

	// TessdataPrefix overrides where language data is read from.
	TessdataPrefix string `yaml:"tessdata_prefix" json:"tessdataPrefix"`

	// MinConfidence is the mean word confidence (0-100) that must be
	// exceeded for a region to count as containing text.
	MinConfidence float64 `yaml:"min_confidence" json:"minConfidence" validate:"gte=0,lte=100"`

	// MaxConcurrent caps recognitions in flight per oracle, counting runs
	// whose caller already gave up. Zero or less means 1.
	MaxConcurrent int `yaml:"max_concurrent" json:"maxConcurrent" validate:"gte=0,lte=64"`
}

// DefaultConfig returns English with a confidence floor of 60 and two
// concurrent recognitions.
func DefaultConfig() Config {
	return Config{Language: "eng", MinConfidence: 60, MaxConcurrent: 2}
}

// limiter runs recognitions with bounded concurrency. An engine call cannot
// be interrupted, so a run keeps its slot until it really finishes even when
// ctx ends first and the caller has moved on.
type limiter struct {
	sem *semaphore.Weighted
}

func newLimiter(n int) *limiter {
	return &limiter{sem: semaphore.NewWeighted(int64(max(1, n)))}
}

// do waits for a free slot, then runs fn and waits for its result. It
// returns ctx.Err() as soon as ctx ends, whether waiting or running.
func (l *limiter) do(ctx context.Context, fn func() (Recognition, error)) (Recognition, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return Recognition{}, err
	}

	type outcome struct {
		r   Recognition
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer l.sem.Release(1)
		r, err := fn()
		done <- outcome{r, err}
	}()

	select {
	case <-ctx.Done():
		return Recognition{}, ctx.Err()
	case out := <-done:
		return out.r, out.err
	}
}

// Word is one recognized word.
type Word struct {
	Text       string          `json:"text"`
	Confidence float64         `json:"confidence"` // 0-100
	Box        image.Rectangle `json:"box"`
}

// Recognition is the raw output of one OCR call.
type Recognition struct {
	Text  string `json:"text"`
	Words []Word `json:"words"`
}

// MeanConfidence averages the confidence of non-empty words, or returns 0.
func (r Recognition) MeanConfidence() float64 {
	total, n := 0.0, 0
	for _, w := range r.Words {
		if strings.TrimSpace(w.Text) == "" {
			continue
		}
		total += w.Confidence
		n++
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// HasText applies the text-presence rule to a recognition result.
func (r Recognition) HasText(minConfidence float64) bool {
	return strings.TrimSpace(r.Text) != "" && r.MeanConfidence() > minConfidence
}

// Typography is a font size scale estimated from a screenshot.
type Typography struct {
	FontFamily    map[string]string `json:"fontFamily"`
	FontSize      map[string]string `json:"fontSize"`
	FontWeight    map[string]string `json:"fontWeight"`
	LineHeight    map[string]string `json:"lineHeight"`
	LetterSpacing map[string]string `json:"letterSpacing"`
}

// EstimateTypography derives a font size scale from the heights of words
// recognized with confidence above minConfidence. With no such words the
// base size is 16px.
func EstimateTypography(r Recognition, minConfidence float64) Typography {
	total, n := 0.0, 0
	for _, w := range r.Words {
		if w.Confidence > minConfidence {
			total += float64(w.Box.Dy())
			n++
		}
	}
	base := 16.0
	if n > 0 {
		base = total / float64(n)
	}

	px := func(f float64) string { return fmt.Sprintf("%dpx", int(math.Round(base*f))) }
	return Typography{
		FontFamily: map[string]string{
			"primary":   "Inter, system-ui, sans-serif",
			"secondary": "Georgia, serif",
			"mono":      "Fira Code, monospace",
		},
		FontSize: map[string]string{
			"xs":   "12px",
			"sm":   "14px",
			"base": px(1),
			"lg":   px(1.125),
			"xl":   px(1.25),
			"2xl":  px(1.5),
			"3xl":  px(1.875),
		},
		FontWeight:    map[string]string{"normal": "400", "medium": "500", "semibold": "600", "bold": "700"},
		LineHeight:    map[string]string{"tight": "1.25", "normal": "1.5", "relaxed": "1.75"},
		LetterSpacing: map[string]string{"tight": "-0.025em", "normal": "0", "wide": "0.025em"},
	}
}

// DefaultTypography is the scale used when OCR cannot run.
func DefaultTypography() Typography {
	return EstimateTypography(Recognition{}, 0)
}

// Info describes the OCR subsystem.
type Info struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
	Backend   string `json:"backend"`
}
