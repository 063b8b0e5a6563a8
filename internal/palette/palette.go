// Package palette extracts a whole-image style palette.
//
// TopColors is a color quantizer: it downsamples the screenshot and counts
// colors in a 4-bit-per-channel histogram. ExtractStyle maps its output onto
// named design tokens.
package palette

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/anthonynsimon/bild/transform"

	"github.com/ironsheep/ui-inventory-mcp/internal/imaging"
)

// ErrNoColors is returned when an image has no opaque pixels to sample.
var ErrNoColors = errors.New("no opaque pixels to sample")

// maxSampleSide is the longest side an image is downsampled to before
// counting colors.
const maxSampleSide = 128

type bucket struct {
	r, g, b int
	count   int
}

// TopColors returns up to k representative colors, most common first.
//
// # Algorithm
//
//  1. Downsample so the longer side is at most 128px (nearest neighbor,
//     so no blended colors are introduced)
//  2. Bucket opaque pixels (alpha >= 128) by the top 4 bits of each channel
//  3. Report the mean color of each bucket, largest bucket first; equal
//     buckets keep scan order
func TopColors(buf *imaging.Buffer, k int) ([]imaging.Color, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []imaging.Color{}, nil
	}

	img := buf.Image()
	w, h := buf.Width, buf.Height
	if longest := max(w, h); longest > maxSampleSide {
		scale := float64(maxSampleSide) / float64(longest)
		w = max(1, int(float64(w)*scale))
		h = max(1, int(float64(h)*scale))
	}
	small := transform.Resize(img, w, h, transform.NearestNeighbor)

	index := make(map[int]int)
	buckets := make([]bucket, 0)
	for i := 0; i+3 < len(small.Pix); i += 4 {
		if small.Pix[i+3] < 128 {
			continue
		}
		r, g, b := int(small.Pix[i]), int(small.Pix[i+1]), int(small.Pix[i+2])
		key := (r>>4)<<8 | (g>>4)<<4 | b>>4
		j, ok := index[key]
		if !ok {
			j = len(buckets)
			index[key] = j
			buckets = append(buckets, bucket{})
		}
		buckets[j].r += r
		buckets[j].g += g
		buckets[j].b += b
		buckets[j].count++
	}
	if len(buckets) == 0 {
		return nil, ErrNoColors
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].count > buckets[j].count
	})

	n := min(k, len(buckets))
	colors := make([]imaging.Color, n)
	for i := 0; i < n; i++ {
		b := buckets[i]
		colors[i] = imaging.Color{
			R: uint8(math.Round(float64(b.r) / float64(b.count))),
			G: uint8(math.Round(float64(b.g) / float64(b.count))),
			B: uint8(math.Round(float64(b.b) / float64(b.count))),
		}
	}
	return colors, nil
}

// TextColors are the text tokens of a style.
type TextColors struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Muted     string `json:"muted"`
}

// Style is a set of named color tokens, all lowercase "#rrggbb".
type Style struct {
	Primary    string     `json:"primary"`
	Secondary  string     `json:"secondary"`
	Accent     string     `json:"accent"`
	Background string     `json:"background"`
	Surface    string     `json:"surface"`
	Text       TextColors `json:"text"`
	Border     string     `json:"border"`
	Palette    []string   `json:"palette"`
}

// Fallback tokens used when the palette is too short.
const (
	fallbackSecondary = "#6366f1"
	fallbackAccent    = "#f59e0b"
)

// DefaultStyle is returned when no colors can be extracted.
func DefaultStyle() Style {
	s := neutralStyle()
	s.Primary = "#3b82f6"
	s.Secondary = fallbackSecondary
	s.Accent = fallbackAccent
	s.Palette = []string{"#3b82f6", fallbackSecondary, fallbackAccent}
	return s
}

func neutralStyle() Style {
	return Style{
		Background: "#ffffff",
		Surface:    "#f9fafb",
		Text: TextColors{
			Primary:   "#111827",
			Secondary: "#6b7280",
			Muted:     "#9ca3af",
		},
		Border: "#e5e7eb",
	}
}

// ExtractStyle derives style tokens from the eight most common colors.
// It never fails: any quantizer error yields DefaultStyle and that error.
func ExtractStyle(buf *imaging.Buffer) (Style, error) {
	colors, err := TopColors(buf, 8)
	if err != nil {
		return DefaultStyle(), err
	}

	hexes := make([]string, len(colors))
	for i, c := range colors {
		hexes[i] = strings.ToLower(c.Hex())
	}

	s := neutralStyle()
	s.Primary = hexes[0]
	s.Secondary = fallbackSecondary
	if len(hexes) > 1 {
		s.Secondary = hexes[1]
	}
	s.Accent = fallbackAccent
	if len(hexes) > 2 {
		s.Accent = hexes[2]
	}
	s.Palette = hexes
	return s, nil
}

// Luminance returns the WCAG relative luminance of a color string, 0-1.
func Luminance(color string) (float64, error) {
	c, err := imaging.ParseColor(color)
	if err != nil {
		return 0, err
	}
	linear := func(v uint8) float64 {
		f := float64(v) / 255
		if f <= 0.03928 {
			return f / 12.92
		}
		return math.Pow((f+0.055)/1.055, 2.4)
	}
	return 0.2126*linear(c.R) + 0.7152*linear(c.G) + 0.0722*linear(c.B), nil
}
