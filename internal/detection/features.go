package detection

import (
	"context"
	"image"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ironsheep/ui-inventory-mcp/internal/imaging"
	"github.com/ironsheep/ui-inventory-mcp/internal/logger"
)

// TextOracle reports whether an image contains readable text.
//
// Implementations may be slow or unavailable. An error means "unknown" and
// makes the measurer fall back to a geometric heuristic.
type TextOracle interface {
	HasText(ctx context.Context, img image.Image) (bool, error)
}

// Sampling windows for color extraction.
const (
	dominantWindow = 50
	dominantStride = 2
	paletteWindow  = 30
	paletteStride  = 3
	opaqueAlpha    = 128
)

// DefaultShadow is reported for every component. No exterior sampling is
// done, so the value is a fixed placeholder.
var DefaultShadow = Shadow{OffsetX: 0, OffsetY: 2, BlurRadius: 4, Color: "rgba(0,0,0,0.1)"}

// MeasurerConfig controls feature measurement.
type MeasurerConfig struct {
	// PaletteSize is the maximum number of palette colors kept.
	PaletteSize int
	// Fallback is the dominant color used when no opaque pixel is sampled.
	Fallback imaging.Color
	// OracleTimeout bounds each text oracle call. Zero means no extra limit.
	OracleTimeout time.Duration
}

// Features is everything measured for one region.
type Features struct {
	Colors     ColorFeatures
	HasText    bool
	TextSource TextSource
	Properties Properties
}

// Measurer computes color, text and geometric features of regions.
// It holds no per-call state and is safe for concurrent use.
type Measurer struct {
	cfg    MeasurerConfig
	oracle TextOracle
}

// NewMeasurer creates a measurer. oracle may be nil.
func NewMeasurer(cfg MeasurerConfig, oracle TextOracle) *Measurer {
	if cfg.PaletteSize <= 0 {
		cfg.PaletteSize = 5
	}
	return &Measurer{cfg: cfg, oracle: oracle}
}

// Measure samples a region of buf. All coordinates used internally are
// relative to the region's top-left corner.
func (m *Measurer) Measure(ctx context.Context, buf *imaging.Buffer, r Region) Features {
	hasText, source := m.hasText(ctx, buf, r)
	shadow := DefaultShadow
	pad := measurePadding(buf, r)

	return Features{
		Colors: ColorFeatures{
			Dominant: m.dominantColor(buf, r),
			Palette:  m.palette(buf, r),
		},
		HasText:    hasText,
		TextSource: source,
		Properties: Properties{
			Width:        r.Width,
			Height:       r.Height,
			BorderRadius: measureBorderRadius(buf, r),
			Padding:      pad,
			Border:       detectBorder(buf, r),
			Shadow:       &shadow,
		},
	}
}

func (m *Measurer) dominantColor(buf *imaging.Buffer, r Region) imaging.Color {
	counts := countColors(buf, r, dominantWindow, dominantStride)
	if len(counts) == 0 {
		return m.cfg.Fallback
	}
	return counts[0].color
}

func (m *Measurer) palette(buf *imaging.Buffer, r Region) []imaging.Color {
	counts := countColors(buf, r, paletteWindow, paletteStride)
	n := min(len(counts), m.cfg.PaletteSize)
	out := make([]imaging.Color, n)
	for i := 0; i < n; i++ {
		out[i] = counts[i].color
	}
	return out
}

type colorCount struct {
	color imaging.Color
	count int
}

// countColors buckets opaque pixels of the top-left window of r by exact RGB
// and returns the buckets by descending count. Equal counts keep first-seen order.
func countColors(buf *imaging.Buffer, r Region, window, stride int) []colorCount {
	index := make(map[imaging.Color]int)
	buckets := make([]colorCount, 0)

	maxY := r.Y + min(r.Height, window)
	maxX := r.X + min(r.Width, window)
	for y := r.Y; y < maxY; y += stride {
		for x := r.X; x < maxX; x += stride {
			if buf.Alpha(x, y) < opaqueAlpha {
				continue
			}
			c := buf.ColorAt(x, y)
			if i, ok := index[c]; ok {
				buckets[i].count++
				continue
			}
			index[c] = len(buckets)
			buckets = append(buckets, colorCount{color: c, count: 1})
		}
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].count > buckets[j].count
	})
	return buckets
}

// measureBorderRadius walks diagonally inward from each corner and takes the
// first offset whose pixel is opaque. The result is the rounded mean of the
// corners that produced a reading.
func measureBorderRadius(buf *imaging.Buffer, r Region) int {
	limit := min(20, float64(r.Width)/4, float64(r.Height)/4)

	corner := func(left, top bool) int {
		for d := 1; float64(d) <= limit; d++ {
			lx, ly := d, d
			if !left {
				lx = r.Width - 1 - d
			}
			if !top {
				ly = r.Height - 1 - d
			}
			if lx < 0 || ly < 0 || lx >= r.Width || ly >= r.Height {
				continue
			}
			if buf.Alpha(r.X+lx, r.Y+ly) > opaqueAlpha {
				return d
			}
		}
		return 0
	}

	total, valid := 0, 0
	for _, c := range [][2]bool{{true, true}, {false, true}, {true, false}, {false, false}} {
		if radius := corner(c[0], c[1]); radius > 0 {
			total += radius
			valid++
		}
	}
	if valid == 0 {
		return 0
	}
	return int(float64(total)/float64(valid) + 0.5)
}

// measurePadding finds the first row and first column holding an opaque
// pixel. Right and bottom copy the top value.
func measurePadding(buf *imaging.Buffer, r Region) Padding {
	top, left := 0, 0

rows:
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			if buf.Alpha(r.X+x, r.Y+y) > opaqueAlpha {
				top = y
				break rows
			}
		}
	}

cols:
	for x := 0; x < r.Width; x++ {
		for y := 0; y < r.Height; y++ {
			if buf.Alpha(r.X+x, r.Y+y) > opaqueAlpha {
				left = x
				break cols
			}
		}
	}

	return Padding{Top: top, Right: top, Bottom: top, Left: left}
}

// detectBorder reports a 1px solid border when every pixel of the top edge
// is within 10 per channel of the first one.
func detectBorder(buf *imaging.Buffer, r Region) *Border {
	first := buf.ColorAt(r.X, r.Y)
	for x := 1; x < r.Width; x++ {
		if !first.WithinChannel(buf.ColorAt(r.X+x, r.Y), 10) {
			return nil
		}
	}
	return &Border{Width: 1, Color: first, Style: "solid"}
}

func (m *Measurer) hasText(ctx context.Context, buf *imaging.Buffer, r Region) (bool, TextSource) {
	heuristic := r.Width > 50 && r.Height > 20
	if m.oracle == nil {
		return heuristic, TextSourceHeuristic
	}

	crop, err := buf.Crop(r.X, r.Y, r.Width, r.Height)
	if err != nil {
		return heuristic, TextSourceHeuristic
	}

	if m.cfg.OracleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.OracleTimeout)
		defer cancel()
	}

	found, err := m.oracle.HasText(ctx, crop)
	if err != nil {
		logger.L().Debug("text oracle unavailable, using heuristic",
			zap.Int("x", r.X), zap.Int("y", r.Y),
			zap.Int("width", r.Width), zap.Int("height", r.Height),
			zap.Error(err))
		return heuristic, TextSourceHeuristic
	}
	return found, TextSourceOracle
}
