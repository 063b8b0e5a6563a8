package imaging

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is an exact 8-bit RGB triple. Alpha is never part of an extracted color.
//
// Colors marshal to JSON as "#RRGGBB" and unmarshal from either "#RRGGBB",
// "#RGB" or "rgb(r,g,b)".
type Color struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// Common reference colors.
var (
	White = Color{R: 255, G: 255, B: 255}
	Black = Color{R: 0, G: 0, B: 0}
	Gray  = Color{R: 128, G: 128, B: 128}
)

// MaxRGBDistance is the Euclidean distance between black and white, sqrt(3*255²).
var MaxRGBDistance = math.Sqrt(3 * 255 * 255)

var rgbPattern = regexp.MustCompile(`^rgba?\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*(?:,\s*[\d.]+\s*)?\)$`)

// Hex returns the color as "#RRGGBB".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// String returns the CSS functional form "rgb(r,g,b)".
func (c Color) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// IsColorString reports whether s looks like a color literal this package
// understands: a leading '#' or an rgb()/rgba() function.
func IsColorString(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "#") || strings.HasPrefix(strings.ToLower(s), "rgb")
}

// ParseColor parses "#RRGGBB", "#RGB", "rgb(r,g,b)" or "rgba(r,g,b,a)".
// Any alpha component is discarded.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(strings.ToLower(s))
		if err != nil {
			return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		r, g, b := c.RGB255()
		return Color{R: r, G: g, B: b}, nil
	}

	m := rgbPattern.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return Color{}, fmt.Errorf("unrecognized color %q", s)
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(m[i+1])
		if err != nil || v > 255 {
			return Color{}, fmt.Errorf("channel out of range in %q", s)
		}
		ch[i] = uint8(v)
	}
	return Color{R: ch[0], G: ch[1], B: ch[2]}, nil
}

// Colorful converts to a go-colorful color for color-space math.
func (c Color) Colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Distance returns the Euclidean RGB distance to o on the 0-255 scale,
// so the result lies in [0, MaxRGBDistance].
func (c Color) Distance(o Color) float64 {
	return c.Colorful().DistanceRgb(o.Colorful()) * 255
}

// Brightness returns perceived brightness using ITU-R BT.601 weights:
// 0.299*R + 0.587*G + 0.114*B, in the range 0-255.
func (c Color) Brightness() float64 {
	return (float64(c.R)*299 + float64(c.G)*587 + float64(c.B)*114) / 1000
}

// Adjust scales every channel by (1 + factor), rounding and clamping each
// result to [0,255]. A factor of -0.1 darkens by 10%, 0.1 lightens by 10%.
func (c Color) Adjust(factor float64) Color {
	scale := func(v uint8) uint8 {
		f := float64(v) + float64(v)*factor
		return uint8(math.Round(math.Max(0, math.Min(255, f))))
	}
	return Color{R: scale(c.R), G: scale(c.G), B: scale(c.B)}
}

// WithinChannel reports whether every channel of o differs from c by less than limit.
func (c Color) WithinChannel(o Color, limit int) bool {
	return absDiff(c.R, o.R) < limit && absDiff(c.G, o.G) < limit && absDiff(c.B, o.B) < limit
}

// ManhattanAverage returns (|dR|+|dG|+|dB|)/3.
func (c Color) ManhattanAverage(o Color) float64 {
	return float64(absDiff(c.R, o.R)+absDiff(c.G, o.G)+absDiff(c.B, o.B)) / 3
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
