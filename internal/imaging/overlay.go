package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Box is an outlined rectangle to draw on an overlay, with an optional
// numeric label drawn at its top-left corner.
type Box struct {
	X      int
	Y      int
	Width  int
	Height int
	Label  string
}

// OverlayResult contains the annotated image
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	BoxCount    int    `json:"box_count"`
}

// Overlay draws box outlines over a copy of the buffer and returns it as base64 PNG.
// The source buffer is not touched.
func Overlay(buf *Buffer, boxes []Box, colorHex string) (*OverlayResult, error) {
	bounds := image.Rect(0, 0, buf.Width, buf.Height)

	boxColor, err := parseHexColor(colorHex)
	if err != nil {
		boxColor = color.RGBA{255, 0, 0, 255} // Default: red
	}

	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, buf.Image(), bounds.Min, draw.Src)

	labelColor := color.RGBA{255, 255, 255, 255}
	bgColor := color.RGBA{0, 0, 0, 180}

	for _, b := range boxes {
		x2 := b.X + b.Width - 1
		y2 := b.Y + b.Height - 1
		for x := b.X; x <= x2; x++ {
			setClipped(result, x, b.Y, boxColor)
			setClipped(result, x, y2, boxColor)
		}
		for y := b.Y; y <= y2; y++ {
			setClipped(result, b.X, y, boxColor)
			setClipped(result, x2, y, boxColor)
		}
		if b.Label != "" {
			drawLabel(result, b.X+2, b.Y+2, b.Label, labelColor, bgColor)
		}
	}

	var out bytes.Buffer
	if err := png.Encode(&out, result); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &OverlayResult{
		Width:       buf.Width,
		Height:      buf.Height,
		ImageBase64: base64.StdEncoding.EncodeToString(out.Bytes()),
		MimeType:    "image/png",
		BoxCount:    len(boxes),
	}, nil
}

func setClipped(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

// drawLabel draws text in basicfont on a filled background with its top-left at x, y.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: img, Src: image.NewUniform(fg), Face: face}
	labelWidth := d.MeasureString(text).Ceil()

	for dy := -1; dy <= face.Height; dy++ {
		for dx := -1; dx <= labelWidth; dx++ {
			setClipped(img, x+dx, y+dy, bg)
		}
	}

	d.Dot = fixed.P(x, y+face.Ascent)
	d.DrawString(text)
}
