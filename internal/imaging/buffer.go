package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrEmptyBuffer is returned when a raster has zero width or height.
var ErrEmptyBuffer = errors.New("raster buffer has zero width or height")

// Buffer is a read-only view of an RGBA raster.
//
// Pix holds pixels in row-major order, four bytes per pixel (R, G, B, A),
// with no padding between rows. Alpha is straight (non-premultiplied), so the
// color channels of a half-transparent pixel keep their full values.
//
// A Buffer is never modified by the detection or validation code. Callers
// that share a Buffer between goroutines must not write to Pix while a
// detection pass is running.
type Buffer struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Pix    []byte `json:"-"`
}

// NewBuffer wraps an existing pixel slice.
//
// Returns ErrEmptyBuffer if either dimension is not positive, and an error if
// len(pix) does not equal 4*width*height. The slice is not copied.
func NewBuffer(width, height int, pix []byte) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyBuffer, width, height)
	}
	if len(pix) != 4*width*height {
		return nil, fmt.Errorf("pixel data length %d does not match %dx%d RGBA", len(pix), width, height)
	}
	return &Buffer{Width: width, Height: height, Pix: pix}, nil
}

// FromImage converts any decoded image into a Buffer.
//
// The conversion goes through imaging.Clone, which produces a tightly packed
// *image.NRGBA anchored at (0,0). That matches what a browser canvas returns
// from getImageData, so alpha thresholds behave the same way on both.
func FromImage(img image.Image) (*Buffer, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrEmptyBuffer)
	}
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	return NewBuffer(b.Dx(), b.Dy(), nrgba.Pix)
}

// Validate reports whether the buffer is usable for detection.
func (b *Buffer) Validate() error {
	if b == nil || b.Width <= 0 || b.Height <= 0 {
		return ErrEmptyBuffer
	}
	if len(b.Pix) < 4*b.Width*b.Height {
		return fmt.Errorf("pixel data length %d too short for %dx%d RGBA", len(b.Pix), b.Width, b.Height)
	}
	return nil
}

// offset returns the index of the red byte of pixel (x, y).
func (b *Buffer) offset(x, y int) int {
	return (y*b.Width + x) * 4
}

// Contains reports whether (x, y) lies inside the buffer.
func (b *Buffer) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width && y < b.Height
}

// RGBA returns the four channels of pixel (x, y).
// No bounds checking is performed; caller must ensure coordinates are valid.
func (b *Buffer) RGBA(x, y int) (r, g, bl, a uint8) {
	i := b.offset(x, y)
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]
}

// ColorAt returns the RGB color of pixel (x, y), dropping alpha.
func (b *Buffer) ColorAt(x, y int) Color {
	i := b.offset(x, y)
	return Color{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2]}
}

// Alpha returns the alpha channel of pixel (x, y).
func (b *Buffer) Alpha(x, y int) uint8 {
	return b.Pix[b.offset(x, y)+3]
}

// Gray returns the unweighted channel average (R+G+B)/3 of pixel (x, y).
func (b *Buffer) Gray(x, y int) float64 {
	i := b.offset(x, y)
	return (float64(b.Pix[i]) + float64(b.Pix[i+1]) + float64(b.Pix[i+2])) / 3
}

// Image returns an *image.NRGBA that shares the buffer's pixel memory.
// It must be treated as read-only.
func (b *Buffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: 4 * b.Width,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}
