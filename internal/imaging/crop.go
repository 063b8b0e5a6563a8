package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// Crop copies a rectangular area of the buffer into a new image.
//
// The rectangle is given as origin plus size. It is clipped to the buffer,
// and an error is returned if nothing remains after clipping.
func (b *Buffer) Crop(x, y, width, height int) (*image.NRGBA, error) {
	rect := image.Rect(x, y, x+width, y+height).Intersect(image.Rect(0, 0, b.Width, b.Height))
	if rect.Empty() {
		return nil, fmt.Errorf("crop region (%d,%d) %dx%d outside buffer bounds %dx%d",
			x, y, width, height, b.Width, b.Height)
	}
	return imaging.Crop(b.Image(), rect), nil
}

// CropPNG crops an area and encodes it as PNG bytes, for collaborators
// that only accept encoded images.
func (b *Buffer) CropPNG(x, y, width, height int, scale float64) ([]byte, error) {
	cropped, err := b.Crop(x, y, width, height)
	if err != nil {
		return nil, err
	}

	var img image.Image = cropped
	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		img = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}
	return buf.Bytes(), nil
}
