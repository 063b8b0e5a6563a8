package imaging

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"testing"
)

func TestOverlay(t *testing.T) {
	buf := solidBuffer(100, 80, 255, 255, 255, 255)
	boxes := []Box{
		{X: 10, Y: 10, Width: 40, Height: 30, Label: "1"},
		{X: 90, Y: 70, Width: 40, Height: 40},
	}

	result, err := Overlay(buf, boxes, "#00FF00")
	if err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}
	if result.BoxCount != 2 {
		t.Errorf("BoxCount = %d, want 2", result.BoxCount)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType = %q", result.MimeType)
	}

	data, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("invalid PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 80 {
		t.Errorf("dimensions: got %dx%d, want 100x80", b.Dx(), b.Dy())
	}

	r, g, b, _ := img.At(30, 39).RGBA()
	if r>>8 != 0 || g>>8 != 255 || b>>8 != 0 {
		t.Errorf("bottom outline pixel: got (%d,%d,%d), want green", r>>8, g>>8, b>>8)
	}
	r, g, b, _ = img.At(30, 25).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("interior pixel should be untouched, got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
	r, _, _, _ = img.At(11, 11).RGBA()
	if r>>8 == 255 {
		t.Error("label background was not drawn")
	}
}

func TestOverlay_DoesNotModifySource(t *testing.T) {
	buf := solidBuffer(20, 20, 255, 255, 255, 255)
	before := append([]byte(nil), buf.Pix...)

	if _, err := Overlay(buf, []Box{{X: 0, Y: 0, Width: 20, Height: 20, Label: "12"}}, "#FF0000"); err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}
	if !bytes.Equal(before, buf.Pix) {
		t.Error("Overlay modified the source buffer")
	}
}

func TestOverlay_InvalidColorFallsBack(t *testing.T) {
	buf := solidBuffer(20, 20, 255, 255, 255, 255)

	result, err := Overlay(buf, []Box{{X: 2, Y: 2, Width: 10, Height: 10}}, "nope")
	if err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}
	data, _ := base64.StdEncoding.DecodeString(result.ImageBase64)
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("invalid PNG: %v", err)
	}
	r, g, b, _ := img.At(2, 5).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("fallback outline: got (%d,%d,%d), want red", r>>8, g>>8, b>>8)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		input   string
		wantA   uint8
		wantErr bool
	}{
		{"#FF0000", 255, false},
		{"FF000080", 0x80, false},
		{"#FFF", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, err := parseHexColor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseHexColor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && c.A != tt.wantA {
				t.Errorf("alpha = %d, want %d", c.A, tt.wantA)
			}
		})
	}
}
