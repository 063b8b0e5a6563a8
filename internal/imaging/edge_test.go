package imaging

import (
	"context"
	"errors"
	"testing"
)

// createRectBuffer paints a filled rectangle on a background.
func createRectBuffer(width, height int, bg, fg Color, rx, ry, rw, rh int) *Buffer {
	buf := solidBuffer(width, height, bg.R, bg.G, bg.B, 255)
	for y := ry; y < ry+rh; y++ {
		for x := rx; x < rx+rw; x++ {
			i := (y*width + x) * 4
			buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2] = fg.R, fg.G, fg.B
		}
	}
	return buf
}

func TestEdgeMap_SolidImageHasNoEdges(t *testing.T) {
	buf := solidBuffer(50, 50, 200, 200, 200, 255)

	edges, err := EdgeMap(context.Background(), buf, 50)
	if err != nil {
		t.Fatalf("EdgeMap failed: %v", err)
	}
	if len(edges) != 50*50 {
		t.Fatalf("len(edges) = %d, want %d", len(edges), 50*50)
	}
	for i, e := range edges {
		if e {
			t.Fatalf("unexpected edge at index %d", i)
		}
	}
}

func TestEdgeMap_RectangleOutline(t *testing.T) {
	buf := createRectBuffer(100, 100, White, Black, 20, 20, 60, 60)

	edges, err := EdgeMap(context.Background(), buf, 50)
	if err != nil {
		t.Fatalf("EdgeMap failed: %v", err)
	}

	at := func(x, y int) bool { return edges[y*100+x] }

	tests := []struct {
		name string
		x, y int
		want bool
	}{
		{"left boundary", 20, 50, true},
		{"pixel outside left boundary", 19, 50, true},
		{"top boundary", 50, 20, true},
		{"interior", 50, 50, false},
		{"background", 5, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := at(tt.x, tt.y); got != tt.want {
				t.Errorf("edge at (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestEdgeMap_BorderPixelsNeverEdges(t *testing.T) {
	// Checkerboard: strong gradients everywhere, including next to the frame.
	buf := solidBuffer(20, 20, 0, 0, 0, 255)
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if (x+y)%2 == 0 {
				i := (y*20 + x) * 4
				buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2] = 255, 255, 255
			}
		}
	}

	edges, err := EdgeMap(context.Background(), buf, 10)
	if err != nil {
		t.Fatalf("EdgeMap failed: %v", err)
	}
	for i := 0; i < 20; i++ {
		for _, p := range [][2]int{{i, 0}, {i, 19}, {0, i}, {19, i}} {
			if edges[p[1]*20+p[0]] {
				t.Errorf("border pixel (%d,%d) marked as edge", p[0], p[1])
			}
		}
	}
}

func TestEdgeMap_ThresholdIsStrict(t *testing.T) {
	// A vertical step of height d gives |Gx| = 4d on the two columns around it.
	buf := createRectBuffer(10, 10, Black, Color{25, 25, 25}, 5, 0, 5, 10)

	edges, err := EdgeMap(context.Background(), buf, 100)
	if err != nil {
		t.Fatalf("EdgeMap failed: %v", err)
	}
	if edges[5*10+5] {
		t.Error("magnitude equal to threshold should not be an edge")
	}

	edges, err = EdgeMap(context.Background(), buf, 99)
	if err != nil {
		t.Fatalf("EdgeMap failed: %v", err)
	}
	if !edges[5*10+5] {
		t.Error("magnitude above threshold should be an edge")
	}
}

func TestEdgeMap_TinyImage(t *testing.T) {
	edges, err := EdgeMap(context.Background(), solidBuffer(2, 2, 0, 0, 0, 255), 50)
	if err != nil {
		t.Fatalf("EdgeMap failed: %v", err)
	}
	if len(edges) != 4 {
		t.Errorf("len(edges) = %d, want 4", len(edges))
	}
}

func TestEdgeMap_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := EdgeMap(ctx, solidBuffer(50, 50, 0, 0, 0, 255), 50)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
