package imaging

import (
	"context"
	"math"
)

// Sobel kernels, row-major.
var (
	sobelX = [9]float64{
		-1, 0, 1,
		-2, 0, 2,
		-1, 0, 1,
	}
	sobelY = [9]float64{
		-1, -2, -1,
		0, 0, 0,
		1, 2, 1,
	}
)

// EdgeMap binarizes the Sobel gradient magnitude of a buffer.
//
// Parameters:
//   - ctx: Checked once per row; a canceled context aborts the scan.
//   - buf: Source raster. Not modified.
//   - threshold: A pixel is an edge when sqrt(Gx² + Gy²) > threshold.
//
// Returns a flat slice of width*height booleans indexed as y*width+x.
//
// # Algorithm
//
//  1. Grayscale: unweighted channel average (R+G+B)/3. Alpha is ignored, so
//     a transparent pixel contributes its stored color (normally black).
//  2. Gradient: 3x3 Sobel operators
//     Gx = [-1 0 1; -2 0 2; -1 0 1], Gy = [-1 -2 -1; 0 0 0; 1 2 1]
//  3. Threshold: magnitude strictly above threshold marks an edge.
//
// Border pixels (x=0, y=0, x=width-1, y=height-1) are never edges because
// their 3x3 neighborhood is incomplete.
func EdgeMap(ctx context.Context, buf *Buffer, threshold float64) ([]bool, error) {
	width, height := buf.Width, buf.Height
	edges := make([]bool, width*height)
	if width < 3 || height < 3 {
		return edges, nil
	}

	gray := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gray[y*width+x] = buf.Gray(x, y)
		}
	}

	for y := 1; y < height-1; y++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for x := 1; x < width-1; x++ {
			var gx, gy float64
			for i := 0; i < 9; i++ {
				ox := i%3 - 1
				oy := i/3 - 1
				v := gray[(y+oy)*width+(x+ox)]
				gx += v * sobelX[i]
				gy += v * sobelY[i]
			}
			if math.Sqrt(gx*gx+gy*gy) > threshold {
				edges[y*width+x] = true
			}
		}
	}

	return edges, nil
}
