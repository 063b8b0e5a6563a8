package detection

import (
	"context"
	"fmt"
	"sort"

	"github.com/ironsheep/ui-inventory-mcp/internal/imaging"
)

// Strategy names a region extraction algorithm.
type Strategy string

const (
	// StrategyEdge finds regions as connected components of Sobel edge pixels.
	StrategyEdge Strategy = "edge"
	// StrategySimilarity grows rectangles from grid seeds over similar colors.
	StrategySimilarity Strategy = "similarity"
)

// ParseStrategy converts a user-supplied name into a Strategy.
// An empty string selects StrategyEdge.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyEdge:
		return StrategyEdge, nil
	case StrategySimilarity:
		return StrategySimilarity, nil
	default:
		return "", fmt.Errorf("unknown strategy %q (want %q or %q)", s, StrategyEdge, StrategySimilarity)
	}
}

// ExtractorConfig holds the tuning knobs for both extraction strategies.
type ExtractorConfig struct {
	// EdgeThreshold is the Sobel magnitude a pixel must exceed to be an edge.
	EdgeThreshold float64 `yaml:"edge_threshold" json:"edgeThreshold" validate:"gt=0"`

	// MinRegionSize is the smallest accepted width and height.
	MinRegionSize int `yaml:"min_region_size" json:"minRegionSize" validate:"gte=1"`

	// SampleStep is the seed grid spacing for the similarity scan.
	SampleStep int `yaml:"sample_step" json:"sampleStep" validate:"gte=1"`

	// SimilarityThreshold is the largest Manhattan-averaged channel distance
	// still considered the same color.
	SimilarityThreshold float64 `yaml:"similarity_threshold" json:"similarityThreshold" validate:"gte=0"`

	// MaxGrow caps how far a similarity region grows in each direction.
	MaxGrow int `yaml:"max_grow" json:"maxGrow" validate:"gte=1"`
}

// DefaultExtractorConfig returns the standard thresholds.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		EdgeThreshold:       50,
		MinRegionSize:       20,
		SampleStep:          10,
		SimilarityThreshold: 30,
		MaxGrow:             200,
	}
}

// Extractor turns a raster buffer into candidate regions.
type Extractor interface {
	Name() Strategy
	Extract(ctx context.Context, buf *imaging.Buffer) ([]Region, error)
}

// NewExtractor returns the extractor for a strategy.
func NewExtractor(s Strategy, cfg ExtractorConfig) (Extractor, error) {
	switch s {
	case StrategyEdge:
		return &EdgeExtractor{cfg: cfg}, nil
	case StrategySimilarity:
		return &SimilarityExtractor{cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", s)
	}
}

// EdgeExtractor finds connected components of edge pixels.
//
// # Algorithm
//
//  1. Edge map: imaging.EdgeMap with the configured threshold
//  2. Flood fill: 4-connected, explicit stack, over a flat visited arena
//  3. Bounding box: min/max of member pixels
//  4. Filter: keep boxes at least MinRegionSize wide and tall
//  5. Sort: bounding-box area, largest first; equal areas keep scan order
//
// The visited arena belongs to a single Extract call, so one EdgeExtractor
// can serve concurrent calls.
type EdgeExtractor struct {
	cfg ExtractorConfig
}

// Name implements Extractor.
func (e *EdgeExtractor) Name() Strategy { return StrategyEdge }

// Extract implements Extractor.
func (e *EdgeExtractor) Extract(ctx context.Context, buf *imaging.Buffer) ([]Region, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	edges, err := imaging.EdgeMap(ctx, buf, e.cfg.EdgeThreshold)
	if err != nil {
		return nil, err
	}

	width, height := buf.Width, buf.Height
	visited := make([]bool, width*height)
	stack := make([]point, 0, 256)
	regions := make([]Region, 0)

	for y := 0; y < height; y++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for x := 0; x < width; x++ {
			i := y*width + x
			if !edges[i] || visited[i] {
				continue
			}
			var r Region
			r, stack = floodFill(edges, visited, x, y, width, height, stack[:0])
			if r.Width >= e.cfg.MinRegionSize && r.Height >= e.cfg.MinRegionSize {
				regions = append(regions, r)
			}
		}
	}

	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Area() > regions[j].Area()
	})
	return regions, nil
}

type point struct {
	x, y int
}

// floodFill collects the 4-connected component of edge pixels containing
// (startX, startY) and returns its bounding box. The stack is returned so
// the caller can reuse its backing array.
func floodFill(edges, visited []bool, startX, startY, width, height int, stack []point) (Region, []point) {
	stack = append(stack, point{startX, startY})
	minX, maxX := startX, startX
	minY, maxY := startY, startY
	count := 0

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.x < 0 || p.x >= width || p.y < 0 || p.y >= height {
			continue
		}
		i := p.y*width + p.x
		if visited[i] || !edges[i] {
			continue
		}

		visited[i] = true
		count++
		minX, maxX = min(minX, p.x), max(maxX, p.x)
		minY, maxY = min(minY, p.y), max(maxY, p.y)

		stack = append(stack,
			point{p.x + 1, p.y},
			point{p.x - 1, p.y},
			point{p.x, p.y + 1},
			point{p.x, p.y - 1},
		)
	}

	return Region{
		X:          minX,
		Y:          minY,
		Width:      maxX - minX + 1,
		Height:     maxY - minY + 1,
		PixelCount: count,
	}, stack
}

// SimilarityExtractor grows rectangles of near-uniform color from seeds on a
// regular grid.
//
// From each seed the region extends right along the seed row and down along
// the seed column while pixels stay within SimilarityThreshold of the seed
// color. Only those two lines are inspected; the interior is assumed to
// match. Accepted regions mark their pixels visited so no later seed can
// start inside them. Output is in scan order.
type SimilarityExtractor struct {
	cfg ExtractorConfig
}

// Name implements Extractor.
func (s *SimilarityExtractor) Name() Strategy { return StrategySimilarity }

// Extract implements Extractor.
func (s *SimilarityExtractor) Extract(ctx context.Context, buf *imaging.Buffer) ([]Region, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	width, height := buf.Width, buf.Height
	minSize := s.cfg.MinRegionSize
	step := max(1, s.cfg.SampleStep)
	visited := make([]bool, width*height)
	regions := make([]Region, 0)

	for y := 0; y < height-minSize; y += step {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for x := 0; x < width-minSize; x += step {
			if visited[y*width+x] || buf.Alpha(x, y) < 128 {
				continue
			}

			seed := buf.ColorAt(x, y)
			w := s.grow(buf, seed, x, y, 1, 0)
			h := s.grow(buf, seed, x, y, 0, 1)
			if w < minSize || h < minSize {
				continue
			}

			for ry := y; ry < y+h; ry++ {
				row := visited[ry*width+x : ry*width+x+w]
				for i := range row {
					row[i] = true
				}
			}
			regions = append(regions, Region{X: x, Y: y, Width: w, Height: h, PixelCount: w * h})
		}
	}

	return regions, nil
}

// grow walks from (x, y) in direction (dx, dy) and returns how many
// consecutive pixels, the seed included, match the seed color.
func (s *SimilarityExtractor) grow(buf *imaging.Buffer, seed imaging.Color, x, y, dx, dy int) int {
	n := 0
	for n < s.cfg.MaxGrow {
		px, py := x+n*dx, y+n*dy
		if !buf.Contains(px, py) {
			break
		}
		if seed.ManhattanAverage(buf.ColorAt(px, py)) > s.cfg.SimilarityThreshold {
			break
		}
		n++
	}
	return n
}
