package detection

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/ui-inventory-mcp/internal/imaging"
	"github.com/ironsheep/ui-inventory-mcp/internal/logger"
)

// Options configures a Detector.
type Options struct {
	Strategy  Strategy
	Extractor ExtractorConfig

	// Thresholds overrides the strategy's default classifier thresholds.
	Thresholds *ClassifierThresholds

	// PaletteSize overrides the strategy's default palette size when positive.
	PaletteSize int

	// ConfidenceFloor drops components whose confidence is at or below it.
	ConfidenceFloor float64

	// StateTypes lists the component types that get interaction states.
	StateTypes []Type

	// Timeout bounds a whole Detect call. Zero means no limit.
	Timeout time.Duration

	// OracleTimeout bounds each text oracle call.
	OracleTimeout time.Duration
}

// DefaultOptions returns the standard settings for a strategy.
func DefaultOptions(s Strategy) Options {
	palette := 5
	if s == StrategySimilarity {
		palette = 3
	}
	return Options{
		Strategy:        s,
		Extractor:       DefaultExtractorConfig(),
		PaletteSize:     palette,
		ConfidenceFloor: 0.3,
		StateTypes:      []Type{TypeButton, TypeInput, TypeNavItem},
		Timeout:         30 * time.Second,
		OracleTimeout:   5 * time.Second,
	}
}

// Size is a width/height pair.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Analysis summarizes a detection run.
type Analysis struct {
	TotalComponents int          `json:"totalComponents"`
	ComponentTypes  map[Type]int `json:"componentTypes"`
	AverageSize     Size         `json:"averageSize"`

	// DetectionConfidence is the mean component confidence as a percentage.
	DetectionConfidence float64 `json:"detectionConfidence"`
}

// Result is the output of one detection pass.
type Result struct {
	Strategy   Strategy    `json:"strategy"`
	Components []Component `json:"components"`
	Analysis   Analysis    `json:"analysis"`
}

// Detector runs the extract, measure, classify and estimate pipeline.
//
// A Detector holds configuration only. Concurrent Detect calls are safe as
// long as the TextOracle is.
type Detector struct {
	opts       Options
	extractor  Extractor
	measurer   *Measurer
	classifier Classifier
}

// NewDetector builds a detector. oracle may be nil, in which case text
// presence is always estimated geometrically.
func NewDetector(opts Options, oracle TextOracle) (*Detector, error) {
	extractor, err := NewExtractor(opts.Strategy, opts.Extractor)
	if err != nil {
		return nil, err
	}

	thresholds := ThresholdsFor(opts.Strategy)
	if opts.Thresholds != nil {
		thresholds = *opts.Thresholds
	}

	fallback := imaging.White
	if opts.Strategy == StrategySimilarity {
		fallback = imaging.Gray
	}
	palette := opts.PaletteSize
	if palette <= 0 {
		palette = DefaultOptions(opts.Strategy).PaletteSize
	}

	return &Detector{
		opts:      opts,
		extractor: extractor,
		measurer: NewMeasurer(MeasurerConfig{
			PaletteSize:   palette,
			Fallback:      fallback,
			OracleTimeout: opts.OracleTimeout,
		}, oracle),
		classifier: NewClassifier(thresholds),
	}, nil
}

// Strategy returns the configured extraction strategy.
func (d *Detector) Strategy() Strategy {
	return d.opts.Strategy
}

// Detect finds the components in buf.
//
// Returns imaging.ErrEmptyBuffer for a zero-sized buffer and the context
// error if the pass is canceled or exceeds its timeout. An image with no
// surviving components is not an error.
func (d *Detector) Detect(ctx context.Context, buf *imaging.Buffer) (*Result, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if d.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	regions, err := d.extractor.Extract(ctx, buf)
	if err != nil {
		return nil, fmt.Errorf("extract regions: %w", err)
	}

	components := make([]Component, 0, len(regions))
	for _, r := range regions {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("measure regions: %w", err)
		}

		f := d.measurer.Measure(ctx, buf, r)
		cl := d.classifier.Classify(r, f.Colors, f.HasText, f.Properties)
		if cl.Confidence <= d.opts.ConfidenceFloor {
			continue
		}

		c := Component{
			ID:         uuid.NewString(),
			Type:       cl.Type,
			Bounds:     r,
			Properties: f.Properties,
			Colors:     f.Colors,
			HasText:    f.HasText,
			TextSource: f.TextSource,
			Confidence: cl.Confidence,
		}
		if slices.Contains(d.opts.StateTypes, cl.Type) {
			states := EstimateStates(f.Colors.Dominant)
			c.States = &states
		}
		components = append(components, c)
	}

	logger.L().Debug("detection complete",
		zap.String("strategy", string(d.opts.Strategy)),
		zap.Int("width", buf.Width),
		zap.Int("height", buf.Height),
		zap.Int("regions", len(regions)),
		zap.Int("components", len(components)),
		zap.Duration("elapsed", time.Since(start)))

	return &Result{
		Strategy:   d.opts.Strategy,
		Components: components,
		Analysis:   Analyze(components),
	}, nil
}

// Analyze summarizes a component list. An empty list yields zero values
// and an empty type map.
func Analyze(components []Component) Analysis {
	a := Analysis{
		TotalComponents: len(components),
		ComponentTypes:  make(map[Type]int),
	}
	if len(components) == 0 {
		return a
	}

	widths := make([]float64, len(components))
	heights := make([]float64, len(components))
	confidences := make([]float64, len(components))
	for i, c := range components {
		a.ComponentTypes[c.Type]++
		widths[i] = float64(c.Bounds.Width)
		heights[i] = float64(c.Bounds.Height)
		confidences[i] = c.Confidence
	}

	a.AverageSize = Size{
		Width:  int(math.Round(stat.Mean(widths, nil))),
		Height: int(math.Round(stat.Mean(heights, nil))),
	}
	a.DetectionConfidence = stat.Mean(confidences, nil) * 100
	return a
}
