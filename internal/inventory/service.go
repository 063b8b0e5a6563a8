// Package inventory wires detection, style extraction and validation into
// the operations exposed by the MCP server, the HTTP API and the CLI.
package inventory

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ironsheep/ui-inventory-mcp/internal/batch"
	"github.com/ironsheep/ui-inventory-mcp/internal/config"
	"github.com/ironsheep/ui-inventory-mcp/internal/detection"
	"github.com/ironsheep/ui-inventory-mcp/internal/imaging"
	"github.com/ironsheep/ui-inventory-mcp/internal/logger"
	"github.com/ironsheep/ui-inventory-mcp/internal/metrics"
	"github.com/ironsheep/ui-inventory-mcp/internal/ocr"
	"github.com/ironsheep/ui-inventory-mcp/internal/palette"
	"github.com/ironsheep/ui-inventory-mcp/internal/validation"
)

// ErrInvalidInput marks errors caused by the caller: bad arguments, missing
// or undecodable images.
var ErrInvalidInput = errors.New("invalid input")

// IsInputError reports whether err should be reported as a caller error.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, imaging.ErrEmptyBuffer) ||
		errors.Is(err, validation.ErrUnknownTestCase)
}

// TypographyOracle estimates a font size scale from a whole screenshot.
type TypographyOracle interface {
	Typography(ctx context.Context, img image.Image) (ocr.Typography, error)
}

// Service is safe for concurrent use.
type Service struct {
	cfg       config.Config
	cache     *imaging.ImageCache
	detectors map[detection.Strategy]*detection.Detector
	engine    *validation.Engine
	metrics   *metrics.Metrics
	typo      TypographyOracle
}

// Option configures a Service.
type Option func(*options)

type options struct {
	text    detection.TextOracle
	typo    TypographyOracle
	textSet bool
}

// WithOracles replaces the OCR-backed oracles. Either may be nil to disable it.
func WithOracles(text detection.TextOracle, typo TypographyOracle) Option {
	return func(o *options) {
		o.text = text
		o.typo = typo
		o.textSet = true
	}
}

// New builds a service from configuration. m may be nil.
func New(cfg config.Config, m *metrics.Metrics, opts ...Option) (*Service, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if !o.textSet && cfg.OCR.Enabled {
		tess := ocr.NewTesseractOracle(cfg.OCR.Config)
		o.text, o.typo = tess, tess
	}

	catalog, err := validation.DefaultCatalog()
	if err != nil {
		return nil, err
	}
	if err := catalog.LoadDir(cfg.Validation.FixturesDir); err != nil {
		return nil, err
	}

	s := &Service{
		cfg:       cfg,
		cache:     imaging.NewImageCache(cfg.Cache.Size),
		detectors: make(map[detection.Strategy]*detection.Detector, 2),
		engine:    validation.NewEngine(catalog, cfg.Validation.Tolerance),
		metrics:   m,
		typo:      o.typo,
	}
	for _, strategy := range []detection.Strategy{detection.StrategyEdge, detection.StrategySimilarity} {
		d, err := detection.NewDetector(cfg.DetectionOptionsFor(strategy), o.text)
		if err != nil {
			return nil, fmt.Errorf("build %s detector: %w", strategy, err)
		}
		s.detectors[strategy] = d
	}
	return s, nil
}

// Cache returns the shared image cache.
func (s *Service) Cache() *imaging.ImageCache { return s.cache }

// Config returns the configuration the service was built with.
func (s *Service) Config() config.Config { return s.cfg }

// Engine returns the validation engine.
func (s *Service) Engine() *validation.Engine { return s.engine }

func (s *Service) detector(name string) (*detection.Detector, error) {
	if name == "" {
		name = s.cfg.Detection.Strategy
	}
	strategy, err := detection.ParseStrategy(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return s.detectors[strategy], nil
}

// Load decodes the image at path through the cache. Failures are input errors.
func (s *Service) Load(path string) (*imaging.Buffer, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: path is required", ErrInvalidInput)
	}
	buf, err := s.cache.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return buf, nil
}

// ImageInfo loads path into the cache and returns its metadata.
func (s *Service) ImageInfo(path string) (*imaging.ImageInfo, error) {
	if _, err := s.Load(path); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, path)
}

// Detect runs detection on the image at path. An empty strategy selects the
// configured default.
func (s *Service) Detect(ctx context.Context, path, strategy string) (*detection.Result, error) {
	buf, err := s.Load(path)
	if err != nil {
		return nil, err
	}
	return s.DetectBuffer(ctx, buf, strategy)
}

// DetectBuffer runs detection on an already decoded buffer.
func (s *Service) DetectBuffer(ctx context.Context, buf *imaging.Buffer, strategy string) (*detection.Result, error) {
	d, err := s.detector(strategy)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	res, err := d.Detect(ctx, buf)
	if s.metrics != nil {
		s.metrics.ObserveDetection(d.Strategy(), time.Since(start), res, err)
	}
	return res, err
}

// StyleReport is the extracted style of a whole screenshot.
type StyleReport struct {
	Colors     palette.Style   `json:"colors"`
	Typography ocr.Typography  `json:"typography"`
	Spacing    palette.Spacing `json:"spacing"`
	Luminance  float64         `json:"primaryLuminance"`
}

// Style extracts the style of the image at path.
func (s *Service) Style(ctx context.Context, path string) (*StyleReport, error) {
	buf, err := s.Load(path)
	if err != nil {
		return nil, err
	}
	return s.StyleBuffer(ctx, buf), nil
}

// StyleBuffer extracts the style of a buffer. Oracle failures fall back to
// the default palette and typography and are only logged.
func (s *Service) StyleBuffer(ctx context.Context, buf *imaging.Buffer) *StyleReport {
	colors, err := palette.ExtractStyle(buf)
	if err != nil {
		logger.L().Debug("color extraction fell back to defaults", zap.Error(err))
	}

	typo := ocr.DefaultTypography()
	if s.typo != nil {
		octx, cancel := ctx, context.CancelFunc(func() {})
		if timeout := s.cfg.Detection.OracleTimeout; timeout > 0 {
			octx, cancel = context.WithTimeout(ctx, timeout)
		}
		t, err := s.typo.Typography(octx, buf.Image())
		cancel()
		if err != nil {
			logger.L().Debug("typography fell back to defaults", zap.Error(err))
		} else {
			typo = t
		}
	}

	lum, _ := palette.Luminance(colors.Primary)
	return &StyleReport{Colors: colors, Typography: typo, Spacing: palette.DefaultSpacing(), Luminance: lum}
}

// TestCases lists the fixture catalog.
func (s *Service) TestCases() []validation.TestCase {
	return s.engine.Catalog().List()
}

// Validate detects components in the image at path and validates them
// against a catalog test case.
func (s *Service) Validate(ctx context.Context, path, testCaseID, strategy string) (validation.Result, error) {
	if _, err := s.engine.Catalog().Get(testCaseID); err != nil {
		return validation.Result{}, err
	}
	res, err := s.Detect(ctx, path, strategy)
	if err != nil {
		return validation.Result{}, err
	}
	return s.ValidateComponents(testCaseID, res.Components)
}

// ValidateComponents validates already detected components.
func (s *Service) ValidateComponents(testCaseID string, components []detection.Component) (validation.Result, error) {
	res, err := s.engine.RunTestCase(testCaseID, components)
	if err != nil {
		return validation.Result{}, err
	}
	if s.metrics != nil {
		s.metrics.ObserveValidation(res)
	}
	return res, nil
}

// ValidateAll detects components in one image per test case id and
// validates the whole catalog. Catalog cases without an image are validated
// against no components.
func (s *Service) ValidateAll(ctx context.Context, images map[string]string, strategy string) (validation.Summary, error) {
	actual := make(map[string][]detection.Component, len(images))
	for id, path := range images {
		if _, err := s.engine.Catalog().Get(id); err != nil {
			return validation.Summary{}, err
		}
		res, err := s.Detect(ctx, path, strategy)
		if err != nil {
			return validation.Summary{}, fmt.Errorf("%s: %w", id, err)
		}
		actual[id] = res.Components
	}
	sum := s.engine.RunAll(actual)
	if s.metrics != nil {
		for _, r := range sum.Results {
			s.metrics.ObserveValidation(r)
		}
	}
	return sum, nil
}

// Annotate draws the detected component bounds over the image, numbered in
// result order starting at 1.
func (s *Service) Annotate(ctx context.Context, path, strategy, colorHex string) (*imaging.OverlayResult, error) {
	buf, err := s.Load(path)
	if err != nil {
		return nil, err
	}
	return s.AnnotateBuffer(ctx, buf, strategy, colorHex)
}

// AnnotateBuffer is Annotate for an already decoded buffer.
func (s *Service) AnnotateBuffer(ctx context.Context, buf *imaging.Buffer, strategy, colorHex string) (*imaging.OverlayResult, error) {
	res, err := s.DetectBuffer(ctx, buf, strategy)
	if err != nil {
		return nil, err
	}
	boxes := make([]imaging.Box, len(res.Components))
	for i, c := range res.Components {
		boxes[i] = imaging.Box{
			X:      c.Bounds.X,
			Y:      c.Bounds.Y,
			Width:  c.Bounds.Width,
			Height: c.Bounds.Height,
			Label:  strconv.Itoa(i + 1),
		}
	}
	return imaging.Overlay(buf, boxes, colorHex)
}

// CropResult is a base64-encoded PNG of an image area.
type CropResult struct {
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Crop returns an area of the image at path, optionally scaled.
func (s *Service) Crop(path string, x, y, width, height int, scale float64) (*CropResult, error) {
	buf, err := s.Load(path)
	if err != nil {
		return nil, err
	}
	data, err := buf.CropPNG(x, y, width, height, scale)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return &CropResult{
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    "image/png",
	}, nil
}

// Batch detects components in several images in parallel, loading them
// through the shared cache.
func (s *Service) Batch(ctx context.Context, paths []string, strategy string) ([]batch.Item, error) {
	d, err := s.detector(strategy)
	if err != nil {
		return nil, err
	}
	opts := []batch.Option{batch.WithLoader(s.Load)}
	if s.metrics != nil {
		opts = append(opts, batch.WithObserver(s.metrics))
	}
	return batch.NewRunner(d, s.cfg.Batch.Workers, opts...).Run(ctx, paths)
}

// OCRInfo reports whether OCR is enabled and usable.
func (s *Service) OCRInfo() ocr.Info {
	if !s.cfg.OCR.Enabled {
		return ocr.Info{Available: false, Error: "disabled by configuration", Backend: "none"}
	}
	return ocr.GetInfo()
}
