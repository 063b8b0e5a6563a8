// Package batch runs detection over many images in parallel.
package batch

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/ui-inventory-mcp/internal/detection"
	"github.com/ironsheep/ui-inventory-mcp/internal/imaging"
	"github.com/ironsheep/ui-inventory-mcp/internal/logger"
)

// Detector is the part of detection.Detector a batch needs.
type Detector interface {
	Detect(ctx context.Context, buf *imaging.Buffer) (*detection.Result, error)
}

// Observer is notified once per finished image. It must be safe for
// concurrent use.
type Observer interface {
	ObserveBatchImage(err error)
}

// Item is the outcome for one input path. Exactly one of Result and Error is set.
type Item struct {
	Path       string            `json:"path"`
	Result     *detection.Result `json:"result,omitempty"`
	Error      string            `json:"error,omitempty"`
	DurationMs int64             `json:"durationMs"`
}

// Runner detects components in a list of images with bounded parallelism.
type Runner struct {
	detector Detector
	workers  int
	load     func(path string) (*imaging.Buffer, error)
	observer Observer
}

// Option configures a Runner.
type Option func(*Runner)

// WithLoader replaces the default file loader.
func WithLoader(load func(path string) (*imaging.Buffer, error)) Option {
	return func(r *Runner) { r.load = load }
}

// WithObserver attaches an observer, typically *metrics.Metrics.
func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observer = o }
}

// NewRunner creates a runner. workers below 1 is treated as 1.
func NewRunner(d Detector, workers int, opts ...Option) *Runner {
	r := &Runner{detector: d, workers: max(1, workers), load: loadFile}
	for _, o := range opts {
		o(r)
	}
	return r
}

func loadFile(path string) (*imaging.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()
	return imaging.Decode(f)
}

// Run processes every path and returns one Item per path in input order.
//
// A failing image is recorded in its Item and does not stop the others.
// Run only returns an error when ctx is done before all images finish.
func (r *Runner) Run(ctx context.Context, paths []string) ([]Item, error) {
	items := make([]Item, len(paths))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			items[i] = r.one(gCtx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return items, err
	}
	if err := ctx.Err(); err != nil {
		return items, err
	}
	return items, nil
}

func (r *Runner) one(ctx context.Context, path string) Item {
	start := time.Now()
	item := Item{Path: path}

	res, err := r.detect(ctx, path)
	if err != nil {
		item.Error = err.Error()
		logger.L().Warn("batch image failed", zap.String("path", path), zap.Error(err))
	} else {
		item.Result = res
	}
	item.DurationMs = time.Since(start).Milliseconds()

	if r.observer != nil {
		r.observer.ObserveBatchImage(err)
	}
	return item
}

func (r *Runner) detect(ctx context.Context, path string) (*detection.Result, error) {
	buf, err := r.load(path)
	if err != nil {
		return nil, err
	}
	return r.detector.Detect(ctx, buf)
}
