package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/ui-inventory-mcp/internal/detection"
	"github.com/ironsheep/ui-inventory-mcp/internal/imaging"
)

// trackingDetector records peak concurrency and echoes the buffer width as
// the component count.
type trackingDetector struct {
	active atomic.Int32
	peak   atomic.Int32
	delay  time.Duration
}

func (d *trackingDetector) Detect(ctx context.Context, buf *imaging.Buffer) (*detection.Result, error) {
	n := d.active.Add(1)
	defer d.active.Add(-1)
	for {
		p := d.peak.Load()
		if n <= p || d.peak.CompareAndSwap(p, n) {
			break
		}
	}
	select {
	case <-time.After(d.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &detection.Result{Components: make([]detection.Component, buf.Width)}, nil
}

type countingObserver struct {
	mu     sync.Mutex
	ok     int
	failed int
}

func (o *countingObserver) ObserveBatchImage(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.failed++
	} else {
		o.ok++
	}
}

// widthLoader fabricates a buffer whose width is parsed from the path.
func widthLoader(path string) (*imaging.Buffer, error) {
	var w int
	if _, err := fmt.Sscanf(filepath.Base(path), "w%d", &w); err != nil {
		return nil, fmt.Errorf("bad path %q", path)
	}
	return imaging.NewBuffer(w, 1, make([]byte, 4*w))
}

func TestRun_PreservesOrder(t *testing.T) {
	det := &trackingDetector{delay: time.Millisecond}
	obs := &countingObserver{}
	r := NewRunner(det, 3, WithLoader(widthLoader), WithObserver(obs))

	paths := []string{"w5", "w1", "bogus", "w3", "w2", "w4"}
	items, err := r.Run(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, items, len(paths))

	for i, item := range items {
		assert.Equal(t, paths[i], item.Path)
	}
	assert.Len(t, items[0].Result.Components, 5)
	assert.Len(t, items[1].Result.Components, 1)
	assert.Nil(t, items[2].Result)
	assert.Contains(t, items[2].Error, "bad path")
	assert.Len(t, items[5].Result.Components, 4)

	assert.Equal(t, 5, obs.ok)
	assert.Equal(t, 1, obs.failed)
}

func TestRun_BoundsConcurrency(t *testing.T) {
	det := &trackingDetector{delay: 10 * time.Millisecond}
	r := NewRunner(det, 2, WithLoader(widthLoader))

	paths := make([]string, 10)
	for i := range paths {
		paths[i] = fmt.Sprintf("w%d", i+1)
	}
	_, err := r.Run(context.Background(), paths)
	require.NoError(t, err)
	assert.LessOrEqual(t, det.peak.Load(), int32(2))
}

func TestRun_ZeroWorkersStillRuns(t *testing.T) {
	r := NewRunner(&trackingDetector{}, 0, WithLoader(widthLoader))
	items, err := r.Run(context.Background(), []string{"w2"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Empty(t, items[0].Error)
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(&trackingDetector{delay: time.Second}, 2, WithLoader(widthLoader))
	_, err := r.Run(ctx, []string{"w1", "w2", "w3"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRun_RealDetectorFromFiles(t *testing.T) {
	dir := t.TempDir()

	img := image.NewRGBA(image.Rect(0, 0, 300, 200))
	for y := 50; y < 90; y++ {
		for x := 50; x < 150; x++ {
			img.Set(x, y, color.RGBA{59, 130, 246, 255})
		}
	}
	good := filepath.Join(dir, "good.png")
	f, err := os.Create(good)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	det, err := detection.NewDetector(detection.DefaultOptions(detection.StrategySimilarity), nil)
	require.NoError(t, err)

	items, err := NewRunner(det, 2).Run(context.Background(), []string{good, filepath.Join(dir, "missing.png")})
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.NotNil(t, items[0].Result)
	assert.Equal(t, detection.StrategySimilarity, items[0].Result.Strategy)
	assert.NotEmpty(t, items[0].Result.Components)
	assert.Contains(t, items[1].Error, "failed to open image")
}
