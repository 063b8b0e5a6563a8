package ocr

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"
	"time"
)

func TestRecognition_MeanConfidence(t *testing.T) {
	tests := []struct {
		name  string
		words []Word
		want  float64
	}{
		{"no words", nil, 0},
		{"single word", []Word{{Text: "OK", Confidence: 91}}, 91},
		{"blank words ignored", []Word{{Text: "Save", Confidence: 80}, {Text: " ", Confidence: 0}, {Text: "File", Confidence: 60}}, 70},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Recognition{Words: tt.words}).MeanConfidence(); got != tt.want {
				t.Errorf("MeanConfidence = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecognition_HasText(t *testing.T) {
	tests := []struct {
		name string
		r    Recognition
		want bool
	}{
		{"confident text", Recognition{Text: "Submit\n", Words: []Word{{Text: "Submit", Confidence: 88}}}, true},
		{"whitespace only", Recognition{Text: " \n\t", Words: []Word{{Text: "x", Confidence: 99}}}, false},
		{"confidence at floor", Recognition{Text: "Submit", Words: []Word{{Text: "Submit", Confidence: 60}}}, false},
		{"text without boxes", Recognition{Text: "Submit"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.HasText(60); got != tt.want {
				t.Errorf("HasText = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEstimateTypography(t *testing.T) {
	r := Recognition{Words: []Word{
		{Text: "Title", Confidence: 90, Box: image.Rect(0, 0, 50, 20)},
		{Text: "body", Confidence: 80, Box: image.Rect(0, 30, 40, 42)},
		{Text: "noise", Confidence: 20, Box: image.Rect(0, 50, 40, 150)},
	}}

	typo := EstimateTypography(r, 60)

	want := map[string]string{"base": "16px", "lg": "18px", "xl": "20px", "2xl": "24px", "3xl": "30px", "xs": "12px"}
	for k, v := range want {
		if typo.FontSize[k] != v {
			t.Errorf("fontSize[%s] = %q, want %q", k, typo.FontSize[k], v)
		}
	}
	if typo.FontFamily["primary"] == "" || typo.LetterSpacing["wide"] != "0.025em" {
		t.Errorf("fixed scales missing: %+v", typo)
	}
}

func TestDefaultTypography(t *testing.T) {
	typo := DefaultTypography()
	if typo.FontSize["base"] != "16px" || typo.FontSize["sm"] != "14px" {
		t.Errorf("default font sizes = %v", typo.FontSize)
	}
	if typo.FontWeight["bold"] != "700" {
		t.Errorf("default weights = %v", typo.FontWeight)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Language != "eng" || cfg.MinConfidence != 60 || cfg.MaxConcurrent != 2 {
		t.Errorf("DefaultConfig = %+v", cfg)
	}
}

func TestLimiter_AbandonedRunKeepsSlot(t *testing.T) {
	l := newLimiter(1)
	release := make(chan struct{})
	var calls atomic.Int32
	blocked := func() (Recognition, error) {
		calls.Add(1)
		<-release
		return Recognition{Text: "late"}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.do(ctx, blocked); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("first call: err = %v, want deadline exceeded", err)
	}

	// The first run is still going, so a second caller cannot start one.
	ctx2, cancel2 := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel2()
	if _, err := l.do(ctx2, blocked); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("second call: err = %v, want deadline exceeded", err)
	}

	close(release)
	r, err := l.do(context.Background(), func() (Recognition, error) {
		return Recognition{Text: "next"}, nil
	})
	if err != nil || r.Text != "next" {
		t.Fatalf("after release: r = %+v, err = %v", r, err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("blocked runs started = %d, want 1", n)
	}
}

func TestLimiter_BoundsConcurrency(t *testing.T) {
	const slots = 2
	l := newLimiter(slots)

	var running, peak atomic.Int32
	fn := func() (Recognition, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return Recognition{}, nil
	}

	done := make(chan error, 8)
	for i := 0; i < cap(done); i++ {
		go func() {
			_, err := l.do(context.Background(), fn)
			done <- err
		}()
	}
	for i := 0; i < cap(done); i++ {
		if err := <-done; err != nil {
			t.Fatalf("do failed: %v", err)
		}
	}
	if p := peak.Load(); p > slots {
		t.Errorf("peak concurrency = %d, want at most %d", p, slots)
	}
}

func TestNewLimiter_MinimumOneSlot(t *testing.T) {
	l := newLimiter(0)
	if _, err := l.do(context.Background(), func() (Recognition, error) { return Recognition{}, nil }); err != nil {
		t.Fatalf("do failed: %v", err)
	}
}
