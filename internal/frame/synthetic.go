package frame

import (
	"context"
	"image"
	"image/color"
	"math"
	"sync"
	"time"
)

// Synthetic renders frames of a fingertip held over a lit lens: a red field
// whose level pulses at a fixed heart rate. It stands in for a camera when
// none is attached.
type Synthetic struct {
	BPM       float64
	Amplitude float64
	Noise     float64
	// Now defaults to time.Now; tests substitute a fixed clock.
	Now func() time.Time
}

// NewSynthetic returns a simulator at bpm with a visible pulse and a little
// noise.
func NewSynthetic(bpm float64) *Synthetic {
	return &Synthetic{BPM: bpm, Amplitude: 12, Noise: 0.8}
}

// Acquire implements Source.
func (s *Synthetic) Acquire(ctx context.Context) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := s.Now
	if now == nil {
		now = time.Now
	}
	return &syntheticHandle{src: s, now: now, start: now()}, nil
}

type syntheticHandle struct {
	src   *Synthetic
	now   func() time.Time
	start time.Time

	mu  sync.Mutex
	img *image.RGBA
}

// Level returns the simulated red level t into the signal.
func (s *Synthetic) Level(t time.Duration) float64 {
	phase := t.Seconds() * s.BPM / 60
	phase -= math.Floor(phase)

	// sharp systolic rise followed by a slower dicrotic decay
	pulse := math.Exp(-0.5*sq((phase-0.2)/0.07)) + 0.35*math.Exp(-0.5*sq((phase-0.5)/0.1))
	n := s.Noise * (2*fract(math.Sin(12345.678*phase)*9876.543) - 1)

	return 150 + s.Amplitude*pulse + n
}

// Frame renders the simulated frame at t.
func (s *Synthetic) Frame(t time.Duration, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	s.paint(img, t)
	return img
}

func (s *Synthetic) paint(img *image.RGBA, t time.Duration) {
	red := clamp(s.Level(t))
	c := color.RGBA{R: red, G: red / 5, B: red / 8, A: 255}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func (h *syntheticHandle) Brightness(width, height int) float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.img == nil || h.img.Rect.Dx() != width || h.img.Rect.Dy() != height {
		h.img = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	h.src.paint(h.img, h.now().Sub(h.start))
	return AverageBrightness(h.img, width, height)
}

func (h *syntheticHandle) Close() error {
	return nil
}

func clamp(v float64) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}

func sq(x float64) float64 { return x * x }

func fract(x float64) float64 { return x - math.Floor(x) }
