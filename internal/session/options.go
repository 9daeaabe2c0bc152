package session

import (
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pulsecam/internal/ppg"
)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock replaces the wall clock.
func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithInterval sets the sampling cadence.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithDuration sets the run length.
func WithDuration(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.duration = d
		}
	}
}

// WithRegion sets the sampled frame region.
func WithRegion(width, height int) Option {
	return func(c *Controller) {
		c.sampler = ppg.NewSampler(width, height)
	}
}

// WithTraceWidth sets how many trailing samples the visualizer gets.
func WithTraceWidth(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.traceWidth = n
		}
	}
}

// WithDisplay adds a display. Several displays may be registered.
func WithDisplay(d Display) Option {
	return func(c *Controller) { c.displays = append(c.displays, d) }
}

// WithVisualizer adds a visualizer.
func WithVisualizer(v Visualizer) Option {
	return func(c *Controller) { c.visualizers = append(c.visualizers, v) }
}

// WithResultSink adds a destination for completed runs.
func WithResultSink(s ResultSink) Option {
	return func(c *Controller) { c.sinks = append(c.sinks, s) }
}

// WithIDGenerator replaces the run id generator.
func WithIDGenerator(gen func() string) Option {
	return func(c *Controller) { c.newID = gen }
}

func defaults(c *Controller) {
	c.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	c.clock = WallClock
	c.interval = ppg.SampleInterval
	c.duration = ppg.RunDuration
	c.sampler = ppg.NewSampler(DefaultRegionWidth, DefaultRegionHeight)
	c.traceWidth = DefaultTraceWidth
	c.newID = uuid.NewString
}
