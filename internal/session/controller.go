// Package session runs timed heart-rate measurements: it owns the run state,
// drives the sampler and peak detector on a fixed cadence and reports
// progress and results to its collaborators.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"pulsecam/internal/frame"
	"pulsecam/internal/ppg"
)

const (
	// DefaultRegionWidth and DefaultRegionHeight size the sampled region.
	DefaultRegionWidth  = 100
	DefaultRegionHeight = 100
	// DefaultTraceWidth is the number of samples handed to visualizers.
	DefaultTraceWidth = 300

	sinkTimeout = 5 * time.Second
)

var (
	// ErrFrameAcquisition is returned when the frame source cannot be
	// acquired. The controller stays where it was.
	ErrFrameAcquisition = errors.New("session: frame acquisition failed")
	// ErrMeasuring is returned by Start while a run is in progress.
	ErrMeasuring = errors.New("session: measurement already in progress")
)

// Controller owns one measurement at a time and moves it through
// Idle -> Measuring -> Complete. Restart discards the current run and starts
// a new one.
type Controller struct {
	source      frame.Source
	log         *slog.Logger
	clock       Clock
	interval    time.Duration
	duration    time.Duration
	sampler     ppg.Sampler
	traceWidth  int
	displays    []Display
	visualizers []Visualizer
	sinks       []ResultSink
	newID       func() string

	// lifecycle serialises Start, Restart, Stop and Close.
	lifecycle sync.Mutex
	handle    frame.Handle
	cancel    context.CancelFunc
	done      chan struct{}

	// mu guards the fields below; the tick goroutine is their only writer
	// while a run is active.
	mu        sync.Mutex
	state     State
	run       *ppg.RunState
	status    string
	remaining int
	bpmText   string
}

// New creates an idle controller reading from source.
func New(source frame.Source, opts ...Option) *Controller {
	c := &Controller{source: source}
	defaults(c)
	for _, opt := range opts {
		opt(c)
	}
	c.bpmText = ppg.Undetermined
	return c
}

// Start acquires the frame source and begins the first measurement.
func (c *Controller) Start(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	if c.State() == Measuring {
		return ErrMeasuring
	}
	return c.begin(ctx)
}

// Restart cancels any pending tick, drops the current run and begins a new
// one.
func (c *Controller) Restart(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	return c.begin(ctx)
}

// Stop cancels the pending tick. A run that was measuring is abandoned and
// the controller returns to Idle; a completed run is left as is.
func (c *Controller) Stop() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.halt()

	c.mu.Lock()
	if c.state == Measuring {
		c.state = Idle
		c.run.Active = false
		c.status = ""
	}
	c.mu.Unlock()
}

// Close stops the controller and releases the frame handle.
func (c *Controller) Close() error {
	c.Stop()

	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	if c.handle == nil {
		return nil
	}
	err := c.handle.Close()
	c.handle = nil
	return err
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns a copy of the current run.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		State:            c.state,
		SecondsRemaining: c.remaining,
		Status:           c.status,
		BPMText:          c.bpmText,
	}
	if c.run != nil {
		snap.RunID = c.run.ID
		snap.StartedAt = c.run.StartTime
		snap.Samples = len(c.run.History)
		snap.Peaks = slices.Clone(c.run.Peaks)
		snap.Trace = ppg.Trace(c.run.History, c.traceWidth)
	}
	return snap
}

func (c *Controller) begin(ctx context.Context) error {
	c.halt()

	if c.handle == nil {
		h, err := c.source.Acquire(ctx)
		if err != nil {
			c.log.Error("frame acquisition failed", "error", err)
			c.setStatus(StatusDenied)
			return fmt.Errorf("%w: %w", ErrFrameAcquisition, err)
		}
		c.handle = h
	}

	run := ppg.NewRunState(c.newID(), c.clock.Now())

	c.mu.Lock()
	c.run = run
	c.state = Measuring
	c.status = StatusStarting
	c.remaining = c.secondsLeft(0)
	c.bpmText = ppg.Undetermined
	c.mu.Unlock()

	for _, d := range c.displays {
		d.Status(StatusStarting)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	t := c.clock.NewTicker(c.interval)
	go c.loop(loopCtx, t, done)

	c.log.Info("measurement started",
		"run_id", run.ID,
		"interval", c.interval,
		"duration", c.duration)
	return nil
}

// halt cancels the tick loop and waits for an in-flight tick to finish.
func (c *Controller) halt() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
	c.cancel = nil
	c.done = nil
}

func (c *Controller) loop(ctx context.Context, t Ticker, done chan<- struct{}) {
	defer close(done)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C():
			if ctx.Err() != nil {
				return
			}
			if c.tick(now) {
				return
			}
		}
	}
}

// tick runs one sampling step and reports whether the run completed.
func (c *Controller) tick(now time.Time) bool {
	start := time.Now()
	c.mu.Lock()
	run := c.run
	sample := c.sampler.Sample(c.handle, run, now)

	res := TickResult{RunID: run.ID, Sample: sample}
	if ev, ok := ppg.DetectPeak(run); ok {
		res.Peak = &ev
	}
	trace := ppg.Trace(run.History, c.traceWidth)

	elapsed := run.Elapsed(now)
	res.SecondsRemaining = c.secondsLeft(elapsed)

	var result *Result
	if elapsed >= c.duration.Milliseconds() {
		run.Active = false
		c.state = Complete

		bpm, ok := ppg.EstimateBPM(run.Peaks)
		res.Complete = true
		res.BPM = bpm
		res.Determined = ok
		res.BPMText = ppg.FormatBPM(bpm, ok)
		res.Status = StatusComplete
		res.Timer = TimerDone

		result = &Result{
			RunID:       run.ID,
			StartedAt:   run.StartTime,
			CompletedAt: now,
			Samples:     len(run.History),
			Peaks:       slices.Clone(run.Peaks),
			BPM:         bpm,
			Determined:  ok,
			BPMText:     res.BPMText,
		}
	} else {
		res.Status = StatusMeasuring
		res.Timer = fmt.Sprintf("%d seconds remaining", res.SecondsRemaining)
		res.BPMText = ppg.Undetermined
	}

	c.status = res.Status
	c.remaining = res.SecondsRemaining
	c.bpmText = res.BPMText
	c.mu.Unlock()
	res.Latency = time.Since(start)

	if res.Peak != nil {
		c.log.Debug("peak detected", "run_id", run.ID, "time_ms", res.Peak.Time)
	}

	for _, v := range c.visualizers {
		v.Render(trace)
	}
	for _, d := range c.displays {
		d.Tick(res)
	}

	if result != nil {
		c.report(*result)
	}
	return res.Complete
}

func (c *Controller) report(r Result) {
	c.log.Info("measurement complete",
		"run_id", r.RunID,
		"bpm", r.BPMText,
		"peaks", len(r.Peaks),
		"samples", r.Samples)

	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()

	for _, s := range c.sinks {
		if err := s.StoreResult(ctx, r); err != nil {
			c.log.Error("failed to store result", "run_id", r.RunID, "error", err)
		}
	}
}

func (c *Controller) setStatus(status string) {
	c.mu.Lock()
	c.status = status
	c.mu.Unlock()

	for _, d := range c.displays {
		d.Status(status)
	}
}

// secondsLeft counts whole seconds down to zero.
func (c *Controller) secondsLeft(elapsedMs int64) int {
	left := c.duration.Milliseconds() - elapsedMs
	if left <= 0 {
		return 0
	}
	return int((left + 999) / 1000)
}
