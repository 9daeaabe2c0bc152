package session

import (
	"context"
	"time"

	"pulsecam/internal/ppg"
)

// State is the controller's lifecycle position.
type State int

const (
	Idle State = iota
	Measuring
	Complete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Measuring:
		return "measuring"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// Status lines shown to the user.
const (
	StatusStarting  = "Measuring..."
	StatusMeasuring = "Measuring... Hold still."
	StatusComplete  = "Measurement complete."
	StatusDenied    = "Camera access denied."
	TimerDone       = "Time's up!"
)

// TickResult is what one tick produced. It is handed to the display after
// the core has finished its work for the tick.
type TickResult struct {
	RunID            string
	Sample           ppg.Sample
	Peak             *ppg.PeakEvent
	SecondsRemaining int
	Status           string
	Timer            string
	Complete         bool

	// Latency is the wall time spent sampling and detecting, before any
	// display or visualizer sees the result.
	Latency time.Duration

	// BPM and BPMText are only meaningful once Complete is set.
	BPM        int
	Determined bool
	BPMText    string
}

// Result is reported once per completed run.
type Result struct {
	RunID       string
	StartedAt   time.Time
	CompletedAt time.Time
	Samples     int
	Peaks       ppg.PeakList
	BPM         int
	Determined  bool
	BPMText     string
}

// Snapshot is a read-only copy of the controller state.
type Snapshot struct {
	State            State
	RunID            string
	StartedAt        time.Time
	Samples          int
	Peaks            ppg.PeakList
	SecondsRemaining int
	Status           string
	BPMText          string
	Trace            []float64
}

// Display receives status changes and per-tick results.
type Display interface {
	Status(status string)
	Tick(r TickResult)
}

// Visualizer receives the trailing brightness trace on every tick.
type Visualizer interface {
	Render(trace []float64)
}

// ResultSink stores or forwards completed runs.
type ResultSink interface {
	StoreResult(ctx context.Context, r Result) error
}
