// Package ppg implements camera photoplethysmography: brightness sampling,
// windowed peak detection and BPM estimation.
package ppg

import "time"

const (
	// WindowSize is the number of trailing samples inspected for a peak.
	WindowSize = 5
	// RefractoryMs is the minimum spacing between two accepted peaks.
	RefractoryMs = 300
	// SampleInterval is the sampling cadence.
	SampleInterval = 100 * time.Millisecond
	// RunDuration is the length of one measurement run.
	RunDuration = 60 * time.Second
)

// Sample is one brightness reading, Time in ms since the run started.
type Sample struct {
	Time       int64   `json:"time"`
	Brightness float64 `json:"brightness"`
}

// PeakList holds accepted peak timestamps in ms, strictly increasing.
type PeakList []int64

// PeakEvent describes a peak accepted on the current tick.
type PeakEvent struct {
	Time       int64   `json:"time"`
	Brightness float64 `json:"brightness"`
}

// BrightnessReader returns the current mean brightness of a frame over a
// width x height region.
type BrightnessReader interface {
	Brightness(width, height int) float64
}

// RunState is everything one measurement run owns. A restart builds a new one.
type RunState struct {
	ID           string
	StartTime    time.Time
	Active       bool
	History      []Sample
	Peaks        PeakList
	LastPeakTime int64
}

// NewRunState returns an empty, active run starting at start.
func NewRunState(id string, start time.Time) *RunState {
	return &RunState{
		ID:        id,
		StartTime: start,
		Active:    true,
		History:   make([]Sample, 0, int(RunDuration/SampleInterval)+1),
		Peaks:     PeakList{},
	}
}

// Elapsed returns ms between the run start and now.
func (s *RunState) Elapsed(now time.Time) int64 {
	return now.Sub(s.StartTime).Milliseconds()
}

// Trace returns the brightness values of the trailing n samples.
func Trace(history []Sample, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if len(history) > n {
		history = history[len(history)-n:]
	}

	out := make([]float64, len(history))
	for i, s := range history {
		out[i] = s.Brightness
	}
	return out
}
