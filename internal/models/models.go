package models

import (
	"time"

	"pulsecam/internal/ppg"
	"pulsecam/internal/session"
)

// Result is a completed measurement as stored and published.
type Result struct {
	RunID       string    `json:"run_id"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`
	Samples     int       `json:"samples"`
	Peaks       []int64   `json:"peaks"`
	BPM         int       `json:"bpm,omitempty"`
	Determined  bool      `json:"determined"`
	BPMText     string    `json:"bpm_text"`
}

// Status is the state of the current measurement.
type Status struct {
	State            string    `json:"state"`
	RunID            string    `json:"run_id,omitempty"`
	StartedAt        time.Time `json:"started_at,omitempty"`
	Samples          int       `json:"samples"`
	Peaks            int       `json:"peaks"`
	SecondsRemaining int       `json:"seconds_remaining"`
	Status           string    `json:"status"`
	BPM              string    `json:"bpm"`
}

// TickMessage is pushed to websocket clients on every tick.
type TickMessage struct {
	Type             string         `json:"type"`
	RunID            string         `json:"run_id,omitempty"`
	Sample           *ppg.Sample    `json:"sample,omitempty"`
	Peak             *ppg.PeakEvent `json:"peak,omitempty"`
	SecondsRemaining int            `json:"seconds_remaining"`
	Status           string         `json:"status"`
	Timer            string         `json:"timer,omitempty"`
	Complete         bool           `json:"complete"`
	BPM              string         `json:"bpm"`
	Trace            []float64      `json:"trace,omitempty"`
}

// NewResult converts a session result to its wire form.
func NewResult(r session.Result) Result {
	peaks := []int64(r.Peaks)
	if peaks == nil {
		peaks = []int64{}
	}
	return Result{
		RunID:       r.RunID,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
		DurationMs:  r.CompletedAt.Sub(r.StartedAt).Milliseconds(),
		Samples:     r.Samples,
		Peaks:       peaks,
		BPM:         r.BPM,
		Determined:  r.Determined,
		BPMText:     r.BPMText,
	}
}

// NewStatus converts a controller snapshot to its wire form.
func NewStatus(s session.Snapshot) Status {
	return Status{
		State:            s.State.String(),
		RunID:            s.RunID,
		StartedAt:        s.StartedAt,
		Samples:          s.Samples,
		Peaks:            len(s.Peaks),
		SecondsRemaining: s.SecondsRemaining,
		Status:           s.Status,
		BPM:              s.BPMText,
	}
}
