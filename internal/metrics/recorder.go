package metrics

import (
	"pulsecam/internal/session"
)

// Recorder updates the collectors from controller events.
type Recorder struct{}

// Status implements session.Display.
func (Recorder) Status(status string) {
	switch status {
	case session.StatusStarting:
		RunsStarted.Inc()
	case session.StatusDenied:
		AcquisitionFailures.Inc()
	}
}

// Tick implements session.Display.
func (Recorder) Tick(r session.TickResult) {
	TicksTotal.Inc()
	TickLatency.Observe(r.Latency.Seconds())
	Brightness.Set(r.Sample.Brightness)
	SecondsRemaining.Set(float64(r.SecondsRemaining))

	if r.Peak != nil {
		PeaksDetected.Inc()
	}
	if !r.Complete {
		return
	}
	if r.Determined {
		RunsCompleted.WithLabelValues("determined").Inc()
		LastBPM.Set(float64(r.BPM))
	} else {
		RunsCompleted.WithLabelValues("undetermined").Inc()
	}
}
