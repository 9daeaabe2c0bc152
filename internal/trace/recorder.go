package trace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"pulsecam/internal/ppg"
	"pulsecam/internal/session"
)

// ErrInterval is returned for sampling intervals that have no whole-number
// sample rate.
var ErrInterval = errors.New("trace: interval must divide one second evenly")

// Recorder is a session.Display that saves each completed run's brightness
// trace as <dir>/<run id>.wav.
type Recorder struct {
	dir        string
	sampleRate int
	log        *slog.Logger

	mu     sync.Mutex
	values []float64
}

// NewRecorder creates the directory if needed. interval is the controller's
// sampling cadence; it must divide one second evenly so the WAV sample rate
// matches it exactly.
func NewRecorder(dir string, interval time.Duration, log *slog.Logger) (*Recorder, error) {
	if interval <= 0 || time.Second%interval != 0 {
		return nil, fmt.Errorf("%w: %s", ErrInterval, interval)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating trace dir %q: %w", dir, err)
	}
	return &Recorder{dir: dir, sampleRate: int(time.Second / interval), log: log}, nil
}

// Path returns the file a run is written to.
func (r *Recorder) Path(runID string) string {
	return filepath.Join(r.dir, runID+".wav")
}

// Status implements session.Display; a new run clears the buffer.
func (r *Recorder) Status(status string) {
	if status != session.StatusStarting {
		return
	}
	r.mu.Lock()
	r.values = r.values[:0]
	r.mu.Unlock()
}

// Tick implements session.Display.
func (r *Recorder) Tick(res session.TickResult) {
	r.mu.Lock()
	r.values = append(r.values, res.Sample.Brightness)
	if !res.Complete {
		r.mu.Unlock()
		return
	}
	values := r.values
	r.values = make([]float64, 0, int(ppg.RunDuration/ppg.SampleInterval))
	r.mu.Unlock()

	path := r.Path(res.RunID)
	if err := WriteFile(path, values, r.sampleRate); err != nil {
		r.log.Error("failed to record trace", "run_id", res.RunID, "error", err)
		return
	}
	r.log.Info("trace recorded", "run_id", res.RunID, "path", path, "samples", len(values))
}
