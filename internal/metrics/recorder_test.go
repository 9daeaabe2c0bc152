package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulsecam/internal/ppg"
	"pulsecam/internal/session"
)

func sampleCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, h.Write(&m))
	return m.GetHistogram().GetSampleCount()
}

func TestRecorder(t *testing.T) {
	var r Recorder

	started := testutil.ToFloat64(RunsStarted)
	denied := testutil.ToFloat64(AcquisitionFailures)
	ticks := testutil.ToFloat64(TicksTotal)
	peaks := testutil.ToFloat64(PeaksDetected)
	latencies := sampleCount(t, TickLatency)
	determined := testutil.ToFloat64(RunsCompleted.WithLabelValues("determined"))
	undetermined := testutil.ToFloat64(RunsCompleted.WithLabelValues("undetermined"))

	r.Status(session.StatusStarting)
	r.Status(session.StatusDenied)
	r.Tick(session.TickResult{
		Sample:           ppg.Sample{Time: 100, Brightness: 71.5},
		Peak:             &ppg.PeakEvent{Time: 100},
		SecondsRemaining: 42,
		Latency:          3 * time.Millisecond,
	})
	r.Tick(session.TickResult{Complete: true, Determined: true, BPM: 64})
	r.Tick(session.TickResult{Complete: true})

	assert.Equal(t, started+1, testutil.ToFloat64(RunsStarted))
	assert.Equal(t, denied+1, testutil.ToFloat64(AcquisitionFailures))
	assert.Equal(t, ticks+3, testutil.ToFloat64(TicksTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(TickLatency))
	assert.Equal(t, latencies+3, sampleCount(t, TickLatency))
	assert.Equal(t, peaks+1, testutil.ToFloat64(PeaksDetected))
	assert.Equal(t, determined+1, testutil.ToFloat64(RunsCompleted.WithLabelValues("determined")))
	assert.Equal(t, undetermined+1, testutil.ToFloat64(RunsCompleted.WithLabelValues("undetermined")))
	assert.Equal(t, 64.0, testutil.ToFloat64(LastBPM))
	assert.Equal(t, 0.0, testutil.ToFloat64(SecondsRemaining))
}
