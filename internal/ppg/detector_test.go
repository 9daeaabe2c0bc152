package ppg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stateWith(values ...float64) *RunState {
	st := NewRunState("test", time.Time{})
	for i, v := range values {
		st.History = append(st.History, Sample{Time: int64(i+1) * 100, Brightness: v})
	}
	return st
}

func TestDetectPeakNeedsFullWindow(t *testing.T) {
	for n := 0; n < WindowSize; n++ {
		values := make([]float64, n)
		if n > 1 {
			values[1] = 200
		}
		st := stateWith(values...)

		_, ok := DetectPeak(st)
		assert.False(t, ok, "history of %d samples", n)
		assert.Empty(t, st.Peaks)
	}
}

func TestDetectPeakUsesOffsetTimestamp(t *testing.T) {
	st := stateWith(10, 50, 20, 15, 12)

	ev, ok := DetectPeak(st)
	require.True(t, ok)
	// candidate is the sample at 200ms, time comes from the one at 300ms
	assert.Equal(t, int64(300), ev.Time)
	assert.Equal(t, 50.0, ev.Brightness)
	assert.Equal(t, PeakList{300}, st.Peaks)
	assert.Equal(t, int64(300), st.LastPeakTime)
}

func TestDetectPeakRequiresStrictMaximum(t *testing.T) {
	cases := map[string][]float64{
		"tie with oldest": {50, 50, 20, 15, 12},
		"tie with newest": {10, 50, 20, 15, 50},
		"centre higher":   {10, 50, 60, 15, 12},
		"flat":            {30, 30, 30, 30, 30},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			st := stateWith(values...)
			_, ok := DetectPeak(st)
			assert.False(t, ok)
			assert.Empty(t, st.Peaks)
		})
	}
}

func TestDetectPeakSingleMaximumInStream(t *testing.T) {
	values := []float64{10, 11, 12, 13, 90, 14, 13, 12, 11, 10}
	st := NewRunState("test", time.Time{})

	var events []PeakEvent
	for i, v := range values {
		st.History = append(st.History, Sample{Time: int64(i) * 100, Brightness: v})
		if ev, ok := DetectPeak(st); ok {
			events = append(events, ev)
		}
	}

	require.Len(t, events, 1)
	// the maximum sits at index 4; it is the candidate when index 7 arrives,
	// so the recorded time is that of index 5
	assert.Equal(t, int64(500), events[0].Time)
	assert.Equal(t, 90.0, events[0].Brightness)
}

func TestDetectPeakRefractory(t *testing.T) {
	st := NewRunState("test", time.Time{})
	st.Peaks = PeakList{1000}
	st.LastPeakTime = 1000

	st.History = []Sample{
		{Time: 1000, Brightness: 10},
		{Time: 1100, Brightness: 80},
		{Time: 1200, Brightness: 20},
		{Time: 1250, Brightness: 15},
		{Time: 1300, Brightness: 12},
	}
	_, ok := DetectPeak(st)
	assert.False(t, ok, "200ms after the last peak")

	st.History = []Sample{
		{Time: 1100, Brightness: 10},
		{Time: 1200, Brightness: 80},
		{Time: 1300, Brightness: 20},
		{Time: 1400, Brightness: 15},
		{Time: 1500, Brightness: 12},
	}
	_, ok = DetectPeak(st)
	assert.False(t, ok, "exactly 300ms is still refractory")

	st.History[2].Time = 1301
	ev, ok := DetectPeak(st)
	require.True(t, ok)
	assert.Equal(t, int64(1301), ev.Time)
	assert.Equal(t, PeakList{1000, 1301}, st.Peaks)
}

func TestDetectPeakFirstPeakNeedsNoRefractory(t *testing.T) {
	st := NewRunState("test", time.Time{})
	st.History = []Sample{
		{Time: 0, Brightness: 1},
		{Time: 50, Brightness: 9},
		{Time: 100, Brightness: 2},
		{Time: 150, Brightness: 3},
		{Time: 200, Brightness: 4},
	}

	ev, ok := DetectPeak(st)
	require.True(t, ok)
	assert.Equal(t, int64(100), ev.Time)
}

func TestDetectPeakSuppressesCloseSecondPeak(t *testing.T) {
	st := NewRunState("test", time.Time{})
	values := []float64{10, 60, 20, 10, 5, 70, 6, 4, 3}
	var times []int64
	for i, v := range values {
		st.History = append(st.History, Sample{Time: int64(i) * 50, Brightness: v})
		if ev, ok := DetectPeak(st); ok {
			times = append(times, ev.Time)
		}
	}

	// raw candidates fall at 100ms and 300ms, only 200ms apart
	assert.Equal(t, []int64{100}, times)
	assert.Equal(t, PeakList{100}, st.Peaks)
}
