package trace

import (
	"time"

	"github.com/goccmack/godsp"

	"pulsecam/internal/ppg"
)

// Report summarises a replayed trace.
type Report struct {
	FileName       string  `json:",omitempty"`
	SampleRate     int     // Hz
	Samples        int     // number of brightness samples
	DurationMs     int64   // span covered by the samples
	MeanBrightness float64 // average over the whole trace
	MaxBrightness  float64
	Peaks          []int64 // ms from the start of the trace
	BPM            int
	Determined     bool
	BPMText        string
}

// Replay feeds values through the same detector a live run uses, one sample
// every 1/sampleRate seconds, and estimates the BPM over the whole trace.
func Replay(values []float64, sampleRate int) Report {
	rep := Report{SampleRate: sampleRate, Samples: len(values), Peaks: []int64{}}
	if sampleRate <= 0 || len(values) == 0 {
		rep.BPMText = ppg.Undetermined
		return rep
	}

	rate := int64(sampleRate)
	st := ppg.NewRunState("replay", time.Time{})
	for i, v := range values {
		st.History = append(st.History, ppg.Sample{Time: int64(i+1) * 1000 / rate, Brightness: v})
		ppg.DetectPeak(st)
	}

	rep.DurationMs = int64(len(values)) * 1000 / rate
	rep.MeanBrightness = godsp.Average(values)
	rep.MaxBrightness = godsp.Max(values)
	rep.Peaks = append(rep.Peaks, st.Peaks...)
	rep.BPM, rep.Determined = ppg.EstimateBPM(st.Peaks)
	rep.BPMText = ppg.FormatBPM(rep.BPM, rep.Determined)
	return rep
}
