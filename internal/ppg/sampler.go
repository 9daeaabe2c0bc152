package ppg

import "time"

// Sampler reads one brightness value per call over a fixed region.
type Sampler struct {
	Width  int
	Height int
}

// NewSampler creates a sampler for a width x height region.
func NewSampler(width, height int) Sampler {
	return Sampler{Width: width, Height: height}
}

// Sample reads the current brightness, stamps it relative to the run start
// and appends it to the run history.
func (sm Sampler) Sample(r BrightnessReader, st *RunState, now time.Time) Sample {
	s := Sample{
		Time:       st.Elapsed(now),
		Brightness: r.Brightness(sm.Width, sm.Height),
	}
	st.History = append(st.History, s)
	return s
}
