package ppg

// DetectPeak inspects the trailing window of the run history and records a
// peak when one is found.
//
// The candidate is the second-oldest sample of the window, while the
// recorded time comes from the sample three from the end. Neither is the
// window centre; results recorded so far depend on both offsets.
func DetectPeak(st *RunState) (PeakEvent, bool) {
	n := len(st.History)
	if n < WindowSize {
		return PeakEvent{}, false
	}

	w := st.History[n-WindowSize:]
	candidate := w[1].Brightness
	for i, s := range w {
		if i == 1 {
			continue
		}
		if candidate <= s.Brightness {
			return PeakEvent{}, false
		}
	}

	t := st.History[n-3].Time
	if len(st.Peaks) > 0 && t-st.LastPeakTime <= RefractoryMs {
		return PeakEvent{}, false
	}

	st.Peaks = append(st.Peaks, t)
	st.LastPeakTime = t
	return PeakEvent{Time: t, Brightness: candidate}, true
}
