package ppg

import (
	"math"
	"strconv"
)

// Undetermined is shown in place of a BPM when fewer than two peaks exist.
const Undetermined = "--"

// EstimateBPM returns round(60000 / mean inter-peak interval). ok is false
// when fewer than two peaks are available.
func EstimateBPM(peaks PeakList) (bpm int, ok bool) {
	if len(peaks) < 2 {
		return 0, false
	}

	var sum int64
	for i := 1; i < len(peaks); i++ {
		sum += peaks[i] - peaks[i-1]
	}
	mean := float64(sum) / float64(len(peaks)-1)
	if mean <= 0 {
		return 0, false
	}
	return int(math.Round(60000 / mean)), true
}

// FormatBPM renders a BPM for display.
func FormatBPM(bpm int, ok bool) string {
	if !ok {
		return Undetermined
	}
	return strconv.Itoa(bpm)
}
