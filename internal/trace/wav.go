// Package trace records brightness traces as WAV files and replays them
// through the peak detector offline.
package trace

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	// Scale maps brightness onto 16-bit PCM: 255.00 -> 25500.
	Scale = 100
	// BitDepth of recorded traces.
	BitDepth = 16

	pcmFormat = 1
)

// ErrInvalidWAV is returned for files that are not PCM WAV.
var ErrInvalidWAV = errors.New("trace: invalid wav file")

// Encode writes values as a mono 16-bit WAV at sampleRate Hz.
func Encode(w io.WriteSeeker, values []float64, sampleRate int) error {
	enc := wav.NewEncoder(w, sampleRate, BitDepth, 1, pcmFormat)

	data := make([]int, len(values))
	for i, v := range values {
		data[i] = toPCM(v)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: BitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalise wav: %w", err)
	}
	return nil
}

// Decode reads the first channel of a WAV written by Encode.
func Decode(r io.ReadSeeker) ([]float64, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, ErrInvalidWAV
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read samples: %w", err)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	values := make([]float64, 0, len(buf.Data)/channels)
	for i := 0; i < len(buf.Data); i += channels {
		values = append(values, float64(buf.Data[i])/Scale)
	}
	return values, int(dec.SampleRate), nil
}

// WriteFile encodes values into a new file at path.
func WriteFile(path string, values []float64, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Encode(f, values, sampleRate); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile decodes the trace stored at path.
func ReadFile(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Decode(f)
}

func toPCM(v float64) int {
	p := math.Round(v * Scale)
	switch {
	case p < 0:
		return 0
	case p > math.MaxInt16:
		return math.MaxInt16
	default:
		return int(p)
	}
}
