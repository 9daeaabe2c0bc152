package stream

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulsecam/internal/models"
	"pulsecam/internal/ppg"
	"pulsecam/internal/session"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestFrameCodec(t *testing.T) {
	img := solid(3, 2, color.RGBA{R: 200, G: 20, B: 10, A: 255})
	img.SetRGBA(2, 1, color.RGBA{R: 1, G: 2, B: 3, A: 4})

	b, err := EncodeFrame(img)
	require.NoError(t, err)
	assert.Len(t, b, 4+3*2*4)

	got, err := DecodeFrame(b)
	require.NoError(t, err)
	assert.Equal(t, img.Rect, got.Rect)
	assert.Equal(t, img.Pix, got.Pix)
}

func TestFrameCodecSubImage(t *testing.T) {
	img := solid(4, 4, color.RGBA{R: 9, A: 255})
	sub := img.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)

	b, err := EncodeFrame(sub)
	require.NoError(t, err)

	got, err := DecodeFrame(b)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Rect.Dx())
	assert.Equal(t, uint8(9), got.Pix[0])
}

func TestDecodeFrameRejectsShortPayload(t *testing.T) {
	_, err := DecodeFrame([]byte{1})
	assert.ErrorIs(t, err, ErrShortFrame)

	_, err = DecodeFrame([]byte{2, 0, 2, 0, 1, 2, 3})
	assert.ErrorIs(t, err, ErrShortFrame)
}

func TestFrameHandleKeepsLatestFrame(t *testing.T) {
	h := newFrameHandle("frames", slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Zero(t, h.Brightness(2, 2), "no frame yet")

	h.onMsg(&nats.Msg{Data: []byte("garbage")})
	select {
	case <-h.first:
		t.Fatal("malformed frame counted as first")
	default:
	}

	b, err := EncodeFrame(solid(2, 2, color.RGBA{R: 90, G: 30, B: 0, A: 255}))
	require.NoError(t, err)
	h.onMsg(&nats.Msg{Data: b})

	select {
	case <-h.first:
	case <-time.After(time.Second):
		t.Fatal("first frame not signalled")
	}
	assert.InDelta(t, 40.0, h.Brightness(2, 2), 1e-9)
	assert.NoError(t, h.Close())
}

type fakePublisher struct {
	subject string
	data    []byte
	err     error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.subject, f.data = subject, data
	return f.err
}

func TestResultPublisher(t *testing.T) {
	pub := &fakePublisher{}
	p := NewResultPublisher(pub, "ppg.results")

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	err := p.StoreResult(context.Background(), session.Result{
		RunID:       "r1",
		StartedAt:   start,
		CompletedAt: start.Add(time.Minute),
		Samples:     600,
		Peaks:       ppg.PeakList{0, 500, 1400},
		BPM:         86,
		Determined:  true,
		BPMText:     "86",
	})
	require.NoError(t, err)
	assert.Equal(t, "ppg.results", pub.subject)

	var res models.Result
	require.NoError(t, json.Unmarshal(pub.data, &res))
	assert.Equal(t, "r1", res.RunID)
	assert.Equal(t, 86, res.BPM)
	assert.Equal(t, int64(60000), res.DurationMs)
	assert.Equal(t, []int64{0, 500, 1400}, res.Peaks)

	pub.err = errors.New("disconnected")
	assert.Error(t, p.StoreResult(context.Background(), session.Result{RunID: "r2"}))
}
