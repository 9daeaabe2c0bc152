package stream

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"pulsecam/internal/frame"
	"pulsecam/internal/metrics"
)

// ErrNoFrames is returned when no frame arrives before the acquire timeout.
var ErrNoFrames = errors.New("stream: no frames received")

// FrameSource is a frame.Source fed by a camera bridge publishing encoded
// frames on a NATS subject.
type FrameSource struct {
	nc      *nats.Conn
	subject string
	timeout time.Duration
	log     *slog.Logger
}

// NewFrameSource creates a source listening on subject. Acquire waits up to
// timeout for the first frame.
func NewFrameSource(nc *nats.Conn, subject string, timeout time.Duration, log *slog.Logger) *FrameSource {
	return &FrameSource{nc: nc, subject: subject, timeout: timeout, log: log}
}

// Acquire implements frame.Source.
func (s *FrameSource) Acquire(ctx context.Context) (frame.Handle, error) {
	h := newFrameHandle(s.subject, s.log)

	sub, err := s.nc.Subscribe(s.subject, h.onMsg)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", s.subject, err)
	}

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case <-h.first:
		h.sub = sub
		return h, nil
	case <-ctx.Done():
		_ = sub.Unsubscribe()
		return nil, ctx.Err()
	case <-timer.C:
		_ = sub.Unsubscribe()
		return nil, fmt.Errorf("%w on %s within %s", ErrNoFrames, s.subject, s.timeout)
	}
}

type frameHandle struct {
	subject string
	log     *slog.Logger
	sub     *nats.Subscription

	first     chan struct{}
	firstOnce sync.Once

	mu     sync.RWMutex
	latest *image.RGBA
}

func newFrameHandle(subject string, log *slog.Logger) *frameHandle {
	return &frameHandle{subject: subject, log: log, first: make(chan struct{})}
}

func (h *frameHandle) onMsg(msg *nats.Msg) {
	img, err := DecodeFrame(msg.Data)
	if err != nil {
		metrics.NATSMessages.WithLabelValues(h.subject, "rejected").Inc()
		h.log.Warn("dropping malformed frame", "subject", h.subject, "error", err)
		return
	}
	metrics.NATSMessages.WithLabelValues(h.subject, "in").Inc()

	h.mu.Lock()
	h.latest = img
	h.mu.Unlock()

	h.firstOnce.Do(func() { close(h.first) })
}

// Brightness averages the most recent frame.
func (h *frameHandle) Brightness(width, height int) float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return frame.AverageBrightness(h.latest, width, height)
}

func (h *frameHandle) Close() error {
	if h.sub == nil {
		return nil
	}
	return h.sub.Unsubscribe()
}
