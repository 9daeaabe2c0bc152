package stream

import (
	"context"
	"encoding/json"
	"fmt"

	"pulsecam/internal/metrics"
	"pulsecam/internal/models"
	"pulsecam/internal/session"
)

// Publisher is the subset of *nats.Conn used to publish results.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// ResultPublisher forwards completed runs to a NATS subject.
type ResultPublisher struct {
	pub     Publisher
	subject string
}

// NewResultPublisher creates a publisher for subject.
func NewResultPublisher(pub Publisher, subject string) *ResultPublisher {
	return &ResultPublisher{pub: pub, subject: subject}
}

// StoreResult implements session.ResultSink.
func (p *ResultPublisher) StoreResult(_ context.Context, r session.Result) error {
	b, err := json.Marshal(models.NewResult(r))
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := p.pub.Publish(p.subject, b); err != nil {
		return fmt.Errorf("failed to publish result to %s: %w", p.subject, err)
	}
	metrics.NATSMessages.WithLabelValues(p.subject, "out").Inc()
	return nil
}
