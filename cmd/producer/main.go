package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/lmittmann/tint"

	"pulsecam/internal/frame"
	"pulsecam/internal/metrics"
	"pulsecam/internal/stream"
)

func main() {
	var (
		natsURL  = flag.String("nats", "nats://127.0.0.1:4222", "NATS url")
		subject  = flag.String("subject", "ppg.frames", "subject")
		bpm      = flag.Float64("bpm", 72, "simulated heart rate")
		width    = flag.Int("width", 64, "frame width")
		height   = flag.Int("height", 48, "frame height")
		interval = flag.Duration("interval", 100*time.Millisecond, "frame interval")
	)
	flag.Parse()

	log := slog.New(tint.NewHandler(os.Stderr, nil))

	nc, err := stream.Connect(*natsURL, "pulsecam-producer")
	if err != nil {
		log.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer nc.Drain()

	sim := frame.NewSynthetic(*bpm)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	start := time.Now()
	log.Info("producer running", "subject", *subject, "bpm", *bpm)

	for {
		select {
		case <-ctx.Done():
			log.Info("producer stopping")
			return

		case now := <-ticker.C:
			b, err := stream.EncodeFrame(sim.Frame(now.Sub(start), *width, *height))
			if err != nil {
				log.Error("failed to encode frame", "error", err)
				return
			}
			if err := nc.Publish(*subject, b); err != nil {
				log.Warn("publish failed", "error", err)
				continue
			}
			metrics.NATSMessages.WithLabelValues(*subject, "out").Inc()
		}
	}
}
