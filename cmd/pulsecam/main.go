package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/rivo/tview"

	"pulsecam/internal/frame"
	"pulsecam/internal/session"
	"pulsecam/internal/stream"
)

const graphWidth = 120

func main() {
	var (
		source  = flag.String("source", "sim", "frame source: sim or nats")
		bpm     = flag.Float64("bpm", 72, "simulated heart rate")
		natsURL = flag.String("nats", "nats://127.0.0.1:4222", "NATS url")
		subject = flag.String("subject", "ppg.frames", "frame subject")
		logPath = flag.String("log", "pulsecam.log", "log file")
	)
	flag.Parse()

	if err := run(*source, *bpm, *natsURL, *subject, *logPath); err != nil {
		fmt.Fprintf(os.Stderr, "pulsecam: %v\n", err)
		os.Exit(1)
	}
}

func run(source string, bpm float64, natsURL, subject, logPath string) error {
	// the terminal belongs to the UI, so logs go to a file
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file %q: %w", logPath, err)
	}
	defer logFile.Close()
	log := slog.New(tint.NewHandler(logFile, &tint.Options{NoColor: true}))

	var src frame.Source
	switch source {
	case "sim":
		src = frame.NewSynthetic(bpm)
	case "nats":
		nc, err := stream.Connect(natsURL, "pulsecam-tui")
		if err != nil {
			return fmt.Errorf("connecting to NATS: %w", err)
		}
		defer nc.Drain()
		src = stream.NewFrameSource(nc, subject, 10*time.Second, log)
	default:
		return fmt.Errorf("unknown source %q", source)
	}

	app := tview.NewApplication()
	ui := NewTUIView(app, "pulsecam")

	ctrl := session.New(src,
		session.WithLogger(log),
		session.WithDisplay(ui),
		session.WithVisualizer(ui),
		session.WithTraceWidth(graphWidth),
	)
	defer ctrl.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	onErr := func(err error) { log.Error("measurement not started", "error", err) }
	ui.BindKeys(ctx, ctrl, onErr)

	go func() {
		if err := ctrl.Start(ctx); err != nil {
			onErr(err)
		}
	}()

	return app.SetRoot(ui.GetLayout(), true).Run()
}
