package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pulsecam/internal/cache"
	"pulsecam/internal/config"
	"pulsecam/internal/frame"
	"pulsecam/internal/handlers"
	"pulsecam/internal/hub"
	"pulsecam/internal/metrics"
	"pulsecam/internal/ppg"
	"pulsecam/internal/session"
	"pulsecam/internal/stream"
	"pulsecam/internal/trace"
)

func main() {
	cfg := config.Load()

	log := slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      cfg.LogLevel,
		TimeFormat: time.TimeOnly,
	}))
	log.Info("starting heart rate measurement service")

	if err := run(cfg, log); err != nil {
		log.Error("service failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []session.Option{
		session.WithLogger(log),
		session.WithRegion(cfg.RegionWidth, cfg.RegionHeight),
		session.WithTraceWidth(cfg.TraceWidth),
		session.WithDisplay(metrics.Recorder{}),
	}

	var nc *nats.Conn
	if cfg.FrameSource == "nats" || cfg.ResultSubject != "" {
		var err error
		nc, err = stream.Connect(cfg.NATSURL, "pulsecam-server")
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer nc.Drain()
		log.Info("connected to NATS", "url", cfg.NATSURL)

		if cfg.ResultSubject != "" {
			opts = append(opts, session.WithResultSink(stream.NewResultPublisher(nc, cfg.ResultSubject)))
		}
	}

	var source frame.Source
	switch cfg.FrameSource {
	case "sim":
		source = frame.NewSynthetic(cfg.SimBPM)
		log.Info("using synthetic frame source", "bpm", cfg.SimBPM)
	case "nats":
		source = stream.NewFrameSource(nc, cfg.FrameSubject, cfg.AcquireTimeout, log)
		log.Info("using NATS frame source", "subject", cfg.FrameSubject)
	default:
		return fmt.Errorf("unknown FRAME_SOURCE %q", cfg.FrameSource)
	}

	var store handlers.ResultStore
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.ResultRetention)
		if err != nil {
			return err
		}
		defer redisCache.Close()
		log.Info("connected to Redis", "addr", cfg.RedisAddr)

		store = redisCache
		opts = append(opts, session.WithResultSink(redisCache))
	}

	if cfg.TraceDir != "" {
		rec, err := trace.NewRecorder(cfg.TraceDir, ppg.SampleInterval, log)
		if err != nil {
			return err
		}
		opts = append(opts, session.WithDisplay(rec))
		log.Info("recording traces", "dir", cfg.TraceDir)
	}

	wsHub := hub.New(log)
	opts = append(opts, session.WithDisplay(wsHub), session.WithVisualizer(wsHub))

	controller := session.New(source, opts...)
	defer controller.Close()

	handler := handlers.NewHandler(controller, store)

	mux := http.NewServeMux()
	handler.Register(mux)
	mux.HandleFunc("/ws", wsHub.ServeWS)
	mux.Handle("/prometheus", promhttp.Handler())

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// the measurement starts on boot; a failed acquisition leaves the
	// controller idle until a client calls /measurement/start
	if err := controller.Start(ctx); err != nil {
		log.Warn("initial measurement not started", "error", err)
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}
