package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration tracks HTTP request latency
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// TicksTotal counts processed sampling ticks
	TicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ppg_ticks_total",
			Help: "Total number of sampling ticks processed",
		},
	)

	// TickLatency tracks how long sampling and peak detection take per tick
	TickLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ppg_tick_latency_seconds",
			Help:    "Sampling tick processing latency in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1},
		},
	)

	// PeaksDetected counts accepted brightness peaks
	PeaksDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ppg_peaks_detected_total",
			Help: "Total number of accepted brightness peaks",
		},
	)

	// Brightness is the latest sampled brightness
	Brightness = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ppg_brightness",
			Help: "Most recent mean frame brightness",
		},
	)

	// SecondsRemaining of the current run
	SecondsRemaining = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ppg_seconds_remaining",
			Help: "Seconds remaining in the current measurement",
		},
	)

	// RunsStarted counts measurement starts and restarts
	RunsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ppg_runs_started_total",
			Help: "Total number of measurements started",
		},
	)

	// RunsCompleted counts finished runs by outcome
	RunsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ppg_runs_completed_total",
			Help: "Total number of completed measurements",
		},
		[]string{"outcome"},
	)

	// LastBPM is the BPM of the last determined run
	LastBPM = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ppg_last_bpm",
			Help: "Heart rate of the last determined measurement",
		},
	)

	// AcquisitionFailures counts frame sources that could not be acquired
	AcquisitionFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ppg_frame_acquisition_failures_total",
			Help: "Total number of failed frame source acquisitions",
		},
	)

	// RedisOperations counts Redis calls
	RedisOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_operations_total",
			Help: "Total number of Redis operations",
		},
		[]string{"operation", "status"},
	)

	// NATSMessages counts frames received and results published over NATS
	NATSMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_messages_total",
			Help: "Total number of NATS messages",
		},
		[]string{"subject", "direction"},
	)

	// WebsocketClients connected to the live feed
	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_clients",
			Help: "Number of connected websocket clients",
		},
	)
)
