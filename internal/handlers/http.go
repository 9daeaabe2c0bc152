package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"pulsecam/internal/metrics"
	"pulsecam/internal/models"
	"pulsecam/internal/session"
)

const (
	defaultResultsLimit = 10
	maxResultsLimit     = 100
)

// Controller is the measurement control surface used by the handlers
type Controller interface {
	Start(ctx context.Context) error
	Restart(ctx context.Context) error
	Stop()
	Snapshot() session.Snapshot
}

// ResultStore serves the history of completed runs
type ResultStore interface {
	GetRecentResults(ctx context.Context, limit int) ([]models.Result, error)
	Ping(ctx context.Context) error
	GetStats(ctx context.Context) (map[string]interface{}, error)
}

// Handler serves the HTTP API
type Handler struct {
	controller Controller
	store      ResultStore
}

// NewHandler creates a handler. store may be nil when history is disabled.
func NewHandler(controller Controller, store ResultStore) *Handler {
	return &Handler{
		controller: controller,
		store:      store,
	}
}

// Register mounts the API on mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/measurement", h.GetMeasurement)
	mux.HandleFunc("/measurement/start", h.StartMeasurement)
	mux.HandleFunc("/measurement/restart", h.RestartMeasurement)
	mux.HandleFunc("/measurement/stop", h.StopMeasurement)
	mux.HandleFunc("/results", h.GetResults)
	mux.HandleFunc("/stats", h.GetStats)
	mux.HandleFunc("/health", h.HealthCheck)
}

func observe(r *http.Request, endpoint string) func() {
	start := time.Now()
	return func() {
		duration := time.Since(start).Seconds()
		metrics.RequestDuration.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}

func count(r *http.Request, endpoint string, status int) {
	metrics.RequestsTotal.WithLabelValues(r.Method, endpoint, strconv.Itoa(status)).Inc()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// GetMeasurement handles GET /measurement
func (h *Handler) GetMeasurement(w http.ResponseWriter, r *http.Request) {
	defer observe(r, "/measurement")()

	if r.Method != http.MethodGet {
		count(r, "/measurement", http.StatusMethodNotAllowed)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	count(r, "/measurement", http.StatusOK)
	writeJSON(w, http.StatusOK, models.NewStatus(h.controller.Snapshot()))
}

// StartMeasurement handles POST /measurement/start
func (h *Handler) StartMeasurement(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, "/measurement/start", h.controller.Start)
}

// RestartMeasurement handles POST /measurement/restart
func (h *Handler) RestartMeasurement(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, "/measurement/restart", h.controller.Restart)
}

// StopMeasurement handles POST /measurement/stop
func (h *Handler) StopMeasurement(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, "/measurement/stop", func(context.Context) error {
		h.controller.Stop()
		return nil
	})
}

func (h *Handler) control(w http.ResponseWriter, r *http.Request, endpoint string, action func(context.Context) error) {
	defer observe(r, endpoint)()

	if r.Method != http.MethodPost {
		count(r, endpoint, http.StatusMethodNotAllowed)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := http.StatusOK
	if err := action(r.Context()); err != nil {
		switch {
		case errors.Is(err, session.ErrMeasuring):
			status = http.StatusConflict
		case errors.Is(err, session.ErrFrameAcquisition):
			status = http.StatusServiceUnavailable
		default:
			status = http.StatusInternalServerError
		}
	}

	count(r, endpoint, status)
	writeJSON(w, status, models.NewStatus(h.controller.Snapshot()))
}

// GetResults handles GET /results?limit=N
func (h *Handler) GetResults(w http.ResponseWriter, r *http.Request) {
	defer observe(r, "/results")()

	if r.Method != http.MethodGet {
		count(r, "/results", http.StatusMethodNotAllowed)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.store == nil {
		count(r, "/results", http.StatusNotFound)
		http.Error(w, "Result history is disabled", http.StatusNotFound)
		return
	}

	limit := defaultResultsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			count(r, "/results", http.StatusBadRequest)
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxResultsLimit)
	}

	results, err := h.store.GetRecentResults(r.Context(), limit)
	if err != nil {
		count(r, "/results", http.StatusInternalServerError)
		http.Error(w, "Failed to retrieve results", http.StatusInternalServerError)
		return
	}

	count(r, "/results", http.StatusOK)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(results),
		"results": results,
	})
}

// GetStats handles GET /stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	defer observe(r, "/stats")()

	if r.Method != http.MethodGet {
		count(r, "/stats", http.StatusMethodNotAllowed)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var redisStats interface{} = "disabled"
	if h.store != nil {
		stats, err := h.store.GetStats(r.Context())
		if err != nil {
			count(r, "/stats", http.StatusInternalServerError)
			http.Error(w, "Failed to retrieve stats", http.StatusInternalServerError)
			return
		}
		redisStats = stats
	}

	count(r, "/stats", http.StatusOK)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"measurement": models.NewStatus(h.controller.Snapshot()),
		"redis":       redisStats,
		"timestamp":   time.Now(),
	})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	redisStatus := "disabled"
	status := "healthy"
	httpStatus := http.StatusOK

	if h.store != nil {
		redisStatus = "ok"
		if err := h.store.Ping(r.Context()); err != nil {
			redisStatus = "unavailable"
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, httpStatus, map[string]interface{}{
		"status":      status,
		"redis":       redisStatus,
		"measurement": h.controller.Snapshot().State.String(),
		"timestamp":   time.Now(),
	})
}
