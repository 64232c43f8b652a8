package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/vigilsys/vigil/internal/tasks"
)

// SupervisorView exposes the supervisor state the status API reads.
type SupervisorView interface {
	LastDrain() tasks.DrainSnapshot
}

// ReporterView exposes the reporter state the status API reads.
type ReporterView interface {
	LastStatus() tasks.RuntimeStatus
}

// WatchdogView exposes the watchdog state the status API reads.
type WatchdogView interface {
	PetAges() map[string]time.Duration
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	RunID     string              `json:"run_id"`
	StartedAt time.Time           `json:"started_at"`
	UptimeMS  int64               `json:"uptime_ms"`
	Runtime   tasks.RuntimeStatus `json:"runtime"`
	LastDrain tasks.DrainSnapshot `json:"last_drain"`
	PetAgesMS map[string]int64    `json:"pet_ages_ms"`
}

// StatusHandler serves the read-only operational status of the current
// run. It has no feedback path into the pipeline.
type StatusHandler struct {
	supervisor SupervisorView
	reporter   ReporterView
	watchdog   WatchdogView
	runID      uuid.UUID
	startedAt  time.Time
	logger     *slog.Logger
}

// NewStatusHandler creates a StatusHandler for the given run.
func NewStatusHandler(
	supervisor SupervisorView,
	reporter ReporterView,
	wd WatchdogView,
	runID uuid.UUID,
	logger *slog.Logger,
) *StatusHandler {
	return &StatusHandler{
		supervisor: supervisor,
		reporter:   reporter,
		watchdog:   wd,
		runID:      runID,
		startedAt:  time.Now(),
		logger:     logger.With("component", "status_api"),
	}
}

// Router returns the HTTP router serving the status endpoints.
func (h *StatusHandler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)
	r.Get("/status", h.Status)

	return r
}

// Health handles GET /healthz requests.
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		h.logger.Error("failed to write health response", "error", err)
	}
}

// Status handles GET /status requests.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	petAges := make(map[string]int64)
	for task, age := range h.watchdog.PetAges() {
		petAges[task] = age.Milliseconds()
	}

	resp := StatusResponse{
		RunID:     h.runID.String(),
		StartedAt: h.startedAt,
		UptimeMS:  time.Since(h.startedAt).Milliseconds(),
		Runtime:   h.reporter.LastStatus(),
		LastDrain: h.supervisor.LastDrain(),
		PetAgesMS: petAges,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode status response", "error", err)
	}
}
