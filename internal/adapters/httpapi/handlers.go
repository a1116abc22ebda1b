package httpapi

import (
	"errors"
	"net/http"

	"github.com/surfguard/surfguard/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthHandler serves the Prometheus metrics registry.
type HealthHandler struct{}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// HandleHealth handles GET /healthz requests by serving the custom
// metrics registry.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

// MetricsHandler serves the JSON metrics snapshot polled by dashboards.
type MetricsHandler struct {
	deps Dependencies
}

// NewMetricsHandler creates a new metrics handler.
func NewMetricsHandler(deps Dependencies) *MetricsHandler {
	return &MetricsHandler{deps: deps}
}

// HandleMetrics handles GET /metrics.json requests.
func (h *MetricsHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Metrics())
}

// ControlHandler drives lifecycle transitions from the UI thread.
type ControlHandler struct {
	deps Dependencies
}

// NewControlHandler creates a new control handler.
func NewControlHandler(deps Dependencies) *ControlHandler {
	return &ControlHandler{deps: deps}
}

type controlRequest struct {
	Action string `json:"action"`
}

type controlResponse struct {
	Action string `json:"action"`
	OK     bool   `json:"ok"`
}

// HandleControl handles POST /control requests with
// {action: start|stop|pause|resume}.
func (h *ControlHandler) HandleControl(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	var req controlRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	ctx := r.Context()
	ok := true
	switch req.Action {
	case "start":
		ok = h.deps.Start(ctx)
	case "stop":
		h.deps.Stop(ctx)
	case "pause":
		h.deps.Pause(ctx)
	case "resume":
		h.deps.Resume(ctx)
	default:
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("unknown action"))
		return
	}

	writeJSON(w, http.StatusOK, controlResponse{Action: req.Action, OK: ok})
}

// ReportHandler exports the session event log.
type ReportHandler struct {
	deps Dependencies
}

// NewReportHandler creates a new report handler.
func NewReportHandler(deps Dependencies) *ReportHandler {
	return &ReportHandler{deps: deps}
}

type exportRequest struct {
	Path string `json:"path,omitempty"`
}

type exportResponse struct {
	Path string `json:"path"`
}

// HandleExport handles POST /report/export requests.
func (h *ReportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	var req exportRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	path, err := h.deps.ExportReport(r.Context(), req.Path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, exportResponse{Path: path})
}

// StatusHandler reports the lifecycle state.
type StatusHandler struct {
	deps Dependencies
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(deps Dependencies) *StatusHandler {
	return &StatusHandler{deps: deps}
}

type statusResponse struct {
	Running bool `json:"running"`
	Paused  bool `json:"paused"`
}

// HandleStatus handles GET /status requests.
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Running: h.deps.Running(),
		Paused:  h.deps.Paused(),
	})
}
