// Package httpapi declares the HTTP contracts and route registration for
// the metrics/control surface polled by dashboards and the extension.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/surfguard/surfguard/internal/app"
)

// Dependencies bundles what the handlers need from the detection system.
// Keeping this an interface decouples the transport from the orchestrator.
type Dependencies interface {
	Start(ctx context.Context) bool
	Stop(ctx context.Context)
	Pause(ctx context.Context)
	Resume(ctx context.Context)
	Running() bool
	Paused() bool
	Metrics() app.MetricsSnapshot
	ExportReport(ctx context.Context, path string) (string, error)
}

// Server wires HTTP routes for the control/metrics surface.
type Server struct {
	healthHandler  *HealthHandler
	metricsHandler *MetricsHandler
	controlHandler *ControlHandler
	reportHandler  *ReportHandler
	statusHandler  *StatusHandler
}

// NewServer creates an API server over the detection system.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		metricsHandler: NewMetricsHandler(deps),
		controlHandler: NewControlHandler(deps),
		reportHandler:  NewReportHandler(deps),
		statusHandler:  NewStatusHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics.json", MetricsMiddleware(s.metricsHandler.HandleMetrics, "metrics"))
	mux.HandleFunc("/control", MetricsMiddleware(s.controlHandler.HandleControl, "control"))
	mux.HandleFunc("/report/export", MetricsMiddleware(s.reportHandler.HandleExport, "report_export"))
	mux.HandleFunc("/status", MetricsMiddleware(s.statusHandler.HandleStatus, "status"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
