package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"ventas-dashboard/internal/errors"
	"ventas-dashboard/internal/observability"
	"ventas-dashboard/internal/services"
)

const noCache = "no-store"

type APIHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewAPIHandlers(dashboard *services.Dashboard, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

// ready writes a 503 and reports false while the table is not loaded.
func (h *APIHandlers) ready(w http.ResponseWriter, r *http.Request) bool {
	if h.dashboard.Ready() {
		return true
	}
	errors.WriteError(w, h.logger, errors.ServiceUnavailable("Sales data is not loaded yet"), observability.GetRequestID(r.Context()))
	return false
}

func (h *APIHandlers) HandleOptions(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w, r) {
		return
	}

	headers := map[string]string{
		"Cache-Control": "public, max-age=300",
	}

	errors.WriteSuccessWithHeaders(w, h.dashboard.Options(), headers)
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w, r) {
		return
	}

	sel, err := selectionFromQuery(r.URL.Query())
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}

	errors.WriteSuccessWithHeaders(w, h.dashboard.Summary(sel), map[string]string{"Cache-Control": noCache})
}

func (h *APIHandlers) HandleRecords(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w, r) {
		return
	}

	sel, err := selectionFromQuery(r.URL.Query())
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}

	errors.WriteSuccessWithHeaders(w, h.dashboard.Records(sel), map[string]string{"Cache-Control": noCache})
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if !h.dashboard.Ready() {
		status = "starting"
	}

	healthData := map[string]string{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.dashboard.Stats())
}

// HandleNotFound answers unknown /api/ paths with a JSON envelope instead of
// the mux's plain-text 404.
func (h *APIHandlers) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	errors.WriteError(w, h.logger, errors.NotFound("No endpoint at "+r.URL.Path), observability.GetRequestID(r.Context()))
}
