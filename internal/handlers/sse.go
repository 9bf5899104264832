package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"ventas-dashboard/internal/charts"
	"ventas-dashboard/internal/errors"
	"ventas-dashboard/internal/models"
	"ventas-dashboard/internal/observability"
	"ventas-dashboard/internal/services"
	"ventas-dashboard/internal/ui/templates"
)

type SSEHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewSSEHandlers(dashboard *services.Dashboard, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

func (h *SSEHandlers) renderKPIs(ctx context.Context, k models.KPIs) (string, error) {
	var buf strings.Builder
	err := templates.KPIs(k).Render(ctx, &buf)
	return buf.String(), err
}

// patchSummary sends the KPI fragment and the chart signals for summary.
func (h *SSEHandlers) patchSummary(ctx context.Context, sse *datastar.ServerSentEventGenerator, summary models.Summary, extra map[string]any) error {
	html, err := h.renderKPIs(ctx, summary.KPIs)
	if err != nil {
		return err
	}
	if err := sse.PatchElements(html); err != nil {
		return err
	}

	figures := charts.Build(summary)
	signals := map[string]any{
		"_dateChart":    figures.DateChart,
		"_productChart": figures.ProductChart,
		"_pendingChart": figures.PendingChart,
	}
	for k, v := range extra {
		signals[k] = v
	}

	payload, err := json.Marshal(signals)
	if err != nil {
		return err
	}
	return sse.PatchSignals(payload)
}

// HandleDashboard recomputes the KPIs and charts for the selection carried in
// the request's signals.
func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	var sel models.Selection
	if err := datastar.ReadSignals(r, &sel); err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "Invalid signals"), requestID)
		return
	}
	if err := validateSelection(sel); err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}
	if !h.dashboard.Ready() {
		errors.WriteError(w, h.logger, errors.ServiceUnavailable("Sales data is not loaded yet"), requestID)
		return
	}

	sse := datastar.NewSSE(w, r)

	summary := h.dashboard.Summary(sel)
	if err := h.patchSummary(r.Context(), sse, summary, nil); err != nil {
		h.logger.Error("patch dashboard", "error", err, "request_id", requestID)
		return
	}

	h.logger.Debug("dashboard patched",
		"rows", summary.RowCount,
		"request_id", requestID,
	)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// HandleReset selects every value again and sends the matching dashboard.
func (h *SSEHandlers) HandleReset(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())
	if !h.dashboard.Ready() {
		errors.WriteError(w, h.logger, errors.ServiceUnavailable("Sales data is not loaded yet"), requestID)
		return
	}

	sse := datastar.NewSSE(w, r)

	opts := h.dashboard.Options()
	extra := map[string]any{
		paramBranch:  opts.Branches,
		paramProduct: opts.Products,
		paramDate:    opts.Dates,
	}
	if err := h.patchSummary(r.Context(), sse, h.dashboard.Summary(models.Selection{}), extra); err != nil {
		h.logger.Error("patch reset", "error", err, "request_id", requestID)
		return
	}

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
