package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"ventas-dashboard/internal/config"
	"ventas-dashboard/internal/middleware"
	"ventas-dashboard/internal/models"
	"ventas-dashboard/internal/observability"
	"ventas-dashboard/internal/server"
	"ventas-dashboard/internal/services"
	"ventas-dashboard/internal/spreadsheet"
	"ventas-dashboard/internal/ui/templates"
)

const renderTimeout = 10 * time.Second

// newDashboardHandler renders the full page with every value selected.
func newDashboardHandler(dashboard *services.Dashboard, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !dashboard.Ready() {
			http.Error(w, "sales data is not loaded yet", http.StatusServiceUnavailable)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		data := templates.PageData{
			Options: dashboard.Options(),
			Summary: dashboard.Summary(models.Selection{}),
		}

		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.Dashboard(data).Render(ctx, w); err != nil {
			logger.Error("render dashboard", "error", err, "request_id", observability.GetRequestID(ctx))
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

func newHandler(cfg *config.Config, logger *slog.Logger, dashboard *services.Dashboard) http.Handler {
	srv := server.NewServer(dashboard, logger, &server.TemplateHandlers{
		Dashboard: newDashboardHandler(dashboard, logger),
	})

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	chain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)
	return chain(srv)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"addr", cfg.Address(),
		"spreadsheet", cfg.Spreadsheet.Path,
		"sheet", cfg.Spreadsheet.Sheet,
	)

	loader := spreadsheet.NewLoader(cfg.Spreadsheet, logger)
	dashboard := services.NewDashboard(loader)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Spreadsheet.LoadTimeout)
	start := time.Now()
	err = dashboard.Load(ctx)
	cancel()
	if err != nil {
		logger.Error("failed to load sales data", "error", err)
		os.Exit(1)
	}
	logger.Info("sales data loaded",
		"records", dashboard.Table().Len(),
		"duration", time.Since(start),
	)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, logger, dashboard),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)
	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("shutting down dashboard", "records", dashboard.Table().Len())
		return nil
	})

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
