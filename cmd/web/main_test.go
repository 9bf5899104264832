package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"ventas-dashboard/internal/config"
	"ventas-dashboard/internal/models"
	"ventas-dashboard/internal/services"
	"ventas-dashboard/internal/spreadsheet"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeSalesWorkbook saves a small workbook in the stock layout.
func writeSalesWorkbook(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet("ventas"); err != nil {
		t.Fatal(err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		t.Fatal(err)
	}

	if err := f.SetCellValue("ventas", "A1", "Reporte de ventas"); err != nil {
		t.Fatal(err)
	}
	rows := [][]any{
		{"Sucursal", "Producto", "Fecha", "Importe Pendiente", "Importe Total", "Cantidad Surtida"},
		{"Centro", "Agua", "01/01/2024", 10, 100, 1},
		{"Norte", "Hielo", "02/01/2024", 20, 200, 2},
		{"Centro", "Hielo", "02/01/2024", 5, 50, 3},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(3, i+2)
		r := row
		if err := f.SetSheetRow("ventas", cell, &r); err != nil {
			t.Fatal(err)
		}
	}

	path := filepath.Join(t.TempDir(), "datos.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestApp(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		Spreadsheet: config.DefaultSpreadsheet(),
		Security: config.SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8501"},
			TrustedProxies: []string{"127.0.0.1"},
		},
	}
	cfg.Spreadsheet.Path = writeSalesWorkbook(t)

	logger := testLogger()
	dashboard := services.NewDashboard(spreadsheet.NewLoader(cfg.Spreadsheet, logger))
	if err := dashboard.Load(context.Background()); err != nil {
		t.Fatalf("load dashboard: %v", err)
	}
	return newHandler(cfg, logger, dashboard)
}

func TestApp_DashboardPage(t *testing.T) {
	app := newTestApp(t)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected HTML, got %q", ct)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected request id header")
	}

	body := w.Body.String()
	for _, s := range []string{"MX $ 350", "Centro", "Hielo", "2024-01-02", "/sse/dashboard"} {
		if !strings.Contains(body, s) {
			t.Errorf("expected page to contain %q", s)
		}
	}
}

func TestApp_Summary(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		query string
		total int64
	}{
		{"", 350},
		{"?sucursal=Centro", 150},
		{"?producto=Hielo&fecha=2024-01-02", 250},
		{"?sucursal=", 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/summary"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
			}

			var resp struct {
				Data models.Summary `json:"data"`
			}
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.Data.KPIs.TotalAmount != tt.total {
				t.Errorf("expected total %d, got %d", tt.total, resp.Data.KPIs.TotalAmount)
			}
		})
	}
}

func TestApp_SSE(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/sse/dashboard?datastar="+url.QueryEscape(`{"sucursal":["Norte"]}`), nil)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "datastar-patch-elements") || !strings.Contains(body, "MX $ 200") {
		t.Errorf("unexpected SSE body: %s", body)
	}
}

func TestApp_Headers(t *testing.T) {
	app := newTestApp(t)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("Content-Security-Policy") == "" {
		t.Error("expected security headers on every response")
	}
}

func TestDashboardHandler_NotReady(t *testing.T) {
	h := newDashboardHandler(services.NewDashboard(nil), testLogger())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}
