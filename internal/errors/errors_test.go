package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusCodes(t *testing.T) {
	cause := stderrors.New("x")

	tests := []struct {
		err  *AppError
		want int
	}{
		{Internal("x"), http.StatusInternalServerError},
		{ValidationWrap(cause, "x"), http.StatusBadRequest},
		{BadRequestWrap(cause, "x"), http.StatusBadRequest},
		{NotFound("x"), http.StatusNotFound},
		{RateLimit("x"), http.StatusTooManyRequests},
		{ServiceUnavailable("x"), http.StatusServiceUnavailable},
		{New("SOMETHING_ELSE", "x"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			if tt.err.StatusCode != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, tt.err.StatusCode)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("bad date")

	client := ValidationWrap(cause, "invalid fecha")
	if !stderrors.Is(client, cause) {
		t.Error("wrapped error should unwrap to its cause")
	}
	if client.Details != "bad date" {
		t.Errorf("expected client error details, got %q", client.Details)
	}

	server := InternalWrap(cause, "boom")
	if server.Details != "" {
		t.Errorf("server errors must not expose details, got %q", server.Details)
	}
}

func TestIsMatchesCode(t *testing.T) {
	err := fmt.Errorf("lookup: %w", NotFound("no such endpoint"))

	if !stderrors.Is(err, &AppError{Code: CodeNotFound}) {
		t.Error("expected a NOT_FOUND match through the wrap chain")
	}
	if stderrors.Is(err, &AppError{Code: CodeValidation}) {
		t.Error("different codes must not match")
	}
}

func TestWriteError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  ErrorCode
	}{
		{"app error", ValidationWrap(stderrors.New("nope"), "bad input"), http.StatusBadRequest, CodeValidation},
		{"wrapped app error", fmt.Errorf("handler: %w", ServiceUnavailable("later")), http.StatusServiceUnavailable, CodeServiceUnavail},
		{"plain error", stderrors.New("disk on fire"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, logger, tt.err, "req-1")

			if w.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, w.Code)
			}

			var resp struct {
				Success bool `json:"success"`
				Error   struct {
					Code      ErrorCode `json:"code"`
					Details   string    `json:"details"`
					RequestID string    `json:"request_id"`
				} `json:"error"`
			}
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.Success {
				t.Error("expected success=false")
			}
			if resp.Error.Code != tt.wantErr || resp.Error.RequestID != "req-1" {
				t.Errorf("unexpected error body: %+v", resp.Error)
			}
			if tt.wantCode >= 500 && resp.Error.Details != "" {
				t.Errorf("server error leaked details %q", resp.Error.Details)
			}
		})
	}
}

func TestWriteSuccessWithHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessWithHeaders(w, []int{1, 2}, map[string]string{"Cache-Control": "no-store"})

	if w.Header().Get("Cache-Control") != "no-store" {
		t.Error("expected custom header")
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Error("expected JSON content type")
	}

	var resp SuccessResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
}
