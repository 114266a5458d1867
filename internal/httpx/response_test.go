package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusTeapot, "short and stout", slog.New(slog.NewTextHandler(io.Discard, nil)))

	if rec.Code != http.StatusTeapot {
		t.Errorf("expected status 418, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected application/json, got %s", rec.Header().Get("Content-Type"))
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["error"] != "short and stout" {
		t.Errorf("unexpected error message: %s", body["error"])
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid object", `{"code":"SAVE20"}`, false},
		{"malformed", `{"code":`, true},
		{"trailing document", `{"code":"A"}{"code":"B"}`, true},
		{"empty", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			var v struct {
				Code string `json:"code"`
			}
			err := DecodeJSON(rec, req, &v)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidBody) {
					t.Errorf("expected ErrInvalidBody, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v.Code != "SAVE20" {
				t.Errorf("expected SAVE20, got %s", v.Code)
			}
		})
	}
}
