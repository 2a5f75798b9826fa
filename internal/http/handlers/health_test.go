package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLiveEndpoint(t *testing.T) {
	handler := NewHealthHandler(nil, nil, nil)

	rec := httptest.NewRecorder()
	handler.Live(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestReadyEndpoint(t *testing.T) {
	ok := PingerFunc(func(context.Context) error { return nil })
	down := PingerFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name       string
		db, cache  Pinger
		wantStatus int
		wantBody   string
	}{
		{"all healthy", ok, ok, http.StatusOK, `"status":"ready"`},
		{"database down", down, ok, http.StatusServiceUnavailable, `"database":"unavailable"`},
		{"redis down", ok, down, http.StatusServiceUnavailable, `"redis":"unavailable"`},
		{"no stores wired", nil, nil, http.StatusOK, `"status":"ready"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.db, tt.cache, nil)
			rec := httptest.NewRecorder()
			handler.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want %s", rec.Body.String(), tt.wantBody)
			}
		})
	}
}
