package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimitBucketsPerIP(t *testing.T) {
	handler := RateLimit(1, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/book", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	// Drain the first address's burst.
	for i := 0; i < 2; i++ {
		if code := send("203.0.113.9:1234"); code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i, code, http.StatusOK)
		}
	}
	if code := send("203.0.113.9:9999"); code != http.StatusTooManyRequests {
		t.Errorf("drained ip status = %d, want %d", code, http.StatusTooManyRequests)
	}

	// A different client is unaffected.
	if code := send("198.51.100.7:4321"); code != http.StatusOK {
		t.Errorf("fresh ip status = %d, want %d", code, http.StatusOK)
	}
}

func TestRateLimitRejectionEnvelope(t *testing.T) {
	handler := RateLimit(1, 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/book", nil)
		req.RemoteAddr = "203.0.113.9:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if i == 0 {
			continue
		}
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
		}
		var body struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Success {
			t.Error("success = true on rejection")
		}
		if body.Error == "" {
			t.Error("missing error message")
		}
	}
}

func TestClientIPStripsPort(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		want   string
	}{
		{"host and port", "203.0.113.9:1234", "203.0.113.9"},
		{"ipv6 with port", "[2001:db8::1]:443", "2001:db8::1"},
		{"bare address from real ip", "203.0.113.9", "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
