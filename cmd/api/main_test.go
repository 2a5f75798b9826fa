package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	appconfig "github.com/kisumuhealth/frontdesk/internal/config"
	"github.com/kisumuhealth/frontdesk/pkg/logging"
)

func TestSetupMetricsExposesBookingHistogram(t *testing.T) {
	handler, m := setupMetrics()
	if handler == nil || m == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	m.ObserveBooking("OPD", 0.25)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "frontdesk_booking_duration_seconds") {
		t.Fatalf("expected booking histogram to be exported")
	}
}

func TestConnectPostgresPoolEmptyURLReturnsNil(t *testing.T) {
	logger := logging.New("error")
	if pool := connectPostgresPool(context.Background(), "", logger); pool != nil {
		t.Fatalf("expected nil pool for empty URL")
	}
}

func TestConnectRedisReachable(t *testing.T) {
	mr := miniredis.RunT(t)
	logger := logging.New("error")
	cfg := &appconfig.Config{RedisAddr: mr.Addr()}

	client := connectRedis(context.Background(), cfg, logger)
	if client == nil {
		t.Fatalf("expected a client for a reachable server")
	}
	defer client.Close()
}

func TestConnectRedisUnreachableReturnsNil(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{RedisAddr: "127.0.0.1:1"}

	if client := connectRedis(context.Background(), cfg, logger); client != nil {
		t.Fatalf("expected nil client for an unreachable server")
	}
}

func TestSetupNotifierWithoutCredentialsSimulates(t *testing.T) {
	logger := logging.New("error")

	d := setupNotifier(&appconfig.Config{}, logger)
	if !d.Simulating() {
		t.Fatalf("expected simulated dispatcher without credentials")
	}
}

func TestSetupNotifierWithCredentials(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{
		TwilioAccountSID: "AC123",
		TwilioAuthToken:  "token",
		TwilioSender:     "+254700000001",
	}

	d := setupNotifier(cfg, logger)
	if d.Simulating() {
		t.Fatalf("expected live dispatcher with credentials")
	}
}
