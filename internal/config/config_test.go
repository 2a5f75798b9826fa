package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("SMART_QUEUE_API_URL", "")
	t.Setenv("DEPARTMENTS", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.QueueSyncURL != DefaultQueueSyncURL {
		t.Fatalf("expected default queue sync url, got %s", cfg.QueueSyncURL)
	}
	if cfg.QueueSyncTimeout != 5*time.Second {
		t.Fatalf("expected default queue sync timeout, got %s", cfg.QueueSyncTimeout)
	}
	if cfg.TelemedBaseURL != DefaultTelemedBaseURL {
		t.Fatalf("expected default telemed base url, got %s", cfg.TelemedBaseURL)
	}
	if cfg.ClinicID != 1 {
		t.Fatalf("expected default clinic id, got %d", cfg.ClinicID)
	}
	if len(cfg.Departments) != 6 || cfg.Departments[0] != "OPD" {
		t.Fatalf("expected default departments, got %v", cfg.Departments)
	}
	if cfg.StaffSessionTTL != 12*time.Hour {
		t.Fatalf("expected default session ttl, got %s", cfg.StaffSessionTTL)
	}
	if cfg.AdminUsername != "admin" {
		t.Fatalf("expected default admin username, got %s", cfg.AdminUsername)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://user@host/frontdesk")
	t.Setenv("TWILIO_PHONE", "whatsapp:+14155238886")
	t.Setenv("SMART_QUEUE_API_URL", "https://queue.internal/api/add_ticket")
	t.Setenv("QUEUE_SYNC_TIMEOUT", "2s")
	t.Setenv("CLINIC_ID", "3")
	t.Setenv("DEPARTMENTS", "OPD, Dental ,Eye")
	t.Setenv("STAFF_SESSION_TTL", "8h")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.DatabaseURL != "postgres://user@host/frontdesk" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if !strings.Contains(cfg.TwilioSender, "whatsapp") {
		t.Fatalf("expected whatsapp sender override, got %s", cfg.TwilioSender)
	}
	if cfg.QueueSyncURL != "https://queue.internal/api/add_ticket" {
		t.Fatalf("expected queue sync url override, got %s", cfg.QueueSyncURL)
	}
	if cfg.QueueSyncTimeout != 2*time.Second {
		t.Fatalf("expected queue sync timeout override, got %s", cfg.QueueSyncTimeout)
	}
	if cfg.ClinicID != 3 {
		t.Fatalf("expected clinic id override, got %d", cfg.ClinicID)
	}
	want := []string{"OPD", "Dental", "Eye"}
	if len(cfg.Departments) != len(want) {
		t.Fatalf("expected %d departments, got %v", len(want), cfg.Departments)
	}
	for i, d := range want {
		if cfg.Departments[i] != d {
			t.Fatalf("department %d = %q, want %q", i, cfg.Departments[i], d)
		}
	}
	if cfg.StaffSessionTTL != 8*time.Hour {
		t.Fatalf("expected session ttl override, got %s", cfg.StaffSessionTTL)
	}
}
