package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/kisumuhealth/frontdesk/pkg/logging"
)

const readinessTimeout = 2 * time.Second

// Pinger reports whether a backing store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler serves the liveness and readiness probes. Either pinger may
// be nil; a nil check is simply skipped.
type HealthHandler struct {
	db     Pinger
	cache  Pinger
	logger *logging.Logger
}

func NewHealthHandler(db, cache Pinger, logger *logging.Logger) *HealthHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &HealthHandler{db: db, cache: cache, logger: logger}
}

// Live reports ok while the process runs.
// Route: GET /health
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready checks the backing stores and reports 503 when any is down.
// Route: GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := map[string]string{}
	healthy := true
	if h.db != nil {
		checks["database"] = "ok"
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Warn("readiness: database ping failed", "error", err)
			checks["database"] = "unavailable"
			healthy = false
		}
	}
	if h.cache != nil {
		checks["redis"] = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			h.logger.Warn("readiness: redis ping failed", "error", err)
			checks["redis"] = "unavailable"
			healthy = false
		}
	}

	status := http.StatusOK
	overall := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}
	writeJSON(w, status, map[string]any{"status": overall, "checks": checks})
}
