// Package router assembles the HTTP surface: public booking endpoints,
// the JWT-guarded staff desk, and the operational probes.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kisumuhealth/frontdesk/internal/http/handlers"
	httpmiddleware "github.com/kisumuhealth/frontdesk/internal/http/middleware"
	"github.com/kisumuhealth/frontdesk/internal/staff"
	"github.com/kisumuhealth/frontdesk/pkg/logging"
)

// Config holds router configuration. Handlers left nil have their routes
// skipped, so a deployment can run the public surface alone.
type Config struct {
	Logger *logging.Logger

	Public       *handlers.PublicHandler
	Session      *handlers.SessionHandler
	Appointments *handlers.StaffAppointmentsHandler
	Queue        *handlers.QueueHandler
	AuditLog     *handlers.AuditLogHandler
	Dashboard    *handlers.DashboardFeedHandler
	Health       *handlers.HealthHandler

	// Authenticator guards the staff surface. Nil leaves every staff route
	// unregistered.
	Authenticator *staff.Authenticator

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// PublicRatePerSec limits the anonymous endpoints per client IP. Zero
	// disables limiting.
	PublicRatePerSec float64
	PublicBurst      int
}

// New creates a new chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Probes and metrics stay outside the limiter so orchestration never
	// gets throttled.
	if cfg.Health != nil {
		r.Get("/health", cfg.Health.Live)
		r.Get("/ready", cfg.Health.Ready)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Anonymous patient endpoints. Login sits here too: it is reached
	// without a token and brute-force attempts hit the same limiter.
	r.Group(func(public chi.Router) {
		if cfg.PublicRatePerSec > 0 {
			public.Use(httpmiddleware.RateLimit(cfg.PublicRatePerSec, cfg.PublicBurst))
		}
		if cfg.Public != nil {
			public.Post("/api/book", cfg.Public.Book)
			public.Get("/api/status", cfg.Public.Status)
		}
		if cfg.Session != nil {
			public.Post("/api/staff/login", cfg.Session.Login)
		}
	})

	// Staff desk, behind the session token.
	if cfg.Authenticator != nil {
		r.Group(func(sr chi.Router) {
			sr.Use(httpmiddleware.StaffJWT(cfg.Authenticator))

			if cfg.Appointments != nil {
				sr.Get("/api/staff/appointments", cfg.Appointments.List)
				sr.Route("/api/staff/appointments/{id}", func(ar chi.Router) {
					ar.Put("/", cfg.Appointments.Edit)
					ar.Patch("/", cfg.Appointments.Patch)
					ar.Delete("/", cfg.Appointments.Delete)
					ar.Post("/confirm", cfg.Appointments.Confirm)
					ar.Post("/cancel", cfg.Appointments.Cancel)
					ar.Post("/reschedule", cfg.Appointments.Reschedule)
					ar.Post("/stage", cfg.Appointments.Stage)
					ar.Post("/notes", cfg.Appointments.Notes)
					ar.Post("/insurance", cfg.Appointments.Insurance)
					ar.Post("/remind", cfg.Appointments.Remind)
				})
			}
			if cfg.Queue != nil {
				sr.Get("/api/staff/queue/current", cfg.Queue.Current)
				sr.Post("/api/staff/queue/next", cfg.Queue.Next)
				sr.Post("/api/staff/queue/skip", cfg.Queue.Skip)
				sr.Post("/api/staff/queue/recall", cfg.Queue.Recall)
			}
			if cfg.AuditLog != nil {
				sr.Get("/api/staff/audit", cfg.AuditLog.Recent)
			}
			if cfg.Dashboard != nil {
				sr.Get("/ws/dashboard", cfg.Dashboard.ServeHTTP)
			}
		})
	}

	return r
}
