// Command api runs the front desk HTTP server: public booking, the staff
// desk, the live dashboard feed and the operational probes.
package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/kisumuhealth/frontdesk/internal/api/router"
	"github.com/kisumuhealth/frontdesk/internal/audit"
	"github.com/kisumuhealth/frontdesk/internal/booking"
	appconfig "github.com/kisumuhealth/frontdesk/internal/config"
	"github.com/kisumuhealth/frontdesk/internal/http/handlers"
	"github.com/kisumuhealth/frontdesk/internal/ledger"
	"github.com/kisumuhealth/frontdesk/internal/notify"
	"github.com/kisumuhealth/frontdesk/internal/observability/metrics"
	"github.com/kisumuhealth/frontdesk/internal/queue"
	"github.com/kisumuhealth/frontdesk/internal/queuesync"
	"github.com/kisumuhealth/frontdesk/internal/realtime"
	"github.com/kisumuhealth/frontdesk/internal/staff"
	"github.com/kisumuhealth/frontdesk/pkg/logging"
)

// Per-IP budget for the anonymous endpoints.
const (
	publicRatePerSec = 5
	publicBurst      = 10
)

func main() {
	// A local .env is a development convenience; deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting frontdesk API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Without a DATABASE_URL everything runs in memory, which is enough for
	// development and demos.
	pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger)

	var (
		repo       ledger.Repository
		staffStore staff.Store
		syncStore  queuesync.RecordStore
		auditSvc   *audit.Service
		dbPinger   handlers.Pinger
	)
	if pool != nil {
		repo = ledger.NewPostgresRepository(pool, cfg.TelemedBaseURL)
		staffStore = staff.NewPostgresStore(pool)
		syncStore = queuesync.NewPostgresStore(pool)
		dbPinger = pool

		// The audit trail rides database/sql; lib/pq array support does not
		// apply to pgx native connections.
		auditDB, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open audit database handle", "error", err)
			os.Exit(1)
		}
		defer auditDB.Close()
		auditSvc = audit.NewService(auditDB, logger)
	} else {
		repo = ledger.NewInMemoryRepository(cfg.TelemedBaseURL)
		staffStore = staff.NewMemoryStore()
		syncStore = queuesync.NewInMemoryStore()
	}

	// A typed nil *audit.Service must never reach the Recorder interfaces.
	var recorder audit.Recorder
	if auditSvc != nil {
		recorder = auditSvc
	}

	if err := staffStore.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		logger.Error("failed to ensure admin account", "error", err)
		os.Exit(1)
	}
	if recorder != nil {
		recorder.Record(ctx, audit.Event{
			Actor:  "system",
			Action: audit.ActionAccountEnsured,
			Detail: cfg.AdminUsername,
		})
	}

	// Desk sessions live in Redis so serving pins survive a restart; memory
	// is the fallback when Redis is absent.
	rdb := connectRedis(ctx, cfg, logger)
	var (
		sessions    queue.SessionStore
		cachePinger handlers.Pinger
	)
	if rdb != nil {
		sessions = queue.NewRedisSessionStore(rdb, cfg.StaffSessionTTL)
		cachePinger = handlers.PingerFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	} else {
		sessions = queue.NewMemorySessionStore()
	}

	notifier := setupNotifier(cfg, logger)
	if notifier.Simulating() {
		logger.Warn("Twilio credentials not configured, notifications are simulated")
	}

	hub := realtime.NewHub(logger)
	metricsHandler, bookingMetrics := setupMetrics()
	forwarder := queuesync.NewClient(cfg.QueueSyncURL, cfg.QueueSyncTimeout, syncStore, logger)

	svc := booking.NewService(booking.Deps{
		Ledger:    repo,
		Notifier:  notifier,
		QueueSync: forwarder,
		Metrics:   bookingMetrics,
		Audit:     recorder,
		Publisher: hub,
		ClinicID:  cfg.ClinicID,
		Logger:    logger,
	})

	auth := staff.NewAuthenticator(staffStore, cfg.StaffJWTSecret, cfg.StaffSessionTTL, logger)
	if cfg.StaffJWTSecret == "" {
		logger.Warn("STAFF_JWT_SECRET not set, staff login is disabled")
	}

	selector := queue.NewSelector(sessions, repo, notifier, hub, recorder, logger)

	routerCfg := &router.Config{
		Logger:             logger,
		Public:             handlers.NewPublicHandler(svc, logger),
		Session:            handlers.NewSessionHandler(auth, recorder, logger),
		Appointments:       handlers.NewStaffAppointmentsHandler(svc, logger),
		Queue:              handlers.NewQueueHandler(selector, logger),
		Dashboard:          handlers.NewDashboardFeedHandler(hub, logger),
		Health:             handlers.NewHealthHandler(dbPinger, cachePinger, logger),
		Authenticator:      auth,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		PublicRatePerSec:   publicRatePerSec,
		PublicBurst:        publicBurst,
	}
	if auditSvc != nil {
		routerCfg.AuditLog = handlers.NewAuditLogHandler(auditSvc, logger)
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if pool != nil {
		pool.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// connectPostgresPool opens the pgx pool, or returns nil when no database is
// configured so the server falls back to the in-memory stores. A configured
// but unreachable database is fatal.
func connectPostgresPool(ctx context.Context, url string, logger *logging.Logger) *pgxpool.Pool {
	if url == "" {
		logger.Warn("DATABASE_URL not set, appointments are held in memory")
		return nil
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		os.Exit(1)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		logger.Error("failed to ping postgres", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to postgres")
	return pool
}

// connectRedis dials Redis for the desk session store. Failure degrades to
// the in-memory store instead of blocking startup.
func connectRedis(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *redis.Client {
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, desk sessions are held in memory",
			"addr", cfg.RedisAddr,
			"error", err,
		)
		_ = client.Close()
		return nil
	}
	logger.Info("connected to redis", "addr", cfg.RedisAddr)
	return client
}

// setupNotifier builds the patient notification dispatcher. Missing Twilio
// credentials leave it in simulated mode.
func setupNotifier(cfg *appconfig.Config, logger *logging.Logger) *notify.Dispatcher {
	var sender notify.Sender
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioSender != "" {
		sender = notify.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioSender, cfg.NotifyTimeout, logger)
	}
	return notify.NewDispatcher(sender, cfg.TwilioSender, logger)
}

// setupMetrics registers the booking metrics on a private registry and
// returns the exposition handler alongside them.
func setupMetrics() (http.Handler, *metrics.BookingMetrics) {
	reg := prometheus.NewRegistry()
	m := metrics.NewBookingMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), m
}
