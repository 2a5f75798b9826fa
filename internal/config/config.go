package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults that mirror the hospital's current deployment. Every one of them
// can be overridden through the environment.
const (
	DefaultQueueSyncURL   = "https://smart-queue-system-management-ignquprgpzmjvjjhtzzpwm.streamlit.app/api/add_ticket"
	DefaultTelemedBaseURL = "https://telemed.example.com"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Patient notifications. TwilioSender is the sending identity; when it
	// contains "whatsapp" the dispatcher addresses recipients over the
	// WhatsApp channel instead of SMS.
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioSender     string
	NotifyTimeout    time.Duration

	// Hospital-wide queue display integration.
	QueueSyncURL     string
	QueueSyncTimeout time.Duration

	TelemedBaseURL string
	ClinicID       int64
	Departments    []string

	StaffJWTSecret  string
	StaffSessionTTL time.Duration
	AdminUsername   string
	AdminPassword   string

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioSender:     getEnv("TWILIO_PHONE", ""),
		NotifyTimeout:    getEnvAsDuration("NOTIFY_TIMEOUT", 10*time.Second),

		QueueSyncURL:     getEnv("SMART_QUEUE_API_URL", DefaultQueueSyncURL),
		QueueSyncTimeout: getEnvAsDuration("QUEUE_SYNC_TIMEOUT", 5*time.Second),

		TelemedBaseURL: getEnv("TELEMED_BASE_URL", DefaultTelemedBaseURL),
		ClinicID:       int64(getEnvAsInt("CLINIC_ID", 1)),
		Departments:    getEnvAsList("DEPARTMENTS", []string{"OPD", "MCH/FP", "Dental", "Surgery", "Orthopedics", "Eye"}),

		StaffJWTSecret:  getEnv("STAFF_JWT_SECRET", ""),
		StaffSessionTTL: getEnvAsDuration("STAFF_SESSION_TTL", 12*time.Hour),
		AdminUsername:   getEnv("STAFF_ADMIN_USERNAME", "admin"),
		AdminPassword:   getEnv("STAFF_ADMIN_PASSWORD", "admin123"),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated environment variable, trimming
// whitespace and dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
