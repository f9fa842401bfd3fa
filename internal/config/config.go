package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	Port    string

	// Metadata store (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Session store (token -> user id, with expiry)
	SessionPath string
	SessionTTL  time.Duration

	// Blob storage
	StoragePath string

	// Thumbnail job queue + worker
	QueuePath         string
	WorkerEnabled     bool
	WorkerConcurrency int
	JobMaxAttempts    int

	// Observability (optional)
	SentryDSN string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		AppName: envString("APP_NAME", "filevault"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		Port:    envString("PORT", "8080"),

		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/filevault.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		SessionPath: envString("SESSION_PATH", "./data/sessions"),
		SessionTTL:  envDuration("SESSION_TTL", 24*time.Hour),

		StoragePath: envString("STORAGE_PATH", "/tmp/filevault"),

		QueuePath:         envString("QUEUE_PATH", "./data/queue"),
		WorkerEnabled:     envBool("WORKER_ENABLED", true),
		WorkerConcurrency: envInt("WORKER_CONCURRENCY", 1),
		JobMaxAttempts:    envInt("JOB_MAX_ATTEMPTS", 5),

		SentryDSN: envString("SENTRY_DSN", ""),
	}

	return cfg
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
