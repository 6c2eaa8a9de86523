package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/bakery/internal/notify"
	"github.com/Skotchmaster/bakery/internal/search"
	"github.com/Skotchmaster/bakery/pkg/config"
)

type ServiceConfig struct {
	config.Config

	OTPTTL           time.Duration
	OrderEventsTopic string

	Search search.Config
	SMTP   notify.SMTPConfig
	// EmailDisabled logs outgoing mail instead of sending it.
	EmailDisabled bool

	TraceExporter   string
	TaskConcurrency int
	TaskTimeout     time.Duration
	CookieSecure    bool
}

// Load reads the environment and stops the process when a required variable
// is missing.
func Load() ServiceConfig {
	cfg := FromEnv()

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustSecret(cfg.JWTSecret, "JWT_SECRET", 32)
	if !cfg.EmailDisabled {
		config.MustNonEmpty(cfg.SMTP.Host, "SMTP_HOST")
	}
	return cfg
}

// FromEnv maps .env (when present) and the process environment without
// validating them. Variables already set in the process win.
func FromEnv() ServiceConfig {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("notice: cannot read .env: %v", err)
	}
	return ServiceConfig{
		Config: config.Load(),

		OTPTTL:           config.EnvDurationDefault("OTP_TTL", 10*time.Minute),
		OrderEventsTopic: config.EnvDefault("ORDER_EVENTS_TOPIC", "order_events"),

		Search: search.Config{
			URL:      os.Getenv("ES_URL"),
			Username: os.Getenv("ES_USER"),
			Password: os.Getenv("ES_PASSWORD"),
			Index:    config.EnvDefault("ES_INDEX", "products"),
		},
		SMTP: notify.SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     config.EnvIntDefault("SMTP_PORT", 587),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("MAIL_FROM"),
		},
		EmailDisabled: config.EnvBoolDefault("EMAIL_DISABLED", false),

		TraceExporter:   config.EnvDefault("TRACE_EXPORTER", "none"),
		TaskConcurrency: config.EnvIntDefault("TASK_CONCURRENCY", 16),
		TaskTimeout:     config.EnvDurationDefault("TASK_TIMEOUT", 30*time.Second),
		CookieSecure:    config.EnvBoolDefault("COOKIE_SECURE", false),
	}
}
