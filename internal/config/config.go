// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverBadger   = "badger"
)

// Database holds PostgreSQL connection settings.
type Database struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName   string `env:"DB_NAME" envDefault:"eventregistration"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConns int32  `env:"DB_MAX_CONNS" envDefault:"20"`
}

// Notify holds confirmation mail dispatch settings.
type Notify struct {
	Workers       int           `env:"NOTIFY_WORKERS" envDefault:"4"`
	QueueSize     int           `env:"NOTIFY_QUEUE_SIZE" envDefault:"256"`
	MaxRetries    uint64        `env:"NOTIFY_MAX_RETRIES" envDefault:"3"`
	RetryInterval time.Duration `env:"NOTIFY_RETRY_INTERVAL" envDefault:"500ms"`
	SendTimeout   time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"10s"`
	From          string        `env:"MAIL_FROM" envDefault:"no-reply@events.local"`
	DefaultLocale string        `env:"DEFAULT_LOCALE" envDefault:"en"`
}

// Config is the full service configuration.
type Config struct {
	Port           string `env:"PORT" envDefault:"8080"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	StoreDriver    string `env:"STORE_DRIVER" envDefault:"postgres"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"eventregistration.db"`
	BadgerPath     string `env:"BADGER_PATH"`
	AdminJWTSecret string `env:"ADMIN_JWT_SECRET"`
	WebDir         string `env:"WEB_DIR" envDefault:"./web"`

	Database Database
	Notify   Notify
}

// Load reads an optional .env file and then parses the environment.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres, DriverSQLite, DriverBadger:
	default:
		return fmt.Errorf("STORE_DRIVER must be one of postgres, sqlite, badger; got %q", c.StoreDriver)
	}
	if c.Notify.Workers < 1 {
		return fmt.Errorf("NOTIFY_WORKERS must be positive, got %d", c.Notify.Workers)
	}
	if c.Notify.QueueSize < 0 {
		return fmt.Errorf("NOTIFY_QUEUE_SIZE must not be negative, got %d", c.Notify.QueueSize)
	}
	return nil
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
