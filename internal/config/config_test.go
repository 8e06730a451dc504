package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	req := require.New(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	req.NoError(err)
	req.Equal("8080", cfg.Port)
	req.Equal(DriverPostgres, cfg.StoreDriver)
	req.Equal("localhost", cfg.Database.Host)
	req.Equal(int32(20), cfg.Database.MaxConns)
	req.Equal(4, cfg.Notify.Workers)
	req.Equal(10*time.Second, cfg.Notify.SendTimeout)
	req.Equal(500*time.Millisecond, cfg.Notify.RetryInterval)
	req.Empty(cfg.BadgerPath)
}

func TestLoad_Overrides(t *testing.T) {
	req := require.New(t)
	t.Chdir(t.TempDir())
	t.Setenv("STORE_DRIVER", "badger")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("NOTIFY_WORKERS", "8")
	t.Setenv("NOTIFY_TIMEOUT", "2s")
	t.Setenv("ADMIN_JWT_SECRET", "s3cret")

	cfg, err := Load()
	req.NoError(err)
	req.Equal(DriverBadger, cfg.StoreDriver)
	req.Equal("db.internal", cfg.Database.Host)
	req.Equal(8, cfg.Notify.Workers)
	req.Equal(2*time.Second, cfg.Notify.SendTimeout)
	req.Equal("s3cret", cfg.AdminJWTSecret)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := Load()
	require.ErrorContains(t, err, "STORE_DRIVER")
}

func TestLoad_RejectsZeroWorkers(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NOTIFY_WORKERS", "0")

	_, err := Load()
	require.ErrorContains(t, err, "NOTIFY_WORKERS")
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		require.Equal(t, want, Config{LogLevel: in}.SlogLevel(), in)
	}
}
