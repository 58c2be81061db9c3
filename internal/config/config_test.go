package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pronoelite/pronoelite-api/internal/database"
)

func TestLoadRequiresSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	require.Equal(t, database.MySQL, cfg.Dialect())
	require.Contains(t, cfg.DSN(), "@tcp(localhost:3306)/pronos")
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
	require.Equal(t, 60, cfg.RateLimit.Capacity)
	require.Equal(t, "none", cfg.EventsBackend)
	require.Equal(t, []string{"*"}, cfg.CORSOrigins)
	require.Equal(t, "http://localhost:8080/auth/google/callback", cfg.GoogleRedirectURL)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_NAME", "local")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, time.Hour, cfg.TokenTTL)
	require.Equal(t, database.SQLite, cfg.Dialect())
	require.Equal(t, "local.db", cfg.DSN())
	require.Equal(t, "cache:6380", cfg.Redis.Addr)
	require.Equal(t, 1, cfg.RateLimit.Capacity)
	require.Equal(t, 2*time.Second, cfg.RateLimit.RefillInterval)
	require.Equal(t, 10*time.Second, cfg.RateLimit.TTL)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "oracle")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("JWT_SECRET", "s3cret")
	yaml := "db_driver: postgres\ndb_host: pg\ndb_port: \"5432\"\nevents_backend: Kafka\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, database.Postgres, cfg.Dialect())
	require.Contains(t, cfg.DSN(), "host=pg port=5432")
	require.Equal(t, "kafka", cfg.EventsBackend)
}
