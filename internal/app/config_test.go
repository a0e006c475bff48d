package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gatherly/gatherly/internal/auth"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "gatherly", cfg.Auth.JWT.Issuer)
	require.Equal(t, 24*time.Hour, cfg.Auth.JWT.TTL)
	require.True(t, cfg.Maintenance.SessionCleanup.Enabled)
	require.Equal(t, "@hourly", cfg.Maintenance.SessionCleanup.Schedule)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	contents := `
server:
  port: 9090
  log_level: debug
database:
  driver: postgres
  postgres:
    enabled: true
    host: db.example.com
    port: 5433
    database: gatherly
    username: svc
    password: secret
auth:
  jwt:
    secret: file-secret
    token_ttl: 12h
maintenance:
  session_cleanup:
    schedule: "@every 30m"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(contents), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.True(t, cfg.Database.Postgres.Enabled)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, 5433, cfg.Database.Postgres.Port)
	require.Equal(t, "file-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, 12*time.Hour, cfg.Auth.JWT.TTL)
	require.Equal(t, "@every 30m", cfg.Maintenance.SessionCleanup.Schedule)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("GATHERLY_SERVER_PORT", "7070")
	t.Setenv("GATHERLY_AUTH_JWT_SECRET", "env-secret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "env-secret", cfg.Auth.JWT.Secret)
}

func TestJWTServiceConfig(t *testing.T) {
	cfg := AuthConfig{JWT: JWTSettings{Secret: "s", Issuer: "gatherly"}}
	jwtCfg := cfg.JWTServiceConfig()
	require.Equal(t, auth.DefaultTokenTTL, jwtCfg.TTL)
	require.Equal(t, "gatherly", jwtCfg.Issuer)

	cfg.JWT.TTL = time.Hour
	require.Equal(t, time.Hour, cfg.JWTServiceConfig().TTL)
}
