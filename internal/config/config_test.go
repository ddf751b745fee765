package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const fullConfig = `
app:
  port: 9000
  gin_mode: test
  shutdown_timeout: 5s
  trusted_proxies: [10.0.0.0/8, 172.17.0.1]
database:
  dsn: postgres://u:p@db:5432/x
redis:
  addr: redis:6379
  db: 2
jwt:
  secret: s3cret
  issuer: xbpneus-test
  access_ttl: 5m
  refresh_ttl: 24h
auth:
  backends: [approval]
  bcrypt_cost: 4
  update_last_login: true
lockout:
  enabled: true
  failure_limit: 3
  cooloff: 1h
rate_limit:
  enabled: true
  capacity: 4
  refill_interval: 2s
  ttl: 1s
rabbitmq:
  url: amqp://guest:guest@mq:5672/
  exchange: accounts
casbin:
  model_path: /etc/casbin/model.conf
`

func TestLoadFromFile(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, fullConfig))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "test", cfg.GinMode)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"10.0.0.0/8", "172.17.0.1"}, cfg.TrustedProxies)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.DSN)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, "xbpneus-test", cfg.JWTIssuer)
	assert.Equal(t, 5*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 24*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, []string{BackendApproval}, cfg.AuthBackends)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.True(t, cfg.UpdateLastLogin)
	assert.True(t, cfg.LockoutEnabled)
	assert.Equal(t, 3, cfg.LockoutLimit)
	assert.Equal(t, time.Hour, cfg.LockoutCooloff)
	assert.Equal(t, "axes", cfg.LockoutPrefix)
	assert.Equal(t, "amqp://guest:guest@mq:5672/", cfg.RabbitURL)
	assert.Equal(t, "accounts", cfg.RabbitExchange)
	assert.Equal(t, "/etc/casbin/model.conf", cfg.CasbinModelPath)

	// TTL is raised to five refill intervals.
	assert.Equal(t, 4, cfg.RateLimit.Capacity)
	assert.Equal(t, 1, cfg.RateLimit.RefillTokens)
	assert.Equal(t, 2*time.Second, cfg.RateLimit.RefillInterval)
	assert.Equal(t, 10*time.Second, cfg.RateLimit.TTL)
}

func TestLoadFromFile_Defaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, "jwt:\n  secret: x\n"))
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, []string{BackendApproval, BackendModel}, cfg.AuthBackends)
	assert.Equal(t, 5, cfg.LockoutLimit)
	assert.Equal(t, 30*time.Minute, cfg.LockoutCooloff)
	assert.Equal(t, "casbin/model.conf", cfg.CasbinModelPath)
	assert.False(t, cfg.LockoutEnabled)
	assert.Empty(t, cfg.TrustedProxies, "no proxy is trusted unless configured")
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "7001")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("AUTH_BACKENDS", "model, approval")
	t.Setenv("LOCKOUT_ENABLED", "false")
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("TRUSTED_PROXIES", "")

	cfg, err := LoadFromFile(writeConfig(t, fullConfig))
	require.NoError(t, err)

	assert.Equal(t, "7001", cfg.Port)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, []string{BackendModel, BackendApproval}, cfg.AuthBackends)
	assert.False(t, cfg.LockoutEnabled)
	assert.Equal(t, "cache:6380", cfg.RedisAddr)
	assert.Empty(t, cfg.TrustedProxies, "an empty TRUSTED_PROXIES clears the file list")
}

func TestLoadFromFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "missing secret", body: "app:\n  port: 1\n", wantErr: "jwt.secret is required"},
		{name: "bad access ttl", body: "jwt:\n  secret: x\n  access_ttl: soon\n", wantErr: "invalid JWT access TTL"},
		{name: "refresh shorter than access", body: "jwt:\n  secret: x\n  access_ttl: 2h\n  refresh_ttl: 1h\n", wantErr: "must exceed access TTL"},
		{name: "unknown backend", body: "jwt:\n  secret: x\nauth:\n  backends: [ldap]\n", wantErr: "unknown auth backend"},
		{name: "bad cooloff", body: "jwt:\n  secret: x\nlockout:\n  cooloff: forever\n", wantErr: "invalid lockout cooloff"},
		{name: "bad trusted proxy", body: "app:\n  trusted_proxies: [proxy.local]\njwt:\n  secret: x\n", wantErr: "invalid trusted proxy"},
		{name: "bad trusted cidr", body: "app:\n  trusted_proxies: [10.0.0.0/33]\njwt:\n  secret: x\n", wantErr: "invalid trusted proxy"},
		{name: "bad yaml", body: "jwt: [", wantErr: "could not parse config yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not read config file")
}
