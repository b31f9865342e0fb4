package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.RateLimit.Enabled, "rate limiting should default to enabled")
	assert.Empty(t, cfg.RateLimit.BypassSecret, "bypass should default to disabled")
	assert.Equal(t, CounterStoreTypeMemory, cfg.CounterStore.Type)
	assert.Equal(t, RoleStoreTypeMemory, cfg.RoleStore.Type)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestConfig_Validate_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate_InvalidPort(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg.Server.Port = 70000
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_TLSRequiresFiles(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Server.TLSEnabled = true
	assert.Error(t, cfg.Validate())

	cfg.Server.TLSCertFile = "/tmp/cert.pem"
	cfg.Server.TLSKeyFile = "/tmp/key.pem"
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_UpstreamRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Upstream.URL = ""
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_RedisRequiresAddr(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.CounterStore.Type = CounterStoreTypeRedis
	cfg.CounterStore.Redis.Addr = ""
	assert.Error(t, cfg.Validate())

	cfg.CounterStore.Redis.Addr = "localhost:6379"
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_UnknownCounterStore(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.CounterStore.Type = "etcd"
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_RoleStoreDSN(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.RoleStore.Type = RoleStoreTypePostgres
	assert.Error(t, cfg.Validate(), "postgres role store requires a DSN")

	cfg.RoleStore.DSN = "postgres://localhost/blog"
	assert.NoError(t, cfg.Validate())

	cfg.RoleStore.Type = "dynamo"
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_Tracing(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Observability.Tracing.Enabled = true
	cfg.Observability.Tracing.Exporter = "otlp"
	assert.Error(t, cfg.Validate(), "otlp exporter requires an endpoint")

	cfg.Observability.Tracing.OTLPEndpoint = "localhost:4317"
	assert.NoError(t, cfg.Validate())

	cfg.Observability.Tracing.Exporter = "jaeger"
	assert.Error(t, cfg.Validate())
}
