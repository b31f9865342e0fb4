// Package models - Service configuration and operational settings.
// This file defines the configuration structures for all gatekeeper components.
//
// Configuration Philosophy:
// - Hierarchical configuration with logical grouping (server, upstream, limits, etc.)
// - Environment-friendly defaults that work out of the box
// - Comprehensive validation to catch misconfigurations early
// - Security-first approach: rate limiting defaults to enabled, bypass to disabled
package models

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Counter store type constants
const (
	CounterStoreTypeRedis  = "redis"
	CounterStoreTypeMemory = "memory"
)

// Role store type constants
const (
	RoleStoreTypePostgres = "postgres"
	RoleStoreTypeSQLite   = "sqlite"
	RoleStoreTypeMemory   = "memory"
)

// Config is the root configuration structure containing all service settings.
//
// Configuration Structure:
// - Server: HTTP server and network settings
// - Upstream: the protected application the gateway fronts
// - RateLimit: enforcement toggle and operational bypass
// - CounterStore: the shared atomic counter backend
// - RoleStore: user role lookups backing privilege elevation
// - Logging: structured logging output
// - Metrics / Observability: monitoring and tracing
type Config struct {
	Server        ServerConfig        `yaml:"server" json:"server"`
	Upstream      UpstreamConfig      `yaml:"upstream" json:"upstream"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit" json:"rate_limit"`
	CounterStore  CounterStoreConfig  `yaml:"counter_store" json:"counter_store"`
	RoleStore     RoleStoreConfig     `yaml:"role_store" json:"role_store"`
	Logging       LoggingConfig       `yaml:"logging" json:"logging"`
	Metrics       MetricsConfig       `yaml:"metrics" json:"metrics"`
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

type ServerConfig struct {
	Port         int           `yaml:"port" json:"port"`
	Host         string        `yaml:"host" json:"host"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	TLSEnabled   bool          `yaml:"tls_enabled" json:"tls_enabled"`
	TLSCertFile  string        `yaml:"tls_cert_file" json:"tls_cert_file"`
	TLSKeyFile   string        `yaml:"tls_key_file" json:"tls_key_file"`
}

// UpstreamConfig describes the application the gateway proxies to.
// TrustAuthHeader controls whether the X-Auth-User header stamped by the
// platform's auth layer is honored for user-scoped rate limiting. Only
// enable it when the gateway is unreachable except through that layer.
type UpstreamConfig struct {
	URL             string `yaml:"url" json:"url"`
	TrustAuthHeader bool   `yaml:"trust_auth_header" json:"trust_auth_header"`
}

// RateLimitConfig holds the global enforcement toggle and the bypass secret.
// An empty BypassSecret disables header-based bypass entirely.
type RateLimitConfig struct {
	Enabled      bool   `yaml:"enabled" json:"enabled"`
	BypassSecret string `yaml:"bypass_secret" json:"bypass_secret"`
}

type CounterStoreConfig struct {
	Type  string      `yaml:"type" json:"type"`
	Redis RedisConfig `yaml:"redis" json:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	PoolSize int    `yaml:"pool_size" json:"pool_size"`
}

// RoleStoreConfig selects where user roles are read from. Roles is a static
// seed used only by the memory backend (tests and local development).
type RoleStoreConfig struct {
	Type  string            `yaml:"type" json:"type"`
	DSN   string            `yaml:"dsn" json:"dsn"`
	Roles map[string]string `yaml:"roles" json:"roles"`
}

type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	Format   string `yaml:"format" json:"format"`
	Output   string `yaml:"output" json:"output"`
	FilePath string `yaml:"file_path" json:"file_path"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
	Port    int    `yaml:"port" json:"port"`
}

type ObservabilityConfig struct {
	ServiceName string        `yaml:"service_name" json:"service_name"`
	Tracing     TracingConfig `yaml:"tracing" json:"tracing"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	Exporter     string  `yaml:"exporter" json:"exporter"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" json:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate" json:"sample_rate"`
}

// NewDefaultConfig returns a configuration with sensible defaults that work
// for local development: memory-backed counters and roles, rate limiting on,
// metrics on a separate port.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Upstream: UpstreamConfig{
			URL: "http://localhost:3000",
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
		},
		CounterStore: CounterStoreConfig{
			Type: CounterStoreTypeMemory,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				PoolSize: 10,
			},
		},
		RoleStore: RoleStoreConfig{
			Type: RoleStoreTypeMemory,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
			Port:    9090,
		},
		Observability: ObservabilityConfig{
			ServiceName: "gatekeeper",
			Tracing: TracingConfig{
				Enabled:    false,
				Exporter:   "stdout",
				SampleRate: 1.0,
			},
		},
	}
}

// Validate checks the configuration for internal consistency. It is called
// after file and environment loading so misconfigurations fail at startup.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.TLSEnabled {
		if c.Server.TLSCertFile == "" || c.Server.TLSKeyFile == "" {
			return errors.New("tls_cert_file and tls_key_file are required when TLS is enabled")
		}
	}

	if c.Upstream.URL == "" {
		return errors.New("upstream url is required")
	}
	if _, err := url.Parse(c.Upstream.URL); err != nil {
		return fmt.Errorf("invalid upstream url: %w", err)
	}

	switch c.CounterStore.Type {
	case CounterStoreTypeRedis:
		if c.CounterStore.Redis.Addr == "" {
			return errors.New("redis addr is required for the redis counter store")
		}
	case CounterStoreTypeMemory:
	default:
		return fmt.Errorf("unsupported counter store type: %s", c.CounterStore.Type)
	}

	switch c.RoleStore.Type {
	case RoleStoreTypePostgres, RoleStoreTypeSQLite:
		if c.RoleStore.DSN == "" {
			return fmt.Errorf("dsn is required for %s role store", c.RoleStore.Type)
		}
	case RoleStoreTypeMemory:
	default:
		return fmt.Errorf("unsupported role store type: %s", c.RoleStore.Type)
	}

	if c.Metrics.Enabled {
		if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
			return fmt.Errorf("invalid metrics port: %d", c.Metrics.Port)
		}
		if c.Metrics.Path == "" {
			return errors.New("metrics path is required when metrics are enabled")
		}
	}

	if c.Observability.Tracing.Enabled {
		switch c.Observability.Tracing.Exporter {
		case "stdout":
		case "otlp":
			if c.Observability.Tracing.OTLPEndpoint == "" {
				return errors.New("otlp_endpoint is required for the otlp trace exporter")
			}
		default:
			return fmt.Errorf("unsupported trace exporter: %s", c.Observability.Tracing.Exporter)
		}
	}

	return nil
}
