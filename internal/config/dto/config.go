package dto

import (
	"time"
)

// ApplicationConfig is the root configuration structure
type ApplicationConfig struct {
	Application   ApplicationInfo     `mapstructure:"application"`
	Relay         RelayConfig         `mapstructure:"relay"`
	Buffer        BufferConfig        `mapstructure:"buffer"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Shutdown      ShutdownConfig      `mapstructure:"shutdown"`
}

// ApplicationInfo contains application metadata
type ApplicationInfo struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// RelayConfig contains relay endpoint configuration
type RelayConfig struct {
	ListenAddr    string          `mapstructure:"listen_addr"`
	UpstreamAddr  string          `mapstructure:"upstream_addr"`
	DialTimeoutMS int             `mapstructure:"dial_timeout_ms"`
	WebSocket     WebSocketConfig `mapstructure:"websocket"`
}

// WebSocketConfig contains the optional WebSocket ingress configuration
type WebSocketConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ListenAddr string `mapstructure:"listen_addr"`
	Path       string `mapstructure:"path"`
}

// BufferConfig contains per-connection buffering configuration
type BufferConfig struct {
	CapacityBytes  int    `mapstructure:"capacity_bytes"`
	OverflowPolicy string `mapstructure:"overflow_policy"`
	ReadChunkBytes int    `mapstructure:"read_chunk_bytes"`
}

// ObservabilityConfig contains logging, metrics and health configuration
type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Health  HealthConfig  `mapstructure:"health"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// HealthConfig contains health endpoint configuration
type HealthConfig struct {
	Port          int    `mapstructure:"port"`
	LivenessPath  string `mapstructure:"liveness_path"`
	ReadinessPath string `mapstructure:"readiness_path"`
}

// ShutdownConfig contains graceful shutdown configuration
type ShutdownConfig struct {
	GracePeriodSeconds  int `mapstructure:"grace_period_seconds"`
	ForceTimeoutSeconds int `mapstructure:"force_timeout_seconds"`
}

// DialTimeout returns the upstream dial timeout as a duration.
func (c *RelayConfig) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutMS) * time.Millisecond
}

// GracePeriod returns the graceful shutdown window as a duration.
func (c *ShutdownConfig) GracePeriod() time.Duration {
	return time.Duration(c.GracePeriodSeconds) * time.Second
}

// ForceTimeout returns the hard shutdown deadline as a duration.
func (c *ShutdownConfig) ForceTimeout() time.Duration {
	return time.Duration(c.ForceTimeoutSeconds) * time.Second
}
