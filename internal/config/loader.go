package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/jittakal/ringpipe/internal/config/dto"
)

// Loader handles configuration loading and validation
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

// Load loads configuration from file and environment variables
func (l *Loader) Load(path string) (*dto.ApplicationConfig, error) {
	// Set defaults
	l.setDefaults()

	// Load from file if provided
	if path != "" {
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// Expand environment variables in config values
	// Only expand if the value contains ${...} pattern
	for _, key := range l.v.AllKeys() {
		value := l.v.GetString(key)
		if strings.Contains(value, "${") {
			l.v.Set(key, os.ExpandEnv(value))
		}
	}

	// Unmarshal configuration
	var config dto.ApplicationConfig
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := l.Validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func (l *Loader) setDefaults() {
	// Application defaults
	l.v.SetDefault("application.name", "ringpipe")
	l.v.SetDefault("application.version", "1.0.0")
	l.v.SetDefault("application.environment", "development")

	// Relay defaults
	l.v.SetDefault("relay.listen_addr", ":7070")
	l.v.SetDefault("relay.dial_timeout_ms", 5000)
	l.v.SetDefault("relay.websocket.enabled", false)
	l.v.SetDefault("relay.websocket.listen_addr", ":7071")
	l.v.SetDefault("relay.websocket.path", "/pipe")

	// Buffer defaults
	l.v.SetDefault("buffer.capacity_bytes", 64*1024)
	l.v.SetDefault("buffer.overflow_policy", "block")
	l.v.SetDefault("buffer.read_chunk_bytes", 4096)

	// Observability defaults
	l.v.SetDefault("observability.logging.level", "info")
	l.v.SetDefault("observability.logging.format", "json")
	l.v.SetDefault("observability.logging.output", "stdout")
	l.v.SetDefault("observability.metrics.enabled", true)
	l.v.SetDefault("observability.metrics.port", 9090)
	l.v.SetDefault("observability.metrics.path", "/metrics")
	l.v.SetDefault("observability.health.port", 8080)
	l.v.SetDefault("observability.health.liveness_path", "/health/live")
	l.v.SetDefault("observability.health.readiness_path", "/health/ready")

	// Shutdown defaults
	l.v.SetDefault("shutdown.grace_period_seconds", 30)
	l.v.SetDefault("shutdown.force_timeout_seconds", 60)
}

// Validate validates the configuration
func (l *Loader) Validate(config *dto.ApplicationConfig) error {
	// Relay validation
	if config.Relay.ListenAddr == "" {
		return errors.New("relay.listen_addr is required")
	}
	if config.Relay.UpstreamAddr == "" {
		return errors.New("relay.upstream_addr is required")
	}
	if config.Relay.DialTimeoutMS <= 0 {
		return fmt.Errorf("invalid relay.dial_timeout_ms: %d", config.Relay.DialTimeoutMS)
	}
	if config.Relay.WebSocket.Enabled {
		if config.Relay.WebSocket.ListenAddr == "" {
			return errors.New("relay.websocket.listen_addr is required when websocket ingress is enabled")
		}
		if !strings.HasPrefix(config.Relay.WebSocket.Path, "/") {
			return fmt.Errorf("invalid relay.websocket.path: %q", config.Relay.WebSocket.Path)
		}
	}

	// Buffer validation. The ring itself tolerates a zero capacity, but a
	// relay configured that way could never move a byte.
	if config.Buffer.CapacityBytes <= 0 {
		return fmt.Errorf("invalid buffer.capacity_bytes: %d", config.Buffer.CapacityBytes)
	}
	if config.Buffer.ReadChunkBytes <= 0 {
		return fmt.Errorf("invalid buffer.read_chunk_bytes: %d", config.Buffer.ReadChunkBytes)
	}
	if config.Buffer.OverflowPolicy != "block" && config.Buffer.OverflowPolicy != "drop" {
		return fmt.Errorf("unsupported buffer.overflow_policy: %s", config.Buffer.OverflowPolicy)
	}

	// Port validation
	if config.Observability.Metrics.Port < 1 || config.Observability.Metrics.Port > 65535 {
		return fmt.Errorf("invalid metrics port: %d", config.Observability.Metrics.Port)
	}
	if config.Observability.Health.Port < 1 || config.Observability.Health.Port > 65535 {
		return fmt.Errorf("invalid health port: %d", config.Observability.Health.Port)
	}

	return nil
}
