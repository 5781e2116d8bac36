package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jittakal/ringpipe/internal/config/dto"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	if loader == nil {
		t.Fatal("expected non-nil loader")
	}
	if loader.v == nil {
		t.Fatal("expected non-nil viper instance")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "test-config.yaml")
	if err := os.WriteFile(configFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}
	return configFile
}

func TestLoader_LoadWithValidConfig(t *testing.T) {
	configFile := writeConfig(t, `
application:
  name: test-relay
  version: 1.0.0

relay:
  listen_addr: ":7070"
  upstream_addr: "localhost:9000"

buffer:
  capacity_bytes: 8192
  overflow_policy: drop
`)

	loader := NewLoader()
	config, err := loader.Load(configFile)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if config == nil {
		t.Fatal("expected non-nil config")
	}

	if config.Application.Name != "test-relay" {
		t.Errorf("application.name = %s, want test-relay", config.Application.Name)
	}
	if config.Relay.UpstreamAddr != "localhost:9000" {
		t.Errorf("relay.upstream_addr = %s, want localhost:9000", config.Relay.UpstreamAddr)
	}
	if config.Buffer.CapacityBytes != 8192 {
		t.Errorf("buffer.capacity_bytes = %d, want 8192", config.Buffer.CapacityBytes)
	}
	if config.Buffer.OverflowPolicy != "drop" {
		t.Errorf("buffer.overflow_policy = %s, want drop", config.Buffer.OverflowPolicy)
	}
}

func TestLoader_Defaults(t *testing.T) {
	configFile := writeConfig(t, `
relay:
  upstream_addr: "localhost:9000"
`)

	loader := NewLoader()
	config, err := loader.Load(configFile)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.Relay.ListenAddr != ":7070" {
		t.Errorf("default relay.listen_addr = %s, want :7070", config.Relay.ListenAddr)
	}
	if config.Buffer.CapacityBytes != 64*1024 {
		t.Errorf("default buffer.capacity_bytes = %d, want %d", config.Buffer.CapacityBytes, 64*1024)
	}
	if config.Buffer.OverflowPolicy != "block" {
		t.Errorf("default buffer.overflow_policy = %s, want block", config.Buffer.OverflowPolicy)
	}
	if config.Buffer.ReadChunkBytes != 4096 {
		t.Errorf("default buffer.read_chunk_bytes = %d, want 4096", config.Buffer.ReadChunkBytes)
	}
	if config.Observability.Metrics.Port != 9090 {
		t.Errorf("default metrics port = %d, want 9090", config.Observability.Metrics.Port)
	}
	if config.Observability.Health.Port != 8080 {
		t.Errorf("default health port = %d, want 8080", config.Observability.Health.Port)
	}
	if config.Shutdown.GracePeriodSeconds != 30 {
		t.Errorf("default grace period = %d, want 30", config.Shutdown.GracePeriodSeconds)
	}
}

func TestLoader_MissingUpstream(t *testing.T) {
	configFile := writeConfig(t, `
relay:
  listen_addr: ":7070"
`)

	loader := NewLoader()
	if _, err := loader.Load(configFile); err == nil {
		t.Error("expected error for missing relay.upstream_addr")
	}
}

func TestLoader_Validate(t *testing.T) {
	valid := func() *dto.ApplicationConfig {
		return &dto.ApplicationConfig{
			Relay: dto.RelayConfig{
				ListenAddr:    ":7070",
				UpstreamAddr:  "localhost:9000",
				DialTimeoutMS: 5000,
			},
			Buffer: dto.BufferConfig{
				CapacityBytes:  4096,
				OverflowPolicy: "block",
				ReadChunkBytes: 1024,
			},
			Observability: dto.ObservabilityConfig{
				Metrics: dto.MetricsConfig{Port: 9090},
				Health:  dto.HealthConfig{Port: 8080},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*dto.ApplicationConfig)
		wantErr bool
	}{
		{"valid", func(c *dto.ApplicationConfig) {}, false},
		{"missing listen addr", func(c *dto.ApplicationConfig) { c.Relay.ListenAddr = "" }, true},
		{"missing upstream addr", func(c *dto.ApplicationConfig) { c.Relay.UpstreamAddr = "" }, true},
		{"zero dial timeout", func(c *dto.ApplicationConfig) { c.Relay.DialTimeoutMS = 0 }, true},
		{"zero buffer capacity", func(c *dto.ApplicationConfig) { c.Buffer.CapacityBytes = 0 }, true},
		{"negative buffer capacity", func(c *dto.ApplicationConfig) { c.Buffer.CapacityBytes = -1 }, true},
		{"zero read chunk", func(c *dto.ApplicationConfig) { c.Buffer.ReadChunkBytes = 0 }, true},
		{"bad overflow policy", func(c *dto.ApplicationConfig) { c.Buffer.OverflowPolicy = "reject" }, true},
		{"bad metrics port", func(c *dto.ApplicationConfig) { c.Observability.Metrics.Port = 0 }, true},
		{"bad health port", func(c *dto.ApplicationConfig) { c.Observability.Health.Port = 70000 }, true},
		{"ws enabled without addr", func(c *dto.ApplicationConfig) {
			c.Relay.WebSocket = dto.WebSocketConfig{Enabled: true, Path: "/pipe"}
		}, true},
		{"ws bad path", func(c *dto.ApplicationConfig) {
			c.Relay.WebSocket = dto.WebSocketConfig{Enabled: true, ListenAddr: ":7071", Path: "pipe"}
		}, true},
		{"ws valid", func(c *dto.ApplicationConfig) {
			c.Relay.WebSocket = dto.WebSocketConfig{Enabled: true, ListenAddr: ":7071", Path: "/pipe"}
		}, false},
	}

	loader := NewLoader()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := loader.Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoader_EnvExpansion(t *testing.T) {
	t.Setenv("RINGPIPE_TEST_UPSTREAM", "upstream.internal:9000")

	configFile := writeConfig(t, `
relay:
  upstream_addr: "${RINGPIPE_TEST_UPSTREAM}"
`)

	loader := NewLoader()
	config, err := loader.Load(configFile)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.Relay.UpstreamAddr != "upstream.internal:9000" {
		t.Errorf("relay.upstream_addr = %s, want expanded env value", config.Relay.UpstreamAddr)
	}
}
