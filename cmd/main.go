package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jittakal/ringpipe/internal/config"
	"github.com/jittakal/ringpipe/internal/observability"
	"github.com/jittakal/ringpipe/internal/pipe"
	"github.com/jittakal/ringpipe/internal/relay"
	"github.com/jittakal/ringpipe/internal/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}

func run() error {
	// Parse command-line flags
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	// Load configuration
	// Priority: CLI flag > CONFIG_PATH env var > default path
	var cfgPath string
	if *configPath != "" {
		cfgPath = *configPath
	} else if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		cfgPath = envPath
	} else {
		cfgPath = "config/application.yaml"
	}

	loader := config.NewLoader()
	cfg, err := loader.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize observability
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:  cfg.Observability.Logging.Level,
		Format: cfg.Observability.Logging.Format,
		Output: cfg.Observability.Logging.Output,
	})
	logger.Info("starting ring pipe relay",
		"version", cfg.Application.Version,
		"environment", cfg.Application.Environment,
	)

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	// Track cleanup functions
	var cleanupFuncs []func() error
	addCleanup := func(name string, fn func() error) {
		cleanupFuncs = append(cleanupFuncs, fn)
		logger.Debug("registered cleanup", "component", name)
	}

	policy, err := pipe.ParsePolicy(cfg.Buffer.OverflowPolicy)
	if err != nil {
		return fmt.Errorf("invalid overflow policy: %w", err)
	}

	rly, err := relay.New(relay.Config{
		ListenAddr:     cfg.Relay.ListenAddr,
		UpstreamAddr:   cfg.Relay.UpstreamAddr,
		DialTimeout:    cfg.Relay.DialTimeout(),
		BufferCapacity: cfg.Buffer.CapacityBytes,
		OverflowPolicy: policy,
		ReadChunkBytes: cfg.Buffer.ReadChunkBytes,
		WSEnabled:      cfg.Relay.WebSocket.Enabled,
		WSListenAddr:   cfg.Relay.WebSocket.ListenAddr,
		WSPath:         cfg.Relay.WebSocket.Path,
	}, logger, metrics)
	if err != nil {
		return fmt.Errorf("failed to create relay: %w", err)
	}
	addCleanup("relay", rly.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rly.Start(ctx); err != nil {
		return fmt.Errorf("failed to start relay: %w", err)
	}

	// Start HTTP servers for health and metrics
	httpServer := server.NewServer(
		server.Options{
			HealthPort:    cfg.Observability.Health.Port,
			MetricsPort:   cfg.Observability.Metrics.Port,
			MetricsPath:   cfg.Observability.Metrics.Path,
			LivenessPath:  cfg.Observability.Health.LivenessPath,
			ReadinessPath: cfg.Observability.Health.ReadinessPath,
		},
		rly,
		registry,
		logger,
	)

	if err := httpServer.Start(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	addCleanup("http-server", func() error {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	logger.Info("application started successfully",
		"listen_addr", rly.Addr().String(),
	)

	// Wait for termination signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("received termination signal")

	// Graceful shutdown
	logger.Info("initiating graceful shutdown",
		"grace_period", cfg.Shutdown.GracePeriod(),
	)
	cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := len(cleanupFuncs) - 1; i >= 0; i-- {
			if err := cleanupFuncs[i](); err != nil {
				logger.Error("cleanup failed", "error", err)
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(cfg.Shutdown.ForceTimeout()):
		logger.Warn("shutdown deadline exceeded, exiting")
	}

	logger.Info("application stopped successfully")
	return nil
}
