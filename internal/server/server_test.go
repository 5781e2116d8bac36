package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type mockHealthChecker struct {
	liveness  bool
	readiness bool
	status    map[string]string
}

func (m *mockHealthChecker) Liveness() bool                   { return m.liveness }
func (m *mockHealthChecker) Readiness(_ context.Context) bool { return m.readiness }
func (m *mockHealthChecker) GetStatus() map[string]string     { return m.status }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewServer(t *testing.T) {
	registry := prometheus.NewRegistry()
	checker := &mockHealthChecker{liveness: true, readiness: true}

	srv := NewServer(Options{HealthPort: 8080, MetricsPort: 9090}, checker, registry, discardLogger())
	if srv == nil {
		t.Fatal("expected non-nil server")
	}
	if srv.healthServer.Addr != ":8080" {
		t.Errorf("health addr = %s, want :8080", srv.healthServer.Addr)
	}
	if srv.metricsServer.Addr != ":9090" {
		t.Errorf("metrics addr = %s, want :9090", srv.metricsServer.Addr)
	}
}

func TestLivenessHandler(t *testing.T) {
	tests := []struct {
		name       string
		liveness   bool
		wantStatus int
		wantBody   string
	}{
		{"alive", true, http.StatusOK, "alive"},
		{"not alive", false, http.StatusServiceUnavailable, "not alive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := &mockHealthChecker{liveness: tt.liveness}
			handler := LivenessHandler(checker, discardLogger())

			req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
			rec := httptest.NewRecorder()
			handler(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var resp HealthResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Status != tt.wantBody {
				t.Errorf("body status = %q, want %q", resp.Status, tt.wantBody)
			}
			if resp.Timestamp == "" {
				t.Error("expected a timestamp")
			}
		})
	}
}

func TestReadinessHandler(t *testing.T) {
	checker := &mockHealthChecker{
		readiness: true,
		status: map[string]string{
			"listener":           ":7070",
			"active_connections": "3",
		},
	}
	handler := ReadinessHandler(checker, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Checks["active_connections"] != "3" {
		t.Errorf("checks = %v, want active_connections=3", resp.Checks)
	}
}

func TestReadinessHandler_NotReady(t *testing.T) {
	checker := &mockHealthChecker{readiness: false}
	handler := ReadinessHandler(checker, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestServer_Shutdown(t *testing.T) {
	registry := prometheus.NewRegistry()
	checker := &mockHealthChecker{liveness: true, readiness: true}

	// Ports unlikely to collide in CI; Start returns before binding completes.
	srv := NewServer(Options{HealthPort: 18080, MetricsPort: 19090}, checker, registry, discardLogger())
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
