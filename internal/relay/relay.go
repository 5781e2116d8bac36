// Package relay implements a TCP byte relay that buffers each direction of
// a connection through a fixed-capacity ring buffer, so a bursty peer can
// run ahead of a slow one up to the buffer capacity.
package relay

import (
	"context"
	goerrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jittakal/ringpipe/internal/errors"
	"github.com/jittakal/ringpipe/internal/pipe"
)

// Directions of a relayed byte stream, used as metric labels.
const (
	directionUpstream   = "upstream"   // client -> upstream
	directionDownstream = "downstream" // upstream -> client
)

// Config contains relay configuration, already validated by the config
// loader.
type Config struct {
	ListenAddr     string
	UpstreamAddr   string
	DialTimeout    time.Duration
	BufferCapacity int
	OverflowPolicy pipe.OverflowPolicy
	ReadChunkBytes int

	WSEnabled    bool
	WSListenAddr string
	WSPath       string
}

// MetricsCollector defines metrics operations for the relay.
type MetricsCollector interface {
	IncConnectionsOpened(ingress string)
	IncConnectionsClosed(ingress, reason string)
	IncActiveConnections()
	DecActiveConnections()
	IncDialErrors()
	AddBytesRelayed(direction string, n int)
	AddBytesDropped(direction string, n uint64)
	IncRelayErrors(direction string)
	ObserveBufferOccupancy(direction string, ratio float64)
	IncWriteStalls(direction string)
}

// Relay accepts client connections and splices them to a configured
// upstream, buffering each direction through a BufferedPipe.
type Relay struct {
	cfg     Config
	logger  *slog.Logger
	metrics MetricsCollector

	mu       sync.Mutex
	listener net.Listener
	wsServer *wsIngress
	sessions map[string]func() // per-connection teardown
	closed   bool

	wg sync.WaitGroup
}

// New creates a relay. The configuration must already be validated.
func New(cfg Config, logger *slog.Logger, metrics MetricsCollector) (*Relay, error) {
	if cfg.UpstreamAddr == "" {
		return nil, errors.ErrUpstreamUnavailable
	}
	if cfg.ReadChunkBytes <= 0 {
		cfg.ReadChunkBytes = 4096
	}
	return &Relay{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		sessions: make(map[string]func()),
	}, nil
}

// Start binds the TCP listener (and the WebSocket ingress when enabled) and
// begins accepting connections in the background.
func (r *Relay) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return errors.ErrRelayClosed
	}

	ln, err := net.Listen("tcp", r.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", r.cfg.ListenAddr, err)
	}
	r.listener = ln

	r.logger.Info("relay listening",
		"listen_addr", ln.Addr().String(),
		"upstream_addr", r.cfg.UpstreamAddr,
		"buffer_capacity", r.cfg.BufferCapacity,
		"overflow_policy", r.cfg.OverflowPolicy.String(),
	)

	r.wg.Add(1)
	go r.acceptLoop(ctx, ln)

	if r.cfg.WSEnabled {
		ws, err := newWSIngress(r, r.cfg.WSListenAddr, r.cfg.WSPath)
		if err != nil {
			ln.Close()
			return err
		}
		r.wsServer = ws
		r.logger.Info("websocket ingress listening",
			"listen_addr", r.cfg.WSListenAddr,
			"path", r.cfg.WSPath,
		)
	}

	return nil
}

// Addr returns the bound listener address, for tests that listen on ":0".
func (r *Relay) Addr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

// WSAddr returns the bound WebSocket ingress address, or nil when the
// ingress is disabled.
func (r *Relay) WSAddr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.wsServer == nil {
		return nil
	}
	return r.wsServer.addr
}

func (r *Relay) acceptLoop(ctx context.Context, ln net.Listener) {
	defer r.wg.Done()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if goerrors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return
			}
			r.logger.Error("accept failed", "error", err)
			continue
		}

		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.handleConn(conn, "tcp")
		}()
	}
}

// handleConn relays one client connection until both directions complete or
// either side fails.
func (r *Relay) handleConn(clientConn net.Conn, ingress string) {
	connID := uuid.NewString()
	logger := r.logger.With("conn_id", connID, "ingress", ingress)

	r.metrics.IncConnectionsOpened(ingress)
	r.metrics.IncActiveConnections()
	defer r.metrics.DecActiveConnections()

	upstreamConn, err := net.DialTimeout("tcp", r.cfg.UpstreamAddr, r.cfg.DialTimeout)
	if err != nil {
		r.metrics.IncDialErrors()
		r.metrics.IncConnectionsClosed(ingress, "dial_error")
		logger.Error("upstream dial failed", "error", &errors.DialError{Addr: r.cfg.UpstreamAddr, Err: err})
		clientConn.Close()
		return
	}

	up := pipe.New(r.cfg.BufferCapacity, r.cfg.OverflowPolicy)
	down := pipe.New(r.cfg.BufferCapacity, r.cfg.OverflowPolicy)

	var teardownOnce sync.Once
	teardown := func() {
		teardownOnce.Do(func() {
			clientConn.Close()
			upstreamConn.Close()
			up.Close()
			down.Close()
		})
	}
	r.trackSession(connID, teardown)
	defer r.untrackSession(connID)
	defer teardown()

	logger.Debug("relaying connection", "upstream", upstreamConn.RemoteAddr().String())

	results := make(chan error, 4)
	go func() { results <- r.pump(clientConn, up, connID, directionUpstream) }()
	go func() { results <- r.drain(up, upstreamConn, connID, directionUpstream) }()
	go func() { results <- r.pump(upstreamConn, down, connID, directionDownstream) }()
	go func() { results <- r.drain(down, clientConn, connID, directionDownstream) }()

	reason := "eof"
	for i := 0; i < 4; i++ {
		err := <-results
		if err == nil || errors.IsClosed(err) || goerrors.Is(err, net.ErrClosed) {
			continue
		}
		if reason == "eof" {
			reason = "error"
			logger.Warn("relay transfer failed", "error", err)
		}
		// Unblock the remaining transfers.
		teardown()
	}

	upStats, downStats := up.Stats(), down.Stats()
	r.metrics.AddBytesDropped(directionUpstream, upStats.BytesDropped)
	r.metrics.AddBytesDropped(directionDownstream, downStats.BytesDropped)
	r.metrics.IncConnectionsClosed(ingress, reason)

	logger.Debug("connection closed",
		"reason", reason,
		"bytes_upstream", upStats.BytesOut,
		"bytes_downstream", downStats.BytesOut,
	)
}

// pump copies bytes from a network connection into a pipe.
func (r *Relay) pump(src net.Conn, dst *pipe.BufferedPipe, connID, direction string) error {
	defer dst.CloseWrite()

	buf := make([]byte, r.cfg.ReadChunkBytes)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			accepted, werr := dst.Write(buf[:n])
			if accepted < n && werr == nil {
				// Drop policy clamped the write.
				r.metrics.IncWriteStalls(direction)
			}
			if werr != nil {
				return werr
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			if goerrors.Is(err, net.ErrClosed) {
				return err
			}
			r.metrics.IncRelayErrors(direction)
			return &errors.RelayError{ConnID: connID, Direction: direction, Err: err}
		}
	}
}

// drain copies bytes from a pipe to a network connection.
func (r *Relay) drain(src *pipe.BufferedPipe, dst net.Conn, connID, direction string) error {
	buf := make([]byte, r.cfg.ReadChunkBytes)
	for {
		stats := src.Stats()
		if stats.Capacity > 0 {
			r.metrics.ObserveBufferOccupancy(direction, float64(stats.Buffered)/float64(stats.Capacity))
		}

		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				if goerrors.Is(werr, net.ErrClosed) {
					return werr
				}
				r.metrics.IncRelayErrors(direction)
				return &errors.RelayError{ConnID: connID, Direction: direction, Err: werr}
			}
			r.metrics.AddBytesRelayed(direction, n)
		}
		if err != nil {
			if err == io.EOF {
				// Propagate the half-close when the transport supports it.
				if hc, ok := dst.(interface{ CloseWrite() error }); ok {
					hc.CloseWrite()
				}
				return nil
			}
			return err
		}
	}
}

func (r *Relay) trackSession(connID string, teardown func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[connID] = teardown
}

func (r *Relay) untrackSession(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, connID)
}

func (r *Relay) activeSessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close stops accepting connections, tears down active sessions and waits
// for the relay goroutines to finish. Safe to call more than once.
func (r *Relay) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	ln := r.listener
	ws := r.wsServer
	teardowns := make([]func(), 0, len(r.sessions))
	for _, td := range r.sessions {
		teardowns = append(teardowns, td)
	}
	r.mu.Unlock()

	if ln != nil {
		ln.Close()
	}
	if ws != nil {
		ws.Close()
	}
	for _, td := range teardowns {
		td()
	}

	r.wg.Wait()
	r.logger.Info("relay closed")
	return nil
}

// Liveness reports whether the relay process is functional.
func (r *Relay) Liveness() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed
}

// Readiness reports whether the relay is accepting traffic.
func (r *Relay) Readiness(_ context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listener != nil && !r.closed
}

// GetStatus returns a snapshot of relay state for the readiness endpoint.
func (r *Relay) GetStatus() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	status := map[string]string{
		"upstream":           r.cfg.UpstreamAddr,
		"buffer_capacity":    fmt.Sprintf("%d", r.cfg.BufferCapacity),
		"overflow_policy":    r.cfg.OverflowPolicy.String(),
		"active_connections": fmt.Sprintf("%d", len(r.sessions)),
	}
	if r.listener != nil {
		status["listener"] = r.listener.Addr().String()
	}
	return status
}
