package relay

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"nhooyr.io/websocket"
)

// wsIngress serves a WebSocket endpoint whose binary messages are relayed
// to the upstream like any TCP connection.
type wsIngress struct {
	server *http.Server
	addr   net.Addr
}

func newWSIngress(r *Relay, addr, path string) (*wsIngress, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, r.serveWebSocket)

	server := &http.Server{
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			r.logger.Error("websocket ingress failed", "error", err)
		}
	}()

	return &wsIngress{server: server, addr: ln.Addr()}, nil
}

func (w *wsIngress) Close() error {
	return w.server.Close()
}

// serveWebSocket upgrades the request and relays the socket's binary
// message stream through the same path as a TCP client.
func (r *Relay) serveWebSocket(w http.ResponseWriter, req *http.Request) {
	c, err := websocket.Accept(w, req, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		r.logger.Error("websocket accept failed", "error", err, "remote", req.RemoteAddr)
		return
	}

	nc := websocket.NetConn(req.Context(), c, websocket.MessageBinary)
	r.handleConn(wsConn{nc}, "websocket")
}

// wsConn maps a graceful WebSocket closure onto io.EOF so the relay treats
// it like a TCP peer hanging up.
type wsConn struct {
	net.Conn
}

func (c wsConn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	if err != nil && websocket.CloseStatus(err) == websocket.StatusNormalClosure {
		err = io.EOF
	}
	return n, err
}
