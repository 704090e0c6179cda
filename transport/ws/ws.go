// Package ws frames the MQTT byte stream over a WebSocket connection
// (golang.org/x/net/websocket), the way the teacher project's client
// dialer did for its "ws"/"wss" schemes. The core protocol engine
// treats the result as an ordinary net.Conn; WebSockets are an
// external collaborator wrapping the stream, not part of the core
// wire codec.
package ws

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/url"

	"golang.org/x/net/websocket"
)

// Dial opens a WebSocket connection to rawurl (scheme "ws" or "wss")
// carrying the "mqtt" subprotocol, and returns it as a net.Conn the
// transport layer can frame packets over.
func Dial(ctx context.Context, rawurl, origin string, tlsConfig *tls.Config) (net.Conn, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, fmt.Errorf("ws: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("ws: unsupported scheme %q", u.Scheme)
	}
	if origin == "" {
		origin = "http://" + u.Host
	}

	cfg, err := websocket.NewConfig(rawurl, origin)
	if err != nil {
		return nil, fmt.Errorf("ws: %w", err)
	}
	cfg.Protocol = []string{"mqtt"}
	if tlsConfig != nil {
		cfg.TlsConfig = tlsConfig
	}

	type dialResult struct {
		conn *websocket.Conn
		err  error
	}
	done := make(chan dialResult, 1)
	go func() {
		conn, err := websocket.DialConfig(cfg)
		done <- dialResult{conn, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("ws: dial: %w", r.err)
		}
		r.conn.PayloadType = websocket.BinaryFrame
		return r.conn, nil
	}
}
