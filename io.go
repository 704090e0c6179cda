package mqtt5

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/golang-io/mqtt5/packet"
)

// countingReader/countingWriter tally bytes moved across conn so the
// byte counters reflect wire traffic, not packet counts.
type countingReader struct {
	r io.Reader
	n prometheusCounter
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.n.Add(float64(n))
	}
	return n, err
}

type countingWriter struct {
	w io.Writer
	n prometheusCounter
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	if n > 0 {
		cw.n.Add(float64(n))
	}
	return n, err
}

// prometheusCounter is the subset of prometheus.Counter these wrappers
// need, so io.go does not import the prometheus package directly.
type prometheusCounter interface{ Add(float64) }

// readLoop is the reader task (§4.2, §5): it turns bytes off conn into
// framed packets and places each on c.inbound for the dispatcher. It
// never touches session state directly.
func (c *Client) readLoop(ctx context.Context, conn net.Conn) error {
	c.mu.Lock()
	inbound := c.inbound
	c.mu.Unlock()

	r := &countingReader{r: conn, n: c.metrics.BytesReceived}

	for {
		if dl, ok := ctx.Deadline(); ok {
			_ = conn.SetReadDeadline(dl)
		}
		pkt, err := packet.Unpack(r)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTransport, err)
		}
		c.metrics.PacketsReceived.Inc()
		p := pkt
		c.bus.emit(func() { c.events.OnPacketReceived(p) })
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		inbound.Push(pkt)
	}
}

// writeLoop is the writer task (§4.2, §5): it drains c.outbound and
// serializes each packet to conn, tracking the last-write timestamp
// the keep-alive task relies on.
func (c *Client) writeLoop(ctx context.Context, conn net.Conn) error {
	c.mu.Lock()
	outbound := c.outbound
	c.mu.Unlock()

	w := &countingWriter{w: conn, n: c.metrics.BytesSent}

	for {
		pkt, err := outbound.Pop(ctx)
		if err != nil {
			return nil // context cancellation, not a connection failure
		}
		if err := pkt.Pack(w); err != nil {
			return fmt.Errorf("%w: %v", ErrTransport, err)
		}
		c.lastWriteAt.Store(time.Now().UnixNano())
		c.metrics.PacketsSent.Inc()
		p := pkt
		c.bus.emit(func() { c.events.OnPacketSent(p) })
	}
}
