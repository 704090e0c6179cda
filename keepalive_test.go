package mqtt5

import (
	"context"
	"testing"
	"time"

	"github.com/golang-io/mqtt5/packet"
	"github.com/golang-io/mqtt5/queue"
)

func newKeepaliveClient(keepAlive uint16) *Client {
	return &Client{
		options:  Options{KeepAlive: keepAlive},
		session:  NewSession(10),
		outbound: queue.New[packet.Packet](),
	}
}

func TestKeepaliveLoopDisabledWhenZero(t *testing.T) {
	c := newKeepaliveClient(0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := c.keepaliveLoop(ctx); err != context.DeadlineExceeded {
		t.Errorf("keepaliveLoop(0) = %v, want DeadlineExceeded", err)
	}
}

func TestKeepaliveLoopSendsPingreqAfterSilence(t *testing.T) {
	c := newKeepaliveClient(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.keepaliveLoop(ctx) }()

	var pkt packet.Packet
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.outbound.Len() > 0 {
			var err error
			pkt, err = c.outbound.Pop(context.Background())
			if err != nil {
				t.Fatalf("Pop: %v", err)
			}
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if _, ok := pkt.(*packet.PINGREQ); !ok {
		t.Fatalf("keep-alive did not enqueue a PINGREQ in time, got %T", pkt)
	}
	c.resolvePing()
	cancel()
	<-done
}

func TestKeepaliveLoopTimesOutWithoutPingresp(t *testing.T) {
	c := newKeepaliveClient(1)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := c.keepaliveLoop(ctx)
	if err == nil {
		t.Fatal("keepaliveLoop should fail when no PINGRESP ever arrives")
	}
}
