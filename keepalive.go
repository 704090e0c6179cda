package mqtt5

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-io/mqtt5/packet"
)

// keepaliveLoop implements §4.4's keep-alive rule: if K seconds (the
// negotiated KeepAlive) pass with no outbound write, send PINGREQ; if
// no PINGRESP arrives within 1.5K seconds of that PINGREQ, the
// connection is considered dead.
func (c *Client) keepaliveLoop(ctx context.Context) error {
	interval := time.Duration(c.options.KeepAlive) * time.Second
	if c.session.Caps.ServerKeepAlive != 0 {
		interval = time.Duration(c.session.Caps.ServerKeepAlive) * time.Second
	}
	if interval == 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	timeout := interval + interval/2
	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			silence := time.Since(time.Unix(0, c.lastWriteAt.Load()))
			if c.lastWriteAt.Load() != 0 && silence < interval {
				continue
			}
			c.enqueueOut(&packet.PINGREQ{FixedHeader: &packet.FixedHeader{Kind: PINGREQ}})
			if err := c.awaitPingResp(ctx, timeout); err != nil {
				return fmt.Errorf("%w: %v", ErrTimeout, err)
			}
		}
	}
}

// awaitPingResp blocks until dispatchOne observes a PINGRESP (via
// resolvePing) or timeout elapses.
func (c *Client) awaitPingResp(ctx context.Context, timeout time.Duration) error {
	ch := make(chan struct{}, 1)
	c.mu.Lock()
	c.pingWaiters = append(c.pingWaiters, ch)
	c.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ch:
		return nil
	case <-timer.C:
		return fmt.Errorf("keep alive: no PINGRESP within %s", timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// resolvePing wakes every pending awaitPingResp call. c.mu guards
// c.pingWaiters against awaitPingResp appending to it concurrently.
func (c *Client) resolvePing() {
	c.mu.Lock()
	waiters := c.pingWaiters
	c.pingWaiters = nil
	c.mu.Unlock()
	for _, ch := range waiters {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
