package mqtt5

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-io/mqtt5/metrics"
	"github.com/golang-io/mqtt5/packet"
	"github.com/golang-io/mqtt5/queue"
	"github.com/golang-io/mqtt5/transport"
	"github.com/golang-io/mqtt5/transport/ws"
	"golang.org/x/sync/errgroup"
)

// State is a position in the connection state machine (§4.4).
type State uint32

const (
	Disconnected State = iota
	Connecting
	Authenticating
	Connected
	Disconnecting
	FailedForever
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting"
	case Authenticating:
		return "Authenticating"
	case Connected:
		return "Connected"
	case Disconnecting:
		return "Disconnecting"
	case FailedForever:
		return "FailedForever"
	default:
		return "unknown"
	}
}

// Client is an MQTT v5.0 client. It is safe for concurrent use by
// multiple goroutines once New has returned; Run must not be called
// concurrently with itself on the same Client.
type Client struct {
	options Options
	url     *url.URL

	state   atomic.Uint32
	session *Session
	metrics *metrics.Client
	events  Events
	bus     *eventBus

	mu          sync.Mutex
	conn        net.Conn
	outbound    *queue.FIFO[packet.Packet]
	inbound     *queue.FIFO[packet.Packet]
	lastWriteAt atomic.Int64 // unix nanoseconds

	subAcks     map[uint16]chan *packet.SUBACK
	unsubAcks   map[uint16]chan *packet.UNSUBACK
	pingWaiters []chan struct{}

	// closing is set by Disconnect before it tears down the connection,
	// so Run can tell a caller-requested disconnect (return nil, do not
	// reconnect) apart from a connection failure (reconnect per policy)
	// even though both surface as the same read error from readLoop.
	closing atomic.Bool

	// DialContext, if set, overrides the default transport dialer for
	// the "tcp"/"tls" schemes.
	DialContext func(ctx context.Context, network, addr string) (net.Conn, error)
}

// New builds a Client from opts. It performs no I/O.
func New(opts ...Option) (*Client, error) {
	o := newOptions(opts...)
	if err := o.Validate(); err != nil {
		return nil, err
	}
	u, err := url.Parse(o.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	c := &Client{
		options: o,
		url:     u,
		session: NewSession(o.ReceiveMaximum),
		metrics: metrics.NewClient(o.ClientID),
		events: Events{
			BeforeConnect:     func() {},
			AfterConnect:      func(bool, BrokerCaps) {},
			BeforeSubscribe:   func([]packet.Subscription) {},
			AfterSubscribe:    func([]packet.ReasonCode) {},
			BeforeUnsubscribe: func([]string) {},
			AfterUnsubscribe:  func([]packet.ReasonCode) {},
			OnMessageReceived: func(*packet.Message, *packet.PublishProperties) {},
			AfterDisconnect:   func(error) {},
			OnPacketSent:      func(packet.Packet) {},
			OnPacketReceived:  func(packet.Packet) {},
		},
		bus:       newEventBus(256),
		subAcks:   make(map[uint16]chan *packet.SUBACK),
		unsubAcks: make(map[uint16]chan *packet.UNSUBACK),
	}
	if o.onMessage != nil {
		fallback := o.onMessage
		c.events.OnMessageReceived = func(msg *packet.Message, _ *packet.PublishProperties) { fallback(msg) }
	}
	c.state.Store(uint32(Disconnected))
	return c, nil
}

// ID returns the negotiated client identifier: the broker-assigned one
// if CONNACK supplied it, otherwise the one the client offered.
func (c *Client) ID() string {
	if c.session.Caps.AssignedClientIdentifier != "" {
		return c.session.Caps.AssignedClientIdentifier
	}
	return c.options.ClientID
}

// State reports the client's current connection state.
func (c *Client) State() State { return State(c.state.Load()) }

func (c *Client) setState(s State) { c.state.Store(uint32(s)) }

// Events returns the event-hook table so callers can install handlers
// before calling Run.
func (c *Client) Events() *Events { return &c.events }

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	host := c.url.Hostname()
	port := c.url.Port()
	scheme := c.url.Scheme

	if scheme == "ws" || scheme == "wss" {
		var tlsCfg *tls.Config
		if scheme == "wss" {
			tlsCfg = c.options.TLSClientConfig
		}
		return ws.Dial(ctx, c.url.String(), "", tlsCfg)
	}

	if port == "" {
		if scheme == "mqtts" || scheme == "tls" || scheme == "ssl" {
			port = "8883"
		} else {
			port = "1883"
		}
	}
	addr := net.JoinHostPort(host, port)

	if c.DialContext != nil {
		return c.DialContext(ctx, "tcp", addr)
	}
	return transport.Dial(ctx, scheme, "tcp", addr, c.options.TrustPolicy, c.options.TLSClientConfig)
}

// Close tears down the Client's background event bus. It does not
// close an active connection; call Disconnect first.
func (c *Client) Close() error {
	c.bus.close()
	return nil
}

func boolBit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// connectOnce performs exactly one connect+serve cycle: dial, CONNECT/
// CONNACK handshake, resume or clear the session per SessionPresent,
// then run the reader/writer/dispatcher/keepalive tasks until the
// connection ends. It returns the error that ended the cycle; a
// caller-requested Disconnect also surfaces here, as the reader's
// error on the closed connection, and Run tells it apart by c.closing.
func (c *Client) connectOnce(ctx context.Context, bo *backoff) error {
	c.closing.Store(false)
	c.setState(Connecting)
	c.bus.emit(c.events.BeforeConnect)

	dialCtx, cancel := context.WithTimeout(ctx, c.options.ConnectTimeout)
	conn, err := c.dial(dialCtx)
	cancel()
	if err != nil {
		c.setState(Disconnected)
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.outbound = queue.New[packet.Packet]()
	c.inbound = queue.New[packet.Packet]()
	c.mu.Unlock()

	c.setState(Authenticating)
	sessionPresent, err := c.handshake(conn)
	if err != nil {
		_ = conn.Close()
		c.setState(Disconnected)
		return err
	}

	c.session.ResetForNewConnection()
	if sessionPresent {
		for _, rec := range c.session.ResendOnResume() {
			c.resend(rec)
		}
	} else {
		c.session.ClearOutgoing()
	}

	c.setState(Connected)
	bo.Reset()
	present, caps := sessionPresent, c.session.Caps
	c.bus.emit(func() { c.events.AfterConnect(present, caps) })

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error { return c.readLoop(gctx, conn) })
	group.Go(func() error { return c.writeLoop(gctx, conn) })
	group.Go(func() error { return c.dispatchLoop(gctx) })
	group.Go(func() error { return c.keepaliveLoop(gctx) })
	group.Go(func() error {
		<-gctx.Done()
		_ = conn.Close()
		return nil
	})

	if err := c.issueStaticSubscriptions(ctx); err != nil {
		log.Printf("mqtt5: static subscription failed: %v", err)
	}

	runErr := group.Wait()
	c.setState(Disconnected)
	c.bus.emit(func() { c.events.AfterDisconnect(runErr) })
	return runErr
}

// resend re-transmits an outgoing_in_flight record after a resumed
// reconnect (§4.5 step 5): PUBLISH with DUP=1 for PendingAck/PendingRec,
// PUBREL for PendingComp.
func (c *Client) resend(rec *outgoingRecord) {
	switch rec.state {
	case PendingAck, PendingRec:
		dup := *rec.pkt
		dup.FixedHeader = &packet.FixedHeader{Kind: PUBLISH, QoS: rec.pkt.QoS, Retain: rec.pkt.Retain, Dup: 1}
		rec.sendCount++
		rec.lastSentAt = time.Now()
		c.enqueueOut(&dup)
	case PendingComp:
		c.enqueueOut(&packet.PUBREL{FixedHeader: &packet.FixedHeader{Kind: PUBREL, QoS: 1}, PacketID: rec.pkt.PacketID, ReasonCode: packet.CodeSuccess})
	}
}

func (c *Client) issueStaticSubscriptions(ctx context.Context) error {
	if len(c.options.Subscriptions) == 0 {
		return nil
	}
	_, err := c.Subscribe(ctx, c.options.Subscriptions, nil)
	return err
}

// enqueueOut places pkt on the outbound queue for the writer task to
// transmit; never blocks.
func (c *Client) enqueueOut(pkt packet.Packet) {
	c.mu.Lock()
	q := c.outbound
	c.mu.Unlock()
	if q != nil {
		q.Push(pkt)
	}
}

// Run drives the auto-reconnect loop (§4.4): it calls connectOnce
// repeatedly, applying exponential backoff between attempts, until ctx
// is cancelled, the reconnect attempt ceiling is exhausted
// (FailedForever), or auto-reconnect is disabled and a cycle ends.
func (c *Client) Run(ctx context.Context) error {
	bo := newBackoff(c.options.ReconnectInitialDelay, c.options.ReconnectMaxDelay)
	for {
		err := c.connectOnce(ctx, bo)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil || c.closing.Load() {
			return nil // caller-requested Disconnect
		}
		if !c.options.AutoReconnect {
			return err
		}
		c.metrics.ReconnectAttempts.Inc()
		if c.options.ReconnectMaxAttempts > 0 && bo.Attempts() >= c.options.ReconnectMaxAttempts {
			c.setState(FailedForever)
			return fmt.Errorf("%w: last error: %v", ErrFailedForever, err)
		}
		delay := bo.Next()
		log.Printf("mqtt5: connection lost (%v), reconnecting in %s", err, delay)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Disconnect sends DISCONNECT with reasonCode and closes the
// connection, transitioning through Disconnecting to Disconnected.
func (c *Client) Disconnect(reasonCode packet.ReasonCode) error {
	c.setState(Disconnecting)
	c.closing.Store(true)
	disc := &packet.DISCONNECT{FixedHeader: &packet.FixedHeader{Kind: DISCONNECT}, ReasonCode: reasonCode}
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	_ = disc.Pack(conn)
	return conn.Close()
}
