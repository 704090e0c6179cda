package mqtt5

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/golang-io/mqtt5/packet"
)

// fakeBroker drives one end of a net.Pipe as a minimal MQTT 5 server:
// it replies CONNACK to CONNECT, SUBACK to SUBSCRIBE, PUBACK to a QoS 1
// PUBLISH and PINGRESP to PINGREQ, and otherwise echoes nothing. It
// stops on DISCONNECT or when conn is closed.
type fakeBroker struct {
	conn           net.Conn
	sessionPresent uint8
	receiveMax     uint16
}

func (b *fakeBroker) serve(t *testing.T) {
	for {
		pkt, err := packet.Unpack(b.conn)
		if err != nil {
			return
		}
		switch p := pkt.(type) {
		case *packet.CONNECT:
			connack := &packet.CONNACK{
				FixedHeader:    &packet.FixedHeader{Kind: CONNACK},
				SessionPresent: b.sessionPresent,
				ReasonCode:     packet.CodeSuccess,
				Props:          &packet.ConnackProperties{ReceiveMaximum: packet.ReceiveMaximum(b.receiveMax)},
			}
			if err := connack.Pack(b.conn); err != nil {
				t.Errorf("fakeBroker: pack CONNACK: %v", err)
				return
			}
		case *packet.SUBSCRIBE:
			suback := &packet.SUBACK{
				FixedHeader: &packet.FixedHeader{Kind: SUBACK},
				PacketID:    p.PacketID,
				ReasonCode:  make([]packet.ReasonCode, len(p.Subscriptions)),
			}
			for i := range suback.ReasonCode {
				suback.ReasonCode[i] = packet.CodeSuccess
			}
			if err := suback.Pack(b.conn); err != nil {
				t.Errorf("fakeBroker: pack SUBACK: %v", err)
				return
			}
		case *packet.PUBLISH:
			if p.FixedHeader.QoS == 1 {
				puback := &packet.PUBACK{
					FixedHeader: &packet.FixedHeader{Kind: PUBACK},
					PacketID:    p.PacketID,
					ReasonCode:  packet.CodeSuccess,
				}
				if err := puback.Pack(b.conn); err != nil {
					t.Errorf("fakeBroker: pack PUBACK: %v", err)
					return
				}
			}
		case *packet.PINGREQ:
			pingresp := &packet.PINGRESP{FixedHeader: &packet.FixedHeader{Kind: PINGRESP}}
			if err := pingresp.Pack(b.conn); err != nil {
				t.Errorf("fakeBroker: pack PINGRESP: %v", err)
				return
			}
		case *packet.DISCONNECT:
			return
		}
	}
}

func TestHandshakeAcceptsConnack(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	broker := &fakeBroker{conn: serverConn, receiveMax: 20}
	go broker.serve(t)

	c, err := New(URLOpt("mqtt://broker.invalid:1883"), ReceiveMaximum(50))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sessionPresent, err := c.handshake(clientConn)
	if err != nil {
		t.Fatalf("handshake: %v", err)
	}
	if sessionPresent {
		t.Error("sessionPresent should be false, broker sent SessionPresent=0")
	}
	if c.session.Caps.ReceiveMaximum != 20 {
		t.Errorf("Caps.ReceiveMaximum = %d, want 20", c.session.Caps.ReceiveMaximum)
	}
}

func TestHandshakeRejectsRefusal(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	go func() {
		if _, err := packet.Unpack(serverConn); err != nil {
			return
		}
		connack := &packet.CONNACK{
			FixedHeader: &packet.FixedHeader{Kind: CONNACK},
			ReasonCode:  packet.ReasonCode{Code: 0x87, Reason: "not authorized"},
			Props:       &packet.ConnackProperties{},
		}
		_ = connack.Pack(serverConn)
	}()

	c, err := New(URLOpt("mqtt://broker.invalid:1883"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.handshake(clientConn); err == nil {
		t.Error("handshake should fail on a CONNACK refusal reason code")
	}
}

// connectViaPipe starts a fakeBroker on one end of a net.Pipe and wires
// the Client to dial the other end, then runs Run in the background
// until the connection reaches Connected or the deadline elapses.
func connectViaPipe(t *testing.T, c *Client) (ctx context.Context, cancel context.CancelFunc, broker *fakeBroker) {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	broker = &fakeBroker{conn: serverConn, receiveMax: 10}
	go broker.serve(t)

	c.DialContext = func(context.Context, string, string) (net.Conn, error) { return clientConn, nil }
	c.options.AutoReconnect = false

	ctx, cancel = context.WithTimeout(context.Background(), 2*time.Second)
	go func() { _ = c.Run(ctx) }()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if c.State() == Connected {
			return ctx, cancel, broker
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("client never reached Connected")
	return
}

func TestClientPublishQoS1RoundTrip(t *testing.T) {
	c, err := New(URLOpt("mqtt://broker.invalid:1883"), KeepAlive(0))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel, _ := connectViaPipe(t, c)
	defer cancel()

	res, err := c.Publish(ctx, "a/b", []byte("payload"), 1, false, nil)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if res.ReasonCode != packet.CodeSuccess {
		t.Errorf("ReasonCode = %v, want success", res.ReasonCode)
	}
}

func TestClientDisconnectDoesNotTriggerReconnect(t *testing.T) {
	c, err := New(URLOpt("mqtt://broker.invalid:1883"), KeepAlive(0))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	clientConn, serverConn := net.Pipe()
	broker := &fakeBroker{conn: serverConn, receiveMax: 10}
	go broker.serve(t)

	dialed := 0
	c.DialContext = func(context.Context, string, string) (net.Conn, error) {
		dialed++
		return clientConn, nil
	}
	c.options.AutoReconnect = true

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	runErr := make(chan error, 1)
	go func() { runErr <- c.Run(ctx) }()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && c.State() != Connected {
		time.Sleep(time.Millisecond)
	}
	if c.State() != Connected {
		t.Fatal("client never reached Connected")
	}

	if err := c.Disconnect(packet.CodeSuccess); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}

	select {
	case err := <-runErr:
		if err != nil {
			t.Errorf("Run returned %v after Disconnect, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Disconnect; it is likely stuck reconnecting")
	}
	if dialed != 1 {
		t.Errorf("DialContext called %d times, want 1 (Disconnect must not trigger a reconnect)", dialed)
	}
}

func TestClientSubscribeRoundTrip(t *testing.T) {
	c, err := New(URLOpt("mqtt://broker.invalid:1883"), KeepAlive(0))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel, _ := connectViaPipe(t, c)
	defer cancel()

	codes, err := c.Subscribe(ctx, []packet.Subscription{{TopicFilter: "a/+", MaximumQoS: 1}}, nil)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if len(codes) != 1 || codes[0] != packet.CodeSuccess {
		t.Errorf("codes = %v, want [success]", codes)
	}
}
