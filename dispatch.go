package mqtt5

import (
	"context"
	"fmt"
	"log"

	"github.com/golang-io/mqtt5/packet"
)

// dispatchLoop is the dispatcher task (§4.6, §5). It drains c.inbound
// and drives every inbound packet through the state machine
// appropriate to its kind. It is not the only goroutine touching
// Session state: Publish, Subscribe, Unsubscribe and the handshake do
// too, under the Session's own locks.
func (c *Client) dispatchLoop(ctx context.Context) error {
	c.mu.Lock()
	inbound := c.inbound
	c.mu.Unlock()

	for {
		pkt, err := inbound.Pop(ctx)
		if err != nil {
			return nil
		}
		if err := c.dispatchOne(pkt); err != nil {
			return err
		}
	}
}

func (c *Client) dispatchOne(pkt packet.Packet) error {
	switch p := pkt.(type) {
	case *packet.PUBLISH:
		return c.handlePublish(p)
	case *packet.PUBACK:
		c.completeOutgoing(p.PacketID, p.ReasonCode)
		return nil
	case *packet.PUBREC:
		return c.handlePubrec(p)
	case *packet.PUBREL:
		return c.handlePubrel(p)
	case *packet.PUBCOMP:
		c.completeOutgoing(p.PacketID, p.ReasonCode)
		return nil
	case *packet.SUBACK:
		c.resolveSuback(p)
		return nil
	case *packet.UNSUBACK:
		c.resolveUnsuback(p)
		return nil
	case *packet.PINGRESP:
		c.resolvePing()
		return nil
	case *packet.DISCONNECT:
		return fmt.Errorf("%w: server sent DISCONNECT: %v", ErrBrokerRefusal, p.ReasonCode)
	default:
		log.Printf("mqtt5: dispatcher: unexpected packet %T, ignoring", pkt)
		return nil
	}
}

// handlePublish implements §4.6's per-QoS inbound rules, including the
// QoS 2 duplicate-suppression invariant (I4): dispatch happens on the
// first receipt of a given packet identifier, never deferred to the
// PUBREL that follows it.
func (c *Client) handlePublish(p *packet.PUBLISH) error {
	topicName, err := c.session.ResolveInboundAlias(p.Message.TopicName, uint16(p.Props.TopicAlias))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	msg := &packet.Message{TopicName: topicName, Content: p.Message.Content}

	switch p.FixedHeader.QoS {
	case 0:
		c.deliver(msg, p.Props)
		return nil

	case 1:
		c.deliver(msg, p.Props)
		c.enqueueOut(&packet.PUBACK{
			FixedHeader: &packet.FixedHeader{Kind: PUBACK},
			PacketID:    p.PacketID,
			ReasonCode:  packet.CodeSuccess,
		})
		return nil

	case 2:
		if !c.session.incoming.Has(p.PacketID) {
			if !c.session.incoming.TryAdd(p.PacketID, struct{}{}) {
				return fmt.Errorf("%w", packet.ErrReceiveMaximumExceeded)
			}
			c.deliver(msg, p.Props)
		}
		// Duplicate: do not re-dispatch, but still answer PUBREC so the
		// broker's resend timer clears (MQTT-4.3.3-1).
		c.enqueueOut(&packet.PUBREC{
			FixedHeader: &packet.FixedHeader{Kind: PUBREC},
			PacketID:    p.PacketID,
			ReasonCode:  packet.CodeSuccess,
		})
		return nil
	}
	return fmt.Errorf("%w: qos %d", ErrProtocol, p.FixedHeader.QoS)
}

func (c *Client) deliver(msg *packet.Message, props *packet.PublishProperties) {
	fallback := func(m *packet.Message, pr *packet.PublishProperties) error {
		c.events.OnMessageReceived(m, pr)
		return nil
	}
	c.session.Dispatch(msg, props, fallback)
}

// handlePubrec advances an outgoing QoS 2 record from PendingRec to
// PendingComp and sends PUBREL (§4.5 step 4).
func (c *Client) handlePubrec(p *packet.PUBREC) error {
	if p.ReasonCode.Failed() {
		c.completeOutgoing(p.PacketID, p.ReasonCode)
		return nil
	}
	rec, ok := c.session.outgoing.Get(p.PacketID)
	if !ok {
		// PUBREC for an id we no longer track: reply PUBREL with Packet
		// Identifier Not Found so the broker stops resending it.
		c.enqueueOut(&packet.PUBREL{
			FixedHeader: &packet.FixedHeader{Kind: PUBREL, QoS: 1},
			PacketID:    p.PacketID,
			ReasonCode:  packet.ErrPacketIdentifierNotFound,
		})
		return nil
	}
	rec.state = PendingComp
	c.session.outgoing.Set(p.PacketID, rec)
	c.enqueueOut(&packet.PUBREL{
		FixedHeader: &packet.FixedHeader{Kind: PUBREL, QoS: 1},
		PacketID:    p.PacketID,
		ReasonCode:  packet.CodeSuccess,
	})
	return nil
}

// handlePubrel completes the receiver side of an inbound QoS 2 flow:
// release the incoming_in_flight slot and answer PUBCOMP.
func (c *Client) handlePubrel(p *packet.PUBREL) error {
	c.session.incoming.Remove(p.PacketID)
	c.enqueueOut(&packet.PUBCOMP{
		FixedHeader: &packet.FixedHeader{Kind: PUBCOMP},
		PacketID:    p.PacketID,
		ReasonCode:  packet.CodeSuccess,
	})
	return nil
}

// completeOutgoing resolves and removes an outgoing_in_flight record,
// used for both the QoS 1 PUBACK terminal and the QoS 2 PUBCOMP
// terminal.
func (c *Client) completeOutgoing(id uint16, rc packet.ReasonCode) {
	rec, ok := c.session.outgoing.Remove(id)
	if !ok {
		return
	}
	select {
	case rec.done <- PublishResult{ReasonCode: rc}:
	default:
	}
}
