package mqtt5

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-io/mqtt5/packet"
)

// Publish implements the outbound publish engine (§4.5): validate,
// assign a packet identifier and reserve a window slot for QoS>0
// (blocking until one is free — this is where Receive Maximum, I2, is
// enforced), enqueue the PUBLISH, and for QoS>0 block until the
// handshake reaches a terminal state or ctx is cancelled.
func (c *Client) Publish(ctx context.Context, topicName string, payload []byte, qos uint8, retain bool, props *packet.PublishProperties) (PublishResult, error) {
	if qos > 2 {
		return PublishResult{}, fmt.Errorf("%w: qos %d", ErrValidation, qos)
	}
	if c.State() != Connected {
		return PublishResult{}, ErrNotConnected
	}
	if props == nil {
		props = &packet.PublishProperties{}
	}

	pub := &packet.PUBLISH{
		FixedHeader: &packet.FixedHeader{Kind: PUBLISH, QoS: qos, Retain: boolBit(retain)},
		Message:     &packet.Message{TopicName: topicName, Content: payload},
		Props:       props,
	}

	if qos == 0 {
		c.enqueueOut(pub)
		return PublishResult{ReasonCode: packet.CodeSuccess}, nil
	}

	rec := &outgoingRecord{pkt: pub, qos: qos, state: PendingAck, lastSentAt: time.Now(), done: make(chan PublishResult, 1)}
	if qos == 2 {
		rec.state = PendingRec
	}

	id, err := c.session.ReserveOutgoing(ctx, rec)
	if err != nil {
		return PublishResult{}, fmt.Errorf("%w: %v", ErrCanceled, err)
	}
	pub.PacketID = id

	rec.sendCount++
	c.enqueueOut(pub)

	select {
	case res := <-rec.done:
		return res, res.Err
	case <-ctx.Done():
		return PublishResult{}, ctx.Err()
	}
}
