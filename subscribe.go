package mqtt5

import (
	"context"
	"fmt"

	"github.com/golang-io/mqtt5/packet"
)

// Subscribe sends a SUBSCRIBE for subs and waits for the matching
// SUBACK (§4.7, §6). If handler is non-nil it is registered against
// every filter in subs (including $share/<group>/ filters) and is
// invoked for each delivered message matching that filter; a nil
// handler leaves delivery to the Client's default OnMessage handler.
func (c *Client) Subscribe(ctx context.Context, subs []packet.Subscription, handler Handler) ([]packet.ReasonCode, error) {
	if len(subs) == 0 {
		return nil, fmt.Errorf("%w: no filters", ErrValidation)
	}
	if c.State() != Connected {
		return nil, ErrNotConnected
	}

	c.bus.emit(func() { c.events.BeforeSubscribe(subs) })

	var subIDs []uint32
	for _, s := range subs {
		id, err := c.session.Subscribe(s.TopicFilter, handler)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		subIDs = append(subIDs, id)
	}

	id := c.session.AssignID()
	ch := c.registerSuback(id)
	defer c.forgetSuback(id)

	var subscriptionIdentifier packet.SubscriptionIdentifier
	if len(subIDs) > 0 {
		subscriptionIdentifier = packet.SubscriptionIdentifier(subIDs[0])
	}
	c.enqueueOut(&packet.SUBSCRIBE{
		FixedHeader:   &packet.FixedHeader{Kind: SUBSCRIBE, QoS: 1},
		PacketID:      id,
		Subscriptions: subs,
		Props:         &packet.SubscribeProperties{SubscriptionIdentifier: subscriptionIdentifier},
	})

	select {
	case suback := <-ch:
		c.bus.emit(func() { c.events.AfterSubscribe(suback.ReasonCode) })
		return suback.ReasonCode, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Unsubscribe sends an UNSUBSCRIBE for filters and waits for UNSUBACK.
func (c *Client) Unsubscribe(ctx context.Context, filters []string) ([]packet.ReasonCode, error) {
	if len(filters) == 0 {
		return nil, fmt.Errorf("%w: no filters", ErrValidation)
	}
	if c.State() != Connected {
		return nil, ErrNotConnected
	}

	c.bus.emit(func() { c.events.BeforeUnsubscribe(filters) })

	subs := make([]packet.Subscription, len(filters))
	for i, f := range filters {
		subs[i] = packet.Subscription{TopicFilter: f}
	}

	id := c.session.AssignID()
	ch := c.registerUnsuback(id)
	defer c.forgetUnsuback(id)

	c.enqueueOut(&packet.UNSUBSCRIBE{
		FixedHeader:   &packet.FixedHeader{Kind: UNSUBSCRIBE, QoS: 1},
		PacketID:      id,
		Subscriptions: subs,
	})

	select {
	case unsuback := <-ch:
		for _, f := range filters {
			c.session.Unsubscribe(f)
		}
		c.bus.emit(func() { c.events.AfterUnsubscribe(unsuback.ReasonCode) })
		return unsuback.ReasonCode, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) registerSuback(id uint16) chan *packet.SUBACK {
	ch := make(chan *packet.SUBACK, 1)
	c.mu.Lock()
	c.subAcks[id] = ch
	c.mu.Unlock()
	return ch
}

func (c *Client) forgetSuback(id uint16) {
	c.mu.Lock()
	delete(c.subAcks, id)
	c.mu.Unlock()
}

func (c *Client) resolveSuback(p *packet.SUBACK) {
	c.mu.Lock()
	ch, ok := c.subAcks[p.PacketID]
	c.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- p:
	default:
	}
}

func (c *Client) registerUnsuback(id uint16) chan *packet.UNSUBACK {
	ch := make(chan *packet.UNSUBACK, 1)
	c.mu.Lock()
	c.unsubAcks[id] = ch
	c.mu.Unlock()
	return ch
}

func (c *Client) forgetUnsuback(id uint16) {
	c.mu.Lock()
	delete(c.unsubAcks, id)
	c.mu.Unlock()
}

func (c *Client) resolveUnsuback(p *packet.UNSUBACK) {
	c.mu.Lock()
	ch, ok := c.unsubAcks[p.PacketID]
	c.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- p:
	default:
	}
}
