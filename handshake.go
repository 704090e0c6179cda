package mqtt5

import (
	"fmt"
	"net"

	"github.com/golang-io/mqtt5/packet"
)

// handshake sends CONNECT and waits for CONNACK (§4.4 "Authenticating").
// On success it refreshes c.session.Caps from the negotiated properties
// and resizes the outgoing window to min(client Receive Maximum, the
// broker's advertised one). It reports CONNACK's Session Present bit.
func (c *Client) handshake(conn net.Conn) (bool, error) {
	connect := &packet.CONNECT{
		FixedHeader:  &packet.FixedHeader{Kind: CONNECT},
		ConnectFlags: packet.ConnectFlags(boolBit(c.options.CleanStart) << 1),
		KeepAlive:    c.options.KeepAlive,
		ClientID:     c.options.ClientID,
		Username:     c.options.Username,
		Password:     c.options.Password,
		Props: &packet.ConnectProperties{
			SessionExpiryInterval:      packet.SessionExpiryInterval(c.options.SessionExpiryInterval),
			ReceiveMaximum:             packet.ReceiveMaximum(c.options.ReceiveMaximum),
			MaximumPacketSize:          packet.MaximumPacketSize(c.options.MaximumPacketSize),
			TopicAliasMaximum:         packet.TopicAliasMaximum(c.options.TopicAliasMaximum),
			RequestResponseInformation: packet.RequestResponseInformation(boolBit(c.options.RequestResponseInformation)),
			RequestProblemInformation:  packet.RequestProblemInformation(boolBit(c.options.RequestProblemInformation)),
			UserProperty:               c.options.UserProperties,
			AuthenticationMethod:       packet.AuthenticationMethod(c.options.AuthenticationMethod),
			AuthenticationData:         packet.AuthenticationData(c.options.AuthenticationData),
		},
	}

	if c.options.Will != nil {
		w := c.options.Will
		connect.WillTopic = w.Topic
		connect.WillPayload = w.Payload
		props := w.Properties
		if props == nil {
			props = &packet.WillProperties{}
		}
		props.QoS = w.QoS
		if w.Retain {
			props.Retain = 1
		}
		connect.WillProperties = props
	}

	if err := connect.Pack(conn); err != nil {
		return false, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	c.bus.emit(func() { c.events.OnPacketSent(connect) })

	pkt, err := packet.Unpack(conn)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	connack, ok := pkt.(*packet.CONNACK)
	if !ok {
		return false, fmt.Errorf("%w: expected CONNACK, got %T", ErrProtocol, pkt)
	}
	c.bus.emit(func() { c.events.OnPacketReceived(connack) })

	if connack.ReasonCode.Failed() {
		return false, fmt.Errorf("%w: %v", ErrBrokerRefusal, connack.ReasonCode)
	}

	props := connack.Props
	if props == nil {
		props = &packet.ConnackProperties{}
	}
	caps := BrokerCaps{
		ReceiveMaximum:                uint16(props.ReceiveMaximum),
		MaximumQoS:                    uint8(props.MaximumQoS),
		RetainAvailable:               uint8(props.RetainAvailable) != 0,
		WildcardSubscriptionAvailable: uint8(props.WildcardSubscriptionAvailable) != 0,
		SubscriptionIDsAvailable:      uint8(props.SubscriptionIdentifiersAvailable) != 0,
		SharedSubscriptionAvailable:   uint8(props.SharedSubscriptionAvailable) != 0,
		TopicAliasMaximum:             uint16(props.TopicAliasMaximum),
		ServerKeepAlive:               uint16(props.ServerKeepAlive),
		AssignedClientIdentifier:      string(props.AssignedClientIdentifier),
		MaximumPacketSize:             uint32(props.MaximumPacketSize),
	}
	if caps.ReceiveMaximum == 0 {
		caps.ReceiveMaximum = 65535 // MQTT 5 §3.2.2.3.3 default when absent
	}
	c.session.Caps = caps

	window := int64(caps.ReceiveMaximum)
	if clientMax := int64(c.options.ReceiveMaximum); clientMax < window {
		window = clientMax
	}
	c.session.outgoing.Resize(window)

	return connack.SessionPresent&0x01 != 0, nil
}
