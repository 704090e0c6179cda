package packet

import (
	"bytes"
	"fmt"
	"io"
)

// SUBSCRIBE requests one or more topic subscriptions (MQTT 5 §3.8).
// Flags fixed at DUP=0, QoS=1, RETAIN=0 (MQTT-3.8.1-1).
type SUBSCRIBE struct {
	*FixedHeader
	PacketID      uint16
	Props         *SubscribeProperties
	Subscriptions []Subscription
}

// Subscription is one entry of a SUBSCRIBE payload (MQTT 5 §3.8.3):
// a topic filter plus the subscription options byte's five fields.
type Subscription struct {
	TopicFilter       string
	MaximumQoS        uint8
	NoLocal           uint8
	RetainAsPublished uint8
	RetainHandling    uint8
}

func (s *Subscription) String() string {
	return fmt.Sprintf("%s@%d", s.TopicFilter, s.MaximumQoS)
}

func (s *Subscription) optionsByte() byte {
	return s.MaximumQoS&0x03 | s.NoLocal<<2 | s.RetainAsPublished<<3 | s.RetainHandling<<4
}

func (pkt *SUBSCRIBE) Kind() byte { return 0x8 }

func (pkt *SUBSCRIBE) Pack(w io.Writer) error {
	if len(pkt.Subscriptions) == 0 {
		return ErrProtocolViolationNoFilters
	}
	buf := GetBuffer()
	defer PutBuffer(buf)
	buf.Write(i2b(pkt.PacketID))

	if pkt.Props == nil {
		pkt.Props = &SubscribeProperties{}
	}
	propsBuf := GetBuffer()
	if err := pkt.Props.Pack(propsBuf); err != nil {
		PutBuffer(propsBuf)
		return err
	}
	propsLen, err := encodeLength(propsBuf.Len())
	if err != nil {
		PutBuffer(propsBuf)
		return err
	}
	buf.Write(propsLen)
	buf.Write(propsBuf.Bytes())
	PutBuffer(propsBuf)

	for _, sub := range pkt.Subscriptions {
		if sub.TopicFilter == "" {
			return ErrProtocolViolationNoTopic
		}
		buf.Write(s2b(sub.TopicFilter))
		buf.WriteByte(sub.optionsByte())
	}
	pkt.FixedHeader.RemainingLength = uint32(buf.Len())
	if err := pkt.FixedHeader.Pack(w); err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}

func (pkt *SUBSCRIBE) Unpack(buf *bytes.Buffer) error {
	pid, err := decodeU16(buf)
	if err != nil {
		return err
	}
	pkt.PacketID = pid

	pkt.Props = &SubscribeProperties{}
	if err := pkt.Props.Unpack(buf); err != nil {
		return err
	}

	for buf.Len() != 0 {
		filter, err := decodeUTF8(buf)
		if err != nil {
			return err
		}
		if buf.Len() < 1 {
			return ErrMalformedProperties
		}
		options := buf.Next(1)[0]
		sub := Subscription{
			TopicFilter:       filter,
			MaximumQoS:        options & 0b00000011,
			NoLocal:           options & 0b00000100 >> 2,
			RetainAsPublished: options & 0b00001000 >> 3,
			RetainHandling:    options & 0b00110000 >> 4,
		}
		if sub.MaximumQoS > 0x02 || options&0b11000000 != 0 {
			return ErrMalformedFlags
		}
		pkt.Subscriptions = append(pkt.Subscriptions, sub)
	}
	if len(pkt.Subscriptions) == 0 {
		return ErrProtocolViolationNoFilters
	}
	return nil
}

// SubscribeProperties is the SUBSCRIBE property block (MQTT 5
// §3.8.2.1): an optional Subscription Identifier plus User
// Properties.
type SubscribeProperties struct {
	SubscriptionIdentifier SubscriptionIdentifier
	UserProperty           []UserProperty
}

func (props *SubscribeProperties) Pack(buf *bytes.Buffer) error {
	if err := props.SubscriptionIdentifier.Pack(buf); err != nil {
		return err
	}
	for _, up := range props.UserProperty {
		if err := up.Pack(buf); err != nil {
			return err
		}
	}
	return nil
}

func (props *SubscribeProperties) Unpack(buf *bytes.Buffer) error {
	propsLen, err := decodeLength(buf)
	if err != nil {
		return err
	}
	for consumed := uint32(0); consumed < propsLen; {
		propID, err := decodeLength(buf)
		if err != nil {
			return err
		}
		consumed++
		switch propID {
		case 0x0B:
			n, err := props.SubscriptionIdentifier.Unpack(buf)
			if err != nil {
				return err
			}
			consumed += n
		case 0x26:
			var up UserProperty
			n, err := up.Unpack(buf)
			if err != nil {
				return err
			}
			props.UserProperty = append(props.UserProperty, up)
			consumed += n
		default:
			return ErrProtocolViolationUnsupportedProperty
		}
	}
	return nil
}
