package packet

import (
	"bytes"
	"io"
)

// UNSUBSCRIBE removes one or more topic subscriptions (MQTT 5 §3.10).
// Flags fixed at DUP=0, QoS=1, RETAIN=0.
type UNSUBSCRIBE struct {
	*FixedHeader
	PacketID      uint16
	Subscriptions []Subscription
	Props         *UnsubscribeProperties
}

func (pkt *UNSUBSCRIBE) Kind() byte { return 0xA }

func (pkt *UNSUBSCRIBE) Pack(w io.Writer) error {
	if len(pkt.Subscriptions) == 0 {
		return ErrProtocolViolationNoFilters
	}
	buf := GetBuffer()
	defer PutBuffer(buf)
	buf.Write(i2b(pkt.PacketID))

	if pkt.Props == nil {
		pkt.Props = &UnsubscribeProperties{}
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
	}
	pkt.FixedHeader.RemainingLength = uint32(buf.Len())
	if err := pkt.FixedHeader.Pack(w); err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}

func (pkt *UNSUBSCRIBE) Unpack(buf *bytes.Buffer) error {
	pid, err := decodeU16(buf)
	if err != nil {
		return err
	}
	pkt.PacketID = pid

	pkt.Props = &UnsubscribeProperties{}
	if err := pkt.Props.Unpack(buf); err != nil {
		return err
	}

	for buf.Len() != 0 {
		filter, err := decodeUTF8(buf)
		if err != nil {
			return err
		}
		pkt.Subscriptions = append(pkt.Subscriptions, Subscription{TopicFilter: filter})
	}
	if len(pkt.Subscriptions) == 0 {
		return ErrProtocolViolationNoFilters
	}
	return nil
}

// UnsubscribeProperties is the UNSUBSCRIBE property block (MQTT 5
// §3.10.2.1): User Properties only.
type UnsubscribeProperties struct {
	UserProperty []UserProperty
}

func (props *UnsubscribeProperties) Pack(buf *bytes.Buffer) error {
	for _, up := range props.UserProperty {
		if err := up.Pack(buf); err != nil {
			return err
		}
	}
	return nil
}

func (props *UnsubscribeProperties) Unpack(buf *bytes.Buffer) error {
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
