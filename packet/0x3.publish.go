package packet

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// PUBLISH carries an application message between client and server
// (MQTT 5 §3.3). DUP and RETAIN are free; QoS 0/1/2 select the
// delivery handshake (none, PUBACK, or PUBREC/PUBREL/PUBCOMP).
type PUBLISH struct {
	*FixedHeader
	PacketID uint16
	Message  *Message
	Props    *PublishProperties
}

// Message is the PUBLISH payload: a topic name and opaque content.
// Zero-length Content is valid (MQTT-3.3.1-10).
type Message struct {
	TopicName string
	Content   []byte
}

func (m *Message) String() string {
	return fmt.Sprintf("%s # %s", m.TopicName, m.Content)
}

func (pkt *PUBLISH) Kind() byte { return 0x3 }

func (pkt *PUBLISH) Pack(w io.Writer) error {
	if pkt.FixedHeader.QoS == 3 {
		return ErrProtocolViolationQosOutOfRange
	}
	if pkt.Message.TopicName == "" && (pkt.Props == nil || pkt.Props.TopicAlias == 0) {
		return ErrProtocolViolationNoTopic
	}
	if strings.ContainsAny(pkt.Message.TopicName, "+#") {
		return ErrProtocolViolationSurplusWildcard
	}

	buf := GetBuffer()
	defer PutBuffer(buf)

	buf.Write(s2b(pkt.Message.TopicName))
	if pkt.FixedHeader.QoS > 0 {
		if pkt.PacketID == 0 {
			return ErrProtocolViolationNoPacketID
		}
		buf.Write(i2b(pkt.PacketID))
	}

	if pkt.Props == nil {
		pkt.Props = &PublishProperties{}
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

	buf.Write(pkt.Message.Content)
	pkt.FixedHeader.RemainingLength = uint32(buf.Len())

	if err := pkt.FixedHeader.Pack(w); err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}

func (pkt *PUBLISH) Unpack(buf *bytes.Buffer) error {
	topic, err := decodeUTF8(buf)
	if err != nil {
		return err
	}
	if strings.ContainsAny(topic, "+#") {
		return ErrProtocolViolationSurplusWildcard
	}
	pkt.Message = &Message{TopicName: topic}

	if pkt.FixedHeader.QoS > 0 {
		pid, err := decodeU16(buf)
		if err != nil {
			return err
		}
		if pid == 0 {
			return ErrProtocolViolationNoPacketID
		}
		pkt.PacketID = pid
	}

	pkt.Props = &PublishProperties{}
	if err := pkt.Props.Unpack(buf); err != nil {
		return err
	}
	if topic == "" && pkt.Props.TopicAlias == 0 {
		return ErrProtocolViolationNoTopic
	}

	pkt.Message.Content = bytes.Clone(buf.Bytes())
	return nil
}

// PublishProperties is the PUBLISH property block (MQTT 5 §3.3.2.3).
type PublishProperties struct {
	PayloadFormatIndicator PayloadFormatIndicator
	MessageExpiryInterval  MessageExpiryInterval
	TopicAlias             TopicAlias
	ResponseTopic          ResponseTopic
	CorrelationData        CorrelationData
	UserProperty           []UserProperty
	SubscriptionIdentifier []uint32
	ContentType            ContentType
}

// ResponseTopic, property 0x08 (MQTT 5 §3.3.2.3.5): where to publish
// a response to this message, for the request/response pattern.
type ResponseTopic string

func (s *ResponseTopic) Pack(buf *bytes.Buffer) error {
	if s == nil || *s == "" {
		return nil
	}
	buf.WriteByte(0x08)
	buf.Write(s2b(string(*s)))
	return nil
}

func (s *ResponseTopic) Unpack(buf *bytes.Buffer) (uint32, error) {
	before := buf.Len()
	v, err := decodeUTF8(buf)
	if err != nil {
		return 0, err
	}
	*s = ResponseTopic(v)
	return uint32(before - buf.Len()), nil
}

func (props *PublishProperties) Pack(buf *bytes.Buffer) error {
	if err := props.PayloadFormatIndicator.Pack(buf); err != nil {
		return err
	}
	if err := props.MessageExpiryInterval.Pack(buf); err != nil {
		return err
	}
	if err := props.TopicAlias.Pack(buf); err != nil {
		return err
	}
	if err := props.ResponseTopic.Pack(buf); err != nil {
		return err
	}
	if err := props.CorrelationData.Pack(buf); err != nil {
		return err
	}
	for _, up := range props.UserProperty {
		if err := up.Pack(buf); err != nil {
			return err
		}
	}
	for _, id := range props.SubscriptionIdentifier {
		if err := SubscriptionIdentifier(id).Pack(buf); err != nil {
			return err
		}
	}
	return props.ContentType.Pack(buf)
}

func (props *PublishProperties) Unpack(buf *bytes.Buffer) error {
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
		var n uint32
		switch propID {
		case 0x01:
			n, err = props.PayloadFormatIndicator.Unpack(buf)
		case 0x02:
			n, err = props.MessageExpiryInterval.Unpack(buf)
		case 0x23:
			n, err = props.TopicAlias.Unpack(buf)
		case 0x08:
			n, err = props.ResponseTopic.Unpack(buf)
		case 0x09:
			n, err = props.CorrelationData.Unpack(buf)
		case 0x26:
			var up UserProperty
			n, err = up.Unpack(buf)
			if err == nil {
				props.UserProperty = append(props.UserProperty, up)
			}
		case 0x0B:
			var id SubscriptionIdentifier
			n, err = id.Unpack(buf)
			if err == nil {
				props.SubscriptionIdentifier = append(props.SubscriptionIdentifier, id.Uint32())
			}
		case 0x03:
			n, err = props.ContentType.Unpack(buf)
		default:
			return ErrProtocolViolationUnsupportedProperty
		}
		if err != nil {
			return err
		}
		consumed += n
	}
	return nil
}
