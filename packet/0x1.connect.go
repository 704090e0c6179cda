package packet

import (
	"bytes"
	"fmt"
	"io"

	"github.com/golang-io/requests"
)

// ProtocolName is the fixed 6-byte encoding of "MQTT" that opens every
// CONNECT variable header (MQTT 5 §3.1.2.1): a 2-byte length prefix
// plus the four ASCII characters.
var ProtocolName = []byte{0x00, 0x04, 'M', 'Q', 'T', 'T'}

// CONNECT opens a session (MQTT 5 §3.1). It is the only packet a
// client may send before a CONNACK, and a second CONNECT on the same
// connection is a protocol violation (MQTT-3.1.0-2).
type CONNECT struct {
	*FixedHeader

	ConnectFlags ConnectFlags
	KeepAlive    uint16
	Props        *ConnectProperties

	ClientID       string
	WillProperties *WillProperties
	WillTopic      string
	WillPayload    []byte
	Username       string
	Password       []byte
}

func (pkt *CONNECT) Kind() byte { return 0x1 }

func (pkt *CONNECT) Pack(w io.Writer) error {
	buf := GetBuffer()
	defer PutBuffer(buf)

	buf.Write(ProtocolName)
	buf.WriteByte(Version5)

	willFlag := pkt.WillTopic != "" || pkt.WillPayload != nil
	var flag uint8
	if pkt.Username != "" {
		flag |= 0x80
	}
	if len(pkt.Password) > 0 {
		flag |= 0x40
	}
	if willFlag {
		flag |= 0x04
		if pkt.WillProperties != nil {
			flag |= pkt.WillProperties.Retain << 5
			flag |= pkt.WillProperties.QoS << 3
		}
	}
	if pkt.ConnectFlags.CleanStart() {
		flag |= 0x02
	}
	buf.WriteByte(flag)

	buf.Write(i2b(pkt.KeepAlive))

	if pkt.Props == nil {
		pkt.Props = &ConnectProperties{}
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

	buf.Write(s2b(pkt.ClientID))

	if willFlag {
		if pkt.WillTopic == "" {
			return ErrProtocolViolationWillFlagNoPayload
		}
		if pkt.WillProperties == nil {
			pkt.WillProperties = &WillProperties{}
		}
		willPropsBuf := GetBuffer()
		if err := pkt.WillProperties.Pack(willPropsBuf); err != nil {
			PutBuffer(willPropsBuf)
			return err
		}
		willPropsLen, err := encodeLength(willPropsBuf.Len())
		if err != nil {
			PutBuffer(willPropsBuf)
			return err
		}
		buf.Write(willPropsLen)
		buf.Write(willPropsBuf.Bytes())
		PutBuffer(willPropsBuf)

		buf.Write(s2b(pkt.WillTopic))
		buf.Write(s2b(pkt.WillPayload))
	}

	if pkt.Username != "" {
		buf.Write(s2b(pkt.Username))
	}
	if len(pkt.Password) > 0 {
		buf.Write(s2b(pkt.Password))
	}

	pkt.FixedHeader.RemainingLength = uint32(buf.Len())
	if err := pkt.FixedHeader.Pack(w); err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}

func (pkt *CONNECT) Unpack(buf *bytes.Buffer) error {
	if buf.Len() < 6 {
		return ErrMalformedProtocolName
	}
	name := buf.Next(6)
	if !bytes.Equal(name, ProtocolName) {
		return fmt.Errorf("%w: got %v", ErrMalformedProtocolName, name)
	}

	if buf.Len() < 1 {
		return ErrMalformedProtocolVersion
	}
	if v := buf.Next(1)[0]; v != Version5 {
		return ErrUnsupportedProtocolVersion
	}

	if buf.Len() < 1 {
		return ErrMalformedFlags
	}
	pkt.ConnectFlags = ConnectFlags(buf.Next(1)[0])
	if pkt.ConnectFlags.Reserved() != 0 {
		return ErrProtocolViolationReservedBit
	}
	if pkt.ConnectFlags.WillQoS() > 2 {
		return ErrProtocolViolationQosOutOfRange
	}
	if !pkt.ConnectFlags.WillFlag() && (pkt.ConnectFlags.WillRetain() || pkt.ConnectFlags.WillQoS() != 0) {
		return ErrProtocolErr
	}
	if !pkt.ConnectFlags.UserNameFlag() && pkt.ConnectFlags.PasswordFlag() {
		return ErrProtocolViolationPasswordNoFlag
	}

	keepAlive, err := decodeU16(buf)
	if err != nil {
		return err
	}
	pkt.KeepAlive = keepAlive

	pkt.Props = &ConnectProperties{}
	if err := pkt.Props.Unpack(buf); err != nil {
		return err
	}

	clientID, err := decodeUTF8(buf)
	if err != nil {
		return err
	}
	if clientID == "" {
		clientID = requests.GenId()
	}
	pkt.ClientID = clientID

	if pkt.ConnectFlags.WillFlag() {
		pkt.WillProperties = &WillProperties{
			Retain: 0,
			QoS:    pkt.ConnectFlags.WillQoS(),
		}
		if err := pkt.WillProperties.Unpack(buf); err != nil {
			return err
		}
		if pkt.ConnectFlags.WillRetain() {
			pkt.WillProperties.Retain = 1
		}

		willTopic, err := decodeUTF8(buf)
		if err != nil {
			return err
		}
		if willTopic == "" {
			return ErrMalformedWillTopic
		}
		pkt.WillTopic = willTopic

		willPayload, err := decodeBytes(buf)
		if err != nil {
			return err
		}
		pkt.WillPayload = willPayload
	}

	if pkt.ConnectFlags.UserNameFlag() {
		username, err := decodeUTF8(buf)
		if err != nil {
			return err
		}
		pkt.Username = username
	}

	if pkt.ConnectFlags.PasswordFlag() {
		password, err := decodeBytes(buf)
		if err != nil {
			return err
		}
		pkt.Password = password
	}

	return nil
}

// ConnectProperties is the CONNECT property block (MQTT 5 §3.1.2.11).
type ConnectProperties struct {
	SessionExpiryInterval      SessionExpiryInterval
	ReceiveMaximum             ReceiveMaximum
	MaximumPacketSize          MaximumPacketSize
	TopicAliasMaximum          TopicAliasMaximum
	RequestResponseInformation RequestResponseInformation
	RequestProblemInformation  RequestProblemInformation
	UserProperty               []UserProperty
	AuthenticationMethod       AuthenticationMethod
	AuthenticationData         AuthenticationData
}

func (props *ConnectProperties) Pack(buf *bytes.Buffer) error {
	if err := props.SessionExpiryInterval.Pack(buf); err != nil {
		return err
	}
	if err := props.ReceiveMaximum.Pack(buf); err != nil {
		return err
	}
	if err := props.MaximumPacketSize.Pack(buf); err != nil {
		return err
	}
	if err := props.TopicAliasMaximum.Pack(buf); err != nil {
		return err
	}
	if err := props.RequestResponseInformation.Pack(buf); err != nil {
		return err
	}
	if err := props.RequestProblemInformation.Pack(buf); err != nil {
		return err
	}
	for _, up := range props.UserProperty {
		if err := up.Pack(buf); err != nil {
			return err
		}
	}
	if err := props.AuthenticationMethod.Pack(buf); err != nil {
		return err
	}
	return props.AuthenticationData.Pack(buf)
}

func (props *ConnectProperties) Unpack(buf *bytes.Buffer) error {
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
		case 0x11:
			n, err = props.SessionExpiryInterval.Unpack(buf)
		case 0x21:
			if props.ReceiveMaximum != 0 {
				return ErrProtocolErr
			}
			n, err = props.ReceiveMaximum.Unpack(buf)
			if err == nil && props.ReceiveMaximum == 0 {
				return ErrProtocolErr
			}
		case 0x27:
			if props.MaximumPacketSize != 0 {
				return ErrProtocolErr
			}
			n, err = props.MaximumPacketSize.Unpack(buf)
			if err == nil && props.MaximumPacketSize == 0 {
				return ErrProtocolErr
			}
		case 0x22:
			if props.TopicAliasMaximum != 0 {
				return ErrProtocolErr
			}
			n, err = props.TopicAliasMaximum.Unpack(buf)
		case 0x19:
			n, err = props.RequestResponseInformation.Unpack(buf)
		case 0x17:
			n, err = props.RequestProblemInformation.Unpack(buf)
		case 0x26:
			var up UserProperty
			n, err = up.Unpack(buf)
			if err == nil {
				props.UserProperty = append(props.UserProperty, up)
			}
		case 0x15:
			n, err = props.AuthenticationMethod.Unpack(buf)
		case 0x16:
			n, err = props.AuthenticationData.Unpack(buf)
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

// WillProperties is the CONNECT payload's will-properties block
// (MQTT 5 §3.1.3.2), present only when ConnectFlags.WillFlag is set.
// Retain and QoS mirror the corresponding Connect Flags bits so
// callers can treat a Will like the Message it becomes.
type WillProperties struct {
	Retain uint8
	QoS    uint8

	WillDelayInterval      WillDelayInterval
	PayloadFormatIndicator PayloadFormatIndicator
	MessageExpiryInterval  MessageExpiryInterval
	ContentType            ContentType
	ResponseTopic          ResponseTopic
	CorrelationData        CorrelationData
	UserProperty           []UserProperty
}

func (props *WillProperties) Pack(buf *bytes.Buffer) error {
	if err := props.WillDelayInterval.Pack(buf); err != nil {
		return err
	}
	if err := props.PayloadFormatIndicator.Pack(buf); err != nil {
		return err
	}
	if err := props.MessageExpiryInterval.Pack(buf); err != nil {
		return err
	}
	if err := props.ContentType.Pack(buf); err != nil {
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
	return nil
}

func (props *WillProperties) Unpack(buf *bytes.Buffer) error {
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
		case 0x18:
			n, err = props.WillDelayInterval.Unpack(buf)
		case 0x01:
			n, err = props.PayloadFormatIndicator.Unpack(buf)
		case 0x02:
			n, err = props.MessageExpiryInterval.Unpack(buf)
		case 0x03:
			n, err = props.ContentType.Unpack(buf)
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

// ConnectFlags is the Connect Flags byte (MQTT 5 §3.1.2.3): bit 0
// reserved, bit 1 Clean Start, bit 2 Will Flag, bits 4-3 Will QoS,
// bit 5 Will Retain, bit 6 Password Flag, bit 7 User Name Flag.
type ConnectFlags uint8

func (f ConnectFlags) Reserved() uint8    { return uint8(f) & 0x01 }
func (f ConnectFlags) CleanStart() bool   { return uint8(f)&0x02 != 0 }
func (f ConnectFlags) WillFlag() bool     { return uint8(f)&0x04 != 0 }
func (f ConnectFlags) WillQoS() uint8     { return (uint8(f) & 0x18) >> 3 }
func (f ConnectFlags) WillRetain() bool   { return uint8(f)&0x20 != 0 }
func (f ConnectFlags) PasswordFlag() bool { return uint8(f)&0x40 != 0 }
func (f ConnectFlags) UserNameFlag() bool { return uint8(f)&0x80 != 0 }
