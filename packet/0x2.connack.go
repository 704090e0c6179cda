package packet

import (
	"bytes"
	"fmt"
	"io"
)

// CONNACK is the server's reply to CONNECT (MQTT 5 §3.2): whether the
// session was accepted, whether prior session state survived, and the
// server's negotiated limits.
type CONNACK struct {
	*FixedHeader

	// SessionPresent is bit 0 of the acknowledge flags byte; bits 7-1
	// are reserved and must be 0 (MQTT-3.2.2-1).
	SessionPresent uint8
	ReasonCode     ReasonCode
	Props          *ConnackProperties
}

func (pkt *CONNACK) Kind() byte { return 0x2 }

func (pkt *CONNACK) String() string {
	return fmt.Sprintf("[0x2]CONNACK ReasonCode=0x%02X", pkt.ReasonCode.Code)
}

func (pkt *CONNACK) Pack(w io.Writer) error {
	buf := GetBuffer()
	defer PutBuffer(buf)

	buf.WriteByte(pkt.SessionPresent & 0x01)
	buf.WriteByte(pkt.ReasonCode.Code)

	if pkt.Props == nil {
		pkt.Props = &ConnackProperties{}
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

	pkt.FixedHeader.RemainingLength = uint32(buf.Len())
	if err := pkt.FixedHeader.Pack(w); err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}

func (pkt *CONNACK) Unpack(buf *bytes.Buffer) error {
	if buf.Len() < 2 {
		return ErrMalformedPacket
	}
	flags := buf.Next(1)[0]
	if flags&0xFE != 0 {
		return ErrMalformedFlags
	}
	pkt.SessionPresent = flags
	pkt.ReasonCode = ReasonCode{Code: buf.Next(1)[0]}

	pkt.Props = &ConnackProperties{}
	return pkt.Props.Unpack(buf)
}

// ConnackProperties is the CONNACK property block (MQTT 5 §3.2.2.3):
// the server's negotiated session limits and capabilities.
type ConnackProperties struct {
	SessionExpiryInterval           SessionExpiryInterval
	ReceiveMaximum                  ReceiveMaximum
	MaximumQoS                      MaximumQoS
	RetainAvailable                 RetainAvailable
	MaximumPacketSize               MaximumPacketSize
	AssignedClientIdentifier        AssignedClientIdentifier
	TopicAliasMaximum               TopicAliasMaximum
	ReasonString                    ReasonString
	UserProperty                    []UserProperty
	WildcardSubscriptionAvailable   WildcardSubscriptionAvailable
	SubscriptionIdentifiersAvailable SubscriptionIdentifiersAvailable
	SharedSubscriptionAvailable     SharedSubscriptionAvailable
	ServerKeepAlive                 ServerKeepAlive
	ResponseInformation             ResponseInformation
	ServerReference                 ServerReference
	AuthenticationMethod            AuthenticationMethod
	AuthenticationData              AuthenticationData
}

func (props *ConnackProperties) Pack(buf *bytes.Buffer) error {
	packers := []func(*bytes.Buffer) error{
		props.SessionExpiryInterval.Pack,
		props.ReceiveMaximum.Pack,
		props.MaximumQoS.Pack,
		props.RetainAvailable.Pack,
		props.MaximumPacketSize.Pack,
		props.AssignedClientIdentifier.Pack,
		props.TopicAliasMaximum.Pack,
		props.ReasonString.Pack,
		props.WildcardSubscriptionAvailable.Pack,
		props.SubscriptionIdentifiersAvailable.Pack,
		props.SharedSubscriptionAvailable.Pack,
		props.ServerKeepAlive.Pack,
		props.ResponseInformation.Pack,
		props.ServerReference.Pack,
		props.AuthenticationMethod.Pack,
		props.AuthenticationData.Pack,
	}
	for _, pack := range packers {
		if err := pack(buf); err != nil {
			return err
		}
	}
	for _, up := range props.UserProperty {
		if err := up.Pack(buf); err != nil {
			return err
		}
	}
	return nil
}

func (props *ConnackProperties) Unpack(buf *bytes.Buffer) error {
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
			n, err = props.ReceiveMaximum.Unpack(buf)
		case 0x24:
			n, err = props.MaximumQoS.Unpack(buf)
		case 0x25:
			n, err = props.RetainAvailable.Unpack(buf)
		case 0x27:
			n, err = props.MaximumPacketSize.Unpack(buf)
		case 0x12:
			n, err = props.AssignedClientIdentifier.Unpack(buf)
		case 0x22:
			n, err = props.TopicAliasMaximum.Unpack(buf)
		case 0x1F:
			n, err = props.ReasonString.Unpack(buf)
		case 0x26:
			var up UserProperty
			n, err = up.Unpack(buf)
			if err == nil {
				props.UserProperty = append(props.UserProperty, up)
			}
		case 0x28:
			n, err = props.WildcardSubscriptionAvailable.Unpack(buf)
		case 0x29:
			n, err = props.SubscriptionIdentifiersAvailable.Unpack(buf)
		case 0x2A:
			n, err = props.SharedSubscriptionAvailable.Unpack(buf)
		case 0x13:
			n, err = props.ServerKeepAlive.Unpack(buf)
		case 0x1A:
			n, err = props.ResponseInformation.Unpack(buf)
		case 0x1C:
			n, err = props.ServerReference.Unpack(buf)
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
