package packet

import (
	"bytes"
	"io"
)

// DISCONNECT ends a connection, cleanly or with a reason, from either
// side (MQTT 5 §3.14). Flags must be all-zero (MQTT-3.14.1-1). A
// zero-length remaining length means reason code Success with no
// properties.
type DISCONNECT struct {
	*FixedHeader
	ReasonCode ReasonCode
	Props      *DisconnectProperties
}

func (pkt *DISCONNECT) Kind() byte { return 0xE }

func (pkt *DISCONNECT) Pack(w io.Writer) error {
	buf := GetBuffer()
	defer PutBuffer(buf)

	hasProps := pkt.Props != nil && (pkt.Props.SessionExpiryInterval != 0 ||
		pkt.Props.ReasonString != "" || len(pkt.Props.UserProperty) > 0 ||
		pkt.Props.ServerReference != "")

	if pkt.ReasonCode.Code != CodeNormalDisconnection.Code || hasProps {
		buf.WriteByte(pkt.ReasonCode.Code)
		if pkt.Props == nil {
			pkt.Props = &DisconnectProperties{}
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
	}

	pkt.FixedHeader.RemainingLength = uint32(buf.Len())
	if err := pkt.FixedHeader.Pack(w); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func (pkt *DISCONNECT) Unpack(buf *bytes.Buffer) error {
	if buf.Len() == 0 {
		pkt.ReasonCode = CodeNormalDisconnection
		pkt.Props = &DisconnectProperties{}
		return nil
	}
	pkt.ReasonCode = ReasonCode{Code: buf.Next(1)[0]}

	pkt.Props = &DisconnectProperties{}
	if buf.Len() == 0 {
		return nil
	}
	return pkt.Props.Unpack(buf)
}

// DisconnectProperties is the DISCONNECT property block (MQTT 5
// §3.14.2.2). SessionExpiryInterval must not be sent by a server
// (MQTT-3.14.2-2); this package does not enforce direction.
type DisconnectProperties struct {
	SessionExpiryInterval SessionExpiryInterval
	ReasonString          ReasonString
	UserProperty          []UserProperty
	ServerReference       ServerReference
}

func (props *DisconnectProperties) Pack(buf *bytes.Buffer) error {
	if err := props.SessionExpiryInterval.Pack(buf); err != nil {
		return err
	}
	if err := props.ReasonString.Pack(buf); err != nil {
		return err
	}
	for _, up := range props.UserProperty {
		if err := up.Pack(buf); err != nil {
			return err
		}
	}
	return props.ServerReference.Pack(buf)
}

func (props *DisconnectProperties) Unpack(buf *bytes.Buffer) error {
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
		case 0x1F:
			n, err = props.ReasonString.Unpack(buf)
		case 0x26:
			var up UserProperty
			n, err = up.Unpack(buf)
			if err == nil {
				props.UserProperty = append(props.UserProperty, up)
			}
		case 0x1C:
			n, err = props.ServerReference.Unpack(buf)
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
