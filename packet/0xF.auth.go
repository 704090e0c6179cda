package packet

import (
	"bytes"
	"io"
)

// AUTH carries an enhanced-authentication exchange, either extending
// CONNECT's handshake or re-authenticating an established connection
// (MQTT 5 §3.15). Flags must be all-zero.
type AUTH struct {
	*FixedHeader
	ReasonCode ReasonCode
	Props      *AuthProperties
}

func (pkt *AUTH) Kind() byte { return 0xF }

func (pkt *AUTH) Pack(w io.Writer) error {
	buf := GetBuffer()
	defer PutBuffer(buf)

	hasProps := pkt.Props != nil && (pkt.Props.AuthenticationMethod != "" ||
		len(pkt.Props.AuthenticationData) > 0 || pkt.Props.ReasonString != "" ||
		len(pkt.Props.UserProperty) > 0)

	if pkt.ReasonCode.Code != CodeSuccess.Code || hasProps {
		buf.WriteByte(pkt.ReasonCode.Code)
		if pkt.Props == nil {
			pkt.Props = &AuthProperties{}
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

func (pkt *AUTH) Unpack(buf *bytes.Buffer) error {
	if buf.Len() == 0 {
		pkt.ReasonCode = CodeSuccess
		pkt.Props = &AuthProperties{}
		return nil
	}
	pkt.ReasonCode = ReasonCode{Code: buf.Next(1)[0]}

	pkt.Props = &AuthProperties{}
	if buf.Len() == 0 {
		return nil
	}
	return pkt.Props.Unpack(buf)
}

// AuthProperties is the AUTH property block (MQTT 5 §3.15.2.2). An
// Authentication Method is required whenever properties are present
// at all; this package leaves that requirement to the caller.
type AuthProperties struct {
	AuthenticationMethod AuthenticationMethod
	AuthenticationData   AuthenticationData
	ReasonString         ReasonString
	UserProperty         []UserProperty
}

func (props *AuthProperties) Pack(buf *bytes.Buffer) error {
	if err := props.AuthenticationMethod.Pack(buf); err != nil {
		return err
	}
	if err := props.AuthenticationData.Pack(buf); err != nil {
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
	return nil
}

func (props *AuthProperties) Unpack(buf *bytes.Buffer) error {
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
		case 0x15:
			n, err = props.AuthenticationMethod.Unpack(buf)
		case 0x16:
			n, err = props.AuthenticationData.Unpack(buf)
		case 0x1F:
			n, err = props.ReasonString.Unpack(buf)
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
