package packet

import "bytes"

// AckProperties is the property block shared by PUBACK, PUBREC,
// PUBREL and PUBCOMP (MQTT 5 §3.4.2.3, §3.5.2.3, §3.6.2.3, §3.7.2.3):
// a Reason String and zero or more User Properties, nothing else.
type AckProperties struct {
	ReasonString ReasonString
	UserProperty []UserProperty
}

func (props *AckProperties) Pack(buf *bytes.Buffer) error {
	if props == nil {
		return nil
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

func (props *AckProperties) Unpack(buf *bytes.Buffer) error {
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
		case 0x1F:
			n, err := props.ReasonString.Unpack(buf)
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

// packAckVariableHeader writes the shared PacketID + [ReasonCode +
// Properties] shape onto buf, applying the MQTT 5 rule that the
// Reason Code and Property Length may be omitted entirely when the
// Reason Code is Success and there are no properties
// (MQTT 5 §3.4.2.2.1 and parallel sections on PUBREC/PUBREL/PUBCOMP).
func packAckVariableHeader(buf *bytes.Buffer, packetID uint16, reasonCode ReasonCode, props *AckProperties) error {
	buf.Write(i2b(packetID))

	hasProps := props != nil && (props.ReasonString != "" || len(props.UserProperty) > 0)
	if reasonCode.Code == CodeSuccess.Code && !hasProps {
		return nil
	}

	buf.WriteByte(reasonCode.Code)

	propsBuf := GetBuffer()
	defer PutBuffer(propsBuf)
	if err := props.Pack(propsBuf); err != nil {
		return err
	}
	propsLen, err := encodeLength(propsBuf.Len())
	if err != nil {
		return err
	}
	buf.Write(propsLen)
	buf.Write(propsBuf.Bytes())
	return nil
}

// unpackAckVariableHeader is the Unpack-side counterpart of
// packAckVariableHeader: remainingLength is the fixed header's
// RemainingLength, used to detect the omitted-reason-code form.
func unpackAckVariableHeader(buf *bytes.Buffer, remainingLength uint32) (packetID uint16, reasonCode ReasonCode, props *AckProperties, err error) {
	pid, err := decodeU16(buf)
	if err != nil {
		return 0, ReasonCode{}, nil, err
	}
	packetID = pid
	if remainingLength == 2 {
		return packetID, CodeSuccess, nil, nil
	}
	if buf.Len() < 1 {
		return 0, ReasonCode{}, nil, ErrMalformedReasonCode
	}
	reasonCode = ReasonCode{Code: buf.Next(1)[0]}
	props = &AckProperties{}
	if err := props.Unpack(buf); err != nil {
		return 0, ReasonCode{}, nil, err
	}
	return packetID, reasonCode, props, nil
}
