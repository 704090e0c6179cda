package packet

import (
	"bytes"
	"io"
)

// Packet is the common interface every MQTT 5 control packet type
// implements (MQTT 5 §2.1, Structure of an MQTT Control Packet): a
// fixed header, an optional variable header, an optional property
// block, and an optional payload.
type Packet interface {
	// Kind returns the four-bit Control Packet type (MQTT 5 §2.1.1),
	// 0x1 (CONNECT) through 0xF (AUTH).
	Kind() byte

	// Unpack parses the variable header, properties and payload from
	// buf, which holds exactly RemainingLength bytes — the fixed
	// header has already been consumed by the caller.
	Unpack(buf *bytes.Buffer) error

	// Pack serializes the full packet, fixed header included, to w.
	Pack(w io.Writer) error
}

// Unpack reads one complete MQTT 5 control packet off r: the fixed
// header directly from the stream, then RemainingLength bytes buffered
// and handed to the packet type's own Unpack.
func Unpack(r io.Reader) (Packet, error) {
	fixed := &FixedHeader{}
	if err := fixed.Unpack(r); err != nil {
		return &RESERVED{FixedHeader: fixed}, err
	}

	buf := GetBuffer()
	defer PutBuffer(buf)

	lr := io.LimitReader(r, int64(fixed.RemainingLength))
	if _, err := buf.ReadFrom(lr); err != nil {
		return nil, err
	}
	if buf.Len() != int(fixed.RemainingLength) {
		return nil, ErrPartialPacket
	}

	var pkt Packet
	switch fixed.Kind {
	case 0x1:
		pkt = &CONNECT{FixedHeader: fixed}
	case 0x2:
		pkt = &CONNACK{FixedHeader: fixed}
	case 0x3:
		pkt = &PUBLISH{FixedHeader: fixed}
	case 0x4:
		pkt = &PUBACK{FixedHeader: fixed}
	case 0x5:
		pkt = &PUBREC{FixedHeader: fixed}
	case 0x6:
		pkt = &PUBREL{FixedHeader: fixed}
	case 0x7:
		pkt = &PUBCOMP{FixedHeader: fixed}
	case 0x8:
		pkt = &SUBSCRIBE{FixedHeader: fixed}
	case 0x9:
		pkt = &SUBACK{FixedHeader: fixed}
	case 0xA:
		pkt = &UNSUBSCRIBE{FixedHeader: fixed}
	case 0xB:
		pkt = &UNSUBACK{FixedHeader: fixed}
	case 0xC:
		pkt = &PINGREQ{FixedHeader: fixed}
	case 0xD:
		pkt = &PINGRESP{FixedHeader: fixed}
	case 0xE:
		pkt = &DISCONNECT{FixedHeader: fixed}
	case 0xF:
		pkt = &AUTH{FixedHeader: fixed}
	default:
		return &RESERVED{FixedHeader: fixed}, ErrMalformedPacket
	}
	return pkt, pkt.Unpack(buf)
}
