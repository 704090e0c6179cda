package packet

import (
	"fmt"
	"io"
)

// FixedHeader is the two-or-more byte header present on every MQTT 5
// control packet (MQTT 5 §2.1.1):
//
//	byte 1   | Kind (bits 7-4) | flags specific to Kind (bits 3-0) |
//	byte 2.. | Remaining Length, a Variable Byte Integer
type FixedHeader struct {
	// Kind is the MQTT Control Packet type, bits 7-4 of byte 1.
	Kind byte `json:"Kind,omitempty"`

	// Dup, QoS and Retain are PUBLISH-only flags, bits 3-0 of byte 1.
	// On every other packet type these bits carry a fixed value
	// dictated by Kind and are validated accordingly in Unpack.
	Dup    uint8 `json:"Dup,omitempty"`
	QoS    uint8 `json:"QoS,omitempty"`
	Retain uint8 `json:"Retain,omitempty"`

	// RemainingLength is the byte count of everything after the fixed
	// header: variable header plus payload.
	RemainingLength uint32 `json:"RemainingLength,omitempty"`
}

func (pkt *FixedHeader) String() string {
	return fmt.Sprintf("%s: Len=%d", Kind[pkt.Kind], pkt.RemainingLength)
}

func (pkt *FixedHeader) Pack(w io.Writer) error {
	b := make([]byte, 1)

	b[0] |= pkt.Kind << 4
	b[0] |= pkt.Dup << 3
	b[0] |= pkt.QoS << 1
	b[0] |= pkt.Retain
	enc, err := encodeLength(pkt.RemainingLength)
	if err != nil {
		return err
	}

	b = append(b, enc...)
	_, err = w.Write(b)
	return err
}

// Unpack reads a fixed header off r. Every flag bit not reserved for
// PUBLISH must carry the exact value MQTT 5 mandates for that packet
// type (MQTT-2.2.2-1); a receiver that sees anything else must close
// the connection (MQTT-2.2.2-2), which Unpack signals by returning
// ErrMalformedFlags / ErrProtocolViolationQosOutOfRange.
func (pkt *FixedHeader) Unpack(r io.Reader) error {
	b := make([]byte, 1)
	if _, err := io.ReadFull(r, b); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return ErrPartialPacket
		}
		return err
	}

	pkt.Kind = b[0] >> 4
	pkt.Dup = b[0] & 0b00001000 >> 3
	pkt.QoS = b[0] & 0b00000110 >> 1
	pkt.Retain = b[0] & 0b00000001

	switch pkt.Kind {
	case 0x3: // PUBLISH: Dup/Retain are free, QoS must be 0-2.
		if pkt.QoS > 2 {
			return ErrProtocolViolationQosOutOfRange
		}
	case 0x6, 0x8, 0xA: // PUBREL, SUBSCRIBE, UNSUBSCRIBE: fixed at 0010.
		if pkt.Dup != 0 || pkt.QoS != 1 || pkt.Retain != 0 {
			return ErrMalformedFlags
		}
	default: // everything else: fixed at 0000.
		if pkt.Dup != 0 || pkt.QoS != 0 || pkt.Retain != 0 {
			return ErrMalformedFlags
		}
	}

	var err error
	pkt.RemainingLength, err = decodeVBIStream(r)
	return err
}
