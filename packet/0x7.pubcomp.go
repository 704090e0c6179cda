package packet

import (
	"bytes"
	"io"
)

// PUBCOMP completes the QoS 2 handshake (MQTT 5 §3.7), sent by the
// receiver in response to PUBREL. Flags fixed at 0.
type PUBCOMP struct {
	*FixedHeader
	PacketID   uint16
	ReasonCode ReasonCode
	Props      *AckProperties
}

func (pkt *PUBCOMP) Kind() byte { return 0x7 }

func (pkt *PUBCOMP) Pack(w io.Writer) error {
	buf := GetBuffer()
	defer PutBuffer(buf)
	if err := packAckVariableHeader(buf, pkt.PacketID, pkt.ReasonCode, pkt.Props); err != nil {
		return err
	}
	pkt.FixedHeader.RemainingLength = uint32(buf.Len())
	if err := pkt.FixedHeader.Pack(w); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func (pkt *PUBCOMP) Unpack(buf *bytes.Buffer) error {
	packetID, reasonCode, props, err := unpackAckVariableHeader(buf, pkt.RemainingLength)
	if err != nil {
		return err
	}
	pkt.PacketID, pkt.ReasonCode, pkt.Props = packetID, reasonCode, props
	return nil
}
