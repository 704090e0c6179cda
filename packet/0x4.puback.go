package packet

import (
	"bytes"
	"io"
)

// PUBACK acknowledges a QoS 1 PUBLISH (MQTT 5 §3.4). Flags are fixed
// at DUP=0, QoS=0, RETAIN=0.
type PUBACK struct {
	*FixedHeader
	PacketID   uint16
	ReasonCode ReasonCode
	Props      *AckProperties
}

func (pkt *PUBACK) Kind() byte { return 0x4 }

func (pkt *PUBACK) Pack(w io.Writer) error {
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

func (pkt *PUBACK) Unpack(buf *bytes.Buffer) error {
	packetID, reasonCode, props, err := unpackAckVariableHeader(buf, pkt.RemainingLength)
	if err != nil {
		return err
	}
	pkt.PacketID, pkt.ReasonCode, pkt.Props = packetID, reasonCode, props
	return nil
}
