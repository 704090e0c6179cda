package packet

import (
	"bytes"
	"io"
)

// PUBREL is the second step of the QoS 2 handshake (MQTT 5 §3.6),
// sent by the original publisher after receiving PUBREC. Flags are
// fixed at DUP=0, QoS=1, RETAIN=0 (MQTT-3.6.1-1).
type PUBREL struct {
	*FixedHeader
	PacketID   uint16
	ReasonCode ReasonCode
	Props      *AckProperties
}

func (pkt *PUBREL) Kind() byte { return 0x6 }

func (pkt *PUBREL) Pack(w io.Writer) error {
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

func (pkt *PUBREL) Unpack(buf *bytes.Buffer) error {
	packetID, reasonCode, props, err := unpackAckVariableHeader(buf, pkt.RemainingLength)
	if err != nil {
		return err
	}
	pkt.PacketID, pkt.ReasonCode, pkt.Props = packetID, reasonCode, props
	return nil
}
