package packet

import (
	"bytes"
	"io"
)

// PUBREC is the first acknowledgement of a QoS 2 PUBLISH (MQTT 5
// §3.5): publisher sends PUBLISH, receiver replies PUBREC, publisher
// replies PUBREL, receiver replies PUBCOMP. Flags fixed at 0.
type PUBREC struct {
	*FixedHeader
	PacketID   uint16
	ReasonCode ReasonCode
	Props      *AckProperties
}

func (pkt *PUBREC) Kind() byte { return 0x5 }

func (pkt *PUBREC) Pack(w io.Writer) error {
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

func (pkt *PUBREC) Unpack(buf *bytes.Buffer) error {
	packetID, reasonCode, props, err := unpackAckVariableHeader(buf, pkt.RemainingLength)
	if err != nil {
		return err
	}
	pkt.PacketID, pkt.ReasonCode, pkt.Props = packetID, reasonCode, props
	return nil
}
