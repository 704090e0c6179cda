package packet

import (
	"bytes"
	"io"
)

// UNSUBACK confirms an UNSUBSCRIBE, one reason code per filter in the
// same order (MQTT 5 §3.11).
type UNSUBACK struct {
	*FixedHeader
	PacketID   uint16
	Props      *AckProperties
	ReasonCode []ReasonCode
}

func (pkt *UNSUBACK) Kind() byte { return 0xB }

func (pkt *UNSUBACK) Pack(w io.Writer) error {
	buf := GetBuffer()
	defer PutBuffer(buf)
	buf.Write(i2b(pkt.PacketID))

	if pkt.Props == nil {
		pkt.Props = &AckProperties{}
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

	for _, rc := range pkt.ReasonCode {
		buf.WriteByte(rc.Code)
	}
	pkt.FixedHeader.RemainingLength = uint32(buf.Len())
	if err := pkt.FixedHeader.Pack(w); err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}

func (pkt *UNSUBACK) Unpack(buf *bytes.Buffer) error {
	pid, err := decodeU16(buf)
	if err != nil {
		return err
	}
	pkt.PacketID = pid

	pkt.Props = &AckProperties{}
	if err := pkt.Props.Unpack(buf); err != nil {
		return err
	}

	for buf.Len() != 0 {
		pkt.ReasonCode = append(pkt.ReasonCode, ReasonCode{Code: buf.Next(1)[0]})
	}
	return nil
}
