package packet

import (
	"bytes"
	"io"
)

// SUBACK confirms a SUBSCRIBE, one reason code per requested filter
// in the same order (MQTT 5 §3.9).
type SUBACK struct {
	*FixedHeader
	PacketID    uint16
	SubackProps *AckProperties
	ReasonCode  []ReasonCode
}

func (pkt *SUBACK) Kind() byte { return 0x9 }

func (pkt *SUBACK) Pack(w io.Writer) error {
	if len(pkt.ReasonCode) == 0 {
		return ErrMalformedReasonCode
	}
	buf := GetBuffer()
	defer PutBuffer(buf)
	buf.Write(i2b(pkt.PacketID))

	if pkt.SubackProps == nil {
		pkt.SubackProps = &AckProperties{}
	}
	propsBuf := GetBuffer()
	if err := pkt.SubackProps.Pack(propsBuf); err != nil {
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

func (pkt *SUBACK) Unpack(buf *bytes.Buffer) error {
	pid, err := decodeU16(buf)
	if err != nil {
		return err
	}
	pkt.PacketID = pid

	pkt.SubackProps = &AckProperties{}
	if err := pkt.SubackProps.Unpack(buf); err != nil {
		return err
	}

	for buf.Len() != 0 {
		pkt.ReasonCode = append(pkt.ReasonCode, ReasonCode{Code: buf.Next(1)[0]})
	}
	if len(pkt.ReasonCode) == 0 {
		return ErrMalformedReasonCode
	}
	return nil
}
