package packet

import (
	"bytes"
	"io"
)

// PINGRESP is the server's reply to PINGREQ (MQTT 5 §3.13); no
// variable header or payload.
type PINGRESP struct {
	*FixedHeader
}

func (pkt *PINGRESP) Kind() byte               { return 0xD }
func (pkt *PINGRESP) Pack(w io.Writer) error   { return pkt.FixedHeader.Pack(w) }
func (pkt *PINGRESP) Unpack(_ *bytes.Buffer) error { return nil }
