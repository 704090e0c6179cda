package packet

import (
	"bytes"
	"io"
)

// PINGREQ carries no variable header or payload (MQTT 5 §3.12): it
// exists purely to keep the network connection alive and let the
// client verify the server is still responsive.
type PINGREQ struct {
	*FixedHeader
}

func (pkt *PINGREQ) Kind() byte               { return 0xC }
func (pkt *PINGREQ) Pack(w io.Writer) error   { return pkt.FixedHeader.Pack(w) }
func (pkt *PINGREQ) Unpack(_ *bytes.Buffer) error { return nil }
