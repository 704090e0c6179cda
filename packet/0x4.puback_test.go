package packet

import (
	"bytes"
	"testing"
)

func TestPubackPackUnpackSuccessOmitsReasonCode(t *testing.T) {
	pkt := &PUBACK{FixedHeader: &FixedHeader{Kind: 0x4}, PacketID: 42, ReasonCode: CodeSuccess}
	var buf bytes.Buffer
	if err := pkt.Pack(&buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if buf.Len() != 4 {
		t.Fatalf("expected a 4-byte packet (header + 2-byte packet id), got %d bytes: %x", buf.Len(), buf.Bytes())
	}

	got, err := Unpack(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	puback, ok := got.(*PUBACK)
	if !ok {
		t.Fatalf("got %T, want *PUBACK", got)
	}
	if puback.PacketID != 42 || puback.ReasonCode.Code != CodeSuccess.Code {
		t.Errorf("got %+v", puback)
	}
}

func TestPubackPackUnpackWithReasonAndProps(t *testing.T) {
	pkt := &PUBACK{
		FixedHeader: &FixedHeader{Kind: 0x4},
		PacketID:    7,
		ReasonCode:  ErrNotAuthorized,
		Props:       &AckProperties{ReasonString: "nope"},
	}
	var buf bytes.Buffer
	if err := pkt.Pack(&buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	got, err := Unpack(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	puback := got.(*PUBACK)
	if puback.ReasonCode.Code != ErrNotAuthorized.Code {
		t.Errorf("ReasonCode = %x, want %x", puback.ReasonCode.Code, ErrNotAuthorized.Code)
	}
	if puback.Props.ReasonString != "nope" {
		t.Errorf("ReasonString = %q, want %q", puback.Props.ReasonString, "nope")
	}
}

func TestPubackFlagsMustBeZero(t *testing.T) {
	header := &FixedHeader{}
	if err := header.Unpack(bytes.NewBuffer([]byte{0x41, 0x02, 0, 1})); err == nil {
		t.Error("PUBACK with non-zero flags should fail fixed header validation")
	}
}
