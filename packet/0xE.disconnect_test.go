package packet

import (
	"bytes"
	"testing"
)

func TestDisconnectNormalOmitsReasonCode(t *testing.T) {
	pkt := &DISCONNECT{FixedHeader: &FixedHeader{Kind: 0xE}, ReasonCode: CodeNormalDisconnection}
	var buf bytes.Buffer
	if err := pkt.Pack(&buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if buf.Len() != 2 {
		t.Fatalf("expected a 2-byte packet (fixed header only), got %d: %x", buf.Len(), buf.Bytes())
	}

	got, err := Unpack(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	disc := got.(*DISCONNECT)
	if disc.ReasonCode.Code != CodeNormalDisconnection.Code {
		t.Errorf("got %+v", disc)
	}
}

func TestDisconnectWithReasonAndServerReference(t *testing.T) {
	pkt := &DISCONNECT{
		FixedHeader: &FixedHeader{Kind: 0xE},
		ReasonCode:  ErrServerMoved,
		Props:       &DisconnectProperties{ServerReference: "broker-2.example.com"},
	}
	var buf bytes.Buffer
	if err := pkt.Pack(&buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	got, err := Unpack(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	disc := got.(*DISCONNECT)
	if disc.ReasonCode.Code != ErrServerMoved.Code {
		t.Errorf("ReasonCode = %x, want %x", disc.ReasonCode.Code, ErrServerMoved.Code)
	}
	if disc.Props.ServerReference != "broker-2.example.com" {
		t.Errorf("ServerReference = %q", disc.Props.ServerReference)
	}
}

func TestDisconnectFlagsMustBeZero(t *testing.T) {
	header := &FixedHeader{}
	if err := header.Unpack(bytes.NewBuffer([]byte{0xE1, 0x00})); err == nil {
		t.Error("DISCONNECT with non-zero flags should fail fixed header validation")
	}
}
