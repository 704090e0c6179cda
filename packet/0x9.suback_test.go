package packet

import (
	"bytes"
	"testing"
)

func TestSubackRoundTrip(t *testing.T) {
	pkt := &SUBACK{
		FixedHeader: &FixedHeader{Kind: 0x9},
		PacketID:    4,
		ReasonCode:  []ReasonCode{CodeGrantedQoS2, CodeGrantedQoS0, ErrNotAuthorized},
	}
	var buf bytes.Buffer
	if err := pkt.Pack(&buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	got, err := Unpack(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	suback := got.(*SUBACK)
	if len(suback.ReasonCode) != 3 {
		t.Fatalf("got %d reason codes, want 3", len(suback.ReasonCode))
	}
	if suback.ReasonCode[2].Code != ErrNotAuthorized.Code {
		t.Errorf("ReasonCode[2] = %x, want %x", suback.ReasonCode[2].Code, ErrNotAuthorized.Code)
	}
}

func TestSubackRequiresAtLeastOneReasonCode(t *testing.T) {
	pkt := &SUBACK{FixedHeader: &FixedHeader{Kind: 0x9}, PacketID: 1}
	var buf bytes.Buffer
	if err := pkt.Pack(&buf); err != ErrMalformedReasonCode {
		t.Errorf("got %v, want ErrMalformedReasonCode", err)
	}
}

func TestSubackWithReasonString(t *testing.T) {
	pkt := &SUBACK{
		FixedHeader: &FixedHeader{Kind: 0x9},
		PacketID:    1,
		SubackProps: &AckProperties{ReasonString: "partial failure"},
		ReasonCode:  []ReasonCode{CodeGrantedQoS1},
	}
	var buf bytes.Buffer
	if err := pkt.Pack(&buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	got, err := Unpack(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	suback := got.(*SUBACK)
	if suback.SubackProps.ReasonString != "partial failure" {
		t.Errorf("ReasonString = %q", suback.SubackProps.ReasonString)
	}
}
