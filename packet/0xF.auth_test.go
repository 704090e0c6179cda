package packet

import (
	"bytes"
	"testing"
)

func TestAuthSuccessOmitsReasonCode(t *testing.T) {
	pkt := &AUTH{FixedHeader: &FixedHeader{Kind: 0xF}, ReasonCode: CodeSuccess}
	var buf bytes.Buffer
	if err := pkt.Pack(&buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if buf.Len() != 2 {
		t.Fatalf("expected a 2-byte packet, got %d: %x", buf.Len(), buf.Bytes())
	}

	got, err := Unpack(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	auth := got.(*AUTH)
	if auth.ReasonCode.Code != CodeSuccess.Code {
		t.Errorf("got %+v", auth)
	}
}

func TestAuthContinueWithMethodAndData(t *testing.T) {
	pkt := &AUTH{
		FixedHeader: &FixedHeader{Kind: 0xF},
		ReasonCode:  CodeContinueAuthentication,
		Props: &AuthProperties{
			AuthenticationMethod: "SCRAM-SHA-1",
			AuthenticationData:   []byte{1, 2, 3, 4},
		},
	}
	var buf bytes.Buffer
	if err := pkt.Pack(&buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	got, err := Unpack(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	auth := got.(*AUTH)
	if auth.ReasonCode.Code != CodeContinueAuthentication.Code {
		t.Errorf("ReasonCode = %x, want %x", auth.ReasonCode.Code, CodeContinueAuthentication.Code)
	}
	if auth.Props.AuthenticationMethod != "SCRAM-SHA-1" {
		t.Errorf("AuthenticationMethod = %q", auth.Props.AuthenticationMethod)
	}
	if !bytes.Equal(auth.Props.AuthenticationData, []byte{1, 2, 3, 4}) {
		t.Errorf("AuthenticationData = %v", auth.Props.AuthenticationData)
	}
}

func TestAuthFlagsMustBeZero(t *testing.T) {
	header := &FixedHeader{}
	if err := header.Unpack(bytes.NewBuffer([]byte{0xF8, 0x00})); err == nil {
		t.Error("AUTH with non-zero flags should fail fixed header validation")
	}
}
