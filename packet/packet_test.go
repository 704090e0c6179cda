package packet

import (
	"bytes"
	"testing"
)

func TestPacketTypeConstants(t *testing.T) {
	types := []byte{
		0x1, 0x2, 0x3, 0x4, 0x5, 0x6, 0x7, 0x8, 0x9, 0xA, 0xB, 0xC, 0xD, 0xE, 0xF,
	}

	seen := make(map[byte]bool)
	for _, packetType := range types {
		if packetType == 0 {
			t.Error("packet type constant should not be 0")
		}
		if seen[packetType] {
			t.Errorf("duplicate packet type constant: %d", packetType)
		}
		seen[packetType] = true
	}
}

func TestKindMap(t *testing.T) {
	expectedKinds := []byte{0x0, 0x1, 0x2, 0x3, 0x4, 0x5, 0x6, 0x7, 0x8, 0x9, 0xA, 0xB, 0xC, 0xD, 0xE, 0xF}

	for _, kind := range expectedKinds {
		if name, exists := Kind[kind]; !exists {
			t.Errorf("Kind map missing entry for %d", kind)
		} else if name == "" {
			t.Errorf("Kind map has empty name for %d", kind)
		}
	}
}

func TestEncodeDecodeLength(t *testing.T) {
	testCases := []uint32{
		0, 1, 127, 128, 16383, 16384, 2097151, 2097152,
	}

	for _, length := range testCases {
		encoded, err := encodeLength(length)
		if err != nil {
			t.Errorf("encodeLength failed for %d: %v", length, err)
			continue
		}

		buf := bytes.NewBuffer(encoded)
		decoded, err := decodeLength(buf)
		if err != nil {
			t.Errorf("decodeLength failed for %d: %v", length, err)
			continue
		}

		if decoded != length {
			t.Errorf("length mismatch: expected %d, got %d", length, decoded)
		}
	}
}

func TestS2BAndI2B(t *testing.T) {
	testString := "test"
	result := s2b(testString)
	if len(result) != len(testString)+2 {
		t.Errorf("s2b result length should be string length + 2, got %d", len(result))
	}

	testInt := uint16(12345)
	resultInt := i2b(testInt)
	if len(resultInt) != 2 {
		t.Error("i2b result should be 2 bytes")
	}
}

func TestEncodeDecodeUTF8(t *testing.T) {
	testStrings := []string{
		"",
		"test",
		"hello world",
		"unicode éè",
	}

	for _, testStr := range testStrings {
		encoded := s2b(testStr)
		if len(encoded) != len(testStr)+2 {
			t.Errorf("s2b result length should be string length + 2, got %d", len(encoded))
		}

		buf := bytes.NewBuffer(encoded)
		decoded, err := decodeUTF8(buf)
		if err != nil {
			t.Fatalf("decodeUTF8(%q): %v", testStr, err)
		}
		if decoded != testStr {
			t.Errorf("UTF8 encode/decode mismatch: expected %s, got %s", testStr, decoded)
		}
	}
}

func TestDecodeUTF8RejectsNulAndSurrogates(t *testing.T) {
	cases := [][]byte{
		append(i2b(1), 0x00),
		append(i2b(3), []byte{0xED, 0xA0, 0x80}...),
	}
	for _, data := range cases {
		if _, err := decodeUTF8(bytes.NewBuffer(data)); err == nil {
			t.Errorf("decodeUTF8(%x) should have rejected malformed UTF-8", data)
		}
	}
}
