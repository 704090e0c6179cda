package packet

import (
	"bytes"
)

// Each property type below implements Pack(buf) error and
// Unpack(buf) (uint32, error): Unpack returns the number of value
// bytes it consumed so the caller's property-block loop (identifier
// byte plus value) can track how much of the block remains.

// SessionExpiryInterval, property 0x11 (MQTT 5 §3.1.2.11.2).
type SessionExpiryInterval uint32

func (s SessionExpiryInterval) Pack(buf *bytes.Buffer) error {
	if s == 0 {
		return nil
	}
	buf.WriteByte(0x11)
	buf.Write(i4b(uint32(s)))
	return nil
}

func (s *SessionExpiryInterval) Unpack(buf *bytes.Buffer) (uint32, error) {
	v, err := decodeU32(buf)
	if err != nil {
		return 0, err
	}
	*s = SessionExpiryInterval(v)
	return 4, nil
}

func (s SessionExpiryInterval) Uint32() uint32 { return uint32(s) }

// ReceiveMaximum, property 0x21 (MQTT 5 §3.1.2.11.3).
type ReceiveMaximum uint16

func (s ReceiveMaximum) Pack(buf *bytes.Buffer) error {
	if s == 0 {
		return nil
	}
	buf.WriteByte(0x21)
	buf.Write(i2b(uint16(s)))
	return nil
}

func (s *ReceiveMaximum) Unpack(buf *bytes.Buffer) (uint32, error) {
	v, err := decodeU16(buf)
	if err != nil {
		return 0, err
	}
	*s = ReceiveMaximum(v)
	return 2, nil
}

func (s ReceiveMaximum) Uint16() uint16 { return uint16(s) }

// MaximumPacketSize, property 0x27 (MQTT 5 §3.1.2.11.4).
type MaximumPacketSize uint32

func (s MaximumPacketSize) Pack(buf *bytes.Buffer) error {
	if s == 0 {
		return nil
	}
	buf.WriteByte(0x27)
	buf.Write(i4b(uint32(s)))
	return nil
}

func (s *MaximumPacketSize) Unpack(buf *bytes.Buffer) (uint32, error) {
	v, err := decodeU32(buf)
	if err != nil {
		return 0, err
	}
	*s = MaximumPacketSize(v)
	return 4, nil
}

func (s MaximumPacketSize) Uint32() uint32 { return uint32(s) }

// TopicAliasMaximum, property 0x22 (MQTT 5 §3.1.2.11.5).
type TopicAliasMaximum uint16

func (s TopicAliasMaximum) Pack(buf *bytes.Buffer) error {
	if s == 0 {
		return nil
	}
	buf.WriteByte(0x22)
	buf.Write(i2b(uint16(s)))
	return nil
}

func (s *TopicAliasMaximum) Unpack(buf *bytes.Buffer) (uint32, error) {
	v, err := decodeU16(buf)
	if err != nil {
		return 0, err
	}
	*s = TopicAliasMaximum(v)
	return 2, nil
}

func (s TopicAliasMaximum) Uint16() uint16 { return uint16(s) }

// RequestResponseInformation, property 0x19 (MQTT 5 §3.1.2.11.6).
type RequestResponseInformation uint8

func (s RequestResponseInformation) Pack(buf *bytes.Buffer) error {
	if s == 0 {
		return nil
	}
	buf.WriteByte(0x19)
	buf.WriteByte(uint8(s))
	return nil
}

func (s *RequestResponseInformation) Unpack(buf *bytes.Buffer) (uint32, error) {
	if buf.Len() < 1 {
		return 0, ErrMalformedProperties
	}
	*s = RequestResponseInformation(buf.Next(1)[0])
	return 1, nil
}

func (s RequestResponseInformation) Uint8() uint8 { return uint8(s) }

// RequestProblemInformation, property 0x17 (MQTT 5 §3.1.2.11.7).
type RequestProblemInformation uint8

func (s RequestProblemInformation) Pack(buf *bytes.Buffer) error {
	if s == 0 {
		return nil
	}
	buf.WriteByte(0x17)
	buf.WriteByte(uint8(s))
	return nil
}

func (s *RequestProblemInformation) Unpack(buf *bytes.Buffer) (uint32, error) {
	if buf.Len() < 1 {
		return 0, ErrMalformedProperties
	}
	v := buf.Next(1)[0]
	if v != 0 && v != 1 {
		return 0, ErrProtocolErr
	}
	*s = RequestProblemInformation(v)
	return 1, nil
}

func (s RequestProblemInformation) Uint8() uint8 { return uint8(s) }

// UserProperty, property 0x26 (MQTT 5 §3.1.2.11.8). May repeat; each
// occurrence is a distinct name/value pair, duplicate names permitted.
type UserProperty struct {
	Name  string
	Value string
}

func (s UserProperty) Pack(buf *bytes.Buffer) error {
	if s.Name == "" && s.Value == "" {
		return nil
	}
	buf.WriteByte(0x26)
	buf.Write(s2b(s.Name))
	buf.Write(s2b(s.Value))
	return nil
}

func (s *UserProperty) Unpack(buf *bytes.Buffer) (uint32, error) {
	before := buf.Len()
	name, value, err := decodeUTF8Pair(buf)
	if err != nil {
		return 0, err
	}
	s.Name, s.Value = name, value
	return uint32(before - buf.Len()), nil
}

// AuthenticationMethod, property 0x15 (MQTT 5 §3.1.2.11.9).
type AuthenticationMethod string

func (s *AuthenticationMethod) Pack(buf *bytes.Buffer) error {
	if s == nil || *s == "" {
		return nil
	}
	buf.WriteByte(0x15)
	buf.Write(s2b(string(*s)))
	return nil
}

func (s *AuthenticationMethod) Unpack(buf *bytes.Buffer) (uint32, error) {
	before := buf.Len()
	v, err := decodeUTF8(buf)
	if err != nil {
		return 0, err
	}
	*s = AuthenticationMethod(v)
	return uint32(before - buf.Len()), nil
}

func (s AuthenticationMethod) String() string { return string(s) }

// AuthenticationData, property 0x16 (MQTT 5 §3.1.2.11.10). Binary
// Data, not a UTF-8 string — no text validation applies.
type AuthenticationData []byte

func (s *AuthenticationData) Pack(buf *bytes.Buffer) error {
	if s == nil || len(*s) == 0 {
		return nil
	}
	buf.WriteByte(0x16)
	buf.Write(s2b([]byte(*s)))
	return nil
}

func (s *AuthenticationData) Unpack(buf *bytes.Buffer) (uint32, error) {
	before := buf.Len()
	v, err := decodeBytes(buf)
	if err != nil {
		return 0, err
	}
	*s = AuthenticationData(v)
	return uint32(before - buf.Len()), nil
}

func (s AuthenticationData) Bytes() []byte { return []byte(s) }

// MaximumQoS, property 0x24 (MQTT 5 §3.2.2.3.4).
type MaximumQoS uint8

func (s *MaximumQoS) Pack(buf *bytes.Buffer) error {
	buf.WriteByte(0x24)
	buf.WriteByte(uint8(*s))
	return nil
}

func (s *MaximumQoS) Unpack(buf *bytes.Buffer) (uint32, error) {
	if buf.Len() < 1 {
		return 0, ErrMalformedProperties
	}
	*s = MaximumQoS(buf.Next(1)[0])
	return 1, nil
}

func (s MaximumQoS) Uint8() uint8 { return uint8(s) }

// RetainAvailable, property 0x25 (MQTT 5 §3.2.2.3.5).
type RetainAvailable uint8

func (s *RetainAvailable) Pack(buf *bytes.Buffer) error {
	buf.WriteByte(0x25)
	buf.WriteByte(uint8(*s))
	return nil
}

func (s *RetainAvailable) Unpack(buf *bytes.Buffer) (uint32, error) {
	if buf.Len() < 1 {
		return 0, ErrMalformedProperties
	}
	*s = RetainAvailable(buf.Next(1)[0])
	return 1, nil
}

func (s RetainAvailable) Uint8() uint8 { return uint8(s) }

// AssignedClientIdentifier, property 0x12 (MQTT 5 §3.2.2.3.7).
type AssignedClientIdentifier string

func (s *AssignedClientIdentifier) Pack(buf *bytes.Buffer) error {
	if s == nil || *s == "" {
		return nil
	}
	buf.WriteByte(0x12)
	buf.Write(s2b(string(*s)))
	return nil
}

func (s *AssignedClientIdentifier) Unpack(buf *bytes.Buffer) (uint32, error) {
	before := buf.Len()
	v, err := decodeUTF8(buf)
	if err != nil {
		return 0, err
	}
	*s = AssignedClientIdentifier(v)
	return uint32(before - buf.Len()), nil
}

func (s AssignedClientIdentifier) String() string { return string(s) }

// ReasonString, property 0x1F (MQTT 5 §3.2.2.3.8 and others). A
// human-readable diagnostic string; clients must not parse it.
type ReasonString string

func (s *ReasonString) Pack(buf *bytes.Buffer) error {
	if s == nil || *s == "" {
		return nil
	}
	buf.WriteByte(0x1F)
	buf.Write(s2b(string(*s)))
	return nil
}

func (s *ReasonString) Unpack(buf *bytes.Buffer) (uint32, error) {
	before := buf.Len()
	v, err := decodeUTF8(buf)
	if err != nil {
		return 0, err
	}
	*s = ReasonString(v)
	return uint32(before - buf.Len()), nil
}

func (s ReasonString) String() string { return string(s) }

// WildcardSubscriptionAvailable, property 0x28 (MQTT 5 §3.2.2.3.11).
type WildcardSubscriptionAvailable uint8

func (s *WildcardSubscriptionAvailable) Pack(buf *bytes.Buffer) error {
	buf.WriteByte(0x28)
	buf.WriteByte(uint8(*s))
	return nil
}

func (s *WildcardSubscriptionAvailable) Unpack(buf *bytes.Buffer) (uint32, error) {
	if buf.Len() < 1 {
		return 0, ErrMalformedProperties
	}
	*s = WildcardSubscriptionAvailable(buf.Next(1)[0])
	return 1, nil
}

func (s WildcardSubscriptionAvailable) Uint8() uint8 { return uint8(s) }

// SubscriptionIdentifiersAvailable, property 0x29 (MQTT 5 §3.2.2.3.12).
type SubscriptionIdentifiersAvailable uint8

func (s *SubscriptionIdentifiersAvailable) Pack(buf *bytes.Buffer) error {
	buf.WriteByte(0x29)
	buf.WriteByte(uint8(*s))
	return nil
}

func (s *SubscriptionIdentifiersAvailable) Unpack(buf *bytes.Buffer) (uint32, error) {
	if buf.Len() < 1 {
		return 0, ErrMalformedProperties
	}
	*s = SubscriptionIdentifiersAvailable(buf.Next(1)[0])
	return 1, nil
}

func (s SubscriptionIdentifiersAvailable) Uint8() uint8 { return uint8(s) }

// SharedSubscriptionAvailable, property 0x2A (MQTT 5 §3.2.2.3.13).
type SharedSubscriptionAvailable uint8

func (s *SharedSubscriptionAvailable) Pack(buf *bytes.Buffer) error {
	buf.WriteByte(0x2A)
	buf.WriteByte(uint8(*s))
	return nil
}

func (s *SharedSubscriptionAvailable) Unpack(buf *bytes.Buffer) (uint32, error) {
	if buf.Len() < 1 {
		return 0, ErrMalformedProperties
	}
	*s = SharedSubscriptionAvailable(buf.Next(1)[0])
	return 1, nil
}

func (s SharedSubscriptionAvailable) Uint8() uint8 { return uint8(s) }

// ServerKeepAlive, property 0x13 (MQTT 5 §3.2.2.3.14).
type ServerKeepAlive uint16

func (s *ServerKeepAlive) Pack(buf *bytes.Buffer) error {
	buf.WriteByte(0x13)
	buf.Write(i2b(uint16(*s)))
	return nil
}

func (s *ServerKeepAlive) Unpack(buf *bytes.Buffer) (uint32, error) {
	v, err := decodeU16(buf)
	if err != nil {
		return 0, err
	}
	*s = ServerKeepAlive(v)
	return 2, nil
}

func (s ServerKeepAlive) Uint16() uint16 { return uint16(s) }

// ResponseInformation, property 0x1A (MQTT 5 §3.2.2.3.15).
type ResponseInformation string

func (s *ResponseInformation) Pack(buf *bytes.Buffer) error {
	if s == nil || *s == "" {
		return nil
	}
	buf.WriteByte(0x1A)
	buf.Write(s2b(string(*s)))
	return nil
}

func (s *ResponseInformation) Unpack(buf *bytes.Buffer) (uint32, error) {
	before := buf.Len()
	v, err := decodeUTF8(buf)
	if err != nil {
		return 0, err
	}
	*s = ResponseInformation(v)
	return uint32(before - buf.Len()), nil
}

func (s ResponseInformation) String() string { return string(s) }

// ServerReference, property 0x1C (MQTT 5 §3.2.2.3.16 and others).
type ServerReference string

func (s *ServerReference) Pack(buf *bytes.Buffer) error {
	if s == nil || *s == "" {
		return nil
	}
	buf.WriteByte(0x1C)
	buf.Write(s2b(string(*s)))
	return nil
}

func (s *ServerReference) Unpack(buf *bytes.Buffer) (uint32, error) {
	before := buf.Len()
	v, err := decodeUTF8(buf)
	if err != nil {
		return 0, err
	}
	*s = ServerReference(v)
	return uint32(before - buf.Len()), nil
}

func (s ServerReference) String() string { return string(s) }

// PayloadFormatIndicator, property 0x01 (MQTT 5 §3.3.2.3.2).
type PayloadFormatIndicator uint8

func (s *PayloadFormatIndicator) Pack(buf *bytes.Buffer) error {
	if s == nil || *s == 0 {
		return nil
	}
	buf.WriteByte(0x01)
	buf.WriteByte(uint8(*s))
	return nil
}

func (s *PayloadFormatIndicator) Unpack(buf *bytes.Buffer) (uint32, error) {
	if buf.Len() < 1 {
		return 0, ErrMalformedProperties
	}
	*s = PayloadFormatIndicator(buf.Next(1)[0])
	return 1, nil
}

// MessageExpiryInterval, property 0x02 (MQTT 5 §3.3.2.3.3).
type MessageExpiryInterval uint32

func (s *MessageExpiryInterval) Pack(buf *bytes.Buffer) error {
	if s == nil || *s == 0 {
		return nil
	}
	buf.WriteByte(0x02)
	buf.Write(i4b(uint32(*s)))
	return nil
}

func (s *MessageExpiryInterval) Unpack(buf *bytes.Buffer) (uint32, error) {
	v, err := decodeU32(buf)
	if err != nil {
		return 0, err
	}
	*s = MessageExpiryInterval(v)
	return 4, nil
}

func (s MessageExpiryInterval) Uint32() uint32 { return uint32(s) }

// TopicAlias, property 0x23 (MQTT 5 §3.3.2.3.4).
type TopicAlias uint16

func (s *TopicAlias) Pack(buf *bytes.Buffer) error {
	if s == nil || *s == 0 {
		return nil
	}
	buf.WriteByte(0x23)
	buf.Write(i2b(uint16(*s)))
	return nil
}

func (s *TopicAlias) Unpack(buf *bytes.Buffer) (uint32, error) {
	v, err := decodeU16(buf)
	if err != nil {
		return 0, err
	}
	*s = TopicAlias(v)
	return 2, nil
}

func (s TopicAlias) Uint16() uint16 { return uint16(s) }

// CorrelationData, property 0x09 (MQTT 5 §3.3.2.3.6). Binary Data,
// opaque to the client — carried back unmodified in a response.
type CorrelationData []byte

func (s *CorrelationData) Pack(buf *bytes.Buffer) error {
	if s == nil || len(*s) == 0 {
		return nil
	}
	buf.WriteByte(0x09)
	buf.Write(s2b([]byte(*s)))
	return nil
}

func (s *CorrelationData) Unpack(buf *bytes.Buffer) (uint32, error) {
	before := buf.Len()
	v, err := decodeBytes(buf)
	if err != nil {
		return 0, err
	}
	*s = CorrelationData(v)
	return uint32(before - buf.Len()), nil
}

func (s CorrelationData) Bytes() []byte { return []byte(s) }

// ContentType, property 0x03 (MQTT 5 §3.3.2.3.9).
type ContentType string

func (s ContentType) Pack(buf *bytes.Buffer) error {
	if s == "" {
		return nil
	}
	buf.WriteByte(0x03)
	buf.Write(s2b(string(s)))
	return nil
}

func (s *ContentType) Unpack(buf *bytes.Buffer) (uint32, error) {
	before := buf.Len()
	v, err := decodeUTF8(buf)
	if err != nil {
		return 0, err
	}
	*s = ContentType(v)
	return uint32(before - buf.Len()), nil
}

func (s ContentType) String() string { return string(s) }

// SubscriptionIdentifier, property 0x0B (MQTT 5 §3.3.2.3.8 and
// §3.8.2.1.2). Encoded as a Variable Byte Integer, unlike most
// properties; may repeat on a PUBLISH forwarded to several
// overlapping subscriptions.
type SubscriptionIdentifier uint32

func (s SubscriptionIdentifier) Pack(buf *bytes.Buffer) error {
	if s == 0 {
		return nil
	}
	buf.WriteByte(0x0B)
	enc, err := encodeLength(uint32(s))
	if err != nil {
		return err
	}
	buf.Write(enc)
	return nil
}

func (s *SubscriptionIdentifier) Unpack(buf *bytes.Buffer) (uint32, error) {
	before := buf.Len()
	v, err := decodeLength(buf)
	if err != nil {
		return 0, err
	}
	*s = SubscriptionIdentifier(v)
	return uint32(before - buf.Len()), nil
}

func (s SubscriptionIdentifier) Uint32() uint32 { return uint32(s) }

// WillDelayInterval, CONNECT will-properties field 0x18
// (MQTT 5 §3.1.3.2.2). Not part of the payload grammar enumerated by
// most distilled summaries of CONNECT, but present in the standard's
// will-properties block.
type WillDelayInterval uint32

func (s WillDelayInterval) Pack(buf *bytes.Buffer) error {
	if s == 0 {
		return nil
	}
	buf.WriteByte(0x18)
	buf.Write(i4b(uint32(s)))
	return nil
}

func (s *WillDelayInterval) Unpack(buf *bytes.Buffer) (uint32, error) {
	v, err := decodeU32(buf)
	if err != nil {
		return 0, err
	}
	*s = WillDelayInterval(v)
	return 4, nil
}

func (s WillDelayInterval) Uint32() uint32 { return uint32(s) }
