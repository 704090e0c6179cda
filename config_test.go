package mqtt5

import (
	"testing"
	"time"

	"github.com/golang-io/mqtt5/packet"
)

func TestNewOptionsDefaults(t *testing.T) {
	o := newOptions()
	if o.URL == "" {
		t.Error("URL should have a default")
	}
	if o.ClientID == "" {
		t.Error("ClientID should be auto-generated")
	}
	if !o.CleanStart {
		t.Error("CleanStart should default to true")
	}
	if o.ReceiveMaximum != 65535 {
		t.Errorf("ReceiveMaximum = %d, want 65535", o.ReceiveMaximum)
	}
	if !o.AutoReconnect {
		t.Error("AutoReconnect should default to true")
	}
	if err := o.Validate(); err != nil {
		t.Errorf("default Options should validate, got %v", err)
	}
}

func TestOptionsApplyInOrder(t *testing.T) {
	o := newOptions(
		URLOpt("mqtt://broker.example:1883"),
		ClientID("fixed-id"),
		CleanStart(false),
		Credentials("alice", []byte("secret")),
		ReceiveMaximum(10),
		Subscription(packet.Subscription{TopicFilter: "a/b"}, packet.Subscription{TopicFilter: "c/d"}),
		AutoReconnect(true, time.Second, 30*time.Second, 5),
	)
	if o.URL != "mqtt://broker.example:1883" {
		t.Errorf("URL = %q", o.URL)
	}
	if o.ClientID != "fixed-id" {
		t.Errorf("ClientID = %q", o.ClientID)
	}
	if o.CleanStart {
		t.Error("CleanStart should be false")
	}
	if o.Username != "alice" || string(o.Password) != "secret" {
		t.Errorf("Credentials not applied: %q %q", o.Username, o.Password)
	}
	if o.ReceiveMaximum != 10 {
		t.Errorf("ReceiveMaximum = %d, want 10", o.ReceiveMaximum)
	}
	if len(o.Subscriptions) != 2 {
		t.Errorf("Subscriptions = %d, want 2", len(o.Subscriptions))
	}
	if o.ReconnectMaxAttempts != 5 {
		t.Errorf("ReconnectMaxAttempts = %d, want 5", o.ReconnectMaxAttempts)
	}
}

func TestValidateRejectsZeroReceiveMaximum(t *testing.T) {
	o := newOptions(ReceiveMaximum(0))
	if err := o.Validate(); err == nil {
		t.Error("Validate should reject a zero Receive Maximum")
	}
}

func TestValidateRejectsMalformedURL(t *testing.T) {
	o := newOptions(URLOpt("://not-a-url"))
	if err := o.Validate(); err == nil {
		t.Error("Validate should reject a malformed URL")
	}
}

func TestGenerateClientIDIsBounded(t *testing.T) {
	id := generateClientID()
	if len(id) > 23 {
		t.Errorf("generateClientID() = %q, longer than 23 chars", id)
	}
	if id == "" {
		t.Error("generateClientID should not be empty")
	}
}
