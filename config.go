package mqtt5

import (
	"crypto/tls"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/golang-io/mqtt5/packet"
	"github.com/golang-io/mqtt5/transport"
	"github.com/golang-io/requests"
)

// Will describes the CONNECT payload's Will Message: published by the
// broker on the client's behalf if the connection is lost without a
// clean DISCONNECT.
type Will struct {
	Topic      string
	Payload    []byte
	QoS        uint8
	Retain     bool
	Properties *packet.WillProperties
}

// Options is the immutable-after-connect configuration of a Client,
// built with the functional-options pattern: New(opts...) applies each
// Option to a set of defaults in order.
type Options struct {
	URL string

	ClientID    string
	CleanStart  bool
	KeepAlive   uint16 // seconds, 0 disables keep-alive
	SessionExpiryInterval uint32

	ReceiveMaximum             uint16
	MaximumPacketSize          uint32
	TopicAliasMaximum          uint16
	RequestResponseInformation bool
	RequestProblemInformation  bool

	Username string
	Password []byte

	AuthenticationMethod string
	AuthenticationData   []byte

	Will *Will

	UserProperties []packet.UserProperty

	Subscriptions []packet.Subscription

	TrustPolicy     transport.TrustPolicy
	TLSClientConfig *tls.Config

	Timeout             time.Duration
	TLSHandshakeTimeout time.Duration
	ConnectTimeout      time.Duration

	AutoReconnect         bool
	ReconnectInitialDelay time.Duration
	ReconnectMaxDelay     time.Duration
	ReconnectMaxAttempts  int // 0 = unbounded

	onMessage func(*packet.Message)
}

// Option mutates an Options in place; see newOptions for the defaults
// every Option call is layered on top of.
type Option func(*Options)

// URLOpt sets the broker URL, e.g. "mqtt://host:1883" or
// "mqtts://host:8883".
func URLOpt(u string) Option { return func(o *Options) { o.URL = u } }

// ClientID overrides the auto-generated client identifier.
func ClientID(id string) Option { return func(o *Options) { o.ClientID = id } }

// CleanStart sets the Clean Start connect flag.
func CleanStart(clean bool) Option { return func(o *Options) { o.CleanStart = clean } }

// KeepAlive sets the client's requested keep-alive interval in
// seconds; out-of-range values are clamped to uint16 bounds by the
// type itself, and 0 disables keep-alive.
func KeepAlive(seconds uint16) Option { return func(o *Options) { o.KeepAlive = seconds } }

// ReceiveMaximum sets the client's advertised Receive Maximum, the
// in-flight window it is willing to accept from the broker. 0 is
// invalid and is rejected by Validate.
func ReceiveMaximum(n uint16) Option { return func(o *Options) { o.ReceiveMaximum = n } }

// Credentials sets the CONNECT username/password.
func Credentials(username string, password []byte) Option {
	return func(o *Options) { o.Username = username; o.Password = password }
}

// Authentication sets the CONNECT authentication method/data for
// enhanced (SASL-style) authentication.
func Authentication(method string, data []byte) Option {
	return func(o *Options) { o.AuthenticationMethod = method; o.AuthenticationData = data }
}

// LastWill sets the CONNECT Will message.
func LastWill(w Will) Option { return func(o *Options) { o.Will = &w } }

// UserProperty appends one CONNECT user property.
func UserProperty(name, value string) Option {
	return func(o *Options) {
		o.UserProperties = append(o.UserProperties, packet.UserProperty{Name: name, Value: value})
	}
}

// Subscription adds one or more subscriptions to be issued immediately
// after CONNACK succeeds.
func Subscription(subs ...packet.Subscription) Option {
	return func(o *Options) { o.Subscriptions = append(o.Subscriptions, subs...) }
}

// TLSConfig sets the client's TLS configuration and trust policy.
func TLSConfig(cfg *tls.Config, policy transport.TrustPolicy) Option {
	return func(o *Options) { o.TLSClientConfig = cfg; o.TrustPolicy = policy }
}

// Timeout bounds every user-initiated operation that does not specify
// its own deadline.
func Timeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }

// AutoReconnect enables the exponential-backoff reconnect loop and
// configures its parameters. maxAttempts=0 means unbounded.
func AutoReconnect(enabled bool, initialDelay, maxDelay time.Duration, maxAttempts int) Option {
	return func(o *Options) {
		o.AutoReconnect = enabled
		o.ReconnectInitialDelay = initialDelay
		o.ReconnectMaxDelay = maxDelay
		o.ReconnectMaxAttempts = maxAttempts
	}
}

// OnMessage installs the default handler invoked for a PUBLISH that
// matches no per-filter handler in the subscription registry.
func OnMessage(fn func(*packet.Message)) Option {
	return func(o *Options) { o.onMessage = fn }
}

// newOptions applies opts over the package defaults: auto-generated
// client ID, clean-start, a 60s keep-alive, Receive Maximum 65535, and
// exponential-backoff reconnect starting at 5s capped at 60s, matching
// §4.4's defaults.
func newOptions(opts ...Option) Options {
	o := Options{
		URL:                   "mqtt://127.0.0.1:1883",
		ClientID:              generateClientID(),
		CleanStart:            true,
		KeepAlive:             60,
		ReceiveMaximum:        65535,
		Timeout:               30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ConnectTimeout:        60 * time.Second,
		AutoReconnect:         true,
		ReconnectInitialDelay: 5 * time.Second,
		ReconnectMaxDelay:     60 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// generateClientID builds "<processId>-<random>" via requests.GenId()
// and truncates to the 23 characters MQTT 3.1.1 servers historically
// required; MQTT 5 brokers accept longer identifiers but the shorter
// form stays compatible with both.
func generateClientID() string {
	id := fmt.Sprintf("%d-%s", os.Getpid(), requests.GenId())
	if len(id) > 23 {
		id = id[:23]
	}
	return id
}

// Validate checks the invariants §3 requires before any I/O: Receive
// Maximum must be nonzero, and the URL must parse.
func (o *Options) Validate() error {
	if o.ReceiveMaximum == 0 {
		return fmt.Errorf("%w: receive maximum must not be 0", ErrValidation)
	}
	if _, err := url.Parse(o.URL); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
