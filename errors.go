package mqtt5

import "errors"

// Error kinds, per the error-handling design: transport failures drive
// the reconnect path, protocol errors close the connection, broker
// refusals surface without tearing down (except CONNACK), quota and
// validation errors return synchronously to the caller.
var (
	ErrTransport    = errors.New("mqtt5: transport failure")
	ErrProtocol     = errors.New("mqtt5: protocol error")
	ErrBrokerRefusal = errors.New("mqtt5: broker refusal")
	ErrQuotaExceeded = errors.New("mqtt5: in-flight window exhausted")
	ErrCanceled      = errors.New("mqtt5: canceled")
	ErrTimeout       = errors.New("mqtt5: timeout")
	ErrSessionLost   = errors.New("mqtt5: session lost, expected resume did not occur")
	ErrValidation    = errors.New("mqtt5: invalid configuration")

	// ErrFailedForever marks the connection state machine's terminal
	// state, reached once the reconnect attempt ceiling is exhausted.
	ErrFailedForever = errors.New("mqtt5: reconnect attempts exhausted")

	// ErrNotConnected is returned by operations that require an active
	// connection when none exists.
	ErrNotConnected = errors.New("mqtt5: not connected")
)
