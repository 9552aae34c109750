package endpoint

import "errors"

// Domain-specific errors for endpoint operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotConnected is returned when the endpoint holds no live broker
	// connection and the operation does not reconnect on its own.
	ErrNotConnected = errors.New("endpoint: not connected")

	// ErrConnectTimeout is returned when no connect or subscribe completion
	// arrives within the configured connect wait window.
	ErrConnectTimeout = errors.New("endpoint: connect timed out")

	// ErrConnectFailed is returned when the transport reports an explicit
	// connect or subscribe error. The transport's reason is wrapped.
	ErrConnectFailed = errors.New("endpoint: connect failed")

	// ErrReconnectExhausted is returned by Publish when the reconnect bound
	// is reached with the link still down. The last recorded timeout, if
	// any, is wrapped.
	ErrReconnectExhausted = errors.New("endpoint: reconnect attempts exhausted")

	// ErrPublishFailed is returned when a dispatched publish fails or its
	// completion does not arrive within the send wait window.
	ErrPublishFailed = errors.New("endpoint: publish failed")

	// ErrClosed is returned for operations on a closed endpoint.
	ErrClosed = errors.New("endpoint: closed")

	// ErrInvalidTopic is returned when an empty topic is provided.
	ErrInvalidTopic = errors.New("endpoint: topic cannot be empty")

	// ErrInvalidQoS is returned when an invalid QoS level is specified.
	// Valid QoS levels are 0, 1, or 2.
	ErrInvalidQoS = errors.New("endpoint: invalid QoS level (must be 0, 1, or 2)")

	// ErrPayloadTooLarge is returned when a payload exceeds the configured
	// maximum size.
	ErrPayloadTooLarge = errors.New("endpoint: payload exceeds maximum size")
)

// errWaitTimeout marks a promise deadline expiry. Callers translate it into
// the operation-specific timeout error; it never escapes the package.
var errWaitTimeout = errors.New("endpoint: wait timed out")
