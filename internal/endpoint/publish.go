package endpoint

import (
	"errors"
	"fmt"

	"github.com/nerrad567/gray-logic-connect/internal/transport"
)

const (
	// publishMaxReconnects bounds the reconnect attempts a publish makes
	// when it finds the link down. Counting the initial try, a publish runs
	// at most publishMaxReconnects+1 connect attempts before giving up.
	publishMaxReconnects = 3

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2
)

// Publish sends one message on the managed connection.
//
// If the link is down, up to publishMaxReconnects reconnect attempts run
// first. Each attempt tears down the stale connection object, creates a
// fresh one and performs the connect handshake. An attempt that times out is
// recorded and retried; any other connect failure aborts the publish
// immediately without consuming the remaining attempts. When the bound is
// reached with the link still down, the publish fails with
// ErrReconnectExhausted wrapping the last recorded timeout.
//
// Once connected, the message is dispatched to the transport's execution
// context exactly once, and the call blocks until the transport reports the
// outcome, bounded by the send wait.
//
// Parameters:
//   - topic: The topic to publish to
//   - payload: The message payload
//   - qos: Quality of Service level (0, 1, or 2)
//   - retain: Whether the broker should retain the message
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
func (e *Endpoint) Publish(topic string, payload []byte, qos byte, retain bool) error {
	// Validate inputs
	if e.closed.Load() {
		return ErrClosed
	}
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if maxSize := e.cfg.Publish.MaxPayloadSize; maxSize > 0 && len(payload) > maxSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes",
			ErrPayloadTooLarge, len(payload), maxSize)
	}

	if err := e.ensureConnected(); err != nil {
		return err
	}

	conn := e.current()
	if conn == nil {
		return ErrClosed
	}

	p := newPromise()
	conn.Run(func() {
		conn.Publish(topic, payload, qos, retain, p.complete)
	})

	if err := p.await(e.sendWait); err != nil {
		if errors.Is(err, errWaitTimeout) {
			return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, e.sendWait)
		}
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// ensureConnected runs the bounded reconnect loop. It returns nil once the
// link is up, the first non-timeout connect error otherwise, and
// ErrReconnectExhausted when every attempt timed out.
func (e *Endpoint) ensureConnected() error {
	if e.connected.Load() {
		return nil
	}

	e.connMu.Lock()
	defer e.connMu.Unlock()

	done := e.connected.Load()
	attempt := 0
	var lastTimeout error

	for !done && attempt <= publishMaxReconnects {
		attempt++
		e.logger.Warn("re-creating broker connection before publish",
			"attempt", attempt,
			"host", e.cfg.Broker.Host,
		)

		e.resetLocked()
		err := e.connectLocked()
		switch {
		case err == nil:
		case errors.Is(err, ErrConnectTimeout):
			lastTimeout = err
		default:
			return err
		}

		done = e.connected.Load()
	}

	if !e.connected.Load() {
		if lastTimeout != nil {
			return fmt.Errorf("%w after %d attempts: %w", ErrReconnectExhausted, attempt, lastTimeout)
		}
		return fmt.Errorf("%w after %d attempts", ErrReconnectExhausted, attempt)
	}

	return nil
}

// current returns the connection object in use, nil after Close.
func (e *Endpoint) current() transport.Connection {
	e.connMu.Lock()
	defer e.connMu.Unlock()
	return e.conn
}
