package endpoint

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-connect/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-connect/internal/transport"
)

// Logger is the minimal logging surface the endpoint needs.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}

// Endpoint owns at most one active broker connection and guarantees that a
// publish either goes out on a live link or fails after bounded, observable
// retry. Inbound messages fan out to the registered consumers.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Consumers may attach and detach while deliveries are in progress.
type Endpoint struct {
	cfg     *config.Config
	factory transport.Factory
	logger  Logger

	// subs is the topic subscription set, resolved once from configuration
	// and reused unchanged by every connect attempt.
	subs []transport.Subscription

	// Wait bounds, captured from configuration at construction.
	connectWait    time.Duration
	disconnectWait time.Duration
	sendWait       time.Duration

	// conn is the current connection object, replaced wholesale on each
	// reconnect attempt. connMu also sequences connect, reconnect and close.
	conn   transport.Connection
	connMu sync.Mutex

	// connected is read by concurrent publishers and written on connect
	// completion, unsolicited failure and close.
	connected atomic.Bool

	// consumers is copy-on-write: mutations swap in a new slice so an
	// in-flight delivery keeps iterating its snapshot.
	consumers []*Consumer
	consMu    sync.Mutex

	// Optional link state observers, registered before Connect.
	hookMu       sync.RWMutex
	onConnect    func()
	onDisconnect func()

	closed atomic.Bool
}

// New creates an Endpoint that obtains broker connections from factory.
// No connection is made until Connect or the first Publish.
func New(cfg *config.Config, factory transport.Factory, logger Logger) *Endpoint {
	return &Endpoint{
		cfg:            cfg,
		factory:        factory,
		logger:         logger,
		subs:           resolveSubscriptions(cfg, logger),
		connectWait:    cfg.GetConnectWait(),
		disconnectWait: cfg.GetDisconnectWait(),
		sendWait:       cfg.GetSendWait(),
	}
}

// SetOnConnect registers a callback invoked each time the broker link comes
// up, whether through Connect or a reconnect on the publish path. Pass nil
// to clear it. The callback runs on the connecting goroutine and should
// return promptly.
func (e *Endpoint) SetOnConnect(callback func()) {
	e.hookMu.Lock()
	defer e.hookMu.Unlock()
	e.onConnect = callback
}

// SetOnDisconnect registers a callback invoked when an established link goes
// down, either by unsolicited transport failure or by Close. Failed connect
// attempts do not fire it. Pass nil to clear it.
func (e *Endpoint) SetOnDisconnect(callback func()) {
	e.hookMu.Lock()
	defer e.hookMu.Unlock()
	e.onDisconnect = callback
}

func (e *Endpoint) notifyConnect() {
	e.hookMu.RLock()
	callback := e.onConnect
	e.hookMu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (e *Endpoint) notifyDisconnect() {
	e.hookMu.RLock()
	callback := e.onDisconnect
	e.hookMu.RUnlock()

	if callback != nil {
		callback()
	}
}

// Connect establishes the broker connection and subscribes the configured
// topic set. It blocks until the handshake fully completes, fails, or the
// connect wait elapses; on failure or timeout the connection is reset and
// the endpoint stays disconnected.
//
// Connect makes a single attempt. Publish performs its own bounded retry
// when it finds the link down.
func (e *Endpoint) Connect() error {
	if e.closed.Load() {
		return ErrClosed
	}

	e.connMu.Lock()
	defer e.connMu.Unlock()

	if e.connected.Load() {
		return nil
	}

	e.resetLocked()
	return e.connectLocked()
}

// resetLocked discards any stale connection object and installs a fresh one.
// The stale object is disconnected best-effort on its own execution context.
// Caller holds connMu.
func (e *Endpoint) resetLocked() {
	if stale := e.conn; stale != nil {
		stale.Run(func() {
			stale.Disconnect(func(err error) {
				if err != nil {
					e.logger.Debug("failed to disconnect stale connection", "error", err)
				}
			})
		})
	}
	e.conn = e.newConnection()
}

// newConnection obtains a fresh connection and installs the listener hooks.
// The failure hook captures this connection so a late event from a replaced
// connection never tears down its successor.
func (e *Endpoint) newConnection() transport.Connection {
	conn := e.factory()
	conn.SetListener(transport.Listener{
		OnConnected: func() {
			e.logger.Debug("broker connection up", "host", e.cfg.Broker.Host)
		},
		OnDisconnected: func() {
			e.logger.Debug("broker connection closed", "host", e.cfg.Broker.Host)
		},
		OnMessage: e.handleInbound,
		OnFailure: func(err error) {
			e.handleTransportFailure(conn, err)
		},
	})
	return conn
}

// connectLocked runs one connect-and-subscribe handshake against the current
// connection, blocking up to the connect wait. On failure or timeout an
// explicit disconnect resets the link so the next attempt starts clean.
// Caller holds connMu.
func (e *Endpoint) connectLocked() error {
	conn := e.conn
	subs := e.subs
	p := newPromise()

	conn.Connect(func(err error) {
		if err != nil {
			e.logger.Warn("failed to connect to broker",
				"host", e.cfg.Broker.Host,
				"error", err,
			)
			p.complete(fmt.Errorf("%w: %w", ErrConnectFailed, err))
			conn.Disconnect(nil)
			return
		}

		if len(subs) == 0 {
			p.complete(nil)
			return
		}

		conn.Subscribe(subs, func(err error) {
			if err != nil {
				e.logger.Warn("failed to subscribe",
					"host", e.cfg.Broker.Host,
					"error", err,
				)
				p.complete(fmt.Errorf("%w: %w", ErrConnectFailed, err))
				conn.Disconnect(nil)
				return
			}
			p.complete(nil)
		})
	})

	err := p.await(e.connectWait)
	switch {
	case err == nil:
		e.connected.Store(true)
		e.notifyConnect()
		return nil
	case errors.Is(err, errWaitTimeout):
		conn.Disconnect(nil)
		e.connected.Store(false)
		return ErrConnectTimeout
	default:
		// The completion callback already issued the reset disconnect.
		e.connected.Store(false)
		return err
	}
}

// handleTransportFailure reacts to an unsolicited connection failure: the
// link is marked down so the next publish reconnects, and a best-effort
// disconnect is scheduled on the transport's own execution context. An error
// from that disconnect is logged and dropped.
func (e *Endpoint) handleTransportFailure(conn transport.Connection, err error) {
	// Observers fire only on a real up-to-down transition; a failure during
	// a connect attempt arrives with the link already down.
	if e.connected.Swap(false) {
		e.notifyDisconnect()
	}
	e.logger.Warn("broker connection failed",
		"host", e.cfg.Broker.Host,
		"error", err,
	)

	conn.Run(func() {
		conn.Disconnect(func(dErr error) {
			if dErr != nil {
				e.logger.Debug("failed to disconnect failed connection", "error", dErr)
			}
		})
	})
}

// handleInbound fans one inbound message out to every registered consumer in
// registration order, then acknowledges exactly once. With no consumers the
// acknowledgment still runs; sink errors never withhold it.
func (e *Endpoint) handleInbound(topic string, payload []byte, ack func()) {
	consumers := e.snapshotConsumers()
	if len(consumers) > 0 {
		msg := &Message{
			Topic:      topic,
			Payload:    payload,
			ReceivedAt: time.Now().UTC(),
		}
		for _, c := range consumers {
			c.deliver(msg)
		}
	}

	if ack != nil {
		ack()
	}
}

// attach registers a consumer at the end of the delivery order.
func (e *Endpoint) attach(c *Consumer) {
	e.consMu.Lock()
	defer e.consMu.Unlock()

	next := make([]*Consumer, len(e.consumers), len(e.consumers)+1)
	copy(next, e.consumers)
	e.consumers = append(next, c)
}

// detach removes a consumer. A delivery already iterating its snapshot may
// still reach the consumer once; subsequent deliveries will not.
func (e *Endpoint) detach(c *Consumer) {
	e.consMu.Lock()
	defer e.consMu.Unlock()

	next := make([]*Consumer, 0, len(e.consumers))
	for _, existing := range e.consumers {
		if existing != c {
			next = append(next, existing)
		}
	}
	e.consumers = next
}

// snapshotConsumers returns the current consumer slice. The slice is never
// mutated in place, so iterating it without a lock is safe.
func (e *Endpoint) snapshotConsumers() []*Consumer {
	e.consMu.Lock()
	defer e.consMu.Unlock()
	return e.consumers
}

// ConsumerCount returns the number of attached consumers.
func (e *Endpoint) ConsumerCount() int {
	e.consMu.Lock()
	defer e.consMu.Unlock()
	return len(e.consumers)
}

// Subscriptions returns a copy of the resolved topic subscription set.
func (e *Endpoint) Subscriptions() []transport.Subscription {
	subs := make([]transport.Subscription, len(e.subs))
	copy(subs, e.subs)
	return subs
}

// IsConnected reports the current link state.
func (e *Endpoint) IsConnected() bool {
	return e.connected.Load()
}

// HealthCheck verifies the endpoint holds a live broker connection.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (e *Endpoint) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("endpoint health check: %w", ctx.Err())
	default:
	}

	if e.closed.Load() {
		return ErrClosed
	}
	if !e.connected.Load() {
		return ErrNotConnected
	}

	return nil
}

// Close tears the endpoint down. An active connection is disconnected via
// its own execution context, waiting up to the disconnect wait bound; a
// timeout there is logged and shutdown proceeds regardless. Close is
// idempotent, and operations after Close return ErrClosed.
func (e *Endpoint) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}

	e.connMu.Lock()
	defer e.connMu.Unlock()

	conn := e.conn
	e.conn = nil
	wasUp := e.connected.Swap(false)

	if conn == nil {
		return nil
	}

	p := newPromise()
	conn.Run(func() {
		conn.Disconnect(p.complete)
	})

	if err := p.await(e.disconnectWait); err != nil {
		if errors.Is(err, errWaitTimeout) {
			e.logger.Warn("disconnect timed out during shutdown",
				"wait", e.disconnectWait,
			)
		} else {
			e.logger.Warn("disconnect failed during shutdown", "error", err)
		}
	}

	if wasUp {
		e.notifyDisconnect()
	}
	return nil
}
