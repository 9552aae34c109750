package transport

// CompletionFunc receives the outcome of an asynchronous broker operation.
// A nil error means the operation succeeded. Completions are invoked on the
// connection's own execution context, never on the caller's goroutine.
type CompletionFunc func(err error)

// Subscription pairs a topic filter with its requested QoS level.
type Subscription struct {
	Topic string
	QoS   byte
}

// Listener carries the hooks a Connection invokes from its own execution
// context. Nil hooks are skipped.
//
// OnMessage receives the inbound topic, payload and an acknowledgment
// callback. The ack must be invoked exactly once per message; until then the
// message is considered unconfirmed at the transport level.
//
// OnFailure reports an unsolicited connection failure (network drop, broker
// close). It is not invoked for failures already reported through a
// CompletionFunc.
type Listener struct {
	OnConnected    func()
	OnDisconnected func()
	OnMessage      func(topic string, payload []byte, ack func())
	OnFailure      func(err error)
}

// Connection is a single logical broker connection.
//
// All operations are asynchronous: they return immediately and report their
// outcome through the supplied CompletionFunc. A nil CompletionFunc discards
// the outcome. A Connection is single-use: once disconnected it is discarded
// and a fresh one obtained from the Factory.
type Connection interface {
	// SetListener installs the event hooks. Must be called before Connect.
	SetListener(l Listener)

	// Connect initiates the broker handshake.
	Connect(done CompletionFunc)

	// Subscribe registers the given topic filters on the live connection.
	Subscribe(subs []Subscription, done CompletionFunc)

	// Publish sends one message.
	Publish(topic string, payload []byte, qos byte, retain bool, done CompletionFunc)

	// Disconnect closes the connection. Safe to call in any state.
	Disconnect(done CompletionFunc)

	// Run schedules task onto the connection's execution context. Used to
	// avoid re-entering the connection from within one of its own callbacks.
	Run(task func())
}

// Factory produces a fresh, unconnected Connection. The connection manager
// calls it once per connect attempt; each returned value must be independent
// of any previously returned connection.
type Factory func() Connection

// Logger is the minimal logging surface the transport needs.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}
