package endpoint

import (
	"context"
	"time"
)

// Message is one inbound broker message as delivered to sinks. A single
// instance is shared by every sink for a given delivery; sinks must treat it
// as read-only.
type Message struct {
	Topic      string
	Payload    []byte
	ReceivedAt time.Time
}

// Sink receives inbound messages. Failures inside a sink are the sink's own
// responsibility: a returned error is logged against the owning consumer and
// never blocks delivery to other sinks or withholds the transport
// acknowledgment.
type Sink interface {
	// Name identifies the sink in logs and status reporting.
	Name() string

	// Consume processes one message. ctx is the lifecycle context supplied
	// to the consumer at Start.
	Consume(ctx context.Context, msg *Message) error
}
