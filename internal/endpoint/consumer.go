package endpoint

import (
	"context"
	"sync"
)

// Consumer binds one Sink to the endpoint's inbound flow.
//
// A started consumer receives every message the endpoint's subscription set
// produces, in registration order relative to other consumers. Stop detaches
// it; a delivery already in flight may still reach it once.
type Consumer struct {
	ep     *Endpoint
	sink   Sink
	logger Logger

	mu      sync.Mutex
	ctx     context.Context
	started bool
}

// NewConsumer creates a consumer delivering to sink. The consumer is
// inactive until Start.
func NewConsumer(ep *Endpoint, sink Sink, logger Logger) *Consumer {
	return &Consumer{
		ep:     ep,
		sink:   sink,
		logger: logger,
	}
}

// Start registers the consumer with the endpoint. ctx is handed to every
// Consume call and should outlive the consumer. Start is idempotent.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	c.ctx = ctx
	c.started = true
	c.ep.attach(c)
	return nil
}

// Stop detaches the consumer from the endpoint. Safe to call repeatedly and
// concurrently with deliveries.
func (c *Consumer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return
	}

	c.started = false
	c.ep.detach(c)
}

// deliver hands one message to the sink, containing panics and logging
// errors against the sink's name. The delivery outcome never propagates to
// the transport.
func (c *Consumer) deliver(msg *Message) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("sink panic recovered",
				"sink", c.sink.Name(),
				"topic", msg.Topic,
				"panic", r,
			)
		}
	}()

	c.mu.Lock()
	ctx := c.ctx
	c.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := c.sink.Consume(ctx, msg); err != nil {
		c.logger.Warn("sink returned error",
			"sink", c.sink.Name(),
			"topic", msg.Topic,
			"error", err,
		)
	}
}
