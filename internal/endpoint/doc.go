// Package endpoint implements the managed broker endpoint at the heart of
// Gray Logic Connect.
//
// This package manages:
//   - A single logical broker connection with explicit lifecycle
//   - Reconnect-before-publish with a bounded attempt count
//   - The topic subscription set resolved from configuration
//   - Fan-out of inbound messages to registered consumers
//   - Producer-side defaults and per-message overrides
//
// # Architecture
//
// The endpoint sits between the transport (an asynchronous, callback-driven
// broker connection) and the sinks that process inbound messages:
//
//	Broker ↔ transport.Connection ↔ Endpoint ↔ Consumers → Sinks
//
// Connections are single-use: every connect attempt obtains a fresh
// transport.Connection from the factory and discards the stale one. The
// endpoint converts the transport's asynchronous completions into blocking
// calls with deadlines, so Connect and Publish are synchronous from the
// caller's point of view.
//
// A publish that finds the link down retries the connect handshake up to
// three times before failing. A connect timeout is retried; any other
// connect failure (for example an authentication rejection) aborts
// immediately because repeating it cannot succeed.
//
// Incoming messages are delivered to every registered consumer in
// registration order, sharing one Message instance, and are acknowledged to
// the transport exactly once afterwards regardless of sink outcomes.
// Acknowledgment is transport-level ("message received"), not sink-level
// ("message processed").
//
// # Usage
//
//	ep := endpoint.New(cfg, transport.NewFactory(cfg, logger), logger)
//	if err := ep.Connect(); err != nil {
//	    log.Fatal(err)
//	}
//	defer ep.Close()
//
//	consumer := endpoint.NewConsumer(ep, sink, logger)
//	consumer.Start(ctx)
//	defer consumer.Stop()
//
//	producer := endpoint.NewProducer(ep)
//	err := producer.Send(endpoint.Outbound{Payload: []byte(`{"on":true}`)})
package endpoint
