// Package transport defines the broker connection contract for Gray Logic
// Connect and provides its paho-backed implementation.
//
// This package manages:
//   - The asynchronous Connection contract (connect, subscribe, publish,
//     disconnect, event listener)
//   - Paho client option construction from configuration
//   - Last will registration for unclean-exit detection
//
// # Architecture
//
// A Connection models one single-use broker link: callers obtain a fresh
// instance from a Factory, connect it, use it, and discard it on disconnect.
// Reconnection policy deliberately lives one layer up in the endpoint
// package; paho's own auto-reconnect and connect-retry are disabled so the
// two layers never race each other.
//
// All completion callbacks and listener hooks fire on the connection's own
// execution context. Callers that need to issue connection operations from
// within a callback schedule them via Run to avoid re-entering the client.
//
// # Usage
//
//	factory := transport.NewFactory(cfg, logger)
//	conn := factory()
//	conn.SetListener(transport.Listener{
//	    OnMessage: func(topic string, payload []byte, ack func()) {
//	        log.Printf("received: %s = %s", topic, payload)
//	        ack()
//	    },
//	})
//	conn.Connect(func(err error) { ... })
package transport
