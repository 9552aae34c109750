// Package api implements the operations HTTP and WebSocket surface for the
// connector.
//
// This package provides:
//   - REST endpoints for connector status, the message journal, and publishing
//   - WebSocket hub streaming broker messages to subscribed clients
//   - Middleware stack (request ID, logging, recovery, CORS, body size limit)
//
// # Architecture
//
// The server sits beside the broker endpoint rather than in front of it: the
// WebSocket hub is registered as one more sink on the inbound fan-out, and
// the publish endpoint drives the same bounded-reconnect producer path the
// rest of the process uses. Nothing here holds broker state of its own.
//
// # Graceful Degradation
//
// The server operates without the optional sinks. With the journal disabled
// the messages endpoint reports unavailable; with InfluxDB disabled the
// status response simply omits it. Publishing and the live tail keep
// working either way.
package api
