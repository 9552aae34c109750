// Package journal persists broker messages to SQLite.
//
// The journal is attached to the endpoint as a sink: every inbound message
// that survives fan-out is recorded with its topic, payload and receive
// time. The publish path records outbound messages through RecordOutbound.
// The status API reads the journal back through Recent and Count.
//
// Retention is row-count based and enforced opportunistically: every few
// hundred inserts the oldest rows beyond the configured bound are deleted.
// The journal never blocks message flow on pruning; a failed prune is
// logged and retried on the next sweep.
package journal
