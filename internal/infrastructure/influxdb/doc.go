// Package influxdb records time-series telemetry for Gray Logic Connect.
//
// The client wraps the official influxdb-client-go v2 library. Connect
// verifies the server with a ping and returns a client whose writes go
// through the library's non-blocking batched write API; batch size and
// flush interval come from config.yaml. Asynchronous write failures surface
// through a callback registered with SetOnError.
//
// Two measurements are written:
//   - messages: numeric payloads observed on subscribed broker topics,
//     tagged by topic
//   - connection_events: broker link transitions, tagged by event and host
//
// The integration is optional. With enabled: false in configuration,
// Connect returns ErrDisabled and the connector runs without telemetry.
//
// All methods are safe for concurrent use from multiple goroutines.
package influxdb
