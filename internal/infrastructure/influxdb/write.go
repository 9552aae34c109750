package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names used by the connector.
const (
	measurementMessages         = "messages"
	measurementConnectionEvents = "connection_events"
)

// WriteTopicValue records one numeric observation from a broker topic: a
// point in the messages measurement, tagged by topic and stamped with the
// message receive time. The write is non-blocking; failures reach the
// SetOnError callback.
func (c *Client) WriteTopicValue(topic string, value float64, at time.Time) {
	if !c.IsConnected() {
		return
	}

	tags := map[string]string{"topic": topic}
	fields := map[string]any{"value": value}
	c.writes.WritePoint(write.NewPoint(measurementMessages, tags, fields, at))
}

// WriteTopicFields records one structured observation from a broker topic:
// a single point in the messages measurement carrying every numeric field
// of the payload, tagged by topic and stamped with the message receive
// time.
func (c *Client) WriteTopicFields(topic string, values map[string]float64, at time.Time) {
	if !c.IsConnected() || len(values) == 0 {
		return
	}

	tags := map[string]string{"topic": topic}
	fields := make(map[string]any, len(values))
	for name, value := range values {
		fields[name] = value
	}
	c.writes.WritePoint(write.NewPoint(measurementMessages, tags, fields, at))
}

// WriteConnectionEvent records a broker link transition, one count per
// event, for charting link stability. Event is "connected" or
// "disconnected"; host names the broker concerned.
func (c *Client) WriteConnectionEvent(event, host string) {
	if !c.IsConnected() {
		return
	}

	tags := map[string]string{"event": event, "host": host}
	fields := map[string]any{"count": 1}
	c.writes.WritePoint(write.NewPoint(measurementConnectionEvents, tags, fields, time.Now()))
}
