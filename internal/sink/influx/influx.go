package influx

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-connect/internal/endpoint"
)

// maxObjectFields caps how many members a structured payload may carry;
// larger objects are skipped.
const maxObjectFields = 16

// Writer is the telemetry surface the recorder needs. Satisfied by
// influxdb.Client.
type Writer interface {
	WriteTopicValue(topic string, value float64, at time.Time)
	WriteTopicFields(topic string, fields map[string]float64, at time.Time)
}

// Logger is the minimal logging surface the recorder needs.
type Logger interface {
	Debug(msg string, args ...any)
}

// Recorder forwards numeric payloads to InfluxDB, one point per message
// tagged by topic. A payload is numeric when it is a plain number or a flat
// JSON object with at least one numeric member. Anything else is skipped;
// that is routine for mixed topic sets, not an error.
type Recorder struct {
	writer  Writer
	logger  Logger
	skipped atomic.Uint64
}

// New creates a recorder writing through w.
func New(w Writer, logger Logger) *Recorder {
	return &Recorder{
		writer: w,
		logger: logger,
	}
}

// Name identifies the sink in logs and status reporting.
func (r *Recorder) Name() string { return "influx" }

// Consume records one message if its payload parses as numeric.
// Implements endpoint.Sink.
func (r *Recorder) Consume(_ context.Context, msg *endpoint.Message) error {
	if value, ok := parseNumeric(msg.Payload); ok {
		r.writer.WriteTopicValue(msg.Topic, value, msg.ReceivedAt)
		return nil
	}
	if fields, ok := parseNumericFields(msg.Payload); ok {
		r.writer.WriteTopicFields(msg.Topic, fields, msg.ReceivedAt)
		return nil
	}

	r.logger.Debug("skipping non-numeric payload",
		"topic", msg.Topic,
		"skipped_total", r.skipped.Add(1),
	)
	return nil
}

// parseNumeric extracts a finite float from a payload. Whitespace is
// trimmed; NaN and infinities are rejected because InfluxDB fields cannot
// hold them.
func parseNumeric(payload []byte) (float64, bool) {
	s := strings.TrimSpace(string(payload))
	if s == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}

	return value, true
}

// parseNumericFields extracts the numeric members of a flat JSON object,
// e.g. {"temperature": 21.5, "humidity": 40}. Non-numeric members are
// ignored; nested values do not decode as float64 and fall out the same
// way. Returns false when the payload is not an object, is empty, exceeds
// maxObjectFields, or has no numeric member at all.
func parseNumericFields(payload []byte) (map[string]float64, bool) {
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, false
	}
	if len(raw) == 0 || len(raw) > maxObjectFields {
		return nil, false
	}

	fields := make(map[string]float64, len(raw))
	for name, v := range raw {
		if value, ok := v.(float64); ok {
			fields[name] = value
		}
	}
	if len(fields) == 0 {
		return nil, false
	}

	return fields, true
}
