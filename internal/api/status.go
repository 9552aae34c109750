package api

import (
	"net/http"
	"runtime"
	"time"
)

// Status is the connector status response.
type Status struct {
	Timestamp     string         `json:"timestamp"`
	Version       string         `json:"version"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Broker        BrokerStatus   `json:"broker"`
	Journal       *JournalStatus `json:"journal,omitempty"`
	InfluxDB      *InfluxStatus  `json:"influxdb,omitempty"`
	WebSocket     WSStatus       `json:"websocket"`
	Runtime       RuntimeStatus  `json:"runtime"`
}

// BrokerStatus describes the broker link and its subscription set.
type BrokerStatus struct {
	Connected     bool                 `json:"connected"`
	Subscriptions []SubscriptionStatus `json:"subscriptions"`
	Consumers     int                  `json:"consumers"`
}

// SubscriptionStatus is one entry of the resolved subscription set.
type SubscriptionStatus struct {
	Topic string `json:"topic"`
	QoS   byte   `json:"qos"`
}

// JournalStatus describes the message journal sink.
type JournalStatus struct {
	Messages int64 `json:"messages"`
}

// InfluxStatus describes the measurement recorder sink.
type InfluxStatus struct {
	Connected bool `json:"connected"`
}

// WSStatus contains WebSocket hub statistics.
type WSStatus struct {
	ConnectedClients int `json:"connected_clients"`
}

// RuntimeStatus contains Go runtime statistics.
type RuntimeStatus struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// handleStatus returns the connector status snapshot.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	// Collect runtime stats
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	status := Status{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Broker: BrokerStatus{
			Connected:     s.endpoint.IsConnected(),
			Subscriptions: []SubscriptionStatus{},
			Consumers:     s.endpoint.ConsumerCount(),
		},
		WebSocket: WSStatus{
			ConnectedClients: s.hub.ClientCount(),
		},
		Runtime: RuntimeStatus{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
	}

	for _, sub := range s.endpoint.Subscriptions() {
		status.Broker.Subscriptions = append(status.Broker.Subscriptions, SubscriptionStatus{
			Topic: sub.Topic,
			QoS:   sub.QoS,
		})
	}

	// Journal stats (if enabled)
	if s.journal != nil {
		js := &JournalStatus{}
		if n, err := s.journal.Count(r.Context()); err != nil {
			s.logger.Warn("journal count failed", "error", err)
		} else {
			js.Messages = n
		}
		status.Journal = js
	}

	// InfluxDB state (if enabled)
	if s.influx != nil {
		status.InfluxDB = &InfluxStatus{Connected: s.influx.IsConnected()}
	}

	writeJSON(w, http.StatusOK, status)
}
