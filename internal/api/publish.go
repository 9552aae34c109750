package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/gray-logic-connect/internal/endpoint"
)

// PublishRequest is the body for POST /api/v1/publish. Unset fields fall
// back to the configured publish defaults.
type PublishRequest struct {
	Topic   string `json:"topic,omitempty"`
	Payload string `json:"payload"`
	QoS     *byte  `json:"qos,omitempty"`
	Retain  *bool  `json:"retain,omitempty"`
}

// PublishResponse reports the delivered message.
type PublishResponse struct {
	Status string `json:"status"`
	Topic  string `json:"topic"`
	Size   int    `json:"size"`
}

// handlePublish sends one message through the producer. The call blocks
// until the transport confirms delivery or the endpoint's bounded reconnect
// gives up.
func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	var req PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	payload := []byte(req.Payload)
	err := s.producer.Send(endpoint.Outbound{
		Topic:   req.Topic,
		Payload: payload,
		QoS:     req.QoS,
		Retain:  req.Retain,
	})
	if err != nil {
		s.writePublishError(w, err)
		return
	}

	topic := req.Topic
	if topic == "" {
		topic = s.producer.DefaultTopic()
	}

	if s.journal != nil {
		if jErr := s.journal.RecordOutbound(r.Context(), topic, payload); jErr != nil {
			s.logger.Warn("failed to journal outbound message", "topic", topic, "error", jErr)
		}
	}

	s.hub.Broadcast(ChannelMessagePublished, MessageEvent{
		Topic:   topic,
		Payload: req.Payload,
		Size:    len(payload),
	})

	writeJSON(w, http.StatusOK, PublishResponse{
		Status: "sent",
		Topic:  topic,
		Size:   len(payload),
	})
}

// writePublishError maps a publish failure onto an HTTP status: validation
// failures are the caller's fault, everything else is a broker-side problem.
func (s *Server) writePublishError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, endpoint.ErrInvalidTopic),
		errors.Is(err, endpoint.ErrInvalidQoS),
		errors.Is(err, endpoint.ErrPayloadTooLarge):
		writeBadRequest(w, err.Error())
	case errors.Is(err, endpoint.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "connector is shutting down")
	default:
		s.logger.Error("publish failed", "error", err)
		writeError(w, http.StatusBadGateway, ErrCodeBroker, "broker publish failed: "+err.Error())
	}
}
