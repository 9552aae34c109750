package endpoint

import (
	"github.com/nerrad567/gray-logic-connect/internal/infrastructure/config"
)

// Outbound is one message handed to a Producer. Unset fields fall back to
// the configured publish defaults: an empty Topic uses publish.topic, a nil
// QoS uses publish.qos, a nil Retain uses publish.retain.
type Outbound struct {
	Topic   string
	Payload []byte
	QoS     *byte
	Retain  *bool
}

// Producer is the publish-side binding. It applies the configured defaults
// and per-message overrides, then delegates to the endpoint's managed
// publish with its bounded reconnect.
type Producer struct {
	ep  *Endpoint
	cfg config.PublishConfig
}

// NewProducer creates a producer over ep using the publish defaults from the
// endpoint's configuration.
func NewProducer(ep *Endpoint) *Producer {
	return &Producer{
		ep:  ep,
		cfg: ep.cfg.Publish,
	}
}

// DefaultTopic returns the configured topic applied to messages that do not
// carry their own. Empty when no default is configured.
func (p *Producer) DefaultTopic() string {
	return p.cfg.Topic
}

// Send publishes one message, blocking until the transport reports the
// outcome or the endpoint's bounded reconnect gives up. A message that
// resolves to no topic at all fails with ErrInvalidTopic.
func (p *Producer) Send(msg Outbound) error {
	topic := msg.Topic
	if topic == "" {
		topic = p.cfg.Topic
	}
	if topic == "" {
		return ErrInvalidTopic
	}

	qos := byte(p.cfg.QoS)
	if msg.QoS != nil {
		qos = *msg.QoS
	}

	retain := p.cfg.Retain
	if msg.Retain != nil {
		retain = *msg.Retain
	}

	return p.ep.Publish(topic, msg.Payload, qos, retain)
}
