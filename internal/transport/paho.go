package transport

import (
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/gray-logic-connect/internal/infrastructure/config"
)

// NewFactory returns a Factory producing paho-backed connections for the
// configured broker.
func NewFactory(cfg *config.Config, logger Logger) Factory {
	return func() Connection {
		return newPahoConnection(cfg, logger)
	}
}

// pahoConnection adapts one paho client to the Connection contract.
//
// Each instance owns exactly one underlying client. A disconnected
// pahoConnection is discarded together with its client; reconnection means a
// fresh instance from the Factory.
type pahoConnection struct {
	client pahomqtt.Client
	logger Logger

	listener Listener
	lisMu    sync.RWMutex
}

func newPahoConnection(cfg *config.Config, logger Logger) *pahoConnection {
	c := &pahoConnection{logger: logger}

	opts := buildClientOptions(cfg)
	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		if l := c.getListener(); l.OnConnected != nil {
			l.OnConnected()
		}
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		if l := c.getListener(); l.OnFailure != nil {
			l.OnFailure(err)
		}
	})

	c.client = pahomqtt.NewClient(opts)
	return c
}

func (c *pahoConnection) SetListener(l Listener) {
	c.lisMu.Lock()
	c.listener = l
	c.lisMu.Unlock()
}

func (c *pahoConnection) getListener() Listener {
	c.lisMu.RLock()
	defer c.lisMu.RUnlock()
	return c.listener
}

// Connect initiates the broker handshake. The paho token is observed on a
// dedicated goroutine so the call itself never blocks.
func (c *pahoConnection) Connect(done CompletionFunc) {
	go func() {
		token := c.client.Connect()
		token.Wait()
		complete(done, token.Error())
	}()
}

func (c *pahoConnection) Subscribe(subs []Subscription, done CompletionFunc) {
	filters := make(map[string]byte, len(subs))
	for _, s := range subs {
		filters[s.Topic] = s.QoS
	}
	go func() {
		token := c.client.SubscribeMultiple(filters, c.route)
		token.Wait()
		complete(done, token.Error())
	}()
}

// route forwards one inbound message to the listener. Automatic
// acknowledgment is disabled, so the listener's ack call is what confirms
// the message; with no hook installed the message is acked on the spot
// rather than left unconfirmed. A panicking listener must not take down
// paho's delivery goroutine, so the call is wrapped with recovery.
func (c *pahoConnection) route(_ pahomqtt.Client, msg pahomqtt.Message) {
	defer func() {
		if r := recover(); r != nil {
			if c.logger != nil {
				c.logger.Error("message listener panic recovered",
					"topic", msg.Topic(),
					"panic", r,
				)
			}
		}
	}()

	l := c.getListener()
	if l.OnMessage == nil {
		if c.logger != nil {
			c.logger.Debug("no listener for inbound message, acking", "topic", msg.Topic())
		}
		msg.Ack()
		return
	}
	l.OnMessage(msg.Topic(), msg.Payload(), msg.Ack)
}

func (c *pahoConnection) Publish(topic string, payload []byte, qos byte, retain bool, done CompletionFunc) {
	go func() {
		token := c.client.Publish(topic, qos, retain, payload)
		token.Wait()
		complete(done, token.Error())
	}()
}

// Disconnect closes the connection after the quiesce period. paho reports no
// error from disconnect, so completion always succeeds.
func (c *pahoConnection) Disconnect(done CompletionFunc) {
	go func() {
		c.client.Disconnect(disconnectQuiesce)
		if l := c.getListener(); l.OnDisconnected != nil {
			l.OnDisconnected()
		}
		complete(done, nil)
	}()
}

func (c *pahoConnection) Run(task func()) {
	if task == nil {
		return
	}
	go task()
}

func complete(done CompletionFunc, err error) {
	if done != nil {
		done(err)
	}
}
