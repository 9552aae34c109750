package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/gray-logic-connect/internal/endpoint"
	"github.com/nerrad567/gray-logic-connect/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-connect/internal/infrastructure/logging"
)

// Frame types exchanged with WebSocket clients.
const (
	WSTypeSubscribe   = "subscribe"
	WSTypeUnsubscribe = "unsubscribe"
	WSTypePing        = "ping"
	WSTypePong        = "pong"
	WSTypeEvent       = "event"
	WSTypeResponse    = "response"
	WSTypeError       = "error"
)

// wsSendBufferSize is the per-client outbound buffer. When it fills, further
// events for that client are dropped rather than applying backpressure to
// the broadcaster.
const wsSendBufferSize = 256

// Broadcast channels clients can subscribe to.
const (
	// ChannelMessageReceived carries every inbound broker message.
	ChannelMessageReceived = "message.received"

	// ChannelMessagePublished carries messages sent through the publish
	// endpoint.
	ChannelMessagePublished = "message.published"
)

// WSMessage is the frame format in both directions. Type discriminates; the
// remaining fields are filled as each type requires.
type WSMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// WSSubscribePayload names the channels a subscribe or unsubscribe frame
// applies to.
type WSSubscribePayload struct {
	Channels []string `json:"channels"`
}

// MessageEvent is the payload broadcast for each broker message crossing
// the connector. Payload is the raw bytes rendered as text.
type MessageEvent struct {
	Topic      string `json:"topic"`
	Payload    string `json:"payload"`
	Size       int    `json:"size"`
	ReceivedAt string `json:"received_at,omitempty"`
}

// Hub tracks connected WebSocket clients and fans events out to them. It
// doubles as a message sink: attached to the endpoint through a consumer, it
// relays every inbound broker message to clients subscribed to the
// message.received channel.
type Hub struct {
	cfg    config.WebSocketConfig
	logger *logging.Logger

	mu      sync.RWMutex
	clients map[*WSClient]struct{}
}

// NewHub creates an empty hub.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[*WSClient]struct{}),
	}
}

// Name identifies the hub when registered as a message sink.
func (h *Hub) Name() string { return "websocket" }

// Consume relays one inbound broker message to subscribed clients. It never
// fails; a slow or disconnected client loses the event rather than holding
// up delivery to the other sinks.
func (h *Hub) Consume(_ context.Context, msg *endpoint.Message) error {
	h.Broadcast(ChannelMessageReceived, MessageEvent{
		Topic:      msg.Topic,
		Payload:    string(msg.Payload),
		Size:       len(msg.Payload),
		ReceivedAt: msg.ReceivedAt.Format(time.RFC3339Nano),
	})
	return nil
}

// Run blocks until ctx is cancelled, then disconnects every client so their
// write pumps exit.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		if client.conn != nil {
			client.conn.Close()
		}
		delete(h.clients, client)
	}
}

// Register adds a client to the broadcast set.
func (h *Hub) Register(client *WSClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug("websocket client connected", "clients", total)
}

// Unregister removes a client. The send channel is closed only by the
// goroutine that actually removed the client from the set, so a concurrent
// Unregister and shutdown cannot close it twice.
func (h *Hub) Unregister(client *WSClient) {
	h.mu.Lock()
	_, present := h.clients[client]
	delete(h.clients, client)
	total := len(h.clients)
	h.mu.Unlock()

	if present {
		close(client.send)
	}
	h.logger.Debug("websocket client disconnected", "clients", total)
}

// Broadcast delivers payload to every client subscribed to channel. The
// client set is snapshotted under the hub lock and the sends happen outside
// it, so the hub lock and the per-client locks are never held together.
func (h *Hub) Broadcast(channel string, payload any) {
	frame, err := json.Marshal(WSMessage{
		Type:      WSTypeEvent,
		EventType: channel,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		h.logger.Error("failed to marshal broadcast message", "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*WSClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, client := range clients {
		if client.subscribed(channel) {
			client.enqueue(frame)
			delivered++
		}
	}
	if delivered > 0 {
		h.logger.Debug("broadcast sent", "channel", channel, "recipients", delivered)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// WSClient is one connected WebSocket session. Outbound frames queue on
// send; the write pump drains them onto the wire.
type WSClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu            sync.RWMutex
	subscriptions map[string]struct{}
}

// readPump consumes frames from the client until the connection drops. The
// read deadline spans the ping interval plus the pong timeout and is pushed
// forward by pongs and by any client frame, so a client that sends traffic
// without answering pings stays connected.
func (c *WSClient) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	window := time.Duration(c.hub.cfg.PingInterval+c.hub.cfg.PongTimeout) * time.Second
	c.conn.SetReadLimit(int64(c.hub.cfg.MaxMessageSize))
	//nolint:errcheck // best-effort deadline on a fresh connection
	c.conn.SetReadDeadline(time.Now().Add(window))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(window))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "error", err)
			} else {
				c.hub.logger.Debug("websocket closed", "error", err)
			}
			return
		}

		//nolint:errcheck // best-effort deadline refresh
		c.conn.SetReadDeadline(time.Now().Add(window))
		c.handleFrame(frame)
	}
}

// writePump moves queued frames onto the wire and keeps the connection
// alive with periodic pings. It exits when the send channel closes or any
// write fails.
func (c *WSClient) writePump() {
	pings := time.NewTicker(time.Duration(c.hub.cfg.PingInterval) * time.Second)
	writeWait := time.Duration(c.hub.cfg.PongTimeout) * time.Second
	defer func() {
		pings.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				// The hub closed the channel.
				//nolint:errcheck // best-effort close frame
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			//nolint:errcheck // a deadline failure surfaces in the write below
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-pings.C:
			//nolint:errcheck // a deadline failure surfaces in the write below
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleFrame dispatches one client frame.
func (c *WSClient) handleFrame(frame []byte) {
	var msg WSMessage
	if err := json.Unmarshal(frame, &msg); err != nil {
		c.replyError("", "invalid JSON message")
		return
	}

	switch msg.Type {
	case WSTypeSubscribe:
		channels, err := decodeChannels(msg.Payload)
		if err != nil {
			c.replyError(msg.ID, "invalid subscribe payload")
			return
		}
		c.mu.Lock()
		for _, ch := range channels {
			c.subscriptions[ch] = struct{}{}
		}
		c.mu.Unlock()

		c.hub.logger.Info("websocket client subscribed", "channels", channels)
		c.reply(msg.ID, WSTypeResponse, map[string]any{"subscribed": channels})

	case WSTypeUnsubscribe:
		channels, err := decodeChannels(msg.Payload)
		if err != nil {
			c.replyError(msg.ID, "invalid unsubscribe payload")
			return
		}
		c.mu.Lock()
		for _, ch := range channels {
			delete(c.subscriptions, ch)
		}
		c.mu.Unlock()

		c.reply(msg.ID, WSTypeResponse, map[string]any{"unsubscribed": channels})

	case WSTypePing:
		c.reply(msg.ID, WSTypePong, nil)

	default:
		c.replyError(msg.ID, "unknown message type: "+msg.Type)
	}
}

// decodeChannels extracts the channel list from a subscribe or unsubscribe
// payload, which arrives as generic JSON inside the frame.
func decodeChannels(payload any) ([]string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var sub WSSubscribePayload
	if err := json.Unmarshal(raw, &sub); err != nil {
		return nil, err
	}
	return sub.Channels, nil
}

// subscribed reports whether the client asked for channel.
func (c *WSClient) subscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.subscriptions[channel]
	return ok
}

// enqueue queues a frame for the write pump, dropping it if the client's
// buffer is full. The recover absorbs a send on a channel that Unregister
// closed between the broadcast snapshot and this send.
func (c *WSClient) enqueue(frame []byte) {
	defer func() {
		recover() //nolint:errcheck // send on closed channel during teardown
	}()

	select {
	case c.send <- frame:
	default:
	}
}

// reply queues a direct frame to this client, echoing the request ID.
func (c *WSClient) reply(id, msgType string, payload any) {
	frame, err := json.Marshal(WSMessage{
		Type:      msgType,
		ID:        id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		return
	}
	c.enqueue(frame)
}

func (c *WSClient) replyError(id, message string) {
	c.reply(id, WSTypeError, map[string]string{"message": message})
}

// wsUpgrader performs the HTTP to WebSocket upgrade. Origin checking is the
// CORS middleware's job, so every origin is accepted here.
var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// handleWebSocket upgrades the connection and starts the client's pumps. A
// fresh client receives nothing until it subscribes to a channel.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &WSClient{
		hub:           s.hub,
		conn:          conn,
		send:          make(chan []byte, wsSendBufferSize),
		subscriptions: make(map[string]struct{}),
	}
	s.hub.Register(client)

	go client.writePump()
	go client.readPump()
}
