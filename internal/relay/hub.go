// Package relay fans received text messages out to local WebSocket
// subscribers, typically a desktop or browser UI
package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait       = 10 * time.Second
	subscriberQueue = 16
	eventQueue      = 64
)

// Event is the JSON payload pushed to subscribers
type Event struct {
	PeerID     string    `json:"peer_id"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}

// Hub implements discovery.TextSink over a set of WebSocket subscribers.
// Delivery is push-only and lossy: the discovery loops are never allowed to
// block on a slow UI.
type Hub struct {
	upgrader   websocket.Upgrader
	register   chan *subscriber
	unregister chan *subscriber
	events     chan Event
	done       chan struct{}
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub; Run must be started before serving connections
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The relay only ever binds a local address for a local UI
			CheckOrigin: func(*http.Request) bool { return true },
		},
		register:   make(chan *subscriber),
		unregister: make(chan *subscriber),
		events:     make(chan Event, eventQueue),
		done:       make(chan struct{}),
	}
}

// DeliverText implements discovery.TextSink. When the event queue is full
// the message is dropped rather than blocking the caller.
func (h *Hub) DeliverText(fromID, text string) {
	select {
	case h.events <- Event{PeerID: fromID, Text: text, ReceivedAt: time.Now()}:
	default:
		logrus.Warn("relay: event queue full, dropping text message")
	}
}

// Run owns the subscriber set until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	subscribers := make(map[*subscriber]struct{})

	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for sub := range subscribers {
				close(sub.send)
				sub.conn.Close()
			}
			return

		case sub := <-h.register:
			subscribers[sub] = struct{}{}
			logrus.Debugf("relay: subscriber connected (%d total)", len(subscribers))

		case sub := <-h.unregister:
			if _, ok := subscribers[sub]; ok {
				delete(subscribers, sub)
				close(sub.send)
			}

		case ev := <-h.events:
			data, err := json.Marshal(ev)
			if err != nil {
				logrus.Errorf("relay: failed to marshal event: %v", err)
				continue
			}
			for sub := range subscribers {
				select {
				case sub.send <- data:
				default:
					// Subscriber can't keep up, cut it loose
					delete(subscribers, sub)
					close(sub.send)
				}
			}
		}
	}
}

// ServeHTTP upgrades the request and registers the connection as a subscriber
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Warnf("relay: upgrade failed: %v", err)
		return
	}

	sub := &subscriber{
		conn: conn,
		send: make(chan []byte, subscriberQueue),
	}
	select {
	case h.register <- sub:
	case <-h.done:
		conn.Close()
		return
	}

	go sub.writeLoop()
	go sub.readLoop(h)
}

func (sub *subscriber) writeLoop() {
	defer sub.conn.Close()

	for data := range sub.send {
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	sub.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readLoop discards inbound frames; the relay is push-only. It exists to
// notice when the subscriber goes away.
func (sub *subscriber) readLoop(h *Hub) {
	defer func() {
		select {
		case h.unregister <- sub:
		case <-h.done:
		}
		sub.conn.Close()
	}()

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}
