package trace

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/thelolagemann/gbatimers/internal/timer"
	"github.com/thelolagemann/gbatimers/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024 * 16,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub streams records to every connected websocket client, one JSON
// encoded Record per text message. Clients that can't keep up are
// disconnected.
type Hub struct {
	clients   map[*client]bool
	connected atomic.Int32

	broadcast            chan []byte
	register, unregister chan *client
	done                 chan struct{}

	log.Logger
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewHub returns a Hub. Run must be called for it to serve clients.
func NewHub(l log.Logger) *Hub {
	if l == nil {
		l = log.NewNullLogger()
	}
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		Logger:     l,
	}
}

// Connected returns the number of connected clients.
func (h *Hub) Connected() int {
	return int(h.connected.Load())
}

// Run handles clients connecting, disconnecting and broadcasts until
// ctx is done, then disconnects every client. A Hub can only be run
// once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
			h.connected.Add(1)
			h.Infof("trace: client %s connected", c.conn.RemoteAddr())
		case c := <-h.unregister:
			if h.clients[c] {
				h.drop(c)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	h.connected.Add(-1)
	close(c.send)
	h.Infof("trace: client %s disconnected", c.conn.RemoteAddr())
}

// ServeHTTP upgrades the request to a websocket connection and
// registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Errorf("trace: upgrading %s: %v", r.RemoteAddr, err)
		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// Observe broadcasts a trace. It can be passed to gba.WithObserver.
// If the broadcast queue is full the trace is dropped rather than
// stalling the emulation.
func (h *Hub) Observe(tr timer.Trace) {
	h.Publish(FromTrace(tr))
}

// Publish broadcasts a record.
func (h *Hub) Publish(rec Record) {
	msg, err := json.Marshal(rec)
	if err != nil {
		h.Errorf("trace: encoding record: %v", err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
	}
}

// readPump discards anything the client sends, and unregisters it
// once the connection is closed.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
