package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBuffer     = 64
)

// Client is one websocket connection held by the hub.
type Client struct {
	id       string
	identity string
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	rooms    map[string]struct{} // guarded by hub.mu
	done     chan struct{}
	once     sync.Once
}

func newClient(h *Hub, conn *websocket.Conn, identity string) *Client {
	return &Client{
		id:       uuid.NewString(),
		identity: identity,
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		rooms:    make(map[string]struct{}),
		done:     make(chan struct{}),
	}
}

// Serve registers conn for identity and blocks until it disconnects.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, identity string) {
	c := newClient(h, conn, identity)
	h.register(c)

	go c.writePump()
	c.readPump(ctx)
}

func (c *Client) stop() {
	c.once.Do(func() { close(c.done) })
}

// reply queues a frame for this client only.
func (c *Client) reply(event string, data interface{}) {
	frame, err := encode(event, data)
	if err != nil {
		return
	}
	select {
	case <-c.done:
	case c.send <- frame:
	default:
	}
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("Relay connection closed unexpectedly", "client", c.id, "error", err)
			}
			return
		}
		c.hub.handle(ctx, c, raw)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
