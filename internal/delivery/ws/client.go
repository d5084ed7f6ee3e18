package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"courier/internal/realtime"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBufferSize = 256
)

// inboundFrame is the wire envelope for client-to-server events.
type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// outboundFrame is the wire envelope for server-to-client events.
type outboundFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Client is one websocket connection. It implements realtime.Subscriber: Send
// enqueues without blocking and reports false when the buffer is full, so one
// slow consumer never stalls a broadcast.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan realtime.Event

	closeOnce sync.Once
	done      chan struct{}
}

// ID returns the connection identifier.
func (c *Client) ID() string { return c.id }

// Send enqueues an event for delivery. It never blocks; a full buffer or a
// closed connection drops the event and reports false.
func (c *Client) Send(event realtime.Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- event:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// readPump consumes inbound frames and feeds them to the event router. It also
// acts as the connection watchdog via the pong deadline.
func (c *Client) readPump() {
	defer func() {
		c.hub.drop(c)
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read failed",
					slog.String("client", c.id),
					slog.Any("error", err),
				)
			}

			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			c.hub.logger.Warn("dropped unparseable frame",
				slog.String("client", c.id),
			)

			continue
		}

		c.hub.router.HandleInbound(c, frame.Event, frame.Data)
	}
}

// writePump drains the send buffer onto the wire and keeps the connection
// alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return

		case event := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(outboundFrame{Event: event.Type, Data: event.Data}); err != nil {
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
