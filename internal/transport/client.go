package transport

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/emberchat/ember-server/internal/events"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one live websocket connection. The send channel is never
// closed; done signals the write pump that the client was removed, so a
// frame enqueued after removal is drained by nobody and simply dropped.
type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// enqueue hands a frame to the write pump without blocking. A slow
// client's full buffer drops the frame; delivery is fire-and-forget.
func (c *Client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		c.hub.log.Warn().Str("conn", c.ID).Msg("send buffer full, dropping frame")
	}
}

// readPump decodes inbound envelopes and hands them to the router until
// the connection drops. Frames that are not valid envelopes are dropped.
func (c *Client) readPump() {
	reason := "closed"
	defer func() {
		c.hub.remove(c)
		c.hub.router.Disconnected(c.ID, reason)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			reason = err.Error()
			return
		}

		var env events.Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Event == "" {
			c.hub.log.Debug().Str("conn", c.ID).Msg("malformed frame dropped")
			continue
		}
		c.hub.router.HandleEvent(c.ID, env)
	}
}

// writePump drains the send buffer to the socket and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
