package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origin is enforced by CORS and the token check
	},
}

// Client is one admin console socket. It owns an Observer for change events
// and a send buffer for direct messages.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	observer *Observer
	UserID   uint
}

// ServeWebSocket upgrades the request and starts the client pumps. The first
// frame the client receives is the "connected" sentinel.
func ServeWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request, userID uint) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		observer: hub.Subscribe(),
		UserID:   userID,
	}

	welcome, _ := json.Marshal(&Message{
		Type:      "connected",
		Timestamp: time.Now(),
		Data:      map[string]interface{}{"observer_id": client.observer.id, "origin": hub.Origin()},
	})
	client.send <- welcome

	if !hub.register(client) {
		hub.Unsubscribe(client.observer)
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump drains frames from the peer. Only "ping" is understood; anything
// else is ignored.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.hub.Unsubscribe(c.observer)
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
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("❌ WebSocket read error: %v", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type == "ping" {
			pong, _ := json.Marshal(&Message{Type: "pong", Timestamp: time.Now()})
			c.hub.mu.RLock()
			if _, ok := c.hub.clients[c]; ok {
				select {
				case c.send <- pong:
				default:
				}
			}
			c.hub.mu.RUnlock()
		}
	}
}

// writePump pumps events and direct messages to the socket
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case ev, ok := <-c.observer.Events():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				bye, _ := json.Marshal(&Message{Type: "disconnected", Timestamp: time.Now()})
				c.conn.WriteMessage(websocket.TextMessage, bye)
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			data, err := json.Marshal(&Message{Type: "event", Timestamp: ev.Timestamp, Data: ev})
			if err != nil {
				log.Printf("❌ Error marshaling event: %v", err)
				continue
			}
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
