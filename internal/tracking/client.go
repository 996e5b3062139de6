package tracking

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 256
)

// Client is one websocket subscriber bound to a mission room
type Client struct {
	missionID uint
	userID    uint
	conn      *websocket.Conn
	send      chan []byte
	hub       *Hub
	closeOnce sync.Once
}

// NewClient wraps an upgraded connection
func NewClient(hub *Hub, conn *websocket.Conn, missionID, userID uint) *Client {
	return &Client{
		missionID: missionID,
		userID:    userID,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		hub:       hub,
	}
}

// Close unsubscribes and tears down the connection. Safe to call repeatedly.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.hub.Unsubscribe(c.missionID, c)
		close(c.send)
		c.conn.Close()
	})
}

// Run subscribes the client and blocks until the connection drops
func (c *Client) Run() {
	c.hub.Subscribe(c.missionID, c)
	go c.writePump()
	c.readPump()
}

// readPump consumes (and discards) inbound frames to drive pong handling and
// detect closes. Tracking subscribers are read-only.
func (c *Client) readPump() {
	defer c.Close()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("❌ Tracking read error (mission #%d): %v", c.missionID, err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
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
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
