package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Client represents a WebSocket client connection
type Client struct {
	ID       string          // Unique connection ID
	View     string          // View the connection watches
	ClientID string          // Participant identity, empty for admin and results
	Conn     *websocket.Conn // WebSocket connection
	Send     chan []byte     // Outbound message channel
	mu       sync.Mutex      // Serialises conn writes

	detached bool // guarded by the hub lock
}

func NewClient(conn *websocket.Conn, view, clientID string) *Client {
	return &Client{
		ID:       uuid.New().String(),
		View:     view,
		ClientID: clientID,
		Conn:     conn,
		Send:     make(chan []byte, 64),
	}
}

// WriteLoop handles outbound messages from the Send channel
func (c *Client) WriteLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.close()
			return
		case msg, ok := <-c.Send:
			if !ok {
				c.close()
				return
			}
			if err := c.write(websocket.TextMessage, msg); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.Conn.WriteMessage(messageType, data)
}

func (c *Client) close() {
	c.mu.Lock()
	_ = c.Conn.Close()
	c.mu.Unlock()
}

// SendMessage queues msg without blocking. Every frame is a full view, so
// when the buffer is full the oldest queued frame is dropped for the newest.
func (c *Client) SendMessage(msg []byte) {
	for {
		select {
		case c.Send <- msg:
			return
		default:
		}
		select {
		case <-c.Send:
		default:
		}
	}
}
