package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/weiawesome/offershare/internal/config"
	"github.com/weiawesome/offershare/internal/registry"
	"github.com/weiawesome/offershare/pkg/log"
)

const defaultSendBuffer = 256

// Client is one websocket connection bound to an authenticated user.
// The write pump is the only goroutine writing to the socket.
type Client struct {
	id          string
	UserID      string
	Conn        *websocket.Conn
	send        chan []byte
	config      config.WebSocketConfig
	ConnectedAt time.Time

	mu     sync.RWMutex
	closed bool
}

func NewClient(userID string, conn *websocket.Conn, cfg config.WebSocketConfig) *Client {
	size := cfg.SendBufferSize
	if size <= 0 {
		size = defaultSendBuffer
	}
	return &Client{
		id:          uuid.New().String(),
		UserID:      userID,
		Conn:        conn,
		send:        make(chan []byte, size),
		config:      cfg,
		ConnectedAt: time.Now().UTC(),
	}
}

func (c *Client) ID() string {
	return c.id
}

// Send marshals frame and queues it for the write pump. It never blocks:
// a closed client or a full buffer is reported as an error.
func (c *Client) Send(frame interface{}) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return registry.ErrConnClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		return registry.ErrSendBufferFull
	}
}

// Close stops the write pump, which sends a close frame and tears down the
// socket. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// ReadPump reads frames until the socket fails, passing each to handler.
// onClose runs once the connection is gone.
func (c *Client) ReadPump(handler func(*Client, []byte), onClose func(*Client)) {
	defer func() {
		c.Close()
		c.Conn.Close()
		if onClose != nil {
			onClose(c)
		}
	}()

	c.Conn.SetReadLimit(c.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				l := log.L()
				l.Debug().Err(err).Str(log.FieldUserID, c.UserID).Str(log.FieldConnID, c.id).Msg("websocket read error")
			}
			break
		}

		handler(c, message)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
