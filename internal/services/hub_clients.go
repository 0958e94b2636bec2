package services

import (
	"encoding/json"
	"time"

	"github.com/gofiber/contrib/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 10 * time.Second
	wsReadLimit  = 1 << 20
	wsSendBuffer = 16
)

// WSClient is one websocket subscriber. Events are queued on send and
// written by writeLoop; conn may be nil for clients that only buffer.
type WSClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

func NewWSClient(id string, conn *websocket.Conn) *WSClient {
	return &WSClient{
		id:   id,
		conn: conn,
		send: make(chan []byte, wsSendBuffer),
	}
}

// enqueue reports false when the buffer is full.
func (c *WSClient) enqueue(event WSEvent) bool {
	b, err := json.Marshal(event)
	if err != nil {
		return true
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

func (c *WSClient) close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

func (c *WSClient) writeLoop() {
	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only services control frames; job events flow one way.
func (c *WSClient) readPump(onDone func()) {
	defer onDone()
	c.conn.SetReadLimit(wsReadLimit)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
