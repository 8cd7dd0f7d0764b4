package feed

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Letters are short; settings carry a few URLs.
	maxMessageSize = 8 << 10
	sendBuffer     = 64
)

var errUnknownCommand = errors.New("unknown command")

// Client is one websocket connection.
type Client struct {
	server *Server
	conn   *websocket.Conn
	send   chan []byte
}

func newClient(s *Server, conn *websocket.Conn) *Client {
	return &Client{server: s, conn: conn, send: make(chan []byte, sendBuffer)}
}

// readPump applies commands from the connection until it closes.
func (c *Client) readPump() {
	hub := c.server.hub
	defer func() {
		hub.remove(c)
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
				c.server.log.Warn("read: %v", err)
			}
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			c.server.log.Warn("bad command (%s): %v", humanize.Bytes(uint64(len(data))), err)
			c.reply(Message{Type: TypeError, Error: "malformed command"})
			continue
		}
		if msg, err := c.server.apply(cmd); err != nil {
			c.reply(Message{Type: TypeError, Error: fmt.Sprintf("%s: %v", cmd.Type, err)})
		} else if msg != nil {
			c.reply(*msg)
		}
		c.server.publish(true)
	}
}

// reply sends m to this client only, dropping it if the client is backed up
// or already gone.
func (c *Client) reply(m Message) {
	data, err := json.Marshal(m)
	if err != nil {
		c.server.log.Error("encode %s: %v", m.Type, err)
		return
	}
	h := c.server.hub
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
