package wsobserver

import (
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/leaguerunner/tournament/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client is one spectator's websocket connection, subscribed to a
// single league's event stream.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	leagueID string
	log      *logger.Logger
}

// NewClient wraps conn for leagueID's spectator fan-out.
func NewClient(hub *Hub, conn *websocket.Conn, leagueID string, log *logger.Logger) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		leagueID: leagueID,
		log:      log,
	}
}

// Register enrolls the client with its hub. Call before ReadPump/WritePump.
func (c *Client) Register() {
	c.hub.register <- c
}

// ReadPump discards inbound traffic beyond pings; spectators are
// read-only observers of the protocol.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.LogError("spectator read error", err, zap.String("league_id", c.leagueID))
			}
			break
		}
	}
}

// WritePump delivers queued events and keepalive pings to the client.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(message)

			n := len(c.send)
			for i := 0; i < n; i++ {
				_, _ = w.Write([]byte{'\n'})
				_, _ = w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
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

