package ws

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hilthontt/devtea/internal/domain"
)

// Client is one push-feed subscription. The feed is one-way: inbound frames
// are read only to notice pongs and disconnects.
type Client struct {
	conn    *connWrapper
	Message chan *WSMessage
	ID      string
	UserID  string
	Key     domain.ConversationKey
}

func NewClient(conn *websocket.Conn, userID string, key domain.ConversationKey, buffer int) *Client {
	if buffer <= 0 {
		buffer = 64
	}
	return &Client{
		conn:    newConnWrapper(conn),
		Message: make(chan *WSMessage, buffer),
		ID:      uuid.NewString(),
		UserID:  userID,
		Key:     key,
	}
}

func (c *Client) ReadMessage(core *Core) {
	defer func() {
		core.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.conn.SetReadLimit(maxInboundSize)
	_ = c.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.conn.SetPongHandler(func(string) error {
		return c.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				core.logReadError(c, err)
			}
			return
		}
	}
}

func (c *Client) WriteMessage() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Message:
			if !ok {
				_ = c.conn.WriteClose()
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WritePing(); err != nil {
				return
			}
		}
	}
}
