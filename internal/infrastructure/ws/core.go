package ws

import (
	"context"
	"sync/atomic"

	"github.com/hilthontt/devtea/internal/domain"
	"github.com/hilthontt/devtea/internal/infrastructure/logging"
)

const defaultQueueSize = 1024

// Core fans conversation events out to push-feed subscribers. Notify is
// called under the store write lock, so it only ever does a non-blocking
// hand-off to the single Run goroutine; that keeps append order intact.
type Core struct {
	convMgr    *ConversationManager
	register   chan *Client
	unregister chan *Client
	broadcast  chan *WSMessage
	done       chan struct{}
	dropped    atomic.Uint64
	logger     logging.Logger
}

var _ domain.ConversationNotifier = (*Core)(nil)

func NewCore(logger logging.Logger, queueSize int) *Core {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Core{
		convMgr:    NewConversationManager(),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *WSMessage, queueSize),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (c *Core) Run(ctx context.Context) {
	defer func() {
		close(c.done)
		c.convMgr.RemoveAll()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case cl := <-c.register:
			c.convMgr.AddClient(cl)
			cl.Message <- NewSubscribed(cl.Key, cl.ID, cl.UserID)

		case cl := <-c.unregister:
			c.convMgr.RemoveClient(cl)

		case msg := <-c.broadcast:
			if n := c.convMgr.Broadcast(msg); n > 0 {
				c.dropped.Add(uint64(n))
				c.logger.Warn(logging.Websocket, logging.Subscription, "subscriber queue full, dropping event", map[logging.ExtraKey]any{
					logging.Conversation: msg.Conversation,
					"Dropped":            n,
				})
			}
		}
	}
}

// Notify implements domain.ConversationNotifier.
func (c *Core) Notify(event domain.ConversationEvent) {
	select {
	case c.broadcast <- NewEventMessage(event):
	default:
		c.dropped.Add(1)
	}
}

// Register adds a subscriber. It reports false once the core has stopped.
func (c *Core) Register(cl *Client) bool {
	select {
	case c.register <- cl:
		return true
	case <-c.done:
		return false
	}
}

func (c *Core) Unregister(cl *Client) {
	select {
	case c.unregister <- cl:
	case <-c.done:
	}
}

func (c *Core) Subscribers(key domain.ConversationKey) int {
	return c.convMgr.Subscribers(key)
}

// Dropped counts events lost to full queues since start.
func (c *Core) Dropped() uint64 {
	return c.dropped.Load()
}

func (c *Core) logReadError(cl *Client, err error) {
	c.logger.Debug(logging.Websocket, logging.Subscription, "push feed read error", map[logging.ExtraKey]any{
		logging.UserID:       cl.UserID,
		logging.Conversation: cl.Key,
		logging.ErrorMessage: err.Error(),
	})
}
