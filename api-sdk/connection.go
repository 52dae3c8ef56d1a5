package apisdk

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/hilthontt/devtea/api-sdk/option"
)

type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateRegistering  ConnectionState = "registering"
	StateConnected    ConnectionState = "connected"
	StatePolling      ConnectionState = "polling"
	StateError        ConnectionState = "error"
)

// Connection events. Successful commands are reported with their result type
// as the event type, e.g. "room_joined".
const (
	EventConnected          = "connected"
	EventConnectionFailed   = "connection_failed"
	EventConnectionLost     = "connection_lost"
	EventDisconnected       = "disconnected"
	EventRoomMessagesUpdate = "room_messages_update"
	EventDMMessagesUpdate   = "dm_messages_update"
	EventOnlineUsers        = ResultOnlineUsers
)

const (
	DefaultPollInterval        = 3 * time.Second
	DefaultPresenceProbability = 0.3
	DefaultReconnectDelay      = time.Second
	DefaultRoom                = "general"
)

// ErrDisconnected is returned to callers waiting on a registration that was
// cancelled by Disconnect.
var ErrDisconnected = errors.New("connection closed while registering")

// registration is one in-flight register call. Callers that need a live
// connection while it runs wait on done instead of registering again.
type registration struct {
	done chan struct{}
	err  error
}

func (r *registration) finish(err error) {
	r.err = err
	close(r.done)
}

func (r *registration) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return r.err
	}
}

type Event struct {
	Type string
	Data any
	Err  error
}

// Handler receives connection events. It may be called from several
// goroutines at once.
type Handler func(Event)

type ConnectionOption func(*Connection)

func WithPollInterval(interval time.Duration) ConnectionOption {
	return func(c *Connection) {
		c.pollInterval = interval
	}
}

// WithPresenceProbability sets the chance that a poll tick also refreshes the
// online users list.
func WithPresenceProbability(p float64) ConnectionOption {
	return func(c *Connection) {
		c.presenceProbability = p
	}
}

func WithReconnectDelay(delay time.Duration) ConnectionOption {
	return func(c *Connection) {
		c.reconnectDelay = delay
	}
}

// WithRandom replaces the source of the presence coin flip.
func WithRandom(random func() float64) ConnectionOption {
	return func(c *Connection) {
		c.random = random
	}
}

// WithFocus pins the conversation to poll instead of picking one on connect.
func WithFocus(target Target) ConnectionOption {
	return func(c *Connection) {
		c.focus = target
		c.pinned = true
	}
}

// Connection keeps a user registered and polls the focused conversation.
// Commands issued through it connect first when needed.
type Connection struct {
	chat     *ChatService
	userID   string
	username string
	handler  Handler

	pollInterval        time.Duration
	presenceProbability float64
	reconnectDelay      time.Duration
	random              func() float64

	mu          sync.Mutex
	state       ConnectionState
	joined      []string
	focus       Target
	pinned      bool
	pending     *registration
	inflight    int
	stopPolling context.CancelFunc
	ticks       sync.WaitGroup
}

func NewConnection(chat *ChatService, userID, username string, handler Handler, opts ...ConnectionOption) *Connection {
	if handler == nil {
		handler = func(Event) {}
	}

	c := &Connection{
		chat:                chat,
		userID:              userID,
		username:            username,
		handler:             handler,
		pollInterval:        DefaultPollInterval,
		presenceProbability: DefaultPresenceProbability,
		reconnectDelay:      DefaultReconnectDelay,
		random:              rand.Float64,
		state:               StateDisconnected,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Connection) UserID() string {
	return c.userID
}

func (c *Connection) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// JoinedRooms returns the rooms the user is known to be in, in join order.
func (c *Connection) JoinedRooms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.joined)
}

func (c *Connection) Focus() Target {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focus
}

// SetFocus changes the polled conversation. Poll results for the previous
// focus that are still in flight are discarded.
func (c *Connection) SetFocus(target Target) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focus = target
	c.pinned = true
}

func (c *Connection) emit(event Event) {
	c.handler(event)
}

func (c *Connection) live() bool {
	return c.state == StateConnected || c.state == StatePolling
}

// Connect registers the user, restores the joined rooms and starts polling.
// When a registration is already running it waits for that one instead.
func (c *Connection) Connect(ctx context.Context) error {
	c.mu.Lock()
	if p := c.pending; p != nil {
		c.mu.Unlock()
		return p.wait(ctx)
	}
	c.haltLocked()
	p := &registration{done: make(chan struct{})}
	c.pending = p
	c.state = StateRegistering
	c.mu.Unlock()

	reg, err := c.chat.Register(ctx, c.userID, c.username)
	if err != nil {
		c.mu.Lock()
		current := c.pending == p
		if current {
			c.pending = nil
			c.state = StateError
		}
		c.mu.Unlock()

		if current {
			c.emit(Event{Type: EventConnectionFailed, Err: err})
		}
		p.finish(err)
		return err
	}

	c.mu.Lock()
	if c.pending != p {
		c.mu.Unlock()
		p.finish(ErrDisconnected)
		return ErrDisconnected
	}
	c.pending = nil

	pollCtx, cancel := context.WithCancel(context.Background())
	c.joined = slices.Clone(reg.JoinedRooms)
	if !c.pinned {
		c.focus = RoomTarget(DefaultRoom)
		if n := len(c.joined); n > 0 {
			c.focus = RoomTarget(c.joined[n-1])
		}
	}
	c.state = StateConnected
	c.stopPolling = cancel
	c.mu.Unlock()

	c.ticks.Add(1)
	go c.poll(pollCtx)

	c.emit(Event{Type: EventConnected, Data: reg})
	p.finish(nil)
	return nil
}

// Disconnect stops polling. In-flight poll results are dropped.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	c.haltLocked()
	c.pending = nil
	c.state = StateDisconnected
	c.focus = Target{}
	c.pinned = false
	c.mu.Unlock()

	c.emit(Event{Type: EventDisconnected})
}

// Close disconnects and waits for the poll loop and its ticks to return.
func (c *Connection) Close() {
	c.Disconnect()
	c.ticks.Wait()
}

// Reconnect disconnects, waits the reconnect delay and connects again.
func (c *Connection) Reconnect(ctx context.Context) error {
	c.Disconnect()

	timer := time.NewTimer(c.reconnectDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	return c.Connect(ctx)
}

func (c *Connection) haltLocked() {
	if c.stopPolling != nil {
		c.stopPolling()
		c.stopPolling = nil
	}
}

// lose moves a live connection to the error state after a transport failure.
func (c *Connection) lose(err error) {
	c.mu.Lock()
	if !c.live() {
		c.mu.Unlock()
		return
	}
	c.haltLocked()
	c.state = StateError
	c.mu.Unlock()

	c.emit(Event{Type: EventConnectionLost, Err: err})
}

func (c *Connection) poll(ctx context.Context) {
	defer c.ticks.Done()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.ticks.Add(1)
			go func() {
				defer c.ticks.Done()
				c.tick(ctx)
			}()
		}
	}
}

func (c *Connection) tick(ctx context.Context) {
	c.mu.Lock()
	if !c.live() {
		c.mu.Unlock()
		return
	}
	focus := c.focus
	c.inflight++
	c.state = StatePolling
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inflight--
		if c.inflight == 0 && c.state == StatePolling {
			c.state = StateConnected
		}
		c.mu.Unlock()
	}()

	if !focus.IsZero() {
		messages, err := c.chat.GetMessages(ctx, c.userID, focus, option.WithMaxAttempts(1))
		if err != nil {
			if c.tickFailed(ctx, err) {
				return
			}
		} else {
			c.deliver(focus, messages)
		}
	}

	if c.random() < c.presenceProbability {
		users, err := c.chat.GetOnlineUsers(ctx, c.userID, option.WithMaxAttempts(1))
		if err != nil {
			c.tickFailed(ctx, err)
			return
		}
		if ctx.Err() == nil {
			c.emit(Event{Type: EventOnlineUsers, Data: users})
		}
	}
}

// tickFailed reports whether the rest of the tick should be skipped.
func (c *Connection) tickFailed(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	if IsTransportError(err) {
		c.lose(err)
		return true
	}
	return false
}

// deliver emits a poll result unless the focus moved while it was in flight.
func (c *Connection) deliver(focus Target, messages *Messages) {
	c.mu.Lock()
	current := c.live() && c.focus == focus
	c.mu.Unlock()

	if !current {
		return
	}

	switch {
	case messages.Room != nil:
		c.emit(Event{Type: EventRoomMessagesUpdate, Data: messages.Room})
	case messages.Direct != nil:
		c.emit(Event{Type: EventDMMessagesUpdate, Data: messages.Direct})
	}
}

func (c *Connection) ensureConnected(ctx context.Context) error {
	c.mu.Lock()
	live := c.live()
	c.mu.Unlock()

	if live {
		return nil
	}
	return c.Connect(ctx)
}

// call runs one command through the connection. apply runs under the
// connection lock before the result event is emitted.
func call[T any](ctx context.Context, c *Connection, resultType string, fn func(context.Context) (*T, error), apply func(*T)) (*T, error) {
	if err := c.ensureConnected(ctx); err != nil {
		return nil, err
	}

	out, err := fn(ctx)
	if err != nil {
		if IsTransportError(err) {
			c.lose(err)
		}
		return nil, err
	}

	if apply != nil {
		c.mu.Lock()
		apply(out)
		c.mu.Unlock()
	}

	c.emit(Event{Type: resultType, Data: out})
	return out, nil
}

func (c *Connection) addJoinedLocked(roomID string) {
	if !slices.Contains(c.joined, roomID) {
		c.joined = append(c.joined, roomID)
	}
}

func (c *Connection) JoinRoom(ctx context.Context, roomID string) (*RoomJoined, error) {
	return call(ctx, c, ResultRoomJoined, func(ctx context.Context) (*RoomJoined, error) {
		return c.chat.JoinRoom(ctx, c.userID, roomID)
	}, func(*RoomJoined) {
		c.addJoinedLocked(roomID)
		c.focus = RoomTarget(roomID)
	})
}

func (c *Connection) LeaveRoom(ctx context.Context, roomID string) (*RoomLeft, error) {
	return call(ctx, c, ResultRoomLeft, func(ctx context.Context) (*RoomLeft, error) {
		return c.chat.LeaveRoom(ctx, c.userID, roomID)
	}, func(*RoomLeft) {
		c.joined = slices.DeleteFunc(c.joined, func(id string) bool { return id == roomID })
		if c.focus == RoomTarget(roomID) {
			c.focus = Target{}
		}
	})
}

func (c *Connection) SendMessage(ctx context.Context, content string, target Target) (*Message, error) {
	params := SendMessageParams{Username: c.username, Content: content, Target: target}
	return call(ctx, c, ResultMessageSent, func(ctx context.Context) (*Message, error) {
		return c.chat.SendMessage(ctx, c.userID, params)
	}, func(*Message) {
		if target.Kind() == KindRoom {
			c.addJoinedLocked(target.RoomID)
		}
	})
}

// GetMessages fetches a conversation and focuses it.
func (c *Connection) GetMessages(ctx context.Context, target Target) (*Messages, error) {
	resultType := ResultRoomMessages
	if target.Kind() == KindDirect {
		resultType = ResultDMMessages
	}

	c.mu.Lock()
	c.focus = target
	c.mu.Unlock()

	return call(ctx, c, resultType, func(ctx context.Context) (*Messages, error) {
		return c.chat.GetMessages(ctx, c.userID, target)
	}, nil)
}

func (c *Connection) EditMessage(ctx context.Context, messageID, content string, target Target) (*Message, error) {
	params := EditMessageParams{MessageID: messageID, Content: content, Target: target}
	return call(ctx, c, ResultMessageEdited, func(ctx context.Context) (*Message, error) {
		return c.chat.EditMessage(ctx, c.userID, params)
	}, nil)
}

func (c *Connection) DeleteMessage(ctx context.Context, messageID string, target Target) (*MessageDeleted, error) {
	return call(ctx, c, ResultMessageDeleted, func(ctx context.Context) (*MessageDeleted, error) {
		return c.chat.DeleteMessage(ctx, c.userID, messageID, target)
	}, nil)
}

func (c *Connection) SearchRooms(ctx context.Context, query string) (*SearchResults, error) {
	return call(ctx, c, ResultSearchResults, func(ctx context.Context) (*SearchResults, error) {
		return c.chat.SearchRooms(ctx, c.userID, query)
	}, nil)
}

func (c *Connection) CreateRoom(ctx context.Context, name, description string) (*CreatedRoom, error) {
	return call(ctx, c, ResultRoomCreated, func(ctx context.Context) (*CreatedRoom, error) {
		return c.chat.CreateRoom(ctx, c.userID, name, description)
	}, func(room *CreatedRoom) {
		c.addJoinedLocked(room.ID)
	})
}

func (c *Connection) GetRooms(ctx context.Context) (*RoomList, error) {
	return call(ctx, c, ResultRoomsList, func(ctx context.Context) (*RoomList, error) {
		return c.chat.GetRooms(ctx, c.userID)
	}, nil)
}

func (c *Connection) GetJoinedRooms(ctx context.Context) (*JoinedRooms, error) {
	return call(ctx, c, ResultJoinedRooms, func(ctx context.Context) (*JoinedRooms, error) {
		return c.chat.GetJoinedRooms(ctx, c.userID)
	}, nil)
}

// GetOnlineUsers is never retried; it is refreshed often enough.
func (c *Connection) GetOnlineUsers(ctx context.Context) (*OnlineUsers, error) {
	return call(ctx, c, ResultOnlineUsers, func(ctx context.Context) (*OnlineUsers, error) {
		return c.chat.GetOnlineUsers(ctx, c.userID, option.WithMaxAttempts(1))
	}, nil)
}

func (c *Connection) GetRoomMembers(ctx context.Context, roomID string) (*RoomMembers, error) {
	return call(ctx, c, ResultRoomMembers, func(ctx context.Context) (*RoomMembers, error) {
		return c.chat.GetRoomMembers(ctx, c.userID, roomID)
	}, nil)
}
