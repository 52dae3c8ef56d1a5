package apisdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/hilthontt/devtea/api-sdk/internal/requestconfig"
	"github.com/hilthontt/devtea/api-sdk/option"
)

// Push feed event types.
const (
	StreamSubscribed     = "subscribed"
	StreamMessageCreated = "message.created"
	StreamMessageEdited  = "message.edited"
	StreamMessageDeleted = "message.deleted"
	StreamMemberJoined   = "member.joined"
	StreamMemberLeft     = "member.left"
)

type StreamEvent struct {
	Type         string          `json:"type"`
	Conversation string          `json:"conversation"`
	Data         json.RawMessage `json:"data,omitempty"`
}

// Message decodes the payload of message.created and message.edited events.
func (e StreamEvent) Message() (*Message, error) {
	if e.Type != StreamMessageCreated && e.Type != StreamMessageEdited {
		return nil, fmt.Errorf("%w: %s carries no message", ErrUnexpectedResult, e.Type)
	}

	msg := &Message{}
	if err := json.Unmarshal(e.Data, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

type MemberEvent struct {
	RoomID      string `json:"roomId"`
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	MemberCount int    `json:"memberCount"`
}

// Member decodes the payload of member.joined and member.left events.
func (e StreamEvent) Member() (*MemberEvent, error) {
	if e.Type != StreamMemberJoined && e.Type != StreamMemberLeft {
		return nil, fmt.Errorf("%w: %s carries no member", ErrUnexpectedResult, e.Type)
	}

	member := &MemberEvent{}
	if err := json.Unmarshal(e.Data, member); err != nil {
		return nil, err
	}
	return member, nil
}

// Stream is a live subscription to one conversation.
type Stream struct {
	conn   *websocket.Conn
	events chan StreamEvent
	done   chan struct{}

	mu     sync.Mutex
	err    error
	closed bool
}

// Subscribe opens the push feed of target. The subscription ends when ctx is
// done or Close is called.
func (c *ChatService) Subscribe(ctx context.Context, userID string, target Target, opts ...option.RequestOption) (*Stream, error) {
	opts = slices.Concat(c.Options, opts)
	if userID == "" {
		return nil, ErrMissingIDParameter
	}
	if err := target.validate(); err != nil {
		return nil, err
	}

	query := url.Values{"userId": {userID}}
	if target.RoomID != "" {
		query.Set("roomId", target.RoomID)
	} else {
		query.Set("recipientId", target.RecipientID)
	}

	cfg, err := requestconfig.NewRequestConfig(ctx, http.MethodGet, "stream?"+query.Encode(), nil, nil, opts...)
	if err != nil {
		return nil, err
	}

	u, err := cfg.URL()
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: cfg.RequestTimeout,
	}

	header := http.Header{}
	for key, values := range cfg.Header {
		if strings.HasPrefix(key, "X-") || key == "User-Agent" {
			header[key] = values
		}
	}

	conn, resp, err := dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, &CommandError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("subscribe failed: %s", resp.Status)}
		}
		return nil, &TransportError{Method: http.MethodGet, Path: "stream", Err: err}
	}

	s := &Stream{
		conn:   conn,
		events: make(chan StreamEvent, 16),
		done:   make(chan struct{}),
	}

	go s.read()
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()

	return s, nil
}

// Events is closed when the subscription ends; Err then reports why.
func (s *Stream) Events() <-chan StreamEvent {
	return s.events
}

func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	close(s.done)

	_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return s.conn.Close()
}

func (s *Stream) read() {
	defer func() {
		_ = s.Close()
		close(s.events)
	}()

	for {
		var event StreamEvent
		if err := s.conn.ReadJSON(&event); err != nil {
			s.mu.Lock()
			if !s.closed && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.err = err
			}
			s.mu.Unlock()
			return
		}
		select {
		case s.events <- event:
		case <-s.done:
			return
		}
	}
}
