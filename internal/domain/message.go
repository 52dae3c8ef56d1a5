package domain

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxMessageLength = 2000

	directKeySeparator = "-dm-"
)

type MessageKind string

const (
	KindRoom   MessageKind = "room"
	KindDirect MessageKind = "dm"
)

// ConversationKey addresses one message log: a room id or a direct-message key.
type ConversationKey string

func RoomKey(roomID string) ConversationKey {
	return ConversationKey(roomID)
}

// DirectKey is commutative: DirectKey(a, b) == DirectKey(b, a).
func DirectKey(userA, userB string) ConversationKey {
	ids := []string{userA, userB}
	sort.Strings(ids)
	return ConversationKey(strings.Join(ids, directKeySeparator))
}

// TargetKey resolves the log addressed by an edit or delete request.
func TargetKey(userID, roomID, recipientID string) ConversationKey {
	if roomID != "" {
		return RoomKey(roomID)
	}
	return DirectKey(userID, recipientID)
}

// Message is one entry of a conversation log. Author is the username snapshot
// taken at send time; it is what edit and delete authorise against.
type Message struct {
	ID          string      `json:"id"`
	Author      string      `json:"user"`
	AuthorID    string      `json:"userId,omitempty"`
	Content     string      `json:"content"`
	Timestamp   int64       `json:"timestamp"` // unix milliseconds
	Edited      bool        `json:"edited,omitempty"`
	Kind        MessageKind `json:"type"`
	RoomID      string      `json:"roomId,omitempty"`
	RecipientID string      `json:"recipientId,omitempty"`
}

func NewMessage(authorID, author, content string, kind MessageKind, roomID, recipientID string) (*Message, error) {
	if err := ValidateContent(content); err != nil {
		return nil, err
	}

	switch kind {
	case KindRoom:
		if roomID == "" {
			return nil, fmt.Errorf("%w: missing roomId for room message", ErrInvalidInput)
		}
	case KindDirect:
		if recipientID == "" {
			return nil, fmt.Errorf("%w: missing recipientId for direct message", ErrInvalidInput)
		}
	default:
		return nil, fmt.Errorf("%w: unknown message type %q", ErrInvalidInput, kind)
	}

	return &Message{
		ID:          uuid.NewString(),
		Author:      author,
		AuthorID:    authorID,
		Content:     content,
		Timestamp:   time.Now().UnixMilli(),
		Kind:        kind,
		RoomID:      roomID,
		RecipientID: recipientID,
	}, nil
}

// Key returns the conversation the message belongs to.
func (m Message) Key() ConversationKey {
	if m.Kind == KindDirect {
		return DirectKey(m.AuthorID, m.RecipientID)
	}
	return RoomKey(m.RoomID)
}

func ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: message cannot be empty", ErrInvalidContent)
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return fmt.Errorf("%w: message exceeds %d characters", ErrInvalidContent, MaxMessageLength)
	}
	return nil
}

type MessageEventType string

const (
	MessageCreated MessageEventType = "message.created"
	MessageEdited  MessageEventType = "message.edited"
	MessageDeleted MessageEventType = "message.deleted"
	MemberJoined   MessageEventType = "member.joined"
	MemberLeft     MessageEventType = "member.left"
)

// ConversationEvent is pushed to live subscribers of a conversation.
type ConversationEvent struct {
	Type    MessageEventType `json:"type"`
	Key     ConversationKey  `json:"conversation"`
	Payload any              `json:"data"`
}

// ConversationNotifier fans conversation events out to subscribers. Notify
// must not block: it is called while the store write lock is held.
type ConversationNotifier interface {
	Notify(event ConversationEvent)
}

type NopNotifier struct{}

func (NopNotifier) Notify(ConversationEvent) {}

// ConversationStore owns all chat state. Every command runs inside exactly one
// View or Update call.
type ConversationStore interface {
	View(ctx context.Context, fn func(tx StoreTx) error) error
	Update(ctx context.Context, fn func(tx StoreTx) error) error
}
