package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type RoomEventType string

const (
	EventRoomCreated    RoomEventType = "room_created"
	EventMemberJoined   RoomEventType = "member_joined"
	EventMemberLeft     RoomEventType = "member_left"
	EventMessageSent    RoomEventType = "message_sent"
	EventMessageEdited  RoomEventType = "message_edited"
	EventMessageDeleted RoomEventType = "message_deleted"
)

// RoomEvent is published to the message broker after a room-scoped change.
type RoomEvent struct {
	Type        RoomEventType `json:"type"`
	RoomID      string        `json:"roomId"`
	UserID      string        `json:"userId,omitempty"`
	MessageID   string        `json:"messageId,omitempty"`
	MemberCount int           `json:"memberCount"`
	OccurredAt  time.Time     `json:"occurredAt"`
}

func NewRoomEvent(eventType RoomEventType, roomID, userID string, memberCount int) RoomEvent {
	return RoomEvent{
		Type:        eventType,
		RoomID:      roomID,
		UserID:      userID,
		MemberCount: memberCount,
		OccurredAt:  time.Now(),
	}
}

type RoomEventPublisher interface {
	Publish(ctx context.Context, event RoomEvent) error
}

type NopRoomEventPublisher struct{}

func (NopRoomEventPublisher) Publish(context.Context, RoomEvent) error { return nil }

type RoomAuditLog struct {
	ID        string         `bson:"_id" json:"id"`
	RoomID    string         `bson:"room_id" json:"roomId"`
	EventType RoomEventType  `bson:"event_type" json:"eventType"`
	Timestamp time.Time      `bson:"timestamp" json:"timestamp"`
	Metadata  map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

type RoomAuditRepository interface {
	Log(ctx context.Context, log *RoomAuditLog) error
	GetByRoomID(ctx context.Context, roomID string, limit int) ([]RoomAuditLog, error)
	GetByEventType(ctx context.Context, eventType RoomEventType, from, to time.Time) ([]RoomAuditLog, error)
	DeleteOlderThan(ctx context.Context, before time.Time) error
	EnsureIndexes(ctx context.Context) error
}

func NewRoomAuditLog(event RoomEvent) *RoomAuditLog {
	metadata := map[string]any{
		"member_count": event.MemberCount,
	}
	if event.UserID != "" {
		metadata["user_id"] = event.UserID
	}
	if event.MessageID != "" {
		metadata["message_id"] = event.MessageID
	}

	ts := event.OccurredAt
	if ts.IsZero() {
		ts = time.Now()
	}

	return &RoomAuditLog{
		ID:        uuid.NewString(),
		RoomID:    event.RoomID,
		EventType: event.Type,
		Timestamp: ts,
		Metadata:  metadata,
	}
}
