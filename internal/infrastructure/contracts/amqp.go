package contracts

import "github.com/hilthontt/devtea/internal/domain"

// AmqpMessage is the envelope of every message on the room events exchange.
type AmqpMessage struct {
	OwnerID string `json:"ownerId"`
	Data    []byte `json:"data"`
}

// Routing keys
const (
	EventRoomCreated    = "room.created"
	EventMemberJoined   = "member.joined"
	EventMemberLeft     = "member.left"
	EventMessageSent    = "message.sent"
	EventMessageEdited  = "message.edited"
	EventMessageDeleted = "message.deleted"
)

var routingKeys = map[domain.RoomEventType]string{
	domain.EventRoomCreated:    EventRoomCreated,
	domain.EventMemberJoined:   EventMemberJoined,
	domain.EventMemberLeft:     EventMemberLeft,
	domain.EventMessageSent:    EventMessageSent,
	domain.EventMessageEdited:  EventMessageEdited,
	domain.EventMessageDeleted: EventMessageDeleted,
}

func RoutingKey(eventType domain.RoomEventType) (string, bool) {
	key, ok := routingKeys[eventType]
	return key, ok
}

// RoomRoutingKeys lists every key the audit queue is bound to.
func RoomRoutingKeys() []string {
	return []string{
		EventRoomCreated,
		EventMemberJoined,
		EventMemberLeft,
		EventMessageSent,
		EventMessageEdited,
		EventMessageDeleted,
	}
}
