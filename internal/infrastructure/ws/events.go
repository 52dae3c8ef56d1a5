package ws

import "github.com/hilthontt/devtea/internal/domain"

const (
	SubscribedEvent     = "subscribed"
	MessageCreatedEvent = string(domain.MessageCreated)
	MessageEditedEvent  = string(domain.MessageEdited)
	MessageDeletedEvent = string(domain.MessageDeleted)
	MemberJoinedEvent   = string(domain.MemberJoined)
	MemberLeftEvent     = string(domain.MemberLeft)
)
