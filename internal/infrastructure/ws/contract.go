package ws

import "github.com/hilthontt/devtea/internal/domain"

// WSMessage is one frame of the push feed.
type WSMessage struct {
	Type         string                 `json:"type"`
	Conversation domain.ConversationKey `json:"conversation"`
	Data         any                    `json:"data,omitempty"`
}

type SubscribedPayload struct {
	SubscriptionID string `json:"subscriptionId"`
	UserID         string `json:"userId"`
}

func NewEventMessage(event domain.ConversationEvent) *WSMessage {
	return &WSMessage{
		Type:         string(event.Type),
		Conversation: event.Key,
		Data:         event.Payload,
	}
}

func NewSubscribed(key domain.ConversationKey, subscriptionID, userID string) *WSMessage {
	return &WSMessage{
		Type:         SubscribedEvent,
		Conversation: key,
		Data: SubscribedPayload{
			SubscriptionID: subscriptionID,
			UserID:         userID,
		},
	}
}
