package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hilthontt/devtea/internal/domain"
	"github.com/hilthontt/devtea/internal/infrastructure/contracts"
)

type MessagePublisher interface {
	PublishMessage(ctx context.Context, routingKey string, message contracts.AmqpMessage) error
}

// RoomPublisher puts committed room events on the broker.
type RoomPublisher struct {
	broker MessagePublisher
}

var _ domain.RoomEventPublisher = (*RoomPublisher)(nil)

func NewRoomPublisher(broker MessagePublisher) *RoomPublisher {
	return &RoomPublisher{
		broker: broker,
	}
}

func (p *RoomPublisher) Publish(ctx context.Context, event domain.RoomEvent) error {
	routingKey, ok := contracts.RoutingKey(event.Type)
	if !ok {
		return fmt.Errorf("no routing key for room event %q", event.Type)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.broker.PublishMessage(ctx, routingKey, contracts.AmqpMessage{
		OwnerID: event.UserID,
		Data:    data,
	})
}
