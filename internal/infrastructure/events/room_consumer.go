package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hilthontt/devtea/internal/domain"
	"github.com/hilthontt/devtea/internal/infrastructure/contracts"
	"github.com/hilthontt/devtea/internal/infrastructure/logging"
	"github.com/hilthontt/devtea/internal/infrastructure/messaging"
	amqp "github.com/rabbitmq/amqp091-go"
)

type MessageConsumer interface {
	ConsumeMessages(ctx context.Context, queueName string, handler messaging.MessageHandler) error
}

// RoomConsumer turns room events into audit log entries.
type RoomConsumer struct {
	broker MessageConsumer
	audit  domain.RoomAuditRepository
	logger logging.Logger
}

func NewRoomConsumer(broker MessageConsumer, audit domain.RoomAuditRepository, logger logging.Logger) *RoomConsumer {
	return &RoomConsumer{
		broker: broker,
		audit:  audit,
		logger: logger,
	}
}

// Listen blocks until ctx is done or the broker connection drops.
func (c *RoomConsumer) Listen(ctx context.Context) error {
	return c.broker.ConsumeMessages(ctx, messaging.RoomAuditQueue, func(ctx context.Context, d amqp.Delivery) error {
		return c.handle(ctx, d.Body)
	})
}

func (c *RoomConsumer) handle(ctx context.Context, body []byte) error {
	var message contracts.AmqpMessage
	if err := json.Unmarshal(body, &message); err != nil {
		c.logger.Error(logging.RabbitMQ, logging.Audit, "failed to unmarshal amqp message", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
		return err
	}

	var event domain.RoomEvent
	if err := json.Unmarshal(message.Data, &event); err != nil {
		c.logger.Error(logging.RabbitMQ, logging.Audit, "failed to unmarshal room event", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
		return err
	}

	if err := c.audit.Log(ctx, domain.NewRoomAuditLog(event)); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}

	c.logger.Debug(logging.MongoDB, logging.Audit, "room event audited", map[logging.ExtraKey]any{
		logging.RoomID: event.RoomID,
		logging.UserID: event.UserID,
		"EventType":    event.Type,
	})
	return nil
}
