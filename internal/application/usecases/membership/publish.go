package membership

import (
	"context"
	"time"

	"github.com/hilthontt/devtea/internal/domain"
	"github.com/hilthontt/devtea/internal/infrastructure/logging"
)

const publishTimeout = 5 * time.Second

// PublishAsync hands a committed room event to the broker without holding up
// the command. Failures are logged and dropped.
func PublishAsync(logger logging.Logger, publisher domain.RoomEventPublisher, event domain.RoomEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := publisher.Publish(ctx, event); err != nil {
			logger.Warn(logging.RabbitMQ, logging.Audit, "failed to publish room event", map[logging.ExtraKey]any{
				logging.RoomID:       event.RoomID,
				logging.UserID:       event.UserID,
				logging.ErrorMessage: err.Error(),
			})
		}
	}()
}
