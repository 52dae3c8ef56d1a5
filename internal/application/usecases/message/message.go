package message

import (
	"context"
	"fmt"

	"github.com/hilthontt/devtea/internal/application/usecases/membership"
	"github.com/hilthontt/devtea/internal/domain"
	"github.com/hilthontt/devtea/internal/infrastructure/logging"
	"github.com/hilthontt/devtea/internal/infrastructure/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type SendInput struct {
	UserID string
	// Username overrides the session username as the author snapshot.
	Username    string
	Content     string
	Kind        domain.MessageKind
	RoomID      string
	RecipientID string
}

type History struct {
	Kind        domain.MessageKind
	RoomID      string
	RecipientID string
	Messages    []domain.Message
	MemberCount int
}

type Deleted struct {
	MessageID string `json:"messageId"`
}

type MessageUseCase interface {
	Send(ctx context.Context, in SendInput) (*domain.Message, error)
	History(ctx context.Context, userID string, kind domain.MessageKind, roomID, recipientID string) (*History, error)
	Edit(ctx context.Context, userID, messageID, content, roomID, recipientID string) (*domain.Message, error)
	Delete(ctx context.Context, userID, messageID, roomID, recipientID string) error
}

type messageUseCase struct {
	store     domain.ConversationStore
	notifier  domain.ConversationNotifier
	publisher domain.RoomEventPublisher
	logger    logging.Logger
	tracer    trace.Tracer
}

func NewMessageUseCase(
	store domain.ConversationStore,
	notifier domain.ConversationNotifier,
	publisher domain.RoomEventPublisher,
	logger logging.Logger,
) MessageUseCase {
	return &messageUseCase{
		store:     store,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger,
		tracer:    tracing.GetTracer("message"),
	}
}

func (uc *messageUseCase) Send(ctx context.Context, in SendInput) (*domain.Message, error) {
	ctx, span := uc.tracer.Start(ctx, "message.Send", trace.WithAttributes(
		attribute.String("user.id", in.UserID),
		attribute.String("message.kind", string(in.Kind)),
	))
	defer span.End()

	var (
		msg         *domain.Message
		joined      bool
		memberCount int
	)
	err := uc.store.Update(ctx, func(tx domain.StoreTx) error {
		session, err := tx.Session(in.UserID)
		if err != nil {
			return err
		}

		author := in.Username
		if author == "" {
			author = session.Username
		}

		msg, err = domain.NewMessage(in.UserID, author, in.Content, in.Kind, in.RoomID, in.RecipientID)
		if err != nil {
			return err
		}

		key := domain.DirectKey(in.UserID, in.RecipientID)
		if in.Kind == domain.KindRoom {
			room, err := tx.Room(in.RoomID)
			if err != nil {
				return err
			}
			if joined = membership.AutoJoin(tx, session, room); joined {
				membership.NotifyJoined(uc.notifier, session, room)
			}
			memberCount = room.MemberCount()
			key = domain.RoomKey(room.ID)
		}

		if err := tx.AppendMessage(key, *msg); err != nil {
			return fmt.Errorf("failed to append message: %w", err)
		}

		uc.notifier.Notify(domain.ConversationEvent{Type: domain.MessageCreated, Key: key, Payload: *msg})
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	uc.logger.Debug(logging.Store, logging.Messaging, "message sent", map[logging.ExtraKey]any{
		logging.UserID:    in.UserID,
		logging.MessageID: msg.ID,
		logging.RoomID:    msg.RoomID,
	})

	if msg.Kind == domain.KindRoom {
		if joined {
			membership.PublishAsync(uc.logger, uc.publisher, domain.NewRoomEvent(domain.EventMemberJoined, msg.RoomID, in.UserID, memberCount))
		}
		uc.publishMessageEvent(domain.EventMessageSent, msg.RoomID, in.UserID, msg.ID, memberCount)
	}
	return msg, nil
}

func (uc *messageUseCase) History(ctx context.Context, userID string, kind domain.MessageKind, roomID, recipientID string) (*History, error) {
	ctx, span := uc.tracer.Start(ctx, "message.History", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("message.kind", string(kind)),
	))
	defer span.End()

	switch kind {
	case domain.KindRoom:
		return uc.roomHistory(ctx, userID, roomID)
	case domain.KindDirect:
		if recipientID == "" {
			return nil, fmt.Errorf("%w: missing recipientId", domain.ErrInvalidInput)
		}

		result := History{Kind: domain.KindDirect, RecipientID: recipientID}
		err := uc.store.View(ctx, func(tx domain.StoreTx) error {
			result.Messages = tx.Messages(domain.DirectKey(userID, recipientID))
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &result, nil
	default:
		return nil, fmt.Errorf("%w: unknown message type %q", domain.ErrInvalidInput, kind)
	}
}

// roomHistory auto-joins the requester, so reading a room also focuses it.
func (uc *messageUseCase) roomHistory(ctx context.Context, userID, roomID string) (*History, error) {
	var (
		result = History{Kind: domain.KindRoom, RoomID: roomID}
		joined bool
	)
	err := uc.store.Update(ctx, func(tx domain.StoreTx) error {
		session, err := tx.Session(userID)
		if err != nil {
			return domain.ErrRoomOrUserNotFound
		}
		room, err := tx.Room(roomID)
		if err != nil {
			return domain.ErrRoomOrUserNotFound
		}

		if joined = membership.Join(tx, session, room); joined {
			membership.NotifyJoined(uc.notifier, session, room)
		}

		result.Messages = tx.Messages(domain.RoomKey(room.ID))
		result.MemberCount = room.MemberCount()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if joined {
		membership.PublishAsync(uc.logger, uc.publisher, domain.NewRoomEvent(domain.EventMemberJoined, roomID, userID, result.MemberCount))
	}
	return &result, nil
}

func (uc *messageUseCase) Edit(ctx context.Context, userID, messageID, content, roomID, recipientID string) (*domain.Message, error) {
	ctx, span := uc.tracer.Start(ctx, "message.Edit", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("message.id", messageID),
	))
	defer span.End()

	if err := domain.ValidateContent(content); err != nil {
		return nil, err
	}

	key := domain.TargetKey(userID, roomID, recipientID)

	var edited domain.Message
	err := uc.store.Update(ctx, func(tx domain.StoreTx) error {
		msg, err := uc.authorize(tx, key, userID, messageID)
		if err != nil {
			return err
		}

		msg.Content = content
		msg.Edited = true
		if err := tx.ReplaceMessage(key, msg); err != nil {
			return err
		}

		edited = msg
		uc.notifier.Notify(domain.ConversationEvent{Type: domain.MessageEdited, Key: key, Payload: msg})
		return nil
	})
	if err != nil {
		span.RecordError(err)
		uc.logger.Debug(logging.Store, logging.Messaging, "edit rejected", map[logging.ExtraKey]any{
			logging.UserID:       userID,
			logging.MessageID:    messageID,
			logging.ErrorMessage: err.Error(),
		})
		return nil, err
	}

	if roomID != "" {
		uc.publishMessageEvent(domain.EventMessageEdited, roomID, userID, messageID, 0)
	}
	return &edited, nil
}

func (uc *messageUseCase) Delete(ctx context.Context, userID, messageID, roomID, recipientID string) error {
	ctx, span := uc.tracer.Start(ctx, "message.Delete", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("message.id", messageID),
	))
	defer span.End()

	key := domain.TargetKey(userID, roomID, recipientID)

	err := uc.store.Update(ctx, func(tx domain.StoreTx) error {
		if _, err := uc.authorize(tx, key, userID, messageID); err != nil {
			return err
		}
		if err := tx.RemoveMessage(key, messageID); err != nil {
			return err
		}

		uc.notifier.Notify(domain.ConversationEvent{Type: domain.MessageDeleted, Key: key, Payload: Deleted{MessageID: messageID}})
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	if roomID != "" {
		uc.publishMessageEvent(domain.EventMessageDeleted, roomID, userID, messageID, 0)
	}
	return nil
}

// authorize finds the message and checks that its author snapshot equals the
// requester's current username.
func (uc *messageUseCase) authorize(tx domain.StoreTx, key domain.ConversationKey, userID, messageID string) (domain.Message, error) {
	msg, err := tx.FindMessage(key, messageID)
	if err != nil {
		return domain.Message{}, err
	}

	session, err := tx.Session(userID)
	if err != nil || session.Username != msg.Author {
		return domain.Message{}, domain.ErrUnauthorized
	}
	return msg, nil
}

func (uc *messageUseCase) publishMessageEvent(eventType domain.RoomEventType, roomID, userID, messageID string, memberCount int) {
	event := domain.NewRoomEvent(eventType, roomID, userID, memberCount)
	event.MessageID = messageID
	membership.PublishAsync(uc.logger, uc.publisher, event)
}
