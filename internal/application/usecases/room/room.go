package room

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

type RoomUseCase interface {
	// Create derives the room id from the name, makes the creator its first
	// member and seeds the log with a welcome message.
	Create(ctx context.Context, userID, name, description string) (*Created, error)
	List(ctx context.Context, userID string) ([]Listing, error)
	Joined(ctx context.Context, userID string) ([]Listing, error)
	Search(ctx context.Context, userID, query string) ([]SearchResult, error)
	Public(ctx context.Context) ([]PublicRoom, error)
}

type roomUseCase struct {
	store     domain.ConversationStore
	notifier  domain.ConversationNotifier
	publisher domain.RoomEventPublisher
	logger    logging.Logger
	tracer    trace.Tracer
}

func NewRoomUseCase(
	store domain.ConversationStore,
	notifier domain.ConversationNotifier,
	publisher domain.RoomEventPublisher,
	logger logging.Logger,
) RoomUseCase {
	return &roomUseCase{
		store:     store,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger,
		tracer:    tracing.GetTracer("room"),
	}
}

func (uc *roomUseCase) Create(ctx context.Context, userID, name, description string) (*Created, error) {
	ctx, span := uc.tracer.Start(ctx, "room.Create", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("room.name", name),
	))
	defer span.End()

	var created *Created
	err := uc.store.Update(ctx, func(tx domain.StoreTx) error {
		session, err := tx.Session(userID)
		if err != nil {
			return err
		}

		room, err := domain.NewRoom(name, description, userID)
		if err != nil {
			return err
		}
		if err := tx.InsertRoom(room); err != nil {
			return err
		}

		membership.Join(tx, session, room)

		welcome := room.WelcomeMessage(session.Username)
		if err := tx.AppendMessage(domain.RoomKey(room.ID), welcome); err != nil {
			return fmt.Errorf("failed to seed welcome message: %w", err)
		}

		created = newCreated(room)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		uc.logger.Debug(logging.Store, logging.RoomCatalog, "room creation rejected", map[logging.ExtraKey]any{
			logging.UserID:       userID,
			logging.ErrorMessage: err.Error(),
		})
		return nil, err
	}

	uc.logger.Info(logging.Store, logging.RoomCatalog, "room created", map[logging.ExtraKey]any{
		logging.UserID: userID,
		logging.RoomID: created.ID,
	})
	membership.PublishAsync(uc.logger, uc.publisher, domain.NewRoomEvent(domain.EventRoomCreated, created.ID, userID, created.MemberCount))
	return created, nil
}

// List returns every public room. Unregistered callers see isMember and
// isJoined false everywhere.
func (uc *roomUseCase) List(ctx context.Context, userID string) ([]Listing, error) {
	rooms := []Listing{}
	err := uc.store.View(ctx, func(tx domain.StoreTx) error {
		session, _ := tx.Session(userID)

		for _, r := range tx.Rooms() {
			if !r.IsPublic {
				continue
			}
			listing := Listing{
				ID:          r.ID,
				Name:        r.Name,
				Description: r.Description,
				MemberCount: r.MemberCount(),
			}
			if session != nil {
				listing.IsMember = membership.IsMember(r, userID)
				listing.IsJoined = session.JoinedRooms.Contains(r.ID)
			}
			rooms = append(rooms, listing)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

// Joined lists the rooms in the session's joined set that still exist, in
// creation order.
func (uc *roomUseCase) Joined(ctx context.Context, userID string) ([]Listing, error) {
	rooms := []Listing{}
	err := uc.store.View(ctx, func(tx domain.StoreTx) error {
		session, err := tx.Session(userID)
		if err != nil {
			return err
		}

		for _, r := range tx.Rooms() {
			if !session.JoinedRooms.Contains(r.ID) {
				continue
			}
			rooms = append(rooms, Listing{
				ID:          r.ID,
				Name:        r.Name,
				Description: r.Description,
				MemberCount: r.MemberCount(),
				IsMember:    true,
				IsJoined:    true,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

func (uc *roomUseCase) Search(ctx context.Context, userID, query string) ([]SearchResult, error) {
	_, span := uc.tracer.Start(ctx, "room.Search", trace.WithAttributes(attribute.String("query", query)))
	defer span.End()

	results := []SearchResult{}
	err := uc.store.View(ctx, func(tx domain.StoreTx) error {
		for _, r := range tx.Rooms() {
			if !r.IsPublic || !r.Matches(query) {
				continue
			}
			results = append(results, SearchResult{
				ID:          r.ID,
				Name:        r.Name,
				Description: r.Description,
				MemberCount: r.MemberCount(),
				IsMember:    membership.IsMember(r, userID),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (uc *roomUseCase) Public(ctx context.Context) ([]PublicRoom, error) {
	rooms := []PublicRoom{}
	err := uc.store.View(ctx, func(tx domain.StoreTx) error {
		for _, r := range tx.Rooms() {
			if !r.IsPublic {
				continue
			}
			rooms = append(rooms, PublicRoom{
				ID:          r.ID,
				Name:        r.Name,
				Description: r.Description,
				MemberCount: r.MemberCount(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rooms, nil
}
