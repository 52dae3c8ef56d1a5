package membership

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hilthontt/devtea/internal/domain"
	"github.com/hilthontt/devtea/internal/infrastructure/logging"
	"github.com/hilthontt/devtea/internal/infrastructure/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const unknownUsername = "Unknown"

type Registration struct {
	JoinedRooms    []string `json:"joinedRooms"`
	AvailableRooms []string `json:"availableRooms"`
}

type JoinResult struct {
	RoomID      string           `json:"roomId"`
	Messages    []domain.Message `json:"messages"`
	MemberCount int              `json:"memberCount"`
}

type LeaveResult struct {
	RoomID      string `json:"roomId"`
	MemberCount int    `json:"memberCount"`
}

type MembershipUseCase interface {
	Register(ctx context.Context, userID, username string) (*Registration, error)
	Join(ctx context.Context, userID, roomID string) (*JoinResult, error)
	Leave(ctx context.Context, userID, roomID string) (*LeaveResult, error)
	Members(ctx context.Context, roomID string) ([]domain.RoomMember, error)
	OnlineUsers(ctx context.Context) ([]domain.OnlineUser, error)
	// Touch refreshes lastSeen. Unknown users are ignored.
	Touch(ctx context.Context, userID string) error
}

type membershipUseCase struct {
	store        domain.ConversationStore
	notifier     domain.ConversationNotifier
	publisher    domain.RoomEventPublisher
	logger       logging.Logger
	tracer       trace.Tracer
	onlineWindow time.Duration
	now          func() time.Time
}

func NewMembershipUseCase(
	store domain.ConversationStore,
	notifier domain.ConversationNotifier,
	publisher domain.RoomEventPublisher,
	logger logging.Logger,
	onlineWindow time.Duration,
) MembershipUseCase {
	if onlineWindow <= 0 {
		onlineWindow = domain.DefaultOnlineWindow
	}
	return &membershipUseCase{
		store:        store,
		notifier:     notifier,
		publisher:    publisher,
		logger:       logger,
		tracer:       tracing.GetTracer("membership"),
		onlineWindow: onlineWindow,
		now:          time.Now,
	}
}

func (uc *membershipUseCase) Register(ctx context.Context, userID, username string) (*Registration, error) {
	ctx, span := uc.tracer.Start(ctx, "membership.Register", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	if userID == "" || username == "" {
		return nil, fmt.Errorf("%w: userId and username are required", domain.ErrInvalidInput)
	}

	var result Registration
	err := uc.store.Update(ctx, func(tx domain.StoreTx) error {
		session := domain.NewSession(userID, username, nil)
		session.Touch(uc.now())
		Restore(tx, session)

		if err := tx.SaveSession(session); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}

		result.JoinedRooms = session.JoinedRooms.ToSlice()
		rooms := tx.Rooms()
		result.AvailableRooms = make([]string, 0, len(rooms))
		for _, room := range rooms {
			result.AvailableRooms = append(result.AvailableRooms, room.ID)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	uc.logger.Info(logging.Store, logging.Membership, "user registered", map[logging.ExtraKey]any{
		logging.UserID: userID,
		"JoinedRooms":  len(result.JoinedRooms),
	})
	return &result, nil
}

func (uc *membershipUseCase) Join(ctx context.Context, userID, roomID string) (*JoinResult, error) {
	ctx, span := uc.tracer.Start(ctx, "membership.Join", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("room.id", roomID),
	))
	defer span.End()

	var (
		result JoinResult
		joined bool
	)
	err := uc.store.Update(ctx, func(tx domain.StoreTx) error {
		session, err := tx.Session(userID)
		if err != nil {
			return err
		}
		room, err := tx.Room(roomID)
		if err != nil {
			return err
		}

		session.Touch(uc.now())
		if joined = Join(tx, session, room); joined {
			NotifyJoined(uc.notifier, session, room)
		}

		result = JoinResult{
			RoomID:      room.ID,
			Messages:    tx.Messages(domain.RoomKey(room.ID)),
			MemberCount: room.MemberCount(),
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if joined {
		uc.logger.Info(logging.Store, logging.Membership, "user joined room", map[logging.ExtraKey]any{
			logging.UserID: userID,
			logging.RoomID: roomID,
		})
		PublishAsync(uc.logger, uc.publisher, domain.NewRoomEvent(domain.EventMemberJoined, roomID, userID, result.MemberCount))
	}
	return &result, nil
}

func (uc *membershipUseCase) Leave(ctx context.Context, userID, roomID string) (*LeaveResult, error) {
	ctx, span := uc.tracer.Start(ctx, "membership.Leave", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("room.id", roomID),
	))
	defer span.End()

	var (
		result LeaveResult
		left   bool
	)
	err := uc.store.Update(ctx, func(tx domain.StoreTx) error {
		session, err := tx.Session(userID)
		if err != nil {
			return err
		}
		room, err := tx.Room(roomID)
		if err != nil {
			return err
		}

		session.Touch(uc.now())
		if left = Leave(tx, session, room); left {
			NotifyLeft(uc.notifier, session, room)
		}

		result = LeaveResult{RoomID: room.ID, MemberCount: room.MemberCount()}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if left {
		uc.logger.Info(logging.Store, logging.Membership, "user left room", map[logging.ExtraKey]any{
			logging.UserID: userID,
			logging.RoomID: roomID,
		})
		PublishAsync(uc.logger, uc.publisher, domain.NewRoomEvent(domain.EventMemberLeft, roomID, userID, result.MemberCount))
	}
	return &result, nil
}

func (uc *membershipUseCase) Members(ctx context.Context, roomID string) ([]domain.RoomMember, error) {
	now := uc.now()

	var members []domain.RoomMember
	err := uc.store.View(ctx, func(tx domain.StoreTx) error {
		room, err := tx.Room(roomID)
		if err != nil {
			return err
		}

		members = make([]domain.RoomMember, 0, room.MemberCount())
		for _, memberID := range room.Members.ToSlice() {
			member := domain.RoomMember{UserID: memberID, Username: unknownUsername}
			if session, err := tx.Session(memberID); err == nil {
				member.Username = session.Username
				member.IsOnline = session.IsOnline(now, uc.onlineWindow)
			}
			members = append(members, member)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(members, func(i, j int) bool {
		if members[i].Username == members[j].Username {
			return members[i].UserID < members[j].UserID
		}
		return members[i].Username < members[j].Username
	})
	return members, nil
}

func (uc *membershipUseCase) OnlineUsers(ctx context.Context) ([]domain.OnlineUser, error) {
	now := uc.now()

	users := []domain.OnlineUser{}
	err := uc.store.View(ctx, func(tx domain.StoreTx) error {
		for _, session := range tx.Sessions() {
			if !session.IsOnline(now, uc.onlineWindow) {
				continue
			}
			users = append(users, domain.OnlineUser{
				UserID:      session.UserID,
				Username:    session.Username,
				CurrentRoom: session.CurrentRoom,
				JoinedRooms: session.JoinedRooms.ToSlice(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(users, func(i, j int) bool {
		if users[i].Username == users[j].Username {
			return users[i].UserID < users[j].UserID
		}
		return users[i].Username < users[j].Username
	})
	return users, nil
}

func (uc *membershipUseCase) Touch(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	return uc.store.Update(ctx, func(tx domain.StoreTx) error {
		session, err := tx.Session(userID)
		if err != nil {
			return nil
		}
		session.Touch(uc.now())
		return nil
	})
}
