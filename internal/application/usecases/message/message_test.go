package message

import (
	"context"
	"strings"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/hilthontt/devtea/internal/application/usecases/membership"
	"github.com/hilthontt/devtea/internal/domain"
	"github.com/hilthontt/devtea/internal/infrastructure/logging"
	"github.com/hilthontt/devtea/internal/infrastructure/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	events []domain.ConversationEvent
}

func (n *recordingNotifier) Notify(event domain.ConversationEvent) {
	n.events = append(n.events, event)
}

type fixture struct {
	store    domain.ConversationStore
	notifier *recordingNotifier
	members  membership.MembershipUseCase
	uc       MessageUseCase
}

// newFixture builds a store holding one empty room, "general".
func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := repository.NewConversationStore(0)
	require.NoError(t, store.Update(context.Background(), func(tx domain.StoreTx) error {
		return tx.InsertRoom(&domain.Room{
			ID:       "general",
			Name:     "General",
			Members:  mapset.NewThreadUnsafeSet[string](),
			IsPublic: true,
		})
	}))

	notifier := &recordingNotifier{}
	logger := logging.NewNopLogger()
	return &fixture{
		store:    store,
		notifier: notifier,
		members:  membership.NewMembershipUseCase(store, notifier, domain.NopRoomEventPublisher{}, logger, 0),
		uc:       NewMessageUseCase(store, notifier, domain.NopRoomEventPublisher{}, logger),
	}
}

func (f *fixture) register(t *testing.T, userID, username string) {
	t.Helper()
	_, err := f.members.Register(context.Background(), userID, username)
	require.NoError(t, err)
}

func (f *fixture) log(t *testing.T, key domain.ConversationKey) []domain.Message {
	t.Helper()
	var messages []domain.Message
	require.NoError(t, f.store.View(context.Background(), func(tx domain.StoreTx) error {
		messages = tx.Messages(key)
		return nil
	}))
	return messages
}

func TestSendToJoinedRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "a", "alice")
	_, err := f.members.Join(ctx, "a", "general")
	require.NoError(t, err)

	msg, err := f.uc.Send(ctx, SendInput{UserID: "a", Content: "hello", Kind: domain.KindRoom, RoomID: "general"})
	require.NoError(t, err)

	log := f.log(t, domain.RoomKey("general"))
	require.Len(t, log, 1)
	assert.Equal(t, "hello", log[0].Content)
	assert.Equal(t, "alice", log[0].Author)
	assert.False(t, log[0].Edited)
	assert.Equal(t, msg.ID, log[0].ID)
}

func TestSendAutoJoinsRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "a", "alice")
	_, err := f.uc.Send(ctx, SendInput{UserID: "a", Content: "hi all", Kind: domain.KindRoom, RoomID: "general"})
	require.NoError(t, err)

	require.NoError(t, f.store.View(ctx, func(tx domain.StoreTx) error {
		room, _ := tx.Room("general")
		session, _ := tx.Session("a")
		assert.True(t, room.Members.Contains("a"))
		assert.True(t, session.JoinedRooms.Contains("general"))
		assert.True(t, tx.Memberships("a").Contains("general"))
		assert.Empty(t, session.CurrentRoom)
		return nil
	}))

	require.Len(t, f.notifier.events, 2)
	assert.Equal(t, domain.MemberJoined, f.notifier.events[0].Type)
	assert.Equal(t, domain.MessageCreated, f.notifier.events[1].Type)
}

func TestSendUsesCommandUsername(t *testing.T) {
	f := newFixture(t)

	f.register(t, "a", "alice")
	msg, err := f.uc.Send(context.Background(), SendInput{UserID: "a", Username: "Alice D.", Content: "x", Kind: domain.KindRoom, RoomID: "general"})
	require.NoError(t, err)
	assert.Equal(t, "Alice D.", msg.Author)
	assert.Equal(t, "a", msg.AuthorID)
}

func TestSendErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Send(ctx, SendInput{UserID: "ghost", Content: "x", Kind: domain.KindRoom, RoomID: "general"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	f.register(t, "a", "alice")

	_, err = f.uc.Send(ctx, SendInput{UserID: "a", Content: "x", Kind: domain.KindRoom, RoomID: "nowhere"})
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)

	_, err = f.uc.Send(ctx, SendInput{UserID: "a", Content: "   ", Kind: domain.KindRoom, RoomID: "general"})
	assert.ErrorIs(t, err, domain.ErrInvalidContent)

	_, err = f.uc.Send(ctx, SendInput{UserID: "a", Content: strings.Repeat("x", domain.MaxMessageLength+1), Kind: domain.KindRoom, RoomID: "general"})
	assert.ErrorIs(t, err, domain.ErrInvalidContent)

	_, err = f.uc.Send(ctx, SendInput{UserID: "a", Content: "x", Kind: domain.KindDirect})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Empty(t, f.log(t, domain.RoomKey("general")))
}

func TestDirectMessageSharedByBothSides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "a", "alice")
	f.register(t, "b", "bob")

	sent, err := f.uc.Send(ctx, SendInput{UserID: "a", Content: "hi", Kind: domain.KindDirect, RecipientID: "b"})
	require.NoError(t, err)

	history, err := f.uc.History(ctx, "b", domain.KindDirect, "", "a")
	require.NoError(t, err)
	require.Len(t, history.Messages, 1)
	assert.Equal(t, sent.ID, history.Messages[0].ID)
	assert.Equal(t, "a", history.RecipientID)

	assert.Equal(t, history.Messages, f.log(t, domain.DirectKey("a", "b")))
	assert.Equal(t, domain.DirectKey("b", "a"), f.notifier.events[0].Key)
}

func TestDirectHistoryNeedsNoSession(t *testing.T) {
	f := newFixture(t)

	history, err := f.uc.History(context.Background(), "nobody", domain.KindDirect, "", "someone")
	require.NoError(t, err)
	assert.Empty(t, history.Messages)
}

func TestRoomHistoryAutoJoinsAndFocuses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.History(ctx, "a", domain.KindRoom, "general", "")
	assert.ErrorIs(t, err, domain.ErrRoomOrUserNotFound)

	f.register(t, "a", "alice")
	_, err = f.uc.History(ctx, "a", domain.KindRoom, "nowhere", "")
	assert.ErrorIs(t, err, domain.ErrRoomOrUserNotFound)

	history, err := f.uc.History(ctx, "a", domain.KindRoom, "general", "")
	require.NoError(t, err)
	assert.Equal(t, 1, history.MemberCount)
	assert.Empty(t, history.Messages)

	require.NoError(t, f.store.View(ctx, func(tx domain.StoreTx) error {
		session, _ := tx.Session("a")
		assert.Equal(t, "general", session.CurrentRoom)
		return nil
	}))
}

func TestEditByAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "a", "alice")
	sent, err := f.uc.Send(ctx, SendInput{UserID: "a", Content: "helo", Kind: domain.KindRoom, RoomID: "general"})
	require.NoError(t, err)

	edited, err := f.uc.Edit(ctx, "a", sent.ID, "hello", "general", "")
	require.NoError(t, err)
	assert.True(t, edited.Edited)
	assert.Equal(t, "hello", edited.Content)
	assert.Equal(t, sent.Timestamp, edited.Timestamp)

	log := f.log(t, domain.RoomKey("general"))
	require.Len(t, log, 1)
	assert.Equal(t, *edited, log[0])
}

func TestEditByOtherUserIsUnauthorized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "a", "alice")
	f.register(t, "b", "bob")
	sent, err := f.uc.Send(ctx, SendInput{UserID: "b", Content: "mine", Kind: domain.KindRoom, RoomID: "general"})
	require.NoError(t, err)
	before := f.log(t, domain.RoomKey("general"))

	_, err = f.uc.Edit(ctx, "a", sent.ID, "yours now", "general", "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, before, f.log(t, domain.RoomKey("general")))

	err = f.uc.Delete(ctx, "a", sent.ID, "general", "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, before, f.log(t, domain.RoomKey("general")))
}

func TestAuthorizationFollowsCurrentUsername(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "a", "alice")
	sent, err := f.uc.Send(ctx, SendInput{UserID: "a", Content: "x", Kind: domain.KindRoom, RoomID: "general"})
	require.NoError(t, err)

	// Re-registering under a new name loses the right to edit old messages.
	f.register(t, "a", "alicia")
	_, err = f.uc.Edit(ctx, "a", sent.ID, "y", "general", "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// Someone else taking the old name gains it.
	f.register(t, "c", "alice")
	_, err = f.uc.Edit(ctx, "c", sent.ID, "y", "general", "")
	assert.NoError(t, err)
}

func TestEditAndDeleteMissingMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "a", "alice")

	_, err := f.uc.Edit(ctx, "a", "missing", "x", "general", "")
	assert.ErrorIs(t, err, domain.ErrMessageNotFound)

	err = f.uc.Delete(ctx, "a", "missing", "", "b")
	assert.ErrorIs(t, err, domain.ErrMessageNotFound)

	_, err = f.uc.Edit(ctx, "a", "missing", "", "general", "")
	assert.ErrorIs(t, err, domain.ErrInvalidContent)
}

func TestDeleteDirectMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "a", "alice")
	f.register(t, "b", "bob")

	first, err := f.uc.Send(ctx, SendInput{UserID: "a", Content: "one", Kind: domain.KindDirect, RecipientID: "b"})
	require.NoError(t, err)
	second, err := f.uc.Send(ctx, SendInput{UserID: "b", Content: "two", Kind: domain.KindDirect, RecipientID: "a"})
	require.NoError(t, err)

	require.NoError(t, f.uc.Delete(ctx, "a", first.ID, "", "b"))

	log := f.log(t, domain.DirectKey("a", "b"))
	require.Len(t, log, 1)
	assert.Equal(t, second.ID, log[0].ID)

	last := f.notifier.events[len(f.notifier.events)-1]
	assert.Equal(t, domain.MessageDeleted, last.Type)
	assert.Equal(t, Deleted{MessageID: first.ID}, last.Payload)
}
