package membership

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
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

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.RoomEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.RoomEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type fixture struct {
	store     domain.ConversationStore
	notifier  *recordingNotifier
	publisher *recordingPublisher
	uc        *membershipUseCase
	clock     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := repository.NewConversationStore(0)
	require.NoError(t, repository.SeedDefaultRooms(context.Background(), store, time.Now()))

	f := &fixture{
		store:     store,
		notifier:  &recordingNotifier{},
		publisher: &recordingPublisher{},
		clock:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.uc = NewMembershipUseCase(store, f.notifier, f.publisher, logging.NewNopLogger(), 0).(*membershipUseCase)
	f.uc.now = func() time.Time { return f.clock }
	return f
}

// assertConsistent checks that the three membership views agree for userID.
func (f *fixture) assertConsistent(t *testing.T, userID string) {
	t.Helper()

	require.NoError(t, f.store.View(context.Background(), func(tx domain.StoreTx) error {
		session, err := tx.Session(userID)
		if err != nil {
			return err
		}

		inRooms := mapset.NewThreadUnsafeSet[string]()
		for _, room := range tx.Rooms() {
			if room.Members.Contains(userID) {
				inRooms.Add(room.ID)
			}
		}

		assert.ElementsMatch(t, inRooms.ToSlice(), session.JoinedRooms.ToSlice(), "room members vs joined")
		assert.Equal(t, tx.Memberships(userID).ToSlice(), session.JoinedRooms.ToSlice(), "index vs joined")
		return nil
	}))
}

func TestRegisterListsAvailableRooms(t *testing.T) {
	f := newFixture(t)

	reg, err := f.uc.Register(context.Background(), "u1", "alice")
	require.NoError(t, err)

	assert.Empty(t, reg.JoinedRooms)
	assert.NotNil(t, reg.JoinedRooms)
	assert.Equal(t, []string{"general", "frontend", "backend", "mobile", "devops"}, reg.AvailableRooms)
}

func TestRegisterRequiresIdentity(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Register(context.Background(), "", "alice")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegisterRestoresMemberships(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Register(ctx, "u1", "alice")
	require.NoError(t, err)
	_, err = f.uc.Join(ctx, "u1", "frontend")
	require.NoError(t, err)
	_, err = f.uc.Join(ctx, "u1", "backend")
	require.NoError(t, err)

	reg, err := f.uc.Register(ctx, "u1", "alice2")
	require.NoError(t, err)
	assert.Equal(t, []string{"frontend", "backend"}, reg.JoinedRooms)
	f.assertConsistent(t, "u1")

	require.NoError(t, f.store.View(ctx, func(tx domain.StoreTx) error {
		session, err := tx.Session("u1")
		require.NoError(t, err)
		assert.Equal(t, "alice2", session.Username)
		assert.Empty(t, session.CurrentRoom)
		return nil
	}))
}

func TestJoinErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Join(ctx, "ghost", "general")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = f.uc.Register(ctx, "u1", "alice")
	require.NoError(t, err)

	_, err = f.uc.Join(ctx, "u1", "nowhere")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestJoinIsIdempotentAndFocusesRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Register(ctx, "u1", "alice")
	require.NoError(t, err)

	first, err := f.uc.Join(ctx, "u1", "general")
	require.NoError(t, err)
	second, err := f.uc.Join(ctx, "u1", "general")
	require.NoError(t, err)

	assert.Equal(t, 1, first.MemberCount)
	assert.Equal(t, 1, second.MemberCount)
	assert.Len(t, first.Messages, 2)
	assert.Equal(t, "welcome-general-1", first.Messages[0].ID)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, domain.MemberJoined, f.notifier.events[0].Type)
	assert.Equal(t, domain.RoomKey("general"), f.notifier.events[0].Key)

	require.NoError(t, f.store.View(ctx, func(tx domain.StoreTx) error {
		session, _ := tx.Session("u1")
		assert.Equal(t, "general", session.CurrentRoom)
		return nil
	}))
	f.assertConsistent(t, "u1")

	assert.Eventually(t, func() bool { return f.publisher.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestLeaveClearsFocusAndIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Register(ctx, "u1", "alice")
	require.NoError(t, err)
	_, err = f.uc.Join(ctx, "u1", "general")
	require.NoError(t, err)

	left, err := f.uc.Leave(ctx, "u1", "general")
	require.NoError(t, err)
	assert.Equal(t, 0, left.MemberCount)

	_, err = f.uc.Leave(ctx, "u1", "general")
	require.NoError(t, err)

	require.NoError(t, f.store.View(ctx, func(tx domain.StoreTx) error {
		session, _ := tx.Session("u1")
		assert.Empty(t, session.CurrentRoom)
		return nil
	}))
	f.assertConsistent(t, "u1")

	var left2 int
	for _, e := range f.notifier.events {
		if e.Type == domain.MemberLeft {
			left2++
		}
	}
	assert.Equal(t, 1, left2)
}

func TestLeaveKeepsOtherFocus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Register(ctx, "u1", "alice")
	require.NoError(t, err)
	_, err = f.uc.Join(ctx, "u1", "general")
	require.NoError(t, err)
	_, err = f.uc.Join(ctx, "u1", "backend")
	require.NoError(t, err)
	_, err = f.uc.Leave(ctx, "u1", "general")
	require.NoError(t, err)

	require.NoError(t, f.store.View(ctx, func(tx domain.StoreTx) error {
		session, _ := tx.Session("u1")
		assert.Equal(t, "backend", session.CurrentRoom)
		return nil
	}))
}

func TestMembershipViewsAgreeUnderRandomOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	users := []string{"u1", "u2", "u3"}
	rooms := []string{"general", "frontend", "backend", "mobile", "devops"}

	for _, u := range users {
		_, err := f.uc.Register(ctx, u, "name-"+u)
		require.NoError(t, err)
	}

	for i := 0; i < 300; i++ {
		user := users[rng.Intn(len(users))]
		room := rooms[rng.Intn(len(rooms))]

		switch rng.Intn(3) {
		case 0:
			_, err := f.uc.Join(ctx, user, room)
			require.NoError(t, err)
		case 1:
			_, err := f.uc.Leave(ctx, user, room)
			require.NoError(t, err)
		case 2:
			_, err := f.uc.Register(ctx, user, fmt.Sprintf("name-%s-%d", user, i))
			require.NoError(t, err)
		}

		f.assertConsistent(t, user)
	}
}

func TestMembersReportsPresence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Members(ctx, "nowhere")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)

	_, err = f.uc.Register(ctx, "u1", "alice")
	require.NoError(t, err)
	_, err = f.uc.Join(ctx, "u1", "general")
	require.NoError(t, err)

	f.clock = f.clock.Add(10 * time.Minute)
	_, err = f.uc.Register(ctx, "u2", "bob")
	require.NoError(t, err)
	_, err = f.uc.Join(ctx, "u2", "general")
	require.NoError(t, err)

	members, err := f.uc.Members(ctx, "general")
	require.NoError(t, err)
	assert.Equal(t, []domain.RoomMember{
		{UserID: "u1", Username: "alice", IsOnline: false},
		{UserID: "u2", Username: "bob", IsOnline: true},
	}, members)
}

func TestOnlineUsersWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Register(ctx, "u1", "alice")
	require.NoError(t, err)
	_, err = f.uc.Join(ctx, "u1", "backend")
	require.NoError(t, err)

	f.clock = f.clock.Add(4 * time.Minute)
	_, err = f.uc.Register(ctx, "u2", "bob")
	require.NoError(t, err)

	users, err := f.uc.OnlineUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, domain.OnlineUser{UserID: "u1", Username: "alice", CurrentRoom: "backend", JoinedRooms: []string{"backend"}}, users[0])

	f.clock = f.clock.Add(2 * time.Minute)
	users, err = f.uc.OnlineUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Username)

	require.NoError(t, f.uc.Touch(ctx, "u1"))
	users, err = f.uc.OnlineUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestTouchIgnoresUnknownUsers(t *testing.T) {
	f := newFixture(t)

	assert.NoError(t, f.uc.Touch(context.Background(), "ghost"))
	assert.NoError(t, f.uc.Touch(context.Background(), ""))
}

func TestRegisterReturnsRoomsInJoinOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Register(ctx, "u1", "alice")
	require.NoError(t, err)
	for _, roomID := range []string{"mobile", "general", "backend"} {
		_, err = f.uc.Join(ctx, "u1", roomID)
		require.NoError(t, err)
	}
	_, err = f.uc.Leave(ctx, "u1", "mobile")
	require.NoError(t, err)
	_, err = f.uc.Join(ctx, "u1", "mobile")
	require.NoError(t, err)

	reg, err := f.uc.Register(ctx, "u1", "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"general", "backend", "mobile"}, reg.JoinedRooms)
	f.assertConsistent(t, "u1")
}
