package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hilthontt/devtea/internal/application/usecases/membership"
	"github.com/hilthontt/devtea/internal/application/usecases/message"
	"github.com/hilthontt/devtea/internal/application/usecases/room"
	"github.com/hilthontt/devtea/internal/domain"
	"github.com/hilthontt/devtea/internal/infrastructure/logging"
	"github.com/hilthontt/devtea/internal/infrastructure/metrics"
	"github.com/hilthontt/devtea/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/devtea/internal/infrastructure/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type fixture struct {
	srv *httptest.Server
}

func newFixture(t *testing.T, limiter *ratelimiter.FixedWindow) *fixture {
	t.Helper()

	ctx := context.Background()
	logger := logging.NewNopLogger()
	store := repository.NewConversationStore(0)
	require.NoError(t, repository.SeedDefaultRooms(ctx, store, time.Now()))

	notifier := domain.NopNotifier{}
	publisher := domain.NopRoomEventPublisher{}

	handler, err := NewHandler(
		membership.NewMembershipUseCase(store, notifier, publisher, logger, 0),
		message.NewMessageUseCase(store, notifier, publisher, logger),
		room.NewRoomUseCase(store, notifier, publisher, logger),
		limiter,
		metrics.New(),
		logger,
	)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(handler.HandleCommand))
	t.Cleanup(srv.Close)

	return &fixture{srv: srv}
}

func (f *fixture) post(t *testing.T, body []byte) (int, envelope) {
	t.Helper()

	resp, err := http.Post(f.srv.URL, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (f *fixture) send(t *testing.T, userID, commandType string, data any) (int, envelope) {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"type":   commandType,
		"data":   data,
		"userId": userID,
	})
	require.NoError(t, err)
	return f.post(t, body)
}

// ok sends a command that must succeed and decodes its data into out.
func (f *fixture) ok(t *testing.T, userID, commandType string, data any, out any) string {
	t.Helper()

	status, env := f.send(t, userID, commandType, data)
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success, "command %s failed: %s", commandType, env.Error)
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env.Type
}

func (f *fixture) fail(t *testing.T, userID, commandType string, data any) (int, string) {
	t.Helper()

	status, env := f.send(t, userID, commandType, data)
	require.False(t, env.Success)
	return status, env.Error
}

func (f *fixture) register(t *testing.T, userID, username string) membership.Registration {
	t.Helper()

	var reg membership.Registration
	resultType := f.ok(t, userID, Register, map[string]string{"userId": userID, "username": username}, &reg)
	require.Equal(t, Registered, resultType)
	return reg
}

func TestRegisterAndJoin(t *testing.T) {
	f := newFixture(t, nil)

	reg := f.register(t, "u1", "alice")
	assert.Empty(t, reg.JoinedRooms)
	assert.ElementsMatch(t, []string{"general", "frontend", "backend", "mobile", "devops"}, reg.AvailableRooms)

	var joined membership.JoinResult
	assert.Equal(t, RoomJoined, f.ok(t, "u1", JoinRoom, map[string]string{"roomId": "general"}, &joined))
	assert.Equal(t, "general", joined.RoomID)
	assert.Len(t, joined.Messages, 2)
	assert.Equal(t, 1, joined.MemberCount)

	var joinedRooms roomListResult
	assert.Equal(t, JoinedRooms, f.ok(t, "u1", GetJoinedRooms, nil, &joinedRooms))
	require.Len(t, joinedRooms.Rooms, 1)
	assert.Equal(t, "general", joinedRooms.Rooms[0].ID)
	assert.True(t, joinedRooms.Rooms[0].IsJoined)

	// a second registration restores the durable memberships
	reg = f.register(t, "u1", "alice")
	assert.Equal(t, []string{"general"}, reg.JoinedRooms)

	var left membership.LeaveResult
	assert.Equal(t, RoomLeft, f.ok(t, "u1", LeaveRoom, map[string]string{"roomId": "general"}, &left))
	assert.Equal(t, 0, left.MemberCount)
}

func TestRegisterFallsBackToEnvelopeUserID(t *testing.T) {
	f := newFixture(t, nil)

	var reg membership.Registration
	assert.Equal(t, Registered, f.ok(t, "u1", Register, map[string]string{"username": "alice"}, &reg))

	var users onlineUsersResult
	f.ok(t, "u1", GetOnlineUsers, nil, &users)
	require.Len(t, users.Users, 1)
	assert.Equal(t, "u1", users.Users[0].UserID)
}

func TestApplicationErrors(t *testing.T) {
	f := newFixture(t, nil)

	status, text := f.fail(t, "ghost", JoinRoom, map[string]string{"roomId": "general"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "User not found", text)

	_, text = f.fail(t, "ghost", GetMessages, map[string]string{"type": "room", "roomId": "general"})
	assert.Equal(t, "Room or user not found", text)

	_, text = f.fail(t, "ghost", GetJoinedRooms, nil)
	assert.Equal(t, "User not found", text)

	f.register(t, "u1", "alice")

	_, text = f.fail(t, "u1", JoinRoom, map[string]string{"roomId": "nope"})
	assert.Equal(t, "Room not found", text)

	_, text = f.fail(t, "u1", LeaveRoom, map[string]string{"roomId": "nope"})
	assert.Equal(t, "Room not found", text)

	_, text = f.fail(t, "u1", GetMessages, map[string]string{"type": "room", "roomId": "nope"})
	assert.Equal(t, "Room or user not found", text)

	_, text = f.fail(t, "u1", GetRoomMembers, map[string]string{"roomId": "nope"})
	assert.Equal(t, "Room not found", text)

	_, text = f.fail(t, "u1", SendMessage, map[string]string{"type": "room", "roomId": "nope", "content": "hi"})
	assert.Equal(t, "Room not found", text)
}

func TestUnknownCommandAndBadBody(t *testing.T) {
	f := newFixture(t, nil)

	status, env := f.send(t, "u1", "teleport", nil)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.False(t, env.Success)
	assert.Equal(t, "Unknown message type", env.Error)

	status, env = f.post(t, []byte("{not json"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)

	status, env = f.post(t, []byte(`{"type":"join_room","userId":"u1","data":"general"}`))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
}

func TestPayloadValidation(t *testing.T) {
	f := newFixture(t, nil)
	f.register(t, "u1", "alice")

	tests := []struct {
		name        string
		commandType string
		data        any
		want        string
	}{
		{"join without room", JoinRoom, map[string]string{}, "roomId is required"},
		{"register without username", Register, map[string]string{"userId": "u2"}, "username is required"},
		{"send with bad type", SendMessage, map[string]string{"type": "group", "content": "hi"}, "type must be one of: room, dm"},
		{"send room without room id", SendMessage, map[string]string{"type": "room", "content": "hi"}, "roomId is required"},
		{"send dm without recipient", SendMessage, map[string]string{"type": "dm", "content": "hi"}, "recipientId is required"},
		{"edit without target", EditMessage, map[string]string{"messageId": "m", "content": "x"}, "roomId is required"},
		{"delete without message", DeleteMessage, map[string]string{"roomId": "general"}, "messageId is required"},
		{"create without name", CreateRoom, map[string]string{"description": "d"}, "name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, text := f.fail(t, "u1", tt.commandType, tt.data)
			assert.Equal(t, http.StatusOK, status)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestSendAutoJoinsRoom(t *testing.T) {
	f := newFixture(t, nil)
	f.register(t, "u1", "alice")

	var sent domain.Message
	assert.Equal(t, MessageSent, f.ok(t, "u1", SendMessage, map[string]string{
		"type": "room", "roomId": "backend", "content": "hello", "username": "alice",
	}, &sent))
	assert.Equal(t, "alice", sent.Author)
	assert.Equal(t, "backend", sent.RoomID)

	var rooms roomListResult
	assert.Equal(t, RoomsList, f.ok(t, "u1", GetRooms, nil, &rooms))
	for _, r := range rooms.Rooms {
		if r.ID == "backend" {
			assert.True(t, r.IsMember)
			assert.True(t, r.IsJoined)
			assert.Equal(t, 1, r.MemberCount)
		}
	}

	var members roomMembersResult
	assert.Equal(t, RoomMembers, f.ok(t, "u1", GetRoomMembers, map[string]string{"roomId": "backend"}, &members))
	require.Len(t, members.Members, 1)
	assert.Equal(t, "alice", members.Members[0].Username)
	assert.True(t, members.Members[0].IsOnline)

	var history roomMessagesResult
	assert.Equal(t, RoomMessages, f.ok(t, "u1", GetMessages, map[string]string{"type": "room", "roomId": "backend"}, &history))
	require.Len(t, history.Messages, 3)
	assert.Equal(t, "hello", history.Messages[2].Content)
}

func TestDirectMessages(t *testing.T) {
	f := newFixture(t, nil)
	f.register(t, "alice-id", "alice")
	f.register(t, "bob-id", "bob")

	f.ok(t, "alice-id", SendMessage, map[string]string{
		"type": "dm", "recipientId": "bob-id", "content": "hi bob", "username": "alice",
	}, nil)

	var dm dmMessagesResult
	assert.Equal(t, DMMessages, f.ok(t, "bob-id", GetMessages, map[string]string{"type": "dm", "recipientId": "alice-id"}, &dm))
	assert.Equal(t, "alice-id", dm.RecipientID)
	require.Len(t, dm.Messages, 1)
	assert.Equal(t, "hi bob", dm.Messages[0].Content)

	// bob cannot edit alice's message
	_, text := f.fail(t, "bob-id", EditMessage, map[string]string{
		"messageId": dm.Messages[0].ID, "content": "hacked", "recipientId": "alice-id",
	})
	assert.Equal(t, "Message not found or unauthorized", text)

	var edited domain.Message
	assert.Equal(t, MessageEdited, f.ok(t, "alice-id", EditMessage, map[string]string{
		"messageId": dm.Messages[0].ID, "content": "hi bob!", "recipientId": "bob-id",
	}, &edited))
	assert.True(t, edited.Edited)
	assert.Equal(t, "hi bob!", edited.Content)

	var deleted message.Deleted
	assert.Equal(t, MessageDeleted, f.ok(t, "alice-id", DeleteMessage, map[string]string{
		"messageId": dm.Messages[0].ID, "recipientId": "bob-id",
	}, &deleted))
	assert.Equal(t, dm.Messages[0].ID, deleted.MessageID)

	_, text = f.fail(t, "alice-id", DeleteMessage, map[string]string{
		"messageId": dm.Messages[0].ID, "recipientId": "bob-id",
	})
	assert.Equal(t, "Message not found or unauthorized", text)
}

func TestRenameLosesAuthorship(t *testing.T) {
	f := newFixture(t, nil)
	f.register(t, "u1", "alice")

	var sent domain.Message
	f.ok(t, "u1", SendMessage, map[string]string{"type": "room", "roomId": "general", "content": "v1", "username": "alice"}, &sent)

	f.register(t, "u1", "alice2")

	_, text := f.fail(t, "u1", EditMessage, map[string]string{"messageId": sent.ID, "content": "v2", "roomId": "general"})
	assert.Equal(t, "Message not found or unauthorized", text)
}

func TestCreateAndSearchRooms(t *testing.T) {
	f := newFixture(t, nil)

	_, text := f.fail(t, "u1", CreateRoom, map[string]string{"name": "Go Lang"})
	assert.Equal(t, "User not found", text)

	f.register(t, "u1", "alice")

	var created room.Created
	assert.Equal(t, RoomCreated, f.ok(t, "u1", CreateRoom, map[string]string{"name": "Go Lang", "description": "gophers"}, &created))
	assert.Equal(t, "go-lang", created.ID)
	assert.Equal(t, []string{"u1"}, created.Members)
	assert.Equal(t, 1, created.MemberCount)
	assert.True(t, created.IsPublic)
	assert.False(t, created.IsPrivate)
	assert.InDelta(t, time.Now().UnixMilli(), created.CreatedAt, float64(time.Minute.Milliseconds()))

	_, text = f.fail(t, "u1", CreateRoom, map[string]string{"name": "go lang"})
	assert.Equal(t, "Room already exists", text)

	var found searchResultsResult
	assert.Equal(t, SearchResults, f.ok(t, "u1", SearchRooms, map[string]string{"query": "GOPHER"}, &found))
	assert.Equal(t, "gopher", found.Query)
	require.Len(t, found.Rooms, 1)
	assert.Equal(t, "go-lang", found.Rooms[0].ID)
	assert.True(t, found.Rooms[0].IsMember)

	var all searchResultsResult
	f.ok(t, "", SearchRooms, nil, &all)
	assert.Len(t, all.Rooms, 6)
}

func TestAnonymousRoomList(t *testing.T) {
	f := newFixture(t, nil)

	var rooms roomListResult
	f.ok(t, "", GetRooms, nil, &rooms)
	require.Len(t, rooms.Rooms, 5)
	for _, r := range rooms.Rooms {
		assert.False(t, r.IsMember)
		assert.False(t, r.IsJoined)
	}
}

func TestPerUserCommandLimit(t *testing.T) {
	limiter := ratelimiter.NewFixedWindow(2, time.Hour)
	t.Cleanup(limiter.Close)

	f := newFixture(t, limiter)
	f.register(t, "u1", "alice")
	f.ok(t, "u1", GetRooms, nil, nil)

	resp, err := http.Post(f.srv.URL, "application/json",
		strings.NewReader(`{"type":"get_rooms","userId":"u1"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	// other users have their own window
	f.register(t, "u2", "bob")
}
