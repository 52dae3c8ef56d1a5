package apisdk

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"testing"

	"github.com/hilthontt/devtea/api-sdk/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomService(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	rooms, err := client.Rooms.List(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 5)
	assert.Equal(t, "general", rooms[0].ID)
	assert.Equal(t, "General", rooms[0].Name)

	_, err = client.Rooms.AuditLog(ctx, "general", 10)
	var command *CommandError
	require.ErrorAs(t, err, &command)
	assert.Equal(t, http.StatusNotFound, command.StatusCode)
	assert.Equal(t, "Audit log is disabled", command.Message)

	_, err = client.Rooms.AuditLog(ctx, "", 0)
	assert.ErrorIs(t, err, ErrMissingIDParameter)
}

func TestUserService(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	ada, err := client.Users.New(ctx, UserNewParams{Email: "ada@example.com", Name: "Ada Lovelace"})
	require.NoError(t, err)
	assert.Equal(t, "adalovelace", ada.Username)
	assert.NotEmpty(t, ada.UserCode)

	again, err := client.Users.New(ctx, UserNewParams{Name: "Ada Lovelace"})
	require.NoError(t, err)
	assert.Equal(t, "adalovelace1", again.Username)

	found, err := client.Users.Search(ctx, "ADA")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	none, err := client.Users.Search(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = client.Users.New(ctx, UserNewParams{Email: "not-an-email", Name: "Grace"})
	assert.True(t, IsCommandError(err))

	require.NoError(t, client.Users.Delete(ctx, ada.ID))

	err = client.Users.Delete(ctx, ada.ID)
	var command *CommandError
	require.ErrorAs(t, err, &command)
	assert.Equal(t, http.StatusNotFound, command.StatusCode)
	assert.Equal(t, "User not found", command.Message)
}

func TestHealthService(t *testing.T) {
	health, err := newTestClient(t).Health.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test", health.Environment)
	assert.Equal(t, "0.0.1", health.Version)
	assert.NotEmpty(t, health.Status)
}

func TestDebugLog(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	client := newTestClient(t, option.WithDebugLog(log.New(&buf, "", 0)))

	_, err := client.Chat.Register(ctx, "alice", "Alice")
	require.NoError(t, err)
	_, err = client.Users.New(ctx, UserNewParams{Email: "ada@example.com", Name: "Ada Lovelace"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "-> POST /api/websocket register user=alice")
	assert.Contains(t, out, "<- POST /api/websocket register user=alice 200 after")
	assert.Contains(t, out, `"type":"registered"`)
	assert.Contains(t, out, "-> POST /api/users")
	assert.Contains(t, out, `"email":"[REDACTED]"`)
	assert.NotContains(t, out, "ada@example.com")
}
