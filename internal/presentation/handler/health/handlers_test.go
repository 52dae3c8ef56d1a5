package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hilthontt/devtea/internal/infrastructure/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeededHandler(t *testing.T) *Handler {
	t.Helper()

	store := repository.NewConversationStore(0)
	require.NoError(t, repository.SeedDefaultRooms(context.Background(), store, time.Now()))
	return NewHandler(store, "test", "1.2.3")
}

func getHealth(t *testing.T, h *Handler) (int, healthResponse) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.GetHealth(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	var body healthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return rec.Code, body
}

func TestGetHealth(t *testing.T) {
	h := newSeededHandler(t)

	code, body := getHealth(t, h)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, statusOK, body.Status)
	assert.Equal(t, "test", body.Environment)
	assert.Equal(t, "1.2.3", body.Version)
	assert.Equal(t, statusOK, body.Checks["memory"].Status)
	assert.Equal(t, "5 rooms", body.Checks["store"].Details)

	_, err := time.Parse(time.RFC3339, body.Timestamp)
	assert.NoError(t, err)
}

func TestGetHealthHeapTooLarge(t *testing.T) {
	h := newSeededHandler(t)
	h.readHeap = func() uint64 { return defaultMaxHeapBytes + 1 }

	code, body := getHealth(t, h)

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, statusUnhealthy, body.Status)
	assert.Equal(t, statusUnhealthy, body.Checks["memory"].Status)
	assert.Equal(t, statusOK, body.Checks["store"].Status)
}

func TestGetHealthShuttingDown(t *testing.T) {
	h := newSeededHandler(t)
	h.MarkShuttingDown()

	code, body := getHealth(t, h)

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, statusUnhealthy, body.Status)
}
