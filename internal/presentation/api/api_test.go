package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hilthontt/devtea/internal/application/usecases/membership"
	"github.com/hilthontt/devtea/internal/application/usecases/message"
	"github.com/hilthontt/devtea/internal/application/usecases/room"
	"github.com/hilthontt/devtea/internal/application/usecases/user"
	"github.com/hilthontt/devtea/internal/domain"
	"github.com/hilthontt/devtea/internal/infrastructure/configs"
	"github.com/hilthontt/devtea/internal/infrastructure/logging"
	"github.com/hilthontt/devtea/internal/infrastructure/metrics"
	"github.com/hilthontt/devtea/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/devtea/internal/infrastructure/repository"
	commandsHandler "github.com/hilthontt/devtea/internal/presentation/handler/commands"
	healthHandler "github.com/hilthontt/devtea/internal/presentation/handler/health"
	roomsHandler "github.com/hilthontt/devtea/internal/presentation/handler/rooms"
	usersHandler "github.com/hilthontt/devtea/internal/presentation/handler/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, limiter ratelimiter.Limiter) (*Application, *httptest.Server) {
	t.Helper()

	ctx := context.Background()
	logger := logging.NewNopLogger()
	store := repository.NewConversationStore(0)
	require.NoError(t, repository.SeedDefaultRooms(ctx, store, time.Now()))

	notifier := domain.NopNotifier{}
	publisher := domain.NopRoomEventPublisher{}
	m := metrics.New()

	roomUseCase := room.NewRoomUseCase(store, notifier, publisher, logger)
	commands, err := commandsHandler.NewHandler(
		membership.NewMembershipUseCase(store, notifier, publisher, logger, 0),
		message.NewMessageUseCase(store, notifier, publisher, logger),
		roomUseCase,
		nil,
		m,
		logger,
	)
	require.NoError(t, err)

	userUseCase, err := user.NewUserUseCase(repository.NewIdentityRepository(), logger)
	require.NoError(t, err)

	cfg := configs.Config{
		App:  configs.AppConfig{Name: "devtea-test", Environment: "test", Version: "0.0.1"},
		HTTP: configs.HTTPConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}

	app := NewApplication(cfg, Handlers{
		Commands: commands,
		Health:   healthHandler.NewHandler(store, cfg.App.Environment, cfg.App.Version),
		Rooms:    roomsHandler.NewHandler(roomUseCase, nil, logger),
		Users:    usersHandler.NewHandler(userUseCase, logger),
	}, m, logger, limiter)

	srv := httptest.NewServer(app.Mount())
	t.Cleanup(srv.Close)
	return app, srv
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestRoutes(t *testing.T) {
	_, srv := newTestApp(t, nil)

	code, body := get(t, srv.URL+"/api/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"environment":"test"`)

	code, body = get(t, srv.URL+"/api/rooms")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"id":"general"`)

	code, _ = get(t, srv.URL+"/api/users?search=nobody")
	assert.Equal(t, http.StatusOK, code)

	code, _ = get(t, srv.URL+"/api/stream?userId=u1&roomId=general")
	assert.Equal(t, http.StatusNotFound, code)

	code, body = get(t, srv.URL+"/debug/vars")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "memstats")

	code, body = get(t, srv.URL+"/swagger/doc.json")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "DevTea Chat API")
}

func TestCommandAliases(t *testing.T) {
	_, srv := newTestApp(t, nil)

	for _, path := range []string{"/api/websocket", "/api/commands"} {
		resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(`{"type":"get_rooms"}`))
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Contains(t, string(body), `"type":"rooms_list"`, path)
	}
}

func TestMetricsEndpointCountsRequests(t *testing.T) {
	_, srv := newTestApp(t, nil)

	get(t, srv.URL+"/api/rooms")
	resp, err := http.Post(srv.URL+"/api/commands", "application/json", strings.NewReader(`{"type":"get_rooms"}`))
	require.NoError(t, err)
	resp.Body.Close()

	code, body := get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `devtea_http_requests_total{method="GET",route="/api/rooms",status="200"} 1`)
	assert.Contains(t, body, `devtea_commands_total{outcome="ok",type="get_rooms"} 1`)
}

func TestCors(t *testing.T) {
	_, srv := newTestApp(t, nil)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/commands", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "http://evil.example")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter(t *testing.T) {
	limiter, err := ratelimiter.New(ratelimiter.Options{MaxRatePerSecond: 1, MaxBurst: 2})
	require.NoError(t, err)

	_, srv := newTestApp(t, limiter)

	request := func() *http.Response {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/rooms", nil)
		require.NoError(t, err)
		req.Header.Set("X-RateLimit-Key", "client-1")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return resp
	}

	assert.Equal(t, http.StatusOK, request().StatusCode)
	assert.Equal(t, http.StatusOK, request().StatusCode)

	resp := request()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
	assert.Equal(t, "2", resp.Header.Get("X-RateLimit-Limit"))

	// metrics are not rate limited
	code, _ := get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, code)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	app, _ := newTestApp(t, nil)
	app.config.HTTP.Host = "127.0.0.1"
	app.config.HTTP.Port = 0

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx, app.Mount()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"/api/rooms/", "/api/rooms"},
		{"/api/rooms", "/api/rooms"},
		{"/api/rooms/{roomId}/audit", "/api/rooms/{roomId}/audit"},
		{"/", "/"},
		{"", "unmatched"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, routeLabel(tt.pattern))
		})
	}
}
