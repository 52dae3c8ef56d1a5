package apisdk

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/hilthontt/devtea/api-sdk/option"
	"github.com/hilthontt/devtea/internal/application/usecases/membership"
	"github.com/hilthontt/devtea/internal/application/usecases/message"
	"github.com/hilthontt/devtea/internal/application/usecases/room"
	"github.com/hilthontt/devtea/internal/application/usecases/user"
	"github.com/hilthontt/devtea/internal/domain"
	"github.com/hilthontt/devtea/internal/infrastructure/configs"
	"github.com/hilthontt/devtea/internal/infrastructure/logging"
	"github.com/hilthontt/devtea/internal/infrastructure/metrics"
	"github.com/hilthontt/devtea/internal/infrastructure/repository"
	"github.com/hilthontt/devtea/internal/infrastructure/ws"
	"github.com/hilthontt/devtea/internal/presentation/api"
	commandsHandler "github.com/hilthontt/devtea/internal/presentation/handler/commands"
	healthHandler "github.com/hilthontt/devtea/internal/presentation/handler/health"
	roomsHandler "github.com/hilthontt/devtea/internal/presentation/handler/rooms"
	streamHandler "github.com/hilthontt/devtea/internal/presentation/handler/stream"
	usersHandler "github.com/hilthontt/devtea/internal/presentation/handler/users"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// newTestClient runs the real server in process and returns a client
// pointed at it.
func newTestClient(t *testing.T, opts ...option.RequestOption) *Client {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := logging.NewNopLogger()
	store := repository.NewConversationStore(0)
	require.NoError(t, repository.SeedDefaultRooms(ctx, store, time.Now()))

	core := ws.NewCore(logger, 64)
	go core.Run(ctx)

	publisher := domain.NopRoomEventPublisher{}
	m := metrics.New()

	roomUseCase := room.NewRoomUseCase(store, core, publisher, logger)
	commands, err := commandsHandler.NewHandler(
		membership.NewMembershipUseCase(store, core, publisher, logger, time.Minute),
		message.NewMessageUseCase(store, core, publisher, logger),
		roomUseCase,
		nil,
		m,
		logger,
	)
	require.NoError(t, err)

	userUseCase, err := user.NewUserUseCase(repository.NewIdentityRepository(), logger)
	require.NoError(t, err)

	cfg := configs.Config{
		App: configs.AppConfig{Name: "devtea-sdk-test", Environment: "test", Version: "0.0.1"},
	}
	app := api.NewApplication(cfg, api.Handlers{
		Commands: commands,
		Health:   healthHandler.NewHandler(store, cfg.App.Environment, cfg.App.Version),
		Rooms:    roomsHandler.NewHandler(roomUseCase, nil, logger),
		Users:    usersHandler.NewHandler(userUseCase, logger),
		Stream:   streamHandler.NewHandler(core, store, 16, nil, logger),
	}, m, logger, nil)

	srv := httptest.NewServer(app.Mount())
	t.Cleanup(srv.Close)

	defaults := []option.RequestOption{
		option.WithBaseURL(srv.URL + "/api"),
		option.WithRetryDelay(time.Millisecond),
	}
	return NewClient(append(defaults, opts...)...)
}

// commandOf peeks at the command type of an outgoing request.
func commandOf(r *http.Request) string {
	if r.GetBody == nil {
		return ""
	}
	body, err := r.GetBody()
	if err != nil {
		return ""
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return ""
	}
	return gjson.GetBytes(raw, "type").String()
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) handle(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) find(eventType string) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, event := range r.events {
		if event.Type == eventType {
			return event, true
		}
	}
	return Event{}, false
}

func (r *recorder) has(eventType string) bool {
	_, ok := r.find(eventType)
	return ok
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.events))
	for _, event := range r.events {
		types = append(types, event.Type)
	}
	return types
}
