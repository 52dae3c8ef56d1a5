package api

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/hilthontt/devtea/docs"
	"github.com/hilthontt/devtea/internal/infrastructure/configs"
	"github.com/hilthontt/devtea/internal/infrastructure/logging"
	"github.com/hilthontt/devtea/internal/infrastructure/metrics"
	"github.com/hilthontt/devtea/internal/infrastructure/ratelimiter"
	commandsHandler "github.com/hilthontt/devtea/internal/presentation/handler/commands"
	healthHandler "github.com/hilthontt/devtea/internal/presentation/handler/health"
	roomsHandler "github.com/hilthontt/devtea/internal/presentation/handler/rooms"
	streamHandler "github.com/hilthontt/devtea/internal/presentation/handler/stream"
	usersHandler "github.com/hilthontt/devtea/internal/presentation/handler/users"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const shutdownTimeout = 5 * time.Second

type Handlers struct {
	Commands *commandsHandler.Handler
	Health   *healthHandler.Handler
	Rooms    *roomsHandler.Handler
	Users    *usersHandler.Handler

	// Stream is nil when the push feed is disabled.
	Stream *streamHandler.Handler
}

type Application struct {
	config      configs.Config
	handlers    Handlers
	metrics     *metrics.Metrics
	logger      logging.Logger
	ratelimiter ratelimiter.Limiter
}

// NewApplication assembles the HTTP surface. ratelimiter may be nil to turn
// per-address limiting off.
func NewApplication(
	config configs.Config,
	handlers Handlers,
	metrics *metrics.Metrics,
	logger logging.Logger,
	ratelimiter ratelimiter.Limiter,
) *Application {
	return &Application{
		config:      config,
		handlers:    handlers,
		metrics:     metrics,
		logger:      logger,
		ratelimiter: ratelimiter,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.loggerMiddleware)
	r.Use(app.metricsMiddleware)
	r.Use(middleware.Recoverer)
	if app.config.Sentry.DSN != "" {
		r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}
	r.Use(app.enableCors)

	r.Route("/api", func(r chi.Router) {
		if app.ratelimiter != nil {
			r.Use(app.rateLimiterMiddleware)
		}

		// the push feed outlives any request timeout
		if app.handlers.Stream != nil {
			r.Get("/stream", app.handlers.Stream.SubscribeHandler)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(app.requestTimeout()))

			r.Post("/websocket", app.handlers.Commands.HandleCommand)
			r.Post("/commands", app.handlers.Commands.HandleCommand)

			r.Route("/rooms", func(r chi.Router) {
				r.Get("/", app.handlers.Rooms.ListRoomsHandler)
				r.Get("/{roomId}/audit", app.handlers.Rooms.GetAuditLogHandler)
			})

			r.Route("/users", func(r chi.Router) {
				r.Post("/", app.handlers.Users.CreateUserHandler)
				r.Get("/", app.handlers.Users.SearchUsersHandler)
				r.Delete("/{userId}", app.handlers.Users.DeleteUserHandler)
			})

			r.Route("/auth/google", func(r chi.Router) {
				r.Post("/", app.handlers.Users.CreateUserHandler)
				r.Get("/", app.handlers.Users.SearchUsersHandler)
				r.Delete("/", app.handlers.Users.DeleteUserByBodyHandler)
			})

			r.Get("/health", app.handlers.Health.GetHealth)
			r.Get("/healthz", app.handlers.Health.GetHealth)
			r.Get("/ready", app.handlers.Health.GetHealth)
			r.Get("/live", app.handlers.Health.GetHealth)
		})
	})

	r.Handle("/metrics", app.metrics.Handler())
	r.Handle("/debug/vars", expvar.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	return otelhttp.NewHandler(r, app.config.App.Name)
}

func (app *Application) requestTimeout() time.Duration {
	if app.config.HTTP.RequestTimeout > 0 {
		return app.config.HTTP.RequestTimeout
	}
	return 60 * time.Second
}

// Run serves mux until ctx is cancelled, then drains in-flight requests.
func (app *Application) Run(ctx context.Context, mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.HTTP.Addr(),
		Handler:      mux,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error, 1)

	go func() {
		<-ctx.Done()

		app.handlers.Health.MarkShuttingDown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		app.logger.Info(logging.General, logging.Shutdown, "shutting down server", map[logging.ExtraKey]any{
			"Addr": srv.Addr,
		})

		shutdown <- srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(logging.General, logging.Startup, "server has started", map[logging.ExtraKey]any{
		"Addr": srv.Addr,
	})

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	sentry.Flush(2 * time.Second)

	app.logger.Info(logging.General, logging.Shutdown, "server has stopped", map[logging.ExtraKey]any{
		"Addr": srv.Addr,
	})

	return nil
}
