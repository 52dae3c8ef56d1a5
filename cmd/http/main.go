package main

import (
	"context"
	"expvar"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hilthontt/devtea/internal/application/usecases/membership"
	"github.com/hilthontt/devtea/internal/application/usecases/message"
	"github.com/hilthontt/devtea/internal/application/usecases/room"
	"github.com/hilthontt/devtea/internal/application/usecases/user"
	"github.com/hilthontt/devtea/internal/domain"
	"github.com/hilthontt/devtea/internal/infrastructure/configs"
	"github.com/hilthontt/devtea/internal/infrastructure/events"
	"github.com/hilthontt/devtea/internal/infrastructure/logging"
	"github.com/hilthontt/devtea/internal/infrastructure/messaging"
	"github.com/hilthontt/devtea/internal/infrastructure/metrics"
	"github.com/hilthontt/devtea/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/devtea/internal/infrastructure/repository"
	"github.com/hilthontt/devtea/internal/infrastructure/tracing"
	"github.com/hilthontt/devtea/internal/infrastructure/ws"
	"github.com/hilthontt/devtea/internal/persistence/db"
	persistence "github.com/hilthontt/devtea/internal/persistence/repository"
	"github.com/hilthontt/devtea/internal/presentation/api"
	"github.com/hilthontt/devtea/internal/presentation/handler/commands"
	"github.com/hilthontt/devtea/internal/presentation/handler/health"
	"github.com/hilthontt/devtea/internal/presentation/handler/rooms"
	"github.com/hilthontt/devtea/internal/presentation/handler/stream"
	"github.com/hilthontt/devtea/internal/presentation/handler/users"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const eventQueueSize = 256

// @title           DevTea Chat API
// @version         1.0
// @description     Chat rooms and direct messages for developers.
// @BasePath        /api
func main() {
	fs := flag.NewFlagSet("devtea", flag.ExitOnError)
	configPath, err := configs.DetermineConfigPath(fs, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	shutdownTracer, err := tracing.InitTracer(cfg.Tracing)
	if err != nil {
		log.Fatalf("Failed to initialize the tracer: %v", err)
	}

	logger, err := logging.NewLogger(&cfg.Logger)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(shutdownCtx)
	}()

	if cfg.Sentry.DSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.App.Environment,
			Release:          cfg.App.Version,
			EnableTracing:    cfg.Sentry.TracesSampleRate > 0,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
		})
		if err != nil {
			logger.Fatal(logging.General, logging.Startup, "failed to initialize sentry", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}
	}

	store := repository.NewConversationStore(cfg.MessageStore.Capacity)
	if err := repository.SeedDefaultRooms(ctx, store, time.Now()); err != nil {
		logger.Fatal(logging.Store, logging.Startup, "failed to seed rooms", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}

	wsCore := ws.NewCore(logger, eventQueueSize)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		wsCore.Run(gctx)
		return nil
	})

	var publisher domain.RoomEventPublisher = domain.NopRoomEventPublisher{}
	var rabbitmq *messaging.RabbitMQ
	if cfg.Events.Enabled {
		rabbitmq, err = messaging.NewRabbitMQ(cfg.Events.AmqpURL)
		if err != nil {
			logger.Fatal(logging.RabbitMQ, logging.Startup, "failed to connect to rabbitmq", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}
		defer rabbitmq.Close()

		logger.Info(logging.RabbitMQ, logging.Startup, "rabbitmq connection established", nil)
		publisher = events.NewRoomPublisher(rabbitmq)
	}

	var audit domain.RoomAuditRepository
	if cfg.Audit.Enabled {
		mongoClient, err := db.NewMongoClient(ctx, &db.MongoConfig{
			URI:               cfg.Audit.MongoURI,
			Database:          cfg.Audit.Database,
			ConnectionTimeout: cfg.Audit.ConnectionTimeout,
		})
		if err != nil {
			logger.Fatal(logging.MongoDB, logging.Startup, "failed to connect to mongodb", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}
		defer func() {
			_ = db.DisconnectMongo(context.Background(), mongoClient)
		}()

		audit = persistence.NewRoomAuditLogRepository(mongoClient.Database(cfg.Audit.Database))
		if err := audit.EnsureIndexes(ctx); err != nil {
			logger.Warn(logging.MongoDB, logging.Audit, "failed to create audit indexes", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}

		if rabbitmq != nil {
			consumer := events.NewRoomConsumer(rabbitmq, audit, logger)
			g.Go(func() error {
				return consumer.Listen(gctx)
			})
		}
	}

	membershipUseCase := membership.NewMembershipUseCase(store, wsCore, publisher, logger, cfg.Presence.OnlineWindow)
	messageUseCase := message.NewMessageUseCase(store, wsCore, publisher, logger)
	roomUseCase := room.NewRoomUseCase(store, wsCore, publisher, logger)
	userUseCase, err := user.NewUserUseCase(repository.NewIdentityRepository(), logger)
	if err != nil {
		logger.Fatal(logging.General, logging.Startup, "failed to create user use case", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}

	appMetrics := metrics.New()
	appMetrics.WatchDroppedEvents(wsCore.Dropped)
	appMetrics.WatchOnlineSessions(func() int {
		online, err := membershipUseCase.OnlineUsers(context.Background())
		if err != nil {
			return 0
		}
		return len(online)
	})

	var perUser *ratelimiter.FixedWindow
	if cfg.RateLimiter.PerUserLimit > 0 {
		perUser = ratelimiter.NewFixedWindow(cfg.RateLimiter.PerUserLimit, cfg.RateLimiter.PerUserWindow)
		defer perUser.Close()
	}

	commandHandler, err := commands.NewHandler(membershipUseCase, messageUseCase, roomUseCase, perUser, appMetrics, logger)
	if err != nil {
		logger.Fatal(logging.General, logging.Startup, "failed to create command handler", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}

	handlers := api.Handlers{
		Commands: commandHandler,
		Health:   health.NewHandler(store, cfg.App.Environment, cfg.App.Version),
		Rooms:    rooms.NewHandler(roomUseCase, audit, logger),
		Users:    users.NewHandler(userUseCase, logger),
	}
	if cfg.Stream.Enabled {
		handlers.Stream = stream.NewHandler(wsCore, store, cfg.Stream.Buffer, cfg.HTTP.AllowedOrigins, logger)
	}

	var limiter ratelimiter.Limiter
	if cfg.RateLimiter.Enabled {
		var cache ratelimiter.GetterSetter
		if cfg.RateLimiter.RedisAddr != "" {
			redisClient := redis.NewClient(&redis.Options{Addr: cfg.RateLimiter.RedisAddr})
			if err := redisClient.Ping(ctx).Err(); err != nil {
				logger.Fatal(logging.Redis, logging.Startup, "failed to connect to redis", map[logging.ExtraKey]any{
					logging.ErrorMessage: err.Error(),
				})
			}
			defer redisClient.Close()
			cache = ratelimiter.NewRedis(redisClient)
		}

		limiter, err = ratelimiter.New(ratelimiter.Options{
			MaxRatePerSecond: cfg.RateLimiter.MaxRatePerSecond,
			MaxBurst:         cfg.RateLimiter.MaxBurst,
			Cache:            cache,
			CacheTTL:         cfg.RateLimiter.CacheTTL,
			SourceHeaderKey:  cfg.RateLimiter.SourceHeaderKey,
		})
		if err != nil {
			logger.Fatal(logging.General, logging.RateLimiting, "failed to create rate limiter", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}
	}

	app := api.NewApplication(*cfg, handlers, appMetrics, logger, limiter)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	g.Go(func() error {
		return app.Run(gctx, mux)
	})

	if err := g.Wait(); err != nil {
		logger.Error(logging.General, logging.Shutdown, "server exited with error", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
}
