package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/classifier"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/worker"
	"github.com/spec-kit/helpdesk-service/pkg/util/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()
	validator := validation.MustNew()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, cfg.App.Name, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	var (
		userRepo    repository.UserRepository
		ticketRepo  repository.TicketRepository
		messageRepo repository.TicketMessageRepository
	)
	if pool := pg.PoolHandle(); pool != nil {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		metrics.ObservePool(pg.Stats)
		userRepo = repository.NewUserRepository(pool)
		ticketRepo = repository.NewTicketRepository(pool)
		messageRepo = repository.NewTicketMessageRepository(pool)
	} else {
		store := repository.NewMemoryStore()
		userRepo, ticketRepo, messageRepo = store.Users(), store.Tickets(), store.Messages()
	}

	redis, err := persistence.NewRedis(ctx, cfg.Redis, cfg.App.Name, logger)
	if err != nil {
		logger.Fatal("failed to configure redis", zap.Error(err))
	}
	defer redis.Close()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience, cfg.Auth.TokenTTL())
	mediator := auth.NewMediator()

	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartActivityWorker(service.NewActivityService(dispatcher, logger))
	forwarders, closeForwarders := buildForwarders(cfg, redis, metrics, logger)
	worker.StartEventForwarders(dispatcher, forwarders...)

	owners := service.NewOwnerCache(ticketRepo, cfg.Cache.OwnerEntries, cfg.Cache.OwnerTTL(), metrics)

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   userRepo,
		Tokens:     tokens,
		BcryptCost: cfg.Auth.BcryptCost,
		Validator:  validator,
		Logger:     logger,
		Metrics:    metrics,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		Classifier: buildClassifier(cfg.Classifier, logger),
		Mediator:   mediator,
		Owners:     owners,
		Dispatcher: dispatcher,
		Validator:  validator,
		Logger:     logger,
		Metrics:    metrics,
	})
	messageService := service.NewMessageService(service.MessageDependencies{
		MessageRepo: messageRepo,
		Owners:      owners,
		Mediator:    mediator,
		Dispatcher:  dispatcher,
		Validator:   validator,
		Logger:      logger,
		Metrics:     metrics,
	})

	app := httptransport.NewApp(cfg.App.Name, cfg.HTTP.BodyLimitBytes, logger, metrics)
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:         logger,
		Metrics:        metrics,
		RequestTimeout: cfg.HTTP.RequestTimeout(),
		AllowOrigins:   cfg.CORS.Origins(),
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Messages:       handlers.NewMessagesHandler(messageService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, logger).WithMetrics(metrics),
		Mediator:       mediator,
		Metrics:        metrics,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer drainCancel()
	closeForwarders(drainCtx)
}

func buildClassifier(cfg config.ClassifierConfig, logger *zap.Logger) classifier.Classifier {
	if strings.EqualFold(cfg.Mode, "http") {
		logger.Info("using http classifier", zap.String("url", cfg.URL))
		return classifier.NewHTTPClassifier(cfg.URL, cfg.Timeout(), logger)
	}
	logger.Info("using keyword classifier")
	return classifier.NewKeywordClassifier()
}

// buildForwarders returns a queued handler per configured broker and a
// function that drains the queues and then closes the broker connections.
func buildForwarders(cfg *config.Config, redis *persistence.Redis, metrics *observability.Metrics, logger *zap.Logger) ([]events.EventHandler, func(context.Context)) {
	timeout := time.Duration(cfg.Events.PublishTimeout) * time.Second
	var (
		queues     []*events.AsyncForwarder
		connection []func()
	)

	if redis != nil && redis.Client != nil {
		publisher := events.NewRedisPublisher(redis.Client, cfg.Events.RedisChannel, timeout)
		queues = append(queues, events.NewAsyncForwarder("redis", publisher.Handle, cfg.Events.ForwardBuffer, logger, metrics))
		logger.Info("forwarding events to redis", zap.String("channel", cfg.Events.RedisChannel))
	}

	if cfg.Events.AMQPURL != "" {
		publisher, err := events.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.AMQPExchange, timeout)
		if err != nil {
			logger.Warn("amqp forwarding disabled", zap.Error(err))
		} else {
			queues = append(queues, events.NewAsyncForwarder("amqp", publisher.Handle, cfg.Events.ForwardBuffer, logger, metrics))
			connection = append(connection, publisher.Close)
			logger.Info("forwarding events to amqp", zap.String("exchange", cfg.Events.AMQPExchange))
		}
	}

	handlers := make([]events.EventHandler, 0, len(queues))
	for _, queue := range queues {
		handlers = append(handlers, queue.Handle)
	}
	return handlers, func(ctx context.Context) {
		for _, queue := range queues {
			if err := queue.Close(ctx); err != nil {
				logger.Warn("event queue not drained", zap.Error(err))
			}
		}
		for _, closeFn := range connection {
			closeFn()
		}
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
