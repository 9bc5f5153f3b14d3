package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/siyabongaprospersithole/support-ticket-system/internal/api/http"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/api/http/handlers"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/auth"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/config"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/events"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/notifier"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/observability"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/persistence"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/repository"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/service"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)

	dispatcher := events.NewInMemoryDispatcher(logger)
	activityService := service.NewActivityService(activityRepo, ticketRepo, commentRepo, logger)

	// Durable queue when redis is reachable, in-process channel otherwise.
	var queue notifier.Queue
	if redis.Available(ctx) {
		queue = notifier.NewRedisQueue(redis.Client)
		logger.Info("notification queue: redis")
	} else {
		queue = notifier.NewMemoryQueue(cfg.Notification.QueueSize)
		logger.Info("notification queue: in-memory")
	}

	var mailer notifier.Mailer
	if cfg.Notification.Enabled && cfg.Notification.SMTP.Host != "" {
		mailer = notifier.NewSMTPMailer(cfg.Notification.SMTP, cfg.Notification.EmailFrom)
	} else {
		mailer = notifier.NewLogMailer(logger)
	}

	deliverer := notifier.NewDeliverer(notifier.DelivererOptions{
		Queue:     queue,
		Mailer:    mailer,
		Templates: notifier.Templates{BaseURL: cfg.App.BaseURL},
		Tries:     cfg.Notification.Tries,
		Backoff:   cfg.Notification.Backoff(),
		Logger:    logger,
		Metrics:   metrics,
	})

	recipients := service.NewRecipientResolver(userRepo, commentRepo)
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		Dispatcher:  dispatcher,
		Queue:       queue,
		Recipients:  recipients,
		TicketRepo:  ticketRepo,
		CommentRepo: commentRepo,
		UserRepo:    userRepo,
	}, logger, cfg.Notification)

	worker.StartNotificationWorker(ctx, notificationService, deliverer, cfg.Notification.Workers)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{UserRepo: userRepo})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		CommentRepo: commentRepo,
		Activity:    activityService,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	commentService := service.NewCommentService(service.CommentDependencies{
		CommentRepo: commentRepo,
		TicketRepo:  ticketRepo,
		UserRepo:    userRepo,
		Activity:    activityService,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})

	authMiddleware := auth.NewAuthMiddleware(authService.Tokens(), userRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService, commentService),
		Activities:     handlers.NewActivitiesHandler(activityService, ticketRepo, userRepo, logger),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.ShutdownWithTimeout(10 * time.Second)
	cancel()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
