package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/hosting-portal/internal/api/http"
	"github.com/spec-kit/hosting-portal/internal/api/http/handlers"
	"github.com/spec-kit/hosting-portal/internal/auth"
	"github.com/spec-kit/hosting-portal/internal/config"
	"github.com/spec-kit/hosting-portal/internal/events"
	"github.com/spec-kit/hosting-portal/internal/identity"
	"github.com/spec-kit/hosting-portal/internal/observability"
	"github.com/spec-kit/hosting-portal/internal/persistence"
	"github.com/spec-kit/hosting-portal/internal/repository"
	"github.com/spec-kit/hosting-portal/internal/service"
	"github.com/spec-kit/hosting-portal/internal/worker"
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

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	responseRepo := repository.NewTicketResponseRepository(pool)

	tokenMgr := identity.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	provider := identity.NewHTTPProvider(cfg.Identity)
	evaluator := auth.NewEvaluator(userRepo, provider, logger)

	dispatcher := events.NewInMemoryDispatcher(logger)

	accountService := service.NewAccountService(cfg.Auth, userRepo, tokenMgr)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		ResponseRepo: responseRepo,
		UserRepo:     userRepo,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notify)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(tokenMgr, userRepo, evaluator)

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Accounts:       handlers.NewAccountsHandler(accountService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AdminTickets:   handlers.NewAdminTicketsHandler(ticketService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
