package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/researcher-directory/internal/api/http"
	"github.com/spec-kit/researcher-directory/internal/api/http/handlers"
	"github.com/spec-kit/researcher-directory/internal/auth"
	"github.com/spec-kit/researcher-directory/internal/config"
	"github.com/spec-kit/researcher-directory/internal/events"
	"github.com/spec-kit/researcher-directory/internal/observability"
	"github.com/spec-kit/researcher-directory/internal/persistence"
	"github.com/spec-kit/researcher-directory/internal/ratelimit"
	"github.com/spec-kit/researcher-directory/internal/repository"
	"github.com/spec-kit/researcher-directory/internal/service"
	"github.com/spec-kit/researcher-directory/internal/worker"
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
	researcherRepo := repository.NewResearcherRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(dispatcher, logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		ResearcherRepo:    researcherRepo,
		PasswordResetRepo: resetRepo,
		Dispatcher:        dispatcher,
	})
	directoryService := service.NewDirectoryService(*cfg, researcherRepo, dispatcher)

	sessions := auth.NewSessionTransport(cfg.App.Production(), cfg.Auth.SessionTTL())
	gate := auth.NewGate(authService.TokenManager(), sessions, auth.DefaultRules)

	limits := ratelimit.Limits{
		ratelimit.ClassLogin:      cfg.RateLimit.LoginMax,
		ratelimit.ClassCreateUser: cfg.RateLimit.CreateUserMax,
		ratelimit.ClassSearch:     cfg.RateLimit.SearchMax,
		ratelimit.ClassDefault:    cfg.RateLimit.DefaultMax,
	}
	var limiter ratelimit.Limiter
	if cfg.RateLimit.Backend == "redis" {
		limiter = ratelimit.NewRedis(redis.Client, limits, cfg.RateLimit.Window(), logger)
	} else {
		limiter = ratelimit.NewMemory(limits, cfg.RateLimit.Window())
	}

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:    handlers.NewAuthHandler(authService, sessions),
		Users:   handlers.NewUsersHandler(directoryService),
		Admin:   handlers.NewAdminHandler(directoryService),
		Profile: handlers.NewProfileHandler(directoryService),
		Gate:    gate,
		Limiter: limiter,
		OnRateLimited: func(addr string, class ratelimit.Class, retryAfter int) {
			_ = dispatcher.Publish(ctx, events.Event{
				ID:        uuid.NewString(),
				Type:      events.EventRateLimitExceeded,
				Timestamp: time.Now(),
				Payload: events.RateLimitPayload{
					ClientAddress: addr,
					Class:         string(class),
					RetryAfterSec: retryAfter,
				},
			})
		},
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
