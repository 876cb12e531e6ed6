package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/crew-auth/internal/api/http"
	"github.com/spec-kit/crew-auth/internal/api/http/handlers"
	"github.com/spec-kit/crew-auth/internal/auth"
	"github.com/spec-kit/crew-auth/internal/config"
	"github.com/spec-kit/crew-auth/internal/events"
	"github.com/spec-kit/crew-auth/internal/notify"
	"github.com/spec-kit/crew-auth/internal/observability"
	"github.com/spec-kit/crew-auth/internal/persistence"
	"github.com/spec-kit/crew-auth/internal/repository"
	"github.com/spec-kit/crew-auth/internal/service"
	"github.com/spec-kit/crew-auth/internal/worker"
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

	deps := map[string]handlers.Pinger{}

	var employees repository.EmployeeRepository
	if cfg.Postgres.DSN != "" {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(cfg.Postgres.DSN, "up", logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()
		deps["postgres"] = pg
		employees = repository.NewEmployeeRepository(pg.PoolHandle())
	} else {
		if cfg.App.Env == "production" {
			logger.Fatal("POSTGRES_DSN is required in production")
		}
		logger.Warn("POSTGRES_DSN not set; using in-memory credential store")
		employees = repository.NewMemoryEmployeeRepository()
	}

	var revocations auth.RevocationList
	if cfg.Redis.Enabled {
		redis := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		deps["redis"] = redis
		revocations = auth.NewRedisRevocationList(redis.Client)
	} else {
		logger.Warn("redis disabled; logout will not revoke tokens")
	}

	var publisher notify.Publisher
	if cfg.MQTT.Enabled() {
		mqttPublisher, err := notify.NewMQTTPublisher(cfg.MQTT, logger)
		if err != nil {
			logger.Warn("mqtt unavailable; auth events will only be logged", zap.Error(err))
		} else {
			defer mqttPublisher.Close()
			publisher = mqttPublisher
		}
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, publisher, logger))

	hasher := auth.NewPinHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL(), cfg.Auth.TokenIssuer)

	authService := service.NewAuthService(service.AuthDependencies{
		Employees:  employees,
		Hasher:     hasher,
		Tokens:     tokens,
		Revoked:    revocations,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	adminService := service.NewAdminService(service.AdminDependencies{
		Employees:  employees,
		Hasher:     hasher,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	if cfg.Postgres.DSN == "" && cfg.Seed.OwnerPIN != "" {
		if _, err := adminService.BootstrapOwner(ctx, cfg.Seed.OwnerID, cfg.Seed.OwnerName, cfg.Seed.OwnerPIN); err != nil {
			logger.Fatal("failed to seed owner", zap.Error(err))
		}
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps),
		Auth:           handlers.NewAuthHandler(authService, adminService),
		Admin:          handlers.NewAdminHandler(adminService),
		Catalog:        handlers.NewCatalogHandler(),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, revocations),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	logger.Info("request metrics", zap.Any("snapshot", metrics.Snapshot()))
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
