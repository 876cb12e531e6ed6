// seed creates or refreshes the bootstrap owner so the first admin can sign in.
// Re-running it resets the owner's PIN to SEED_OWNER_PIN.
package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/crew-auth/internal/auth"
	"github.com/spec-kit/crew-auth/internal/config"
	"github.com/spec-kit/crew-auth/internal/observability"
	"github.com/spec-kit/crew-auth/internal/persistence"
	"github.com/spec-kit/crew-auth/internal/repository"
	"github.com/spec-kit/crew-auth/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Postgres.DSN == "" {
		log.Fatal("POSTGRES_DSN is not set; create a .env or export POSTGRES_DSN")
	}
	if cfg.Seed.OwnerPIN == "" {
		log.Fatal("SEED_OWNER_PIN is not set")
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pg.Close()

	admin := service.NewAdminService(service.AdminDependencies{
		Employees: repository.NewEmployeeRepository(pg.PoolHandle()),
		Hasher:    auth.NewPinHasher(cfg.Auth.BcryptCost),
		Logger:    logger,
	})

	owner, err := admin.BootstrapOwner(ctx, cfg.Seed.OwnerID, cfg.Seed.OwnerName, cfg.Seed.OwnerPIN)
	if err != nil {
		logger.Fatal("seed owner", zap.Error(err))
	}
	logger.Info("owner ready", zap.String("employee_id", owner.ID), zap.String("name", owner.Name))
}
