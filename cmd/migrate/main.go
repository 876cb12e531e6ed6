// migrate applies the embedded employees schema to POSTGRES_DSN.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/spec-kit/crew-auth/internal/config"
	"github.com/spec-kit/crew-auth/internal/observability"
	"github.com/spec-kit/crew-auth/internal/persistence"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if cfg.Postgres.DSN == "" {
		fmt.Fprintln(os.Stderr, "POSTGRES_DSN is not set; create a .env or export POSTGRES_DSN")
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if err := persistence.RunMigrations(cfg.Postgres.DSN, *direction, logger); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}
