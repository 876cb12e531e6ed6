// crewctl is the crew sign-in client: it reads the roster, signs in with a
// PIN, keeps the local session and checks where the signed-in role may go.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spec-kit/crew-auth/internal/client"
	"github.com/spec-kit/crew-auth/internal/config"
	"github.com/spec-kit/crew-auth/internal/observability"
	"github.com/spec-kit/crew-auth/internal/session"
	apperrors "github.com/spec-kit/crew-auth/pkg/util"
)

func main() {
	cfg := config.LoadClient()

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	store, err := session.OpenStore(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "session store:", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := &CLI{
		API:      client.New(cfg.ServerURL, time.Duration(cfg.RequestTimeoutSeconds)*time.Second),
		Store:    store,
		Sessions: session.NewManager(store, session.WithLogger(logger)),
		Out:      os.Stdout,
	}

	if err := cli.Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", describe(err))
		os.Exit(exitCode(err))
	}
}

func describe(err error) string {
	de := apperrors.ToDomainError(err)
	if de.Code == apperrors.CodeInternal {
		return err.Error()
	}
	return fmt.Sprintf("%s (%s)", de.Message, de.Code)
}

func exitCode(err error) int {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeInvalidArgument:
		return 2
	case apperrors.CodeUnauthenticated, apperrors.CodePermissionDenied:
		return 3
	case apperrors.CodeStoreUnavailable:
		return 4
	default:
		return 1
	}
}
