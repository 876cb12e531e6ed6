package main

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apihttp "github.com/spec-kit/crew-auth/internal/api/http"
	"github.com/spec-kit/crew-auth/internal/api/http/handlers"
	"github.com/spec-kit/crew-auth/internal/auth"
	"github.com/spec-kit/crew-auth/internal/client"
	"github.com/spec-kit/crew-auth/internal/domain"
	"github.com/spec-kit/crew-auth/internal/repository"
	"github.com/spec-kit/crew-auth/internal/service"
	"github.com/spec-kit/crew-auth/internal/session"
	apperrors "github.com/spec-kit/crew-auth/pkg/util"
)

func newTestCLI(t *testing.T) (*CLI, *bytes.Buffer) {
	t.Helper()

	hasher := auth.NewPinHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("1111")
	require.NoError(t, err)
	repo := repository.NewMemoryEmployeeRepository(
		domain.Employee{ID: "boss", Name: "Boss", Role: domain.RoleOwner, IsActive: true, PinHash: hash},
	)
	tokens := auth.NewTokenManager("crewctl-test", time.Hour, "crew-auth")
	logger := zap.NewNop()
	authService := service.NewAuthService(service.AuthDependencies{Employees: repo, Hasher: hasher, Tokens: tokens, Logger: logger})
	adminService := service.NewAdminService(service.AdminDependencies{Employees: repo, Hasher: hasher, Logger: logger})

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	apihttp.RegisterMiddlewares(app, logger, nil, 0)
	apihttp.RegisterRoutes(app, apihttp.RouteConfig{
		Health:         handlers.NewHealthHandler("crew-auth", "test", nil),
		Auth:           handlers.NewAuthHandler(authService, adminService),
		Admin:          handlers.NewAdminHandler(adminService),
		Catalog:        handlers.NewCatalogHandler(),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, nil),
	})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	store := session.NewMemoryStore()
	out := &bytes.Buffer{}
	return &CLI{
		API:      client.New("http://"+ln.Addr().String(), 5*time.Second),
		Store:    store,
		Sessions: session.NewManager(store),
		Out:      out,
	}, out
}

func TestCLI_ProvisionDriverAndSignIn(t *testing.T) {
	cli, out := newTestCLI(t)
	ctx := context.Background()

	require.NoError(t, cli.Run(ctx, []string{"login", "boss", "1111"}))
	assert.Contains(t, out.String(), "home: /admin")
	require.NoError(t, cli.Run(ctx, []string{"open", "/admin"}))

	require.NoError(t, cli.Run(ctx, []string{"admin", "create", "JDoe", "Jane Doe", "driver"}))
	require.NoError(t, cli.Run(ctx, []string{"admin", "set-pin", "jdoe", "2468"}))
	require.NoError(t, cli.Run(ctx, []string{"logout"}))
	assert.False(t, cli.Sessions.IsSignedIn(ctx))

	out.Reset()
	require.NoError(t, cli.Run(ctx, []string{"employees"}))
	assert.Contains(t, out.String(), "jdoe")

	require.NoError(t, cli.Run(ctx, []string{"login", "jdoe", "2468"}))
	err := cli.Run(ctx, []string{"open", "/admin"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	require.NoError(t, cli.Run(ctx, []string{"open", "/driver"}))

	require.NoError(t, cli.Run(ctx, []string{"shift", "153", "route_a"}))
	s := cli.Sessions.Get(ctx)
	require.NotNil(t, s)
	require.NotNil(t, s.Shift)
	assert.Equal(t, "153", s.Shift.VehicleID)

	err = cli.Run(ctx, []string{"admin", "deactivate", "boss"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestCLI_CommandsRequireSession(t *testing.T) {
	cli, _ := newTestCLI(t)
	ctx := context.Background()

	assert.ErrorIs(t, cli.Run(ctx, []string{"whoami"}), apperrors.ErrUnauthenticated)
	assert.ErrorIs(t, cli.Run(ctx, []string{"trucks"}), apperrors.ErrUnauthenticated)
	assert.ErrorIs(t, cli.Run(ctx, []string{"admin", "set-pin", "boss", "1234"}), apperrors.ErrUnauthenticated)
	assert.ErrorIs(t, cli.Run(ctx, []string{"open", "/dispatch"}), apperrors.ErrPermissionDenied)
}

func TestCLI_BadUsage(t *testing.T) {
	cli, _ := newTestCLI(t)
	ctx := context.Background()

	assert.ErrorIs(t, cli.Run(ctx, []string{"login", "boss"}), apperrors.ErrInvalidArgument)
	assert.ErrorIs(t, cli.Run(ctx, []string{"frobnicate"}), apperrors.ErrInvalidArgument)
	assert.ErrorIs(t, cli.Run(ctx, []string{"login", "boss", "12"}), apperrors.ErrInvalidArgument)
}

func TestCLI_LogoutWithoutSessionIsQuiet(t *testing.T) {
	cli, out := newTestCLI(t)

	require.NoError(t, cli.Run(context.Background(), []string{"logout"}))
	assert.Contains(t, out.String(), "signed out")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, exitCode(apperrors.NewInvalidArgument("x")))
	assert.Equal(t, 3, exitCode(apperrors.NewPermissionDenied("x")))
	assert.Equal(t, 4, exitCode(apperrors.NewStoreUnavailable(nil)))
	assert.Equal(t, 1, exitCode(apperrors.NewFailedPrecondition("x")))
}
