package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/crew-auth/internal/auth"
	"github.com/spec-kit/crew-auth/internal/domain"
	"github.com/spec-kit/crew-auth/internal/repository"
	apperrors "github.com/spec-kit/crew-auth/pkg/util"
)

func newTestAdminService(repo repository.EmployeeRepository) *AdminService {
	return NewAdminService(AdminDependencies{
		Employees: repo,
		Hasher:    testHasher(),
		Clock:     testClock,
	})
}

func TestAdminService_RequiresElevatedCaller(t *testing.T) {
	callers := []struct {
		name   string
		caller *auth.Principal
		code   string
	}{
		{"anonymous", nil, apperrors.CodeUnauthenticated},
		{"driver", &auth.Principal{EmployeeID: "d", Role: domain.RoleDriver}, apperrors.CodePermissionDenied},
		{"dispatch", &auth.Principal{EmployeeID: "x", Role: domain.RoleDispatch}, apperrors.CodePermissionDenied},
	}

	for _, tt := range callers {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockEmployeeRepository)
			svc := newTestAdminService(repo)
			ctx := context.Background()

			_, err := svc.CreateEmployee(ctx, tt.caller, CreateEmployeeInput{ID: "jdoe", Name: "Jane", Role: "driver"})
			assert.Equal(t, tt.code, apperrors.CodeOf(err))

			err = svc.SetPin(ctx, tt.caller, "jdoe", "1234")
			assert.Equal(t, tt.code, apperrors.CodeOf(err))

			_, err = svc.SetActive(ctx, tt.caller, "jdoe", false)
			assert.Equal(t, tt.code, apperrors.CodeOf(err))

			assert.Empty(t, repo.Calls)
		})
	}
}

func TestAdminService_CreateEmployee_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateEmployeeInput
	}{
		{"empty id after canonicalization", CreateEmployeeInput{ID: " .-_ ", Name: "Jane", Role: "driver"}},
		{"blank name", CreateEmployeeInput{ID: "jdoe", Name: "   ", Role: "driver"}},
		{"unknown role", CreateEmployeeInput{ID: "jdoe", Name: "Jane", Role: "mechanic"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockEmployeeRepository)
			_, err := newTestAdminService(repo).CreateEmployee(context.Background(), adminPrincipal(), tt.input)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))
			assert.Empty(t, repo.Calls)
		})
	}
}

func TestAdminService_CreateEmployee_CanonicalizesAndOverwrites(t *testing.T) {
	repo := newMemoryEmployees(domain.Employee{
		ID: "jdoe", Name: "Old Name", Role: domain.RoleDispatch, IsActive: false, PinHash: mustHash("1234"),
	})
	svc := newTestAdminService(repo)

	created, err := svc.CreateEmployee(context.Background(), adminPrincipal(),
		CreateEmployeeInput{ID: " J.Doe ", Name: " Jane Doe ", Role: "DRIVER"})
	require.NoError(t, err)
	assert.Equal(t, "jdoe", created.ID)

	stored, err := repo.GetByID(context.Background(), "jdoe")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", stored.Name)
	assert.Equal(t, domain.RoleDriver, stored.Role)
	assert.True(t, stored.IsActive)
	assert.False(t, stored.HasPin())
	assert.Equal(t, fixedNow, stored.CreatedAt)
	assert.Equal(t, fixedNow, stored.UpdatedAt)
}

func TestAdminService_CreateEmployee_StoreDown(t *testing.T) {
	repo := new(MockEmployeeRepository)
	repo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Employee")).Return(errors.New("timeout"))

	_, err := newTestAdminService(repo).CreateEmployee(context.Background(), adminPrincipal(),
		CreateEmployeeInput{ID: "jdoe", Name: "Jane", Role: "driver"})

	assert.True(t, errors.Is(err, apperrors.ErrStoreUnavailable))
}

func TestAdminService_SetPin(t *testing.T) {
	t.Run("invalid pin never hashes or writes", func(t *testing.T) {
		repo := new(MockEmployeeRepository)
		err := newTestAdminService(repo).SetPin(context.Background(), adminPrincipal(), "jdoe", "12345")
		assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))
		assert.Empty(t, repo.Calls)
	})

	t.Run("missing employee", func(t *testing.T) {
		repo := newMemoryEmployees()
		err := newTestAdminService(repo).SetPin(context.Background(), adminPrincipal(), "ghost", "1234")
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})

	t.Run("stores a hash, never the pin", func(t *testing.T) {
		repo := new(MockEmployeeRepository)
		repo.On("SetPinHash", mock.Anything, "jdoe", mock.MatchedBy(func(hash string) bool {
			return hash != "" && !strings.Contains(hash, "2468") && strings.HasPrefix(hash, "$2")
		}), fixedNow).Return(nil)

		err := newTestAdminService(repo).SetPin(context.Background(), adminPrincipal(), "JDoe", " 2468 ")
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("owner may set pins", func(t *testing.T) {
		repo := newMemoryEmployees(domain.Employee{ID: "jdoe", Name: "Jane", Role: domain.RoleDriver, IsActive: true})
		owner := &auth.Principal{EmployeeID: "own", Role: domain.RoleOwner}
		assert.NoError(t, newTestAdminService(repo).SetPin(context.Background(), owner, "jdoe", "1234"))
	})
}

func TestAdminService_SetPinThenVerify(t *testing.T) {
	repo := newMemoryEmployees(domain.Employee{ID: "ann", Name: "Ann Driver", Role: domain.RoleDriver, IsActive: true})
	admin := newTestAdminService(repo)
	verifier := newTestAuthService(repo)
	ctx := context.Background()

	require.NoError(t, admin.SetPin(ctx, adminPrincipal(), "ann", "1234"))

	identity, err := verifier.Verify(ctx, "ann", "1234")
	require.NoError(t, err)
	assert.Equal(t, "Ann Driver", identity.Name)
	assert.Equal(t, domain.RoleDriver, identity.Role)

	_, err = verifier.Verify(ctx, "ann", "9999")
	assert.True(t, errors.Is(err, apperrors.ErrUnauthenticated))
}

func TestAdminService_SetActive(t *testing.T) {
	repo := newMemoryEmployees(domain.Employee{
		ID: "ann", Name: "Ann", Role: domain.RoleDriver, IsActive: true, PinHash: mustHash("1234"),
	})
	admin := newTestAdminService(repo)
	verifier := newTestAuthService(repo)
	ctx := context.Background()

	updated, err := admin.SetActive(ctx, adminPrincipal(), "ann", false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	_, err = verifier.Verify(ctx, "ann", "1234")
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	roster, err := admin.ListForLogin(ctx)
	require.NoError(t, err)
	assert.Empty(t, roster)

	_, err = admin.SetActive(ctx, adminPrincipal(), "ann", true)
	require.NoError(t, err)
	_, err = verifier.Verify(ctx, "ann", "1234")
	assert.NoError(t, err)

	_, err = admin.SetActive(ctx, adminPrincipal(), "ghost", true)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestAdminService_NewEmployeeScenario(t *testing.T) {
	repo := newMemoryEmployees()
	admin := newTestAdminService(repo)
	verifier := newTestAuthService(repo)
	ctx := context.Background()

	_, err := admin.CreateEmployee(ctx, adminPrincipal(), CreateEmployeeInput{ID: "jdoe", Name: "Jane Doe", Role: "driver"})
	require.NoError(t, err)

	roster, err := admin.ListForLogin(ctx)
	require.NoError(t, err)
	assert.Contains(t, roster, domain.RosterEntry{ID: "jdoe", Name: "Jane Doe", Role: domain.RoleDriver, IsActive: true})

	_, err = verifier.Verify(ctx, "jdoe", "1234")
	assert.True(t, errors.Is(err, apperrors.ErrFailedPrecondition))

	require.NoError(t, admin.SetPin(ctx, adminPrincipal(), "jdoe", "1234"))
	identity, err := verifier.Verify(ctx, "jdoe", "1234")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", identity.EmployeeID)
}

func TestAdminService_ListForLogin_SortedAndSecretFree(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	roles := domain.Roles()

	for round := 0; round < 20; round++ {
		var seed []domain.Employee
		n := rng.Intn(25)
		for i := 0; i < n; i++ {
			e := domain.Employee{
				ID:       fmt.Sprintf("emp%02d%02d", round, i),
				Name:     fmt.Sprintf("Name %c%d", 'A'+rng.Intn(26), rng.Intn(100)),
				Role:     roles[rng.Intn(len(roles))],
				IsActive: rng.Intn(3) > 0,
			}
			if rng.Intn(2) == 0 {
				e.PinHash = fmt.Sprintf("$2a$04$secretmaterial%06d", rng.Intn(1_000_000))
			}
			seed = append(seed, e)
		}

		roster, err := newTestAdminService(newMemoryEmployees(seed...)).ListForLogin(context.Background())
		require.NoError(t, err)

		active := 0
		for _, e := range seed {
			if e.IsActive {
				active++
			}
		}
		assert.Len(t, roster, active)

		body, err := json.Marshal(map[string]any{"employees": roster})
		require.NoError(t, err)
		assert.NotContains(t, string(body), "secretmaterial")
		assert.NotContains(t, strings.ToLower(string(body)), "pin")
		assert.NotContains(t, strings.ToLower(string(body)), "hash")

		for i, entry := range roster {
			assert.True(t, entry.IsActive)
			if i > 0 {
				prev := roster[i-1]
				assert.True(t, prev.Name < entry.Name || (prev.Name == entry.Name && prev.ID < entry.ID))
			}
		}
	}
}

func TestAdminService_ListForLogin_StoreDown(t *testing.T) {
	repo := new(MockEmployeeRepository)
	repo.On("ListActiveRoster", mock.Anything).Return(nil, errors.New("dial tcp: refused"))

	_, err := newTestAdminService(repo).ListForLogin(context.Background())
	assert.True(t, errors.Is(err, apperrors.ErrStoreUnavailable))
}

func TestAdminService_BootstrapOwner(t *testing.T) {
	repo := newMemoryEmployees()
	admin := newTestAdminService(repo)
	ctx := context.Background()

	owner, err := admin.BootstrapOwner(ctx, "Owner", "Site Owner", "9876")
	require.NoError(t, err)
	assert.Equal(t, "owner", owner.ID)
	assert.Equal(t, domain.RoleOwner, owner.Role)

	identity, err := newTestAuthService(repo).Verify(ctx, "owner", "9876")
	require.NoError(t, err)
	assert.True(t, identity.Role.Elevated())

	_, err = admin.BootstrapOwner(ctx, "owner", "Site Owner", "")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))
}
