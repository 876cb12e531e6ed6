package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/crew-auth/internal/auth"
	"github.com/spec-kit/crew-auth/internal/domain"
	"github.com/spec-kit/crew-auth/internal/repository"
)

// MockEmployeeRepository is a mock implementation of EmployeeRepository.
type MockEmployeeRepository struct {
	mock.Mock
}

func (m *MockEmployeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) Upsert(ctx context.Context, employee *domain.Employee) error {
	args := m.Called(ctx, employee)
	return args.Error(0)
}

func (m *MockEmployeeRepository) SetPinHash(ctx context.Context, id, pinHash string, at time.Time) error {
	args := m.Called(ctx, id, pinHash, at)
	return args.Error(0)
}

func (m *MockEmployeeRepository) SetActive(ctx context.Context, id string, active bool, at time.Time) error {
	args := m.Called(ctx, id, active, at)
	return args.Error(0)
}

func (m *MockEmployeeRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockEmployeeRepository) ListActiveRoster(ctx context.Context) ([]domain.RosterEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RosterEntry), args.Error(1)
}

// MockRevocationList is a mock implementation of auth.RevocationList.
type MockRevocationList struct {
	mock.Mock
}

func (m *MockRevocationList) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	args := m.Called(ctx, tokenID, until)
	return args.Error(0)
}

func (m *MockRevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// MockPublisher is a mock implementation of notify.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, subtopic string, payload []byte) error {
	args := m.Called(ctx, subtopic, payload)
	return args.Error(0)
}

func (m *MockPublisher) Close() {
	m.Called()
}

func newMemoryEmployees(seed ...domain.Employee) *repository.MemoryEmployeeRepository {
	return repository.NewMemoryEmployeeRepository(seed...)
}

var fixedNow = time.Date(2024, 5, 6, 7, 0, 0, 0, time.UTC)

func testClock() time.Time { return fixedNow }

func testHasher() *auth.PinHasher { return auth.NewPinHasher(bcrypt.MinCost) }

func testTokens() *auth.TokenManager {
	return auth.NewTokenManager("test-secret", time.Hour, "crew-auth-test").WithClock(testClock)
}

func mustHash(pin string) string {
	hash, err := testHasher().Hash(pin)
	if err != nil {
		panic(err)
	}
	return hash
}

func adminPrincipal() *auth.Principal {
	return &auth.Principal{EmployeeID: "boss", Name: "Boss", Role: domain.RoleAdmin, TokenID: "t-admin"}
}
