package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/crew-auth/internal/auth"
	"github.com/spec-kit/crew-auth/internal/domain"
	"github.com/spec-kit/crew-auth/internal/events"
	"github.com/spec-kit/crew-auth/internal/observability"
	"github.com/spec-kit/crew-auth/internal/repository"
	apperrors "github.com/spec-kit/crew-auth/pkg/util"
)

// AuthService verifies PINs and issues signed assertions.
type AuthService struct {
	employees  repository.EmployeeRepository
	hasher     *auth.PinHasher
	tokens     *auth.TokenManager
	revoked    auth.RevocationList
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// AuthDependencies encapsulates collaborators for the auth service.
// Revoked, Dispatcher and Metrics are optional.
type AuthDependencies struct {
	Employees  repository.EmployeeRepository
	Hasher     *auth.PinHasher
	Tokens     *auth.TokenManager
	Revoked    auth.RevocationList
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Clock      func() time.Time
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		employees:  deps.Employees,
		hasher:     deps.Hasher,
		tokens:     deps.Tokens,
		revoked:    deps.Revoked,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        now,
	}
}

// LoginResult is returned by a successful PIN login.
type LoginResult struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
	User      domain.Identity
}

// Verify checks an employee ID and PIN against the credential store.
// Input shape is validated before the store is touched. Inactive accounts are
// rejected before any hash comparison.
func (s *AuthService) Verify(ctx context.Context, rawEmployeeID, rawPIN string) (domain.Identity, error) {
	employeeID, err := auth.NormalizeLoginID(rawEmployeeID)
	if err != nil {
		return domain.Identity{}, err
	}
	pin, err := auth.NormalizePIN(rawPIN)
	if err != nil {
		return domain.Identity{}, err
	}

	employee, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return domain.Identity{}, mapStoreError(err, employeeID)
	}
	if !employee.IsActive {
		return domain.Identity{}, apperrors.NewPermissionDenied("Employee is inactive.")
	}
	if !employee.HasPin() {
		return domain.Identity{}, apperrors.NewFailedPrecondition("PIN not set")
	}

	if err := s.hasher.Compare(employee.PinHash, pin); err != nil {
		if errors.Is(err, auth.ErrPinMismatch) {
			return domain.Identity{}, apperrors.NewUnauthenticated("Invalid PIN.")
		}
		// a hash bcrypt cannot parse never authenticates
		s.logger.Error("stored pin hash unusable", zap.String("employee_id", employeeID), zap.Error(err))
		return domain.Identity{}, apperrors.NewUnauthenticated("Invalid PIN.")
	}

	return employee.Identity(), nil
}

// Login verifies the PIN and issues an assertion for the verified identity.
func (s *AuthService) Login(ctx context.Context, rawEmployeeID, rawPIN string) (*LoginResult, error) {
	identity, err := s.Verify(ctx, rawEmployeeID, rawPIN)
	if err != nil {
		code := apperrors.CodeOf(err)
		s.metrics.RecordLogin(code)
		s.emit(ctx, events.NewEvent(events.EventLoginFailed,
			strings.ToLower(strings.TrimSpace(rawEmployeeID)), events.Actor{}, s.now(),
			events.LoginFailedPayload{Code: code}))
		return nil, err
	}

	assertion, err := s.tokens.Issue(identity)
	if err != nil {
		s.metrics.RecordLogin(apperrors.CodeInternal)
		return nil, apperrors.NewInternalError(err)
	}

	if err := s.employees.TouchLastLogin(ctx, identity.EmployeeID, assertion.IssuedAt); err != nil {
		s.logger.Warn("last login audit write failed",
			zap.String("employee_id", identity.EmployeeID), zap.Error(err))
	}

	s.metrics.RecordLogin("ok")
	s.emit(ctx, events.NewEvent(events.EventLoginSucceeded, identity.EmployeeID,
		events.Actor{EmployeeID: identity.EmployeeID, Role: identity.Role}, assertion.IssuedAt, nil))

	return &LoginResult{
		Token:     assertion.Token,
		TokenID:   assertion.ID,
		ExpiresAt: assertion.ExpiresAt,
		User:      identity,
	}, nil
}

// Logout revokes the caller's token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, principal *auth.Principal) error {
	if principal == nil {
		return apperrors.NewUnauthenticated("Sign in required.")
	}
	if s.revoked != nil {
		if err := s.revoked.Revoke(ctx, principal.TokenID, principal.ExpiresAt); err != nil {
			return apperrors.NewStoreUnavailable(err)
		}
	}
	s.emit(ctx, events.NewEvent(events.EventLoggedOut, principal.EmployeeID,
		events.Actor{EmployeeID: principal.EmployeeID, Role: principal.Role}, s.now(),
		events.LoggedOutPayload{TokenID: principal.TokenID}))
	return nil
}

func (s *AuthService) emit(ctx context.Context, event events.Event) {
	emit(ctx, s.dispatcher, s.logger, event)
}

func emit(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

// mapStoreError turns repository failures into the caller-facing taxonomy.
func mapStoreError(err error, employeeID string) error {
	if errors.Is(err, repository.ErrEmployeeNotFound) {
		return apperrors.NewNotFound("employee", map[string]any{"employee_id": employeeID})
	}
	return apperrors.NewStoreUnavailable(err)
}
