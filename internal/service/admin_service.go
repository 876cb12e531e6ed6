package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/crew-auth/internal/auth"
	"github.com/spec-kit/crew-auth/internal/domain"
	"github.com/spec-kit/crew-auth/internal/events"
	"github.com/spec-kit/crew-auth/internal/repository"
	apperrors "github.com/spec-kit/crew-auth/pkg/util"
)

// AdminService provisions employees and their PINs.
type AdminService struct {
	employees  repository.EmployeeRepository
	hasher     *auth.PinHasher
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// AdminDependencies encapsulates collaborators for the admin service.
type AdminDependencies struct {
	Employees  repository.EmployeeRepository
	Hasher     *auth.PinHasher
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// NewAdminService builds the service.
func NewAdminService(deps AdminDependencies) *AdminService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &AdminService{
		employees:  deps.Employees,
		hasher:     deps.Hasher,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        now,
	}
}

// CreateEmployeeInput carries the fields of a new credential record.
type CreateEmployeeInput struct {
	ID   string
	Name string
	Role string
}

// requireElevated checks the caller's role as asserted by a verified token.
func requireElevated(caller *auth.Principal) error {
	if caller == nil {
		return apperrors.NewUnauthenticated("Sign in required.")
	}
	if !caller.Role.Elevated() {
		return apperrors.NewPermissionDenied("Owner or admin role required.")
	}
	return nil
}

// CreateEmployee writes an active record with no PIN. An existing record with
// the same ID is overwritten, including its PIN.
func (s *AdminService) CreateEmployee(ctx context.Context, caller *auth.Principal, input CreateEmployeeInput) (*domain.Employee, error) {
	if err := requireElevated(caller); err != nil {
		return nil, err
	}

	id := auth.CanonicalEmployeeID(input.ID)
	if id == "" {
		return nil, apperrors.NewInvalidArgument("Employee ID is required.")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewInvalidArgument("Name is required.")
	}
	role, err := domain.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	employee := &domain.Employee{
		ID:        id,
		Name:      name,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.employees.Upsert(ctx, employee); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	s.emit(ctx, events.NewEvent(events.EventEmployeeCreated, id, actorOf(caller), now,
		events.EmployeeCreatedPayload{Name: name, Role: role}))
	return employee, nil
}

// SetPin hashes pin and stores it as the employee's only secret.
func (s *AdminService) SetPin(ctx context.Context, caller *auth.Principal, rawEmployeeID, rawPIN string) error {
	if err := requireElevated(caller); err != nil {
		return err
	}

	id := auth.CanonicalEmployeeID(rawEmployeeID)
	if id == "" {
		return apperrors.NewInvalidArgument("Employee ID is required.")
	}
	pin, err := auth.NormalizePIN(rawPIN)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(pin)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	now := s.now().UTC()
	if err := s.employees.SetPinHash(ctx, id, hash, now); err != nil {
		return mapStoreError(err, id)
	}

	s.emit(ctx, events.NewEvent(events.EventEmployeePinSet, id, actorOf(caller), now, nil))
	return nil
}

// SetActive activates or deactivates an employee and returns the updated record.
func (s *AdminService) SetActive(ctx context.Context, caller *auth.Principal, rawEmployeeID string, active bool) (*domain.Employee, error) {
	if err := requireElevated(caller); err != nil {
		return nil, err
	}

	id := auth.CanonicalEmployeeID(rawEmployeeID)
	if id == "" {
		return nil, apperrors.NewInvalidArgument("Employee ID is required.")
	}

	now := s.now().UTC()
	if err := s.employees.SetActive(ctx, id, active, now); err != nil {
		return nil, mapStoreError(err, id)
	}
	employee, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, id)
	}

	s.emit(ctx, events.NewEvent(events.EventEmployeeActiveChanged, id, actorOf(caller), now,
		events.EmployeeActiveChangedPayload{IsActive: active}))
	return employee, nil
}

// ListForLogin returns the public roster: active employees only, sorted by name.
func (s *AdminService) ListForLogin(ctx context.Context) ([]domain.RosterEntry, error) {
	entries, err := s.employees.ListActiveRoster(ctx)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	roster := make([]domain.RosterEntry, 0, len(entries))
	for _, e := range entries {
		if !e.IsActive {
			continue
		}
		roster = append(roster, domain.RosterEntry{ID: e.ID, Name: e.Name, Role: e.Role, IsActive: true})
	}
	sort.SliceStable(roster, func(i, j int) bool {
		if roster[i].Name != roster[j].Name {
			return roster[i].Name < roster[j].Name
		}
		return roster[i].ID < roster[j].ID
	})
	return roster, nil
}

// BootstrapOwner is the initial-setup path: it writes an active owner with the
// given PIN without an authenticated caller. Used by cmd/seed and local runs.
func (s *AdminService) BootstrapOwner(ctx context.Context, rawID, name, rawPIN string) (*domain.Employee, error) {
	id := auth.CanonicalEmployeeID(rawID)
	if id == "" {
		return nil, apperrors.NewInvalidArgument("Employee ID is required.")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewInvalidArgument("Name is required.")
	}
	pin, err := auth.NormalizePIN(rawPIN)
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(pin)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	now := s.now().UTC()
	owner := &domain.Employee{
		ID:        id,
		Name:      name,
		Role:      domain.RoleOwner,
		IsActive:  true,
		PinHash:   hash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.employees.Upsert(ctx, owner); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	s.emit(ctx, events.NewEvent(events.EventEmployeeCreated, id, events.Actor{}, now,
		events.EmployeeCreatedPayload{Name: name, Role: domain.RoleOwner}))
	s.emit(ctx, events.NewEvent(events.EventEmployeePinSet, id, events.Actor{}, now, nil))
	return owner, nil
}

func (s *AdminService) emit(ctx context.Context, event events.Event) {
	emit(ctx, s.dispatcher, s.logger, event)
}

func actorOf(p *auth.Principal) events.Actor {
	return events.Actor{EmployeeID: p.EmployeeID, Role: p.Role}
}
