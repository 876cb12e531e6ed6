package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/crew-auth/internal/domain"
	apperrors "github.com/spec-kit/crew-auth/pkg/util"
)

// Key is the storage key of the session blob for one client installation.
const Key = "crew_session_v1"

// Manager owns the client-resident session record. It is meant for a single
// caller at a time and keeps no state of its own besides its collaborators.
type Manager struct {
	store  Store
	key    string
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger used to report discarded records.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithKey stores the session under a different key.
func WithKey(key string) Option {
	return func(m *Manager) { m.key = key }
}

// NewManager binds a manager to a storage backend.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{store: store, key: Key, now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Patch is a partial session change. It can only carry shift metadata.
type Patch struct {
	Shift      *domain.Shift
	ClearShift bool
}

// Start records a fresh session for identity, replacing any stored one.
func (m *Manager) Start(ctx context.Context, identity domain.Identity) (*domain.Session, error) {
	if strings.TrimSpace(identity.EmployeeID) == "" || strings.TrimSpace(identity.Name) == "" {
		return nil, apperrors.NewInvalidArgument("identity requires employee id and name")
	}
	if !identity.Role.Valid() {
		return nil, apperrors.NewInvalidArgument("identity carries an unknown role")
	}

	s := &domain.Session{
		EmployeeID: identity.EmployeeID,
		Name:       identity.Name,
		Role:       identity.Role,
		StartedAt:  m.now().UTC(),
	}
	if err := m.save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the stored session, or nil when there is none or the stored
// record is unreadable or incomplete.
func (m *Manager) Get(ctx context.Context) *domain.Session {
	raw, err := m.store.Load(ctx, m.key)
	if err != nil {
		if !errors.Is(err, ErrNoValue) {
			m.logger.Warn("session load failed", zap.Error(err))
		}
		return nil
	}

	var s domain.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		m.logger.Warn("discarding unreadable session", zap.Error(err))
		return nil
	}
	if reason := invalidReason(&s); reason != "" {
		m.logger.Warn("discarding invalid session", zap.String("reason", reason))
		return nil
	}
	return &s
}

func invalidReason(s *domain.Session) string {
	switch {
	case s.EmployeeID == "":
		return "missing employeeId"
	case s.Name == "":
		return "missing name"
	case !s.Role.Valid():
		return "unknown role"
	case s.StartedAt.IsZero():
		return "missing startedAt"
	case s.EndedAt != nil && s.EndedAt.Before(s.StartedAt):
		return "endedAt before startedAt"
	case s.Shift != nil && (s.Shift.VehicleID == "" || s.Shift.RouteID == ""):
		return "incomplete shift"
	}
	return ""
}

// Update merges patch into a live session. With no live session it does nothing
// and returns the stored session, which may be nil.
func (m *Manager) Update(ctx context.Context, patch Patch) (*domain.Session, error) {
	s := m.Get(ctx)
	if !s.Live() {
		return s, nil
	}

	switch {
	case patch.ClearShift:
		s.Shift = nil
	case patch.Shift != nil:
		shift := *patch.Shift
		s.Shift = &shift
	default:
		return s, nil
	}

	if err := m.save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// End marks the stored session as signed out. Ending an ended session keeps the
// original endedAt, and with no session nothing is written.
func (m *Manager) End(ctx context.Context) error {
	s := m.Get(ctx)
	if s == nil || s.EndedAt != nil {
		return nil
	}
	ended := m.now().UTC()
	s.EndedAt = &ended
	return m.save(ctx, s)
}

// Clear deletes the stored session whatever its state.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.store.Delete(ctx, m.key); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// IsSignedIn reports whether a live session exists.
func (m *Manager) IsSignedIn(ctx context.Context) bool {
	return m.Get(ctx).Live()
}

// RequireSignedIn returns the live session or fails with Unauthenticated.
func (m *Manager) RequireSignedIn(ctx context.Context) (*domain.Session, error) {
	s := m.Get(ctx)
	if !s.Live() {
		return nil, apperrors.NewUnauthenticated("Sign in required.")
	}
	return s, nil
}

// RequireRole returns the live session when its role is allowed.
func (m *Manager) RequireRole(ctx context.Context, allowed ...domain.Role) (*domain.Session, error) {
	s, err := m.RequireSignedIn(ctx)
	if err != nil {
		return nil, err
	}
	if !s.Role.In(allowed) {
		return nil, apperrors.NewPermissionDenied("insufficient role")
	}
	return s, nil
}

// StartShift attaches vehicle and route to a signed-in driver's session.
func (m *Manager) StartShift(ctx context.Context, vehicleID, routeID string) (*domain.Session, error) {
	if _, err := m.RequireRole(ctx, domain.RoleDriver); err != nil {
		return nil, err
	}

	vehicleID = strings.TrimSpace(vehicleID)
	routeID = strings.TrimSpace(routeID)
	if !domain.KnownTruck(vehicleID) {
		return nil, apperrors.NewInvalidArgument("unknown truck number")
	}
	if _, ok := domain.RouteByID(routeID); !ok {
		return nil, apperrors.NewInvalidArgument("unknown route")
	}

	return m.Update(ctx, Patch{Shift: &domain.Shift{
		VehicleID: vehicleID,
		RouteID:   routeID,
		StartedAt: m.now().UTC(),
	}})
}

func (m *Manager) save(ctx context.Context, s *domain.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := m.store.Save(ctx, m.key, raw); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
