package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/crew-auth/internal/domain"
)

// MemoryEmployeeRepository keeps credential records in process memory. It backs
// local development when no Postgres DSN is configured, and tests.
type MemoryEmployeeRepository struct {
	mu   sync.RWMutex
	rows map[string]domain.Employee
}

var _ EmployeeRepository = (*MemoryEmployeeRepository)(nil)

// NewMemoryEmployeeRepository returns a store holding copies of seed.
func NewMemoryEmployeeRepository(seed ...domain.Employee) *MemoryEmployeeRepository {
	r := &MemoryEmployeeRepository{rows: make(map[string]domain.Employee, len(seed))}
	for _, e := range seed {
		r.rows[e.ID] = e
	}
	return r
}

func (r *MemoryEmployeeRepository) GetByID(_ context.Context, id string) (*domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.rows[id]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	return &e, nil
}

func (r *MemoryEmployeeRepository) Upsert(_ context.Context, employee *domain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row := *employee
	row.LastLoginAt = nil
	r.rows[row.ID] = row
	return nil
}

func (r *MemoryEmployeeRepository) SetPinHash(_ context.Context, id, pinHash string, at time.Time) error {
	return r.update(id, func(e *domain.Employee) {
		e.PinHash = pinHash
		e.UpdatedAt = at
	})
}

func (r *MemoryEmployeeRepository) SetActive(_ context.Context, id string, active bool, at time.Time) error {
	return r.update(id, func(e *domain.Employee) {
		e.IsActive = active
		e.UpdatedAt = at
	})
}

func (r *MemoryEmployeeRepository) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	return r.update(id, func(e *domain.Employee) {
		e.LastLoginAt = &at
	})
}

func (r *MemoryEmployeeRepository) ListActiveRoster(_ context.Context) ([]domain.RosterEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.RosterEntry{}
	for _, e := range r.rows {
		if e.IsActive {
			out = append(out, domain.RosterEntry{ID: e.ID, Name: e.Name, Role: e.Role, IsActive: true})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryEmployeeRepository) update(id string, fn func(*domain.Employee)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rows[id]
	if !ok {
		return ErrEmployeeNotFound
	}
	fn(&e)
	r.rows[id] = e
	return nil
}
