package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/crew-auth/internal/domain"
)

// ErrEmployeeNotFound is returned when no credential record exists for an ID.
var ErrEmployeeNotFound = errors.New("employee not found")

// EmployeeRepository is the credential store keyed by canonical employee ID.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	// Upsert writes the whole record, replacing any existing one including its PIN hash.
	Upsert(ctx context.Context, employee *domain.Employee) error
	SetPinHash(ctx context.Context, id, pinHash string, at time.Time) error
	SetActive(ctx context.Context, id string, active bool, at time.Time) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	// ListActiveRoster projects active employees to their public fields, ordered by name.
	ListActiveRoster(ctx context.Context) ([]domain.RosterEntry, error)
}

type employeeRepository struct {
	pool *pgxpool.Pool
}

// NewEmployeeRepository returns a Postgres-backed implementation.
func NewEmployeeRepository(pool *pgxpool.Pool) EmployeeRepository {
	return &employeeRepository{pool: pool}
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	const query = `
        SELECT id, name, role, is_active, COALESCE(pin_hash, ''), created_at, updated_at, last_login_at
        FROM employees WHERE id=$1`

	var employee domain.Employee
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&employee.ID,
		&employee.Name,
		&employee.Role,
		&employee.IsActive,
		&employee.PinHash,
		&employee.CreatedAt,
		&employee.UpdatedAt,
		&employee.LastLoginAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepository) Upsert(ctx context.Context, employee *domain.Employee) error {
	const query = `
        INSERT INTO employees (id, name, role, is_active, pin_hash, created_at, updated_at, last_login_at)
        VALUES ($1,$2,$3,$4,NULLIF($5,''),$6,$7,NULL)
        ON CONFLICT (id) DO UPDATE
        SET name=EXCLUDED.name, role=EXCLUDED.role, is_active=EXCLUDED.is_active,
            pin_hash=EXCLUDED.pin_hash, created_at=EXCLUDED.created_at,
            updated_at=EXCLUDED.updated_at, last_login_at=NULL`

	_, err := r.pool.Exec(ctx, query,
		employee.ID,
		employee.Name,
		employee.Role,
		employee.IsActive,
		employee.PinHash,
		employee.CreatedAt,
		employee.UpdatedAt,
	)
	return err
}

func (r *employeeRepository) SetPinHash(ctx context.Context, id, pinHash string, at time.Time) error {
	const query = `UPDATE employees SET pin_hash=$1, updated_at=$2 WHERE id=$3`
	return r.execOne(ctx, query, pinHash, at, id)
}

func (r *employeeRepository) SetActive(ctx context.Context, id string, active bool, at time.Time) error {
	const query = `UPDATE employees SET is_active=$1, updated_at=$2 WHERE id=$3`
	return r.execOne(ctx, query, active, at, id)
}

func (r *employeeRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE employees SET last_login_at=$1 WHERE id=$2`
	return r.execOne(ctx, query, at, id)
}

func (r *employeeRepository) ListActiveRoster(ctx context.Context) ([]domain.RosterEntry, error) {
	const query = `
        SELECT id, name, role FROM employees
        WHERE is_active = TRUE
        ORDER BY name ASC, id ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.RosterEntry{}
	for rows.Next() {
		entry := domain.RosterEntry{IsActive: true}
		if err := rows.Scan(&entry.ID, &entry.Name, &entry.Role); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *employeeRepository) execOne(ctx context.Context, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}
