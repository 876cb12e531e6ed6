package dto

import (
	"time"

	"github.com/spec-kit/crew-auth/internal/domain"
)

// CreateEmployeeRequest payload.
type CreateEmployeeRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// SetPinRequest payload. EmployeeID may be omitted when the ID is in the path.
type SetPinRequest struct {
	EmployeeID string `json:"employeeId,omitempty"`
	PIN        string `json:"pin"`
}

// SetActiveRequest payload.
type SetActiveRequest struct {
	IsActive *bool `json:"isActive"`
}

// EmployeeView is the admin projection of a credential record. It reports
// whether a PIN exists, never the hash.
type EmployeeView struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Role        domain.Role `json:"role"`
	IsActive    bool        `json:"isActive"`
	HasPin      bool        `json:"hasPin"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	LastLoginAt *time.Time  `json:"lastLoginAt,omitempty"`
}

// NewEmployeeView projects a credential record.
func NewEmployeeView(e *domain.Employee) EmployeeView {
	return EmployeeView{
		ID:          e.ID,
		Name:        e.Name,
		Role:        e.Role,
		IsActive:    e.IsActive,
		HasPin:      e.HasPin(),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		LastLoginAt: e.LastLoginAt,
	}
}

// TrucksResponse lists known truck numbers.
type TrucksResponse struct {
	Trucks []string `json:"trucks"`
}

// RoutesResponse lists routes and their sites.
type RoutesResponse struct {
	Routes []domain.Route `json:"routes"`
}
