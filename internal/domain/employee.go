package domain

import "time"

// Employee is the credential record for one crew member.
// PinHash is a bcrypt hash; an empty value means no PIN has been set.
type Employee struct {
	ID          string
	Name        string
	Role        Role
	IsActive    bool
	PinHash     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt *time.Time
}

// HasPin reports whether a secret has been provisioned.
func (e *Employee) HasPin() bool {
	return e != nil && e.PinHash != ""
}

// Identity is what a successful PIN verification reveals about an employee.
type Identity struct {
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
	Role       Role   `json:"role"`
}

// Identity projects the non-secret identity fields.
func (e *Employee) Identity() Identity {
	return Identity{EmployeeID: e.ID, Name: e.Name, Role: e.Role}
}

// RosterEntry is the public projection used by the sign-in picker.
// It has no field that could carry secret material.
type RosterEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"isActive"`
}
