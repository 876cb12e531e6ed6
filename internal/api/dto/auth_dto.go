package dto

import (
	"time"

	"github.com/spec-kit/crew-auth/internal/domain"
)

// LoginRequest payload for PIN sign-in.
type LoginRequest struct {
	EmployeeID string `json:"employeeId"`
	PIN        string `json:"pin"`
}

// UserView is the verified identity returned to the client.
type UserView struct {
	EmployeeID string      `json:"employeeId"`
	Name       string      `json:"name"`
	Role       domain.Role `json:"role"`
}

// LoginResponse is returned by POST /auth/login.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserView  `json:"user"`
}

// MeResponse is returned by GET /auth/me.
type MeResponse struct {
	User UserView `json:"user"`
}

// RosterResponse is the public sign-in roster.
type RosterResponse struct {
	Employees []domain.RosterEntry `json:"employees"`
}

// OKResponse acknowledges a mutation with no other result.
type OKResponse struct {
	OK bool `json:"ok"`
}

// ErrorBody mirrors the error envelope rendered by the HTTP error middleware.
type ErrorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details,omitempty"`
	} `json:"error"`
}

// NewUserView projects an identity.
func NewUserView(identity domain.Identity) UserView {
	return UserView{EmployeeID: identity.EmployeeID, Name: identity.Name, Role: identity.Role}
}

// Identity converts the view back to a domain identity.
func (u UserView) Identity() domain.Identity {
	return domain.Identity{EmployeeID: u.EmployeeID, Name: u.Name, Role: u.Role}
}
