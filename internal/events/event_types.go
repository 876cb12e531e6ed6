package events

import (
	"time"

	"github.com/segmentio/ksuid"

	"github.com/spec-kit/crew-auth/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventEmployeeCreated       EventType = "employee_created"
	EventEmployeePinSet        EventType = "employee_pin_set"
	EventEmployeeActiveChanged EventType = "employee_active_changed"
	EventLoginSucceeded        EventType = "login_succeeded"
	EventLoginFailed           EventType = "login_failed"
	EventLoggedOut             EventType = "logged_out"
)

// AllEventTypes lists every type the audit trail subscribes to.
func AllEventTypes() []EventType {
	return []EventType{
		EventEmployeeCreated,
		EventEmployeePinSet,
		EventEmployeeActiveChanged,
		EventLoginSucceeded,
		EventLoginFailed,
		EventLoggedOut,
	}
}

// Actor is the employee who caused an event. Empty for anonymous sign-in attempts.
type Actor struct {
	EmployeeID string      `json:"employee_id,omitempty"`
	Role       domain.Role `json:"role,omitempty"`
}

// Event represents an auth event emitted by services. Payloads never carry PINs or hashes.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	EmployeeID string    `json:"employee_id"`
	Actor      Actor     `json:"actor"`
	Timestamp  time.Time `json:"timestamp"`
	Payload    any       `json:"payload,omitempty"`
}

// NewEvent stamps a fresh KSUID and the given time onto an event.
func NewEvent(eventType EventType, employeeID string, actor Actor, at time.Time, payload any) Event {
	return Event{
		ID:         ksuid.New().String(),
		Type:       eventType,
		EmployeeID: employeeID,
		Actor:      actor,
		Timestamp:  at.UTC(),
		Payload:    payload,
	}
}

// EmployeeCreatedPayload payload.
type EmployeeCreatedPayload struct {
	Name string      `json:"name"`
	Role domain.Role `json:"role"`
}

// EmployeeActiveChangedPayload payload.
type EmployeeActiveChangedPayload struct {
	IsActive bool `json:"is_active"`
}

// LoginFailedPayload payload. Code is the DomainError code returned to the caller.
type LoginFailedPayload struct {
	Code string `json:"code"`
}

// LoggedOutPayload payload.
type LoggedOutPayload struct {
	TokenID string `json:"token_id"`
}
