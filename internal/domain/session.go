package domain

import "time"

// Shift is driver-only metadata attached to a live session.
type Shift struct {
	VehicleID string    `json:"vehicleId"`
	RouteID   string    `json:"routeId"`
	StartedAt time.Time `json:"startedAt"`
}

// Session is the client-resident record of who is signed in.
// EmployeeID, Name and Role are fixed at creation; EndedAt is set only by logout.
type Session struct {
	EmployeeID string     `json:"employeeId"`
	Name       string     `json:"name"`
	Role       Role       `json:"role"`
	StartedAt  time.Time  `json:"startedAt"`
	EndedAt    *time.Time `json:"endedAt,omitempty"`
	Shift      *Shift     `json:"shift,omitempty"`
}

// Live reports whether the session has not been ended.
func (s *Session) Live() bool {
	return s != nil && s.EndedAt == nil
}

// Identity returns the identity the session was started with.
func (s *Session) Identity() Identity {
	return Identity{EmployeeID: s.EmployeeID, Name: s.Name, Role: s.Role}
}
