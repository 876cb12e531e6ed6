package domain

import (
	"strings"

	apperrors "github.com/spec-kit/crew-auth/pkg/util"
)

// Role enumerates the closed set of crew roles.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleAdmin    Role = "admin"
	RoleDispatch Role = "dispatch"
	RoleDriver   Role = "driver"
)

// Destinations a role can be routed to after sign-in.
const (
	DestinationSignIn   = "/"
	DestinationAdmin    = "/admin"
	DestinationDispatch = "/dispatch"
	DestinationDriver   = "/driver"
)

// Roles lists every role in display order.
func Roles() []Role {
	return []Role{RoleOwner, RoleAdmin, RoleDispatch, RoleDriver}
}

// ParseRole accepts only the four known roles, case-insensitively.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", apperrors.NewInvalidArgument("role must be one of owner, admin, dispatch, driver")
	}
	return role, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleDispatch, RoleDriver:
		return true
	}
	return false
}

// Elevated reports whether r may provision employees and set PINs.
func (r Role) Elevated() bool {
	switch r {
	case RoleOwner, RoleAdmin:
		return true
	case RoleDispatch, RoleDriver:
		return false
	}
	return false
}

// Home is the destination a role lands on after sign-in.
func (r Role) Home() string {
	switch r {
	case RoleOwner, RoleAdmin:
		return DestinationAdmin
	case RoleDispatch:
		return DestinationDispatch
	case RoleDriver:
		return DestinationDriver
	}
	return DestinationSignIn
}

// In reports whether r is contained in allowed.
func (r Role) In(allowed []Role) bool {
	for _, a := range allowed {
		if a == r {
			return true
		}
	}
	return false
}
