package session

import (
	"context"

	"github.com/spec-kit/crew-auth/internal/domain"
)

// Decision is the outcome of a navigation check.
type Decision struct {
	Allowed     bool
	Destination string
	// Redirect is set when navigation is refused.
	Redirect string
	Session  *domain.Session
}

// Gate decides navigation from the current session. It caches nothing, so
// every call sees sign-outs made since the last one.
type Gate struct {
	sessions *Manager
	rules    map[string][]domain.Role
}

// DefaultRules grants each role's home destination to that role.
func DefaultRules() map[string][]domain.Role {
	rules := make(map[string][]domain.Role)
	for _, role := range domain.Roles() {
		home := role.Home()
		rules[home] = append(rules[home], role)
	}
	return rules
}

// NewGate builds a gate over sessions. A nil rules map means DefaultRules.
func NewGate(sessions *Manager, rules map[string][]domain.Role) *Gate {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Gate{sessions: sessions, rules: rules}
}

// Check evaluates access to destination. Unknown destinations are refused.
func (g *Gate) Check(ctx context.Context, destination string) Decision {
	deny := Decision{Destination: destination, Redirect: domain.DestinationSignIn}

	allowed, ok := g.rules[destination]
	if !ok {
		return deny
	}
	s := g.sessions.Get(ctx)
	if !s.Live() || !s.Role.In(allowed) {
		return deny
	}
	return Decision{Allowed: true, Destination: destination, Session: s}
}

// Landing is where the current session should start: its role's home, or the
// sign-in entry point.
func (g *Gate) Landing(ctx context.Context) string {
	s := g.sessions.Get(ctx)
	if !s.Live() {
		return domain.DestinationSignIn
	}
	return s.Role.Home()
}
